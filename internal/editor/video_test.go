package editor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soup_web/internal/editor"
)

func TestParseVideoURL(t *testing.T) {
	tests := []struct {
		in    string
		embed string
	}{
		{"https://youtu.be/njX2bu-_Vw4", "https://www.youtube.com/embed/njX2bu-_Vw4"},
		{"youtu.be/njX2bu-_Vw4?t=42", "https://www.youtube.com/embed/njX2bu-_Vw4?start=42"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=1m3s", "https://www.youtube.com/embed/dQw4w9WgXcQ?start=63"},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ?start=10", "https://www.youtube.com/embed/dQw4w9WgXcQ?start=10"},
		{"https://youtube.com/shorts/abc_DEF-123", "https://www.youtube.com/embed/abc_DEF-123"},
		{"https://youtu.be/abc?t=garbage", "https://www.youtube.com/embed/abc"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := editor.ParseVideoURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.embed, v.EmbedURL())
		})
	}
}

func TestParseVideoURL_Rejects(t *testing.T) {
	for _, in := range []string{
		"https://vimeo.com/1234",
		"https://www.youtube.com/watch",
		"https://www.youtube.com/watch?v=<script>",
		"https://youtu.be/",
	} {
		_, err := editor.ParseVideoURL(in)
		assert.ErrorIs(t, err, editor.ErrInvalidVideoURL, in)
	}
}
