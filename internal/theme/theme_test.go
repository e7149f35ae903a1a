package theme_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soup_web/internal/theme"
)

func newStore() *theme.Store {
	return theme.NewStore([]byte(strings.Repeat("h", 32)), []byte(strings.Repeat("b", 32)), false)
}

func TestStore_DefaultsToLight(t *testing.T) {
	s := newStore()
	assert.Equal(t, theme.Light, s.Current(httptest.NewRequest(http.MethodGet, "/", nil)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: s.CookieName(), Value: "tampered"})
	assert.Equal(t, theme.Light, s.Current(req))
}

func TestStore_SetRoundTrip(t *testing.T) {
	s := newStore()
	rec := httptest.NewRecorder()
	require.NoError(t, s.Set(rec, theme.Dark))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	assert.Equal(t, theme.Dark, s.Current(req))
}

func TestStore_ToggleRunsHookAroundSwitch(t *testing.T) {
	s := newStore()
	var events []string

	rec := httptest.NewRecorder()
	mode, err := s.Toggle(rec, httptest.NewRequest(http.MethodPost, "/theme", nil), func(from, to theme.Mode) func() {
		events = append(events, "before:"+string(from)+">"+string(to))
		return func() { events = append(events, "after") }
	})
	require.NoError(t, err)

	assert.Equal(t, theme.Dark, mode)
	assert.Equal(t, []string{"before:light>dark", "after"}, events)

	req := httptest.NewRequest(http.MethodPost, "/theme", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	mode, err = s.Toggle(httptest.NewRecorder(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, theme.Light, mode)
}

func TestStore_OtherKeysRejected(t *testing.T) {
	value, err := newStore().Encode(theme.Dark)
	require.NoError(t, err)

	other := theme.NewStore([]byte(strings.Repeat("x", 32)), []byte(strings.Repeat("y", 32)), false)
	assert.Equal(t, theme.Light, other.Decode(value))
}

func TestParseMode(t *testing.T) {
	m, err := theme.ParseMode("dark")
	require.NoError(t, err)
	assert.Equal(t, theme.Light, m.Opposite())

	_, err = theme.ParseMode("sepia")
	assert.Error(t, err)
}
