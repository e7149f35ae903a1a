package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soup_web/internal/api"
	"soup_web/internal/handlers"
)

type fakeSaver struct {
	calls  int
	cookie string
	draft  api.Draft
	result api.SaveResult
	err    error
}

func (f *fakeSaver) SaveProject(_ context.Context, cookie string, d api.Draft) (api.SaveResult, error) {
	f.calls++
	f.cookie = cookie
	f.draft = d
	return f.result, f.err
}

func newTestDrafts(saver *fakeSaver) *DraftHandler {
	h := handlers.NewHandler(nil, nil, saver, "", slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewDraftHandler(h)
}

func post(t *testing.T, d *DraftHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/drafts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", "sid=abc")
	rec := httptest.NewRecorder()
	d.Save(rec, req)
	return rec
}

const helloDoc = `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hello"}]}]}`

func TestSave_Forwards(t *testing.T) {
	saver := &fakeSaver{result: api.SaveResult{Success: true, ID: 42}}
	rec := post(t, newTestDrafts(saver), `{"title":"  스터디 모집  ","content":`+helloDoc+`}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, saver.calls)
	assert.Equal(t, "sid=abc", saver.cookie)
	assert.Equal(t, "스터디 모집", saver.draft.Title)
	assert.JSONEq(t, helloDoc, string(saver.draft.Content))

	var body struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, float64(42), body.Data["id"])
}

func TestSave_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"title":`},
		{"missing title", `{"title":" ","content":` + helloDoc + `}`},
		{"long title", `{"title":"` + strings.Repeat("가", maxTitleLength+1) + `","content":` + helloDoc + `}`},
		{"not a doc", `{"title":"t","content":{"type":"paragraph"}}`},
		{"empty doc", `{"title":"t","content":{"type":"doc","content":[{"type":"paragraph"}]}}`},
		{"no content", `{"title":"t"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saver := &fakeSaver{}
			rec := post(t, newTestDrafts(saver), tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Zero(t, saver.calls, "invalid drafts never reach the API")
		})
	}
}

func TestSave_MediaOnlyDocument(t *testing.T) {
	saver := &fakeSaver{result: api.SaveResult{Success: true, ID: 7}}
	doc := `{"type":"doc","content":[{"type":"image","attrs":{"src":"https://img.test/a.png"}}]}`
	rec := post(t, newTestDrafts(saver), `{"title":"t","content":`+doc+`}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestSave_APIErrors(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		saver := &fakeSaver{err: api.ErrUnauthorized}
		rec := post(t, newTestDrafts(saver), `{"title":"t","content":`+helloDoc+`}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("upstream failure", func(t *testing.T) {
		saver := &fakeSaver{err: errors.New("connection refused")}
		rec := post(t, newTestDrafts(saver), `{"title":"t","content":`+helloDoc+`}`)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestSave_RequiresJSONContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		want        int
	}{
		{"text plain form", "text/plain", http.StatusUnsupportedMediaType},
		{"urlencoded form", "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"missing", "", http.StatusUnsupportedMediaType},
		{"json with charset", "application/json; charset=utf-8", http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saver := &fakeSaver{result: api.SaveResult{Success: true, ID: 1}}
			req := httptest.NewRequest(http.MethodPost, "/api/drafts",
				strings.NewReader(`{"title":"t","content":`+helloDoc+`}`))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			req.Header.Set("Cookie", "sid=abc")
			rec := httptest.NewRecorder()
			newTestDrafts(saver).Save(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want != http.StatusCreated {
				assert.Zero(t, saver.calls)
			}
		})
	}
}
