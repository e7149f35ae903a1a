package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soup_web/internal/api"
	"soup_web/internal/auth"
	"soup_web/internal/cache"
	"soup_web/internal/handlers"
	"soup_web/internal/observability"
	"soup_web/internal/theme"
	"soup_web/internal/views"
)

// sessionFetcher signs in any cookie header carrying sid=ok.
type sessionFetcher struct{}

func (sessionFetcher) Auth(_ context.Context, cookie string) (api.AuthData, error) {
	if strings.Contains(cookie, "sid=ok") {
		return api.AuthData{Success: true, UserID: 9, Username: "dana"}, nil
	}
	return api.AuthData{}, nil
}

type okSaver struct{ calls int }

func (s *okSaver) SaveProject(context.Context, string, api.Draft) (api.SaveResult, error) {
	s.calls++
	return api.SaveResult{Success: true, ID: 1}, nil
}

// counter is a middleware that records the auth snapshot it saw.
type counter struct {
	calls  int
	userID string
}

func (c *counter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.calls++
		c.userID = auth.FromContext(r.Context()).UserID
		next.ServeHTTP(w, r)
	})
}

type routeTable struct {
	router *Router
	saver  *okSaver
	drafts *counter
	live   *counter
}

func newRouteTable(t *testing.T) *routeTable {
	t.Helper()
	logger := discard()
	mc := cache.NewMemoryCache(nil)
	t.Cleanup(func() { mc.Close() })

	key := []byte(strings.Repeat("k", 32))
	saver := &okSaver{}
	h := handlers.NewHandler(
		views.NewShell(views.ShellConfig{Logger: logger}),
		theme.NewStore(key, key, false),
		saver,
		"https://api.test",
		logger,
	)

	rt := &routeTable{
		router: NewRouter(&RouterConfig{Mode: "dev"}, logger),
		saver:  saver,
		drafts: &counter{},
		live:   &counter{},
	}
	SetupRoutes(rt.router, Dependencies{
		Handler: h,
		Auth:    auth.NewProvider(sessionFetcher{}, mc, auth.Config{RenderBudget: time.Second, Logger: logger}),
		Live: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusSwitchingProtocols)
		}),
		Metrics:    observability.NewMetrics(observability.DefaultMetricsConfig("test")),
		Health:     observability.DefaultHealthConfig(),
		DraftLimit: rt.drafts.middleware,
		LiveLimit:  rt.live.middleware,
		LoginPath:  "/login",
		LivePath:   "/live",
	})
	return rt
}

func (rt *routeTable) do(method, path, cookie, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	rec := httptest.NewRecorder()
	rt.router.ServeHTTP(rec, req)
	return rec
}

const draftBody = `{"title":"t","content":{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hi"}]}]}}`

func TestRoutes_WriteRequiresLogin(t *testing.T) {
	rt := newRouteTable(t)

	rec := rt.do(http.MethodGet, "/projects/write", "", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fprojects%2Fwrite", rec.Header().Get("Location"))

	rec = rt.do(http.MethodGet, "/projects/write", "sid=ok", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="editor-doc"`)
}

func TestRoutes_DraftsAuthThenLimit(t *testing.T) {
	rt := newRouteTable(t)

	rec := rt.do(http.MethodPost, "/api/drafts", "sid=nope", draftBody)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, rt.drafts.calls, "anonymous saves stop at auth")
	assert.Zero(t, rt.saver.calls)

	rec = rt.do(http.MethodPost, "/api/drafts", "sid=ok", draftBody)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, rt.drafts.calls)
	assert.Equal(t, "9", rt.drafts.userID, "the limiter sees the signed-in user")
	assert.Equal(t, 1, rt.saver.calls)
	assert.Zero(t, rt.live.calls)
}

func TestRoutes_LiveIsLimited(t *testing.T) {
	rt := newRouteTable(t)

	rec := rt.do(http.MethodGet, "/live", "", "")
	assert.Equal(t, http.StatusSwitchingProtocols, rec.Code)
	assert.Equal(t, 1, rt.live.calls)
	assert.Zero(t, rt.drafts.calls)
}

func TestRoutes_UnknownPathRendersShell(t *testing.T) {
	rt := newRouteTable(t)

	rec := rt.do(http.MethodGet, "/no/such/page", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="mobile-drawer"`)
}

func TestRoutes_Table(t *testing.T) {
	rt := newRouteTable(t)

	var got []string
	for _, c := range rt.router.Routes() {
		got = append(got, c.Method+" "+c.Path)
	}
	require.Contains(t, got, "POST /api/drafts")
	assert.Contains(t, got, "GET /live")
	assert.Contains(t, got, "GET /projects/write")
	assert.Contains(t, got, "POST /theme")
	assert.Contains(t, got, "GET /metrics")
}
