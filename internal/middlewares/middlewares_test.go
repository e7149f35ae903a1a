package middlewares

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soup_web/internal/auth"
	"soup_web/internal/cache"
	"soup_web/internal/layout"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func panicking(v any) http.Handler {
	return http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic(v) })
}

func TestRecovery_PageGetsHTML(t *testing.T) {
	cfg := DefaultRecoveryConfig()
	cfg.Logger = discard()
	h := Recovery(cfg)(panicking("boom"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `class="error-page"`)
	assert.NotContains(t, rec.Body.String(), "boom", "panic value stays out of production pages")
}

func TestRecovery_APIGetsJSON(t *testing.T) {
	cfg := DefaultRecoveryConfig()
	cfg.Logger = discard()
	h := Recovery(cfg)(panicking("boom"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/drafts", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal Server Error", body["error"])
	assert.Contains(t, body, "request_id")
}

func TestRecovery_AcceptJSON(t *testing.T) {
	cfg := DevelopmentRecoveryConfig()
	cfg.Logger = discard()
	h := Recovery(cfg)(panicking("kaput"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Panic: kaput", body["message"])
	assert.NotEmpty(t, body["stack"])
}

func TestRecovery_AbortHandlerPropagates(t *testing.T) {
	cfg := DefaultRecoveryConfig()
	cfg.Logger = discard()
	h := Recovery(cfg)(panicking(http.ErrAbortHandler))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRecovery_Skipper(t *testing.T) {
	cfg := DefaultRecoveryConfig()
	cfg.Logger = discard()
	cfg.Skipper = func(*http.Request) bool { return true }
	h := Recovery(cfg)(panicking("boom"))

	assert.Panics(t, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestLogger_LevelByStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  string
		msg    string
	}{
		{"ok", http.StatusOK, "INFO", "request handled"},
		{"not found", http.StatusNotFound, "WARN", "client error"},
		{"bad gateway", http.StatusBadGateway, "ERROR", "server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := DefaultLoggerConfig()
			cfg.Logger = slog.New(slog.NewJSONHandler(&buf, nil))
			h := Logger(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte("hello"))
			}))

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/projects?page=2", nil))

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, tt.msg, entry["msg"])
			assert.Equal(t, float64(tt.status), entry["status"])
			assert.Equal(t, float64(5), entry["response_size"])
			assert.Equal(t, "page=2", entry["query"])
		})
	}
}

func TestLogger_SkipPaths(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig()
	cfg.Logger = slog.New(slog.NewJSONHandler(&buf, nil))
	h := Logger(cfg)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Zero(t, buf.Len())
}

func TestLogger_ImplicitOK(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig()
	cfg.Logger = slog.New(slog.NewJSONHandler(&buf, nil))
	h := Logger(cfg)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, strings.Contains(buf.String(), `"status":200`))
}

func TestSecurity_Headers(t *testing.T) {
	h := Security(DefaultSecurityConfig())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "same-origin", rec.Header().Get("Cross-Origin-Opener-Policy"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "frame-src https://www.youtube.com")
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"), "plain http gets no HSTS")
}

func TestSecurity_HSTSOverTLS(t *testing.T) {
	h := Security(DefaultSecurityConfig())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=31536000")
}

func newTestCache(t *testing.T) *cache.MemoryCache {
	t.Helper()
	mc := cache.NewMemoryCache(cache.DefaultConfig())
	t.Cleanup(func() { mc.Close() })
	return mc
}

func TestBucketStore_RefillsOverTime(t *testing.T) {
	store := NewBucketStore(newTestCache(t), "")
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _, _, err := store.Allow(ctx, "ip:1", 2, 0.5)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, remaining, retry, err := store.Allow(ctx, "ip:1", 2, 0.5)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, remaining)
	assert.Equal(t, 2*time.Second, retry)

	now = now.Add(2 * time.Second)
	allowed, _, _, err = store.Allow(ctx, "ip:1", 2, 0.5)
	require.NoError(t, err)
	assert.True(t, allowed, "one token back after two seconds")

	require.NoError(t, store.Reset(ctx, "ip:1"))
	_, remaining, _, err = store.Allow(ctx, "ip:1", 2, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}

func TestRateLimit_RejectsOverCapacity(t *testing.T) {
	cfg := DefaultRateLimitConfig(newTestCache(t))
	cfg.Logger = discard()
	cfg.Capacity = 2
	cfg.RefillRate = 0.001
	var limited string
	cfg.OnLimitReached = func(_ *http.Request, key string) { limited = key }
	h := RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	do := func(r *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}
	req := func() *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/api/drafts", nil)
		r.RemoteAddr = "10.0.0.1:5000"
		return r
	}

	assert.Equal(t, http.StatusCreated, do(req()).Code)
	assert.Equal(t, http.StatusCreated, do(req()).Code)

	rec := do(req())
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "ip:10.0.0.1", limited)

	other := req()
	other = other.WithContext(auth.WithSnapshot(other.Context(), layout.AuthSnapshot{Authenticated: true, UserID: "u1"}))
	assert.Equal(t, http.StatusCreated, do(other).Code, "signed-in users get their own bucket")
}

type brokenCache struct{ cache.Cache }

func (brokenCache) Get(context.Context, string) ([]byte, error) {
	return nil, cache.ErrCacheUnavailable
}

func TestRateLimit_FailsOpen(t *testing.T) {
	cfg := DefaultRateLimitConfig(brokenCache{})
	cfg.Logger = discard()
	h := RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/drafts", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
