package router

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func reply(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, body) }
}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRegister_ConflictPanicsInDev(t *testing.T) {
	r := NewRouter(&RouterConfig{Mode: "dev"}, discard())
	r.Register(&Route{Category: "a", Method: http.MethodGet, Path: "/x", HandlerFunc: reply("a")})

	assert.PanicsWithError(t, `route conflict on GET /x: "a" already registered, "b" overwrites it`, func() {
		r.Register(&Route{Category: "b", Method: http.MethodGet, Path: "/x", HandlerFunc: reply("b")})
	})
}

func TestRegister_ConflictOverwritesInProd(t *testing.T) {
	r := NewRouter(&RouterConfig{Mode: "prod"}, discard())
	r.Register(&Route{Category: "a", Method: http.MethodGet, Path: "/x", HandlerFunc: reply("a")})
	r.Register(&Route{Category: "b", Method: http.MethodGet, Path: "/x", HandlerFunc: reply("b")})

	assert.Equal(t, "b", serve(r, http.MethodGet, "/x").Body.String())
	routes := r.Routes()
	require.Len(t, routes, 1)
	assert.Equal(t, "b", routes[0].Category)
}

func TestRegisterGroup_PrefixAndMiddlewareOrder(t *testing.T) {
	var order []string
	mark := func(name string) MiddlewaresType {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, req)
			})
		}
	}

	r := NewRouter(nil, discard())
	r.RegisterGroup(&RouteGroup{
		Prefix:      "/api/",
		Category:    "api",
		Middlewares: []MiddlewaresType{mark("group")},
		Routes: []*Route{
			{Method: http.MethodPost, Path: "drafts", HandlerFunc: reply("ok"), Middlewares: []MiddlewaresType{mark("route")}},
		},
	})

	rec := serve(r, http.MethodPost, "/api/drafts")
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, []string{"group", "route"}, order)

	routes := r.Routes()
	require.Len(t, routes, 1)
	assert.Equal(t, "/api/drafts", routes[0].Path)
	assert.Equal(t, "api", routes[0].Category)
}

func TestRegister_Handler(t *testing.T) {
	r := NewRouter(nil, discard())
	r.Register(&Route{Method: http.MethodGet, Path: "/metrics", Handler: reply("metrics")})
	r.Register(&Route{Method: http.MethodGet, Path: "/empty"})

	assert.Equal(t, "metrics", serve(r, http.MethodGet, "/metrics").Body.String())
	assert.Len(t, r.Routes(), 1, "a route without a handler is not registered")
}

func TestRegister_APIBodyLimit(t *testing.T) {
	r := NewRouter(&RouterConfig{MaxRequestBodySize: 8}, discard())
	r.Register(&Route{
		Method:     http.MethodPost,
		Path:       "/api/echo",
		RouterType: RouterTypeAPI,
		HandlerFunc: func(w http.ResponseWriter, req *http.Request) {
			if _, err := io.ReadAll(req.Body); err != nil {
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/echo", strings.NewReader("0123456789"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestStaticFiles(t *testing.T) {
	assets := fstest.MapFS{"app.js": {Data: []byte("console.log(1)")}}
	r := NewRouter(&RouterConfig{Static: &StaticConfig{
		URLPrefix: "/static",
		Dir:       t.TempDir() + "/missing",
		FS:        assets,
		MaxAge:    time.Hour,
	}}, discard())

	rec := serve(r, http.MethodGet, "/static/app.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/static/nope.js").Code)
}

func TestGlobalMiddlewaresAndNotFound(t *testing.T) {
	global := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Global", "1")
			next.ServeHTTP(w, req)
		})
	}

	for _, withRoutes := range []bool{false, true} {
		name := "empty router"
		if withRoutes {
			name = "with routes"
		}
		t.Run(name, func(t *testing.T) {
			r := NewRouter(nil, discard(), global)
			if withRoutes {
				r.Register(&Route{Method: http.MethodGet, Path: "/here", HandlerFunc: reply("here")})
			}
			r.NotFound(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				io.WriteString(w, "shell 404")
			}))

			rec := serve(r, http.MethodGet, "/nowhere")
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, "shell 404", rec.Body.String())
			assert.Equal(t, "1", rec.Header().Get("X-Global"))

			if withRoutes {
				rec = serve(r, http.MethodGet, "/here")
				assert.Equal(t, "here", rec.Body.String())
				assert.Equal(t, "1", rec.Header().Get("X-Global"))
			}
		})
	}
}

func TestRoutes_Sorted(t *testing.T) {
	r := NewRouter(nil, discard())
	r.Register(&Route{Method: http.MethodPost, Path: "/b", HandlerFunc: reply("")})
	r.Register(&Route{Method: http.MethodGet, Path: "/b", HandlerFunc: reply("")})
	r.Register(&Route{Method: http.MethodGet, Path: "/a", HandlerFunc: reply("")})

	var got []string
	for _, c := range r.Routes() {
		got = append(got, c.Method+" "+c.Path)
	}
	assert.Equal(t, []string{"GET /a", "GET /b", "POST /b"}, got)
}
