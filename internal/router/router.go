package router

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

// Default security limits
const (
	DefaultMaxRequestBodySize = 2 << 20 // 2 MB
)

// RouterType defines the type of router for logical separation
type RouterType string

const (
	RouterTypeAPI  RouterType = "api"  // API endpoints (JSON responses)
	RouterTypePage RouterType = "page" // Page endpoints (HTML responses)
	RouterTypeAny  RouterType = "any"  // Mixed (default)
)

// MiddlewaresType defines the middleware function signature
type MiddlewaresType func(http.Handler) http.Handler

// Route represents a single HTTP route
type Route struct {
	Category    string
	Method      string
	Path        string
	HandlerFunc http.HandlerFunc
	// Handler is used when HandlerFunc is nil, for handlers such as the
	// live hub or the metrics endpoint.
	Handler     http.Handler
	Middlewares []MiddlewaresType
	RouterType  RouterType
}

// RouteGroup represents a group of routes with shared configuration
type RouteGroup struct {
	Prefix      string
	Middlewares []MiddlewaresType
	Routes      []*Route
	Category    string
}

// CompiledRoute is a registered route, kept for introspection.
type CompiledRoute struct {
	Method       string
	Path         string
	Category     string
	RouterType   RouterType
	RegisteredAt time.Time
}

// StaticConfig serves assets under URLPrefix. Dir, when set and present on
// disk, wins over FS so assets can be edited without a rebuild.
type StaticConfig struct {
	URLPrefix string
	Dir       string
	FS        fs.FS
	MaxAge    time.Duration
}

// RouterConfig holds all configuration for the router
type RouterConfig struct {
	// Mode "dev" panics on route conflicts instead of overwriting.
	Mode               string
	MaxRequestBodySize int64
	Static             *StaticConfig
}

// RouteConflictError is reported when two routes share a method and path.
type RouteConflictError struct {
	Pattern  string
	Existing string
	New      string
}

func (e *RouteConflictError) Error() string {
	return fmt.Sprintf("route conflict on %s: %q already registered, %q overwrites it", e.Pattern, e.Existing, e.New)
}

// Router registers Routes and RouteGroups on a chi mux.
type Router struct {
	config *RouterConfig
	mux    chi.Router
	logger *slog.Logger

	globals  []MiddlewaresType
	notFound http.Handler
	mounted  atomic.Bool

	mu     sync.RWMutex
	routes map[string]*CompiledRoute
}

// NewRouter creates a router. Global middlewares wrap every route, static
// files and the not-found handler.
func NewRouter(config *RouterConfig, logger *slog.Logger, globalMiddlewares ...MiddlewaresType) *Router {
	if config == nil {
		config = &RouterConfig{}
	}
	if config.MaxRequestBodySize <= 0 {
		config.MaxRequestBodySize = DefaultMaxRequestBodySize
	}
	if logger == nil {
		logger = slog.Default()
	}

	mux := chi.NewRouter()
	for _, mw := range globalMiddlewares {
		mux.Use(mw)
	}

	r := &Router{
		config:   config,
		mux:      mux,
		logger:   logger,
		globals:  globalMiddlewares,
		notFound: http.NotFoundHandler(),
		routes:   make(map[string]*CompiledRoute),
	}
	r.setupStaticFiles()
	return r
}

func (r *Router) setupStaticFiles() {
	static := r.config.Static
	if static == nil {
		return
	}

	var files http.FileSystem
	source := "embedded"
	if static.Dir != "" {
		if info, err := os.Stat(static.Dir); err == nil && info.IsDir() {
			files = http.Dir(static.Dir)
			source = static.Dir
		} else {
			r.logger.Warn("Static directory does not exist, using embedded assets", "dir", static.Dir)
		}
	}
	if files == nil {
		if static.FS == nil {
			return
		}
		files = http.FS(static.FS)
	}

	urlPrefix := "/" + strings.Trim(static.URLPrefix, "/")
	if urlPrefix == "/" {
		urlPrefix = "/static"
	}

	fileServer := http.StripPrefix(urlPrefix, http.FileServer(files))
	maxAge := int(static.MaxAge.Seconds())
	r.mux.Get(urlPrefix+"/*", func(w http.ResponseWriter, req *http.Request) {
		if maxAge > 0 {
			w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
		}
		fileServer.ServeHTTP(w, req)
	})
	r.mounted.Store(true)

	r.logger.Info("Static files enabled", "source", source, "prefix", urlPrefix)
}

// Register registers a single route with conflict detection
func (r *Router) Register(route *Route) {
	method := strings.ToUpper(route.Method)
	if method == "" {
		method = http.MethodGet
	}
	path := "/" + strings.Trim(route.Path, "/")
	pattern := method + " " + path

	var handler http.Handler = route.HandlerFunc
	if route.HandlerFunc == nil {
		handler = route.Handler
	}
	if handler == nil {
		r.logger.Error("Route has no handler", "pattern", pattern)
		return
	}

	r.mu.Lock()
	if existing, ok := r.routes[pattern]; ok {
		err := &RouteConflictError{Pattern: pattern, Existing: existing.Category, New: route.Category}
		if r.config.Mode == "dev" {
			r.mu.Unlock()
			panic(err)
		}
		r.logger.Warn("Route conflict detected, overwriting", "error", err)
	}
	r.routes[pattern] = &CompiledRoute{
		Method:       method,
		Path:         path,
		Category:     route.Category,
		RouterType:   route.RouterType,
		RegisteredAt: time.Now(),
	}
	r.mu.Unlock()

	middlewares := route.Middlewares
	if route.RouterType == RouterTypeAPI {
		middlewares = append([]MiddlewaresType{r.bodySizeLimitMiddleware()}, middlewares...)
	}
	r.mux.Method(method, path, chainMiddlewares(handler, middlewares))
	r.mounted.Store(true)

	r.logger.Debug("Route registered", "method", method, "path", path, "type", route.RouterType)
}

// RegisterGroup registers a group of routes with shared configuration
func (r *Router) RegisterGroup(group *RouteGroup) {
	if group == nil {
		return
	}

	for _, route := range group.Routes {
		if route.Category == "" && group.Category != "" {
			route.Category = group.Category
		}
		if group.Prefix != "" {
			prefix := strings.TrimSuffix(group.Prefix, "/")
			route.Path = prefix + "/" + strings.TrimPrefix(route.Path, "/")
		}
		if len(group.Middlewares) > 0 {
			route.Middlewares = append(append([]MiddlewaresType(nil), group.Middlewares...), route.Middlewares...)
		}
		r.Register(route)
	}

	r.logger.Info("Route group registered", "prefix", group.Prefix, "routes", len(group.Routes))
}

// Routes lists registered routes ordered by path, then method.
func (r *Router) Routes() []CompiledRoute {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]CompiledRoute, 0, len(r.routes))
	for _, c := range r.routes {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// NotFound sets the handler for unmatched paths.
func (r *Router) NotFound(h http.Handler) {
	r.notFound = h
	r.mux.NotFound(h.ServeHTTP)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if !r.mounted.Load() {
		// chi builds its middleware chain on the first route, so an empty
		// mux would skip the globals.
		chainMiddlewares(r.notFound, r.globals).ServeHTTP(w, req)
		return
	}
	r.mux.ServeHTTP(w, req)
}

// chainMiddlewares chains middlewares for a handler (bottom-up)
func chainMiddlewares(handler http.Handler, middlewares []MiddlewaresType) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

func (r *Router) bodySizeLimitMiddleware() MiddlewaresType {
	maxSize := r.config.MaxRequestBodySize
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			req.Body = http.MaxBytesReader(w, req.Body, maxSize)
			next.ServeHTTP(w, req)
		})
	}
}
