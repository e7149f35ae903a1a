package router

import (
	"net/http"

	"soup_web/internal/auth"
	"soup_web/internal/handlers"
	"soup_web/internal/handlers/drafts"
	"soup_web/internal/handlers/pages"
	"soup_web/internal/handlers/preferences"
	"soup_web/internal/observability"
)

// Dependencies are the collaborators SetupRoutes wires into handlers.
type Dependencies struct {
	Handler *handlers.Handler
	Auth    *auth.Provider
	Live    http.Handler
	Metrics *observability.Metrics
	Health  *observability.HealthConfig

	// DraftLimit and LiveLimit throttle draft saves and socket upgrades.
	// DraftLimit runs after auth so signed-in users are keyed by id.
	// Nil means unlimited.
	DraftLimit MiddlewaresType
	LiveLimit  MiddlewaresType

	LoginPath string
	LivePath  string
}

// SetupRoutes registers every page, API, live and operational route.
func SetupRoutes(r *Router, d Dependencies) {
	page := pages.NewPageHandler(d.Handler)
	draft := drafts.NewDraftHandler(d.Handler)
	prefs := preferences.NewThemeHandler(d.Handler)

	r.RegisterGroup(&RouteGroup{
		Category:    "pages",
		Middlewares: []MiddlewaresType{d.Auth.Middleware},
		Routes: []*Route{
			{Method: http.MethodGet, Path: "/", HandlerFunc: page.Home, RouterType: RouterTypePage},
			{Method: http.MethodGet, Path: "/projects", HandlerFunc: page.Projects, RouterType: RouterTypePage},
			{
				Method:      http.MethodGet,
				Path:        "/projects/write",
				HandlerFunc: page.Write,
				Middlewares: []MiddlewaresType{d.Auth.RequireAuth(d.LoginPath)},
				RouterType:  RouterTypePage,
			},
			{Method: http.MethodGet, Path: d.LoginPath, HandlerFunc: page.Login, RouterType: RouterTypePage},
			{Method: http.MethodPost, Path: "/theme", HandlerFunc: prefs.Set, RouterType: RouterTypeAny},
		},
	})

	r.RegisterGroup(&RouteGroup{
		Prefix:      "/api",
		Category:    "api",
		Middlewares: []MiddlewaresType{d.Auth.Middleware, d.Auth.RequireAuthJSON},
		Routes: []*Route{
			{
				Method:      http.MethodPost,
				Path:        "/drafts",
				HandlerFunc: draft.Save,
				Middlewares: optional(d.DraftLimit),
				RouterType:  RouterTypeAPI,
			},
		},
	})

	r.NotFound(d.Auth.Middleware(http.HandlerFunc(page.NotFound)))

	r.Register(&Route{
		Category:    "live",
		Method:      http.MethodGet,
		Path:        d.LivePath,
		Handler:     d.Live,
		Middlewares: optional(d.LiveLimit),
	})

	r.RegisterGroup(&RouteGroup{
		Category: "operations",
		Routes: []*Route{
			{Method: http.MethodGet, Path: "/health", HandlerFunc: observability.HealthHandler(d.Health), RouterType: RouterTypeAPI},
			{Method: http.MethodGet, Path: "/ready", HandlerFunc: observability.ReadinessHandler(d.Health), RouterType: RouterTypeAPI},
			{Method: http.MethodGet, Path: "/live-check", HandlerFunc: observability.LivenessHandler(), RouterType: RouterTypeAPI},
			{Method: http.MethodGet, Path: "/metrics", Handler: d.Metrics.Handler(), RouterType: RouterTypeAPI},
		},
	})
}

func optional(mw MiddlewaresType) []MiddlewaresType {
	if mw == nil {
		return nil
	}
	return []MiddlewaresType{mw}
}
