package auth

import (
	"context"
	"net/http"
	"net/url"

	"soup_web/internal/config"
	"soup_web/internal/layout"
)

type contextKey struct{}

// WithSnapshot returns a context carrying snap.
func WithSnapshot(ctx context.Context, snap layout.AuthSnapshot) context.Context {
	return context.WithValue(ctx, contextKey{}, snap)
}

// FromContext returns the request's snapshot; unauthenticated when absent.
func FromContext(ctx context.Context) layout.AuthSnapshot {
	snap, _ := ctx.Value(contextKey{}).(layout.AuthSnapshot)
	return snap
}

// Middleware resolves the snapshot once per request.
func (p *Provider) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := p.Snapshot(r.Context(), r)
		next.ServeHTTP(w, r.WithContext(WithSnapshot(r.Context(), snap)))
	})
}

// RequireAuth sends unauthenticated page requests to the login prompt.
// Before giving up it revalidates once, so a pending or failed fetch does
// not lock out a signed-in user.
func (p *Provider) RequireAuth(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := FromContext(r.Context())
			if !snap.Authenticated {
				snap = p.Revalidate(r.Context(), r.Header.Get("Cookie"))
			}
			if !snap.Authenticated {
				target := loginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSnapshot(r.Context(), snap)))
		})
	}
}

// RequireAuthJSON is RequireAuth for JSON endpoints.
func (p *Provider) RequireAuthJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := FromContext(r.Context())
		if !snap.Authenticated {
			snap = p.Revalidate(r.Context(), r.Header.Get("Cookie"))
		}
		if !snap.Authenticated {
			config.RespondUnauthorized(w, "login required")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSnapshot(r.Context(), snap)))
	})
}
