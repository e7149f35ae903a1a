package middlewares

import (
	"log/slog"
	"net/http"
	"strconv"
)

// SecurityConfig holds configuration for security headers middleware
type SecurityConfig struct {
	// Logger for structured logging (optional, uses slog.Default if nil)
	Logger *slog.Logger

	// ContentTypeNosniff prevents browsers from MIME-sniffing
	// Default: "nosniff"
	ContentTypeNosniff string

	// XFrameOptions prevents clickjacking attacks
	// Default: "DENY"
	XFrameOptions string

	// HSTSMaxAge sets HTTP Strict Transport Security max age, sent over TLS only
	// Default: 31536000 (1 year)
	HSTSMaxAge int

	// HSTSIncludeSubdomains includes subdomains in HSTS policy
	HSTSIncludeSubdomains bool

	// ContentSecurityPolicy sets CSP header. The shell loads icon fonts
	// from Google and the editor embeds YouTube players.
	ContentSecurityPolicy string

	// ReferrerPolicy controls referrer information
	// Default: "strict-origin-when-cross-origin"
	ReferrerPolicy string

	// PermissionsPolicy controls browser features
	PermissionsPolicy string

	// CrossOriginOpenerPolicy controls cross-origin windows
	// Default: "same-origin"
	CrossOriginOpenerPolicy string

	// Skipper defines a function to skip middleware
	Skipper func(r *http.Request) bool
}

const defaultCSP = "default-src 'self'; " +
	"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com; " +
	"font-src 'self' https://fonts.gstatic.com; " +
	"img-src 'self' data: https:; " +
	"frame-src https://www.youtube.com; " +
	"connect-src 'self'; " +
	"object-src 'none'; frame-ancestors 'none'; base-uri 'self'"

// DefaultSecurityConfig returns a default security configuration
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		ContentTypeNosniff:      "nosniff",
		XFrameOptions:           "DENY",
		HSTSMaxAge:              31536000, // 1 year
		ContentSecurityPolicy:   defaultCSP,
		ReferrerPolicy:          "strict-origin-when-cross-origin",
		PermissionsPolicy:       "camera=(), geolocation=(), microphone=(), payment=(), usb=()",
		CrossOriginOpenerPolicy: "same-origin",
	}
}

// Security returns a middleware that sets security headers
func Security(config *SecurityConfig) func(next http.Handler) http.Handler {
	if config == nil {
		config = DefaultSecurityConfig()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("security headers middleware initialized",
		"hsts_max_age", config.HSTSMaxAge,
		"hsts_include_subdomains", config.HSTSIncludeSubdomains,
		"x_frame_options", config.XFrameOptions,
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.Skipper != nil && config.Skipper(r) {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			if config.ContentTypeNosniff != "" {
				h.Set("X-Content-Type-Options", config.ContentTypeNosniff)
			}
			if config.XFrameOptions != "" {
				h.Set("X-Frame-Options", config.XFrameOptions)
			}

			// Strict-Transport-Security (only for HTTPS)
			if r.TLS != nil && config.HSTSMaxAge > 0 {
				value := "max-age=" + strconv.Itoa(config.HSTSMaxAge)
				if config.HSTSIncludeSubdomains {
					value += "; includeSubDomains"
				}
				h.Set("Strict-Transport-Security", value)
			}

			if config.ContentSecurityPolicy != "" {
				h.Set("Content-Security-Policy", config.ContentSecurityPolicy)
			}
			if config.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", config.ReferrerPolicy)
			}
			if config.PermissionsPolicy != "" {
				h.Set("Permissions-Policy", config.PermissionsPolicy)
			}
			if config.CrossOriginOpenerPolicy != "" {
				h.Set("Cross-Origin-Opener-Policy", config.CrossOriginOpenerPolicy)
			}

			next.ServeHTTP(w, r)
		})
	}
}
