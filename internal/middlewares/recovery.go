package middlewares

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"soup_web/internal/config"
	"soup_web/internal/observability"
	"soup_web/internal/views"
)

// RecoveryConfig holds configuration for recovery middleware
type RecoveryConfig struct {
	// Logger for structured logging (optional, uses slog.Default if nil)
	Logger *slog.Logger

	// Skipper defines a function to skip middleware
	Skipper func(r *http.Request) bool

	// DisableStackTrace leaves the stack out of the log entry
	DisableStackTrace bool

	// Recovery function that handles the panic
	RecoveryHandler func(w http.ResponseWriter, r *http.Request, err any, stack []byte)

	// Development mode provides more detailed error responses
	Development bool
}

// DefaultRecoveryConfig returns a default recovery configuration
func DefaultRecoveryConfig() *RecoveryConfig {
	return &RecoveryConfig{
		RecoveryHandler: defaultRecoveryHandler,
	}
}

// DevelopmentRecoveryConfig returns a development-friendly recovery configuration
func DevelopmentRecoveryConfig() *RecoveryConfig {
	return &RecoveryConfig{
		RecoveryHandler: developmentRecoveryHandler,
		Development:     true,
	}
}

// wantsJSON reports whether the failed request should get a JSON body
// instead of the HTML error page.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// defaultRecoveryHandler answers API requests with a JSON error and pages
// with the HTML error page.
func defaultRecoveryHandler(w http.ResponseWriter, r *http.Request, err any, stack []byte) {
	if wantsJSON(r) {
		config.RespondJSON(w, http.StatusInternalServerError, map[string]any{
			"error":      "Internal Server Error",
			"message":    "An unexpected error occurred. Please try again later.",
			"timestamp":  time.Now().Unix(),
			"request_id": observability.GetRequestID(r.Context()),
		})
		return
	}
	views.RenderError(w, http.StatusInternalServerError, "잠시 후 다시 시도해 주세요.")
}

// developmentRecoveryHandler provides detailed error information for development
func developmentRecoveryHandler(w http.ResponseWriter, r *http.Request, err any, stack []byte) {
	if !wantsJSON(r) {
		views.RenderError(w, http.StatusInternalServerError, fmt.Sprintf("Panic: %v", err))
		return
	}
	config.RespondJSON(w, http.StatusInternalServerError, map[string]any{
		"error":      "Internal Server Error",
		"message":    fmt.Sprintf("Panic: %v", err),
		"stack":      string(stack),
		"method":     r.Method,
		"path":       r.URL.Path,
		"timestamp":  time.Now().Format(time.RFC3339),
		"request_id": observability.GetRequestID(r.Context()),
	})
}

// Recovery returns a recovery middleware that recovers from panics
func Recovery(cfg *RecoveryConfig) func(next http.Handler) http.Handler {
	if cfg == nil {
		cfg = DefaultRecoveryConfig()
	}
	if cfg.RecoveryHandler == nil {
		if cfg.Development {
			cfg.RecoveryHandler = developmentRecoveryHandler
		} else {
			cfg.RecoveryHandler = defaultRecoveryHandler
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("recovery middleware initialized",
		"development", cfg.Development,
		"disable_stack_trace", cfg.DisableStackTrace,
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skipper != nil && cfg.Skipper(r) {
				next.ServeHTTP(w, r)
				return
			}

			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					stack := debug.Stack()

					logAttrs := []any{
						"method", r.Method,
						"path", r.URL.Path,
						"client_ip", r.RemoteAddr,
						"user_agent", r.UserAgent(),
						"error", fmt.Sprintf("%v", err),
					}
					if !cfg.DisableStackTrace {
						logAttrs = append(logAttrs, "stack", string(stack))
					}
					observability.Logger(r.Context(), logger).Error("panic recovered", logAttrs...)

					cfg.RecoveryHandler(w, r, err, stack)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
