package observability

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"

	// RequestIDHeader is read from and echoed on every response.
	RequestIDHeader = "X-Request-ID"
)

// Incoming ids are only trusted when they look like ids.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestIDConfig holds configuration for request ID middleware
type RequestIDConfig struct {
	// Logger for structured logging (optional, uses slog.Default if nil)
	Logger *slog.Logger

	// Header name for request ID
	// Default: X-Request-ID
	Header string

	// Generator function to create request IDs
	// Default: uuid v4
	Generator func() string
}

// DefaultRequestIDConfig returns a default request ID configuration
func DefaultRequestIDConfig() *RequestIDConfig {
	return &RequestIDConfig{
		Header:    RequestIDHeader,
		Generator: uuid.NewString,
	}
}

// RequestID returns a middleware that adds request ID to context and response headers
func RequestID(config *RequestIDConfig) func(next http.Handler) http.Handler {
	if config == nil {
		config = DefaultRequestIDConfig()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	header := config.Header
	if header == "" {
		header = RequestIDHeader
	}
	generate := config.Generator
	if generate == nil {
		generate = uuid.NewString
	}

	logger.Debug("request ID middleware initialized", "header", header)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(header)
			if !requestIDPattern.MatchString(requestID) {
				requestID = generate()
			}

			w.Header().Set(header, requestID)
			next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), requestID)))
		})
	}
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithRequestID returns a context with the given request ID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// Logger returns logger annotated with the request id carried by ctx, if any.
func Logger(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if id := GetRequestID(ctx); id != "" {
		return logger.With("request_id", id)
	}
	return logger
}
