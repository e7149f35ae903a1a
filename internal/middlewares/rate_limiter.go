package middlewares

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"soup_web/internal/auth"
	"soup_web/internal/cache"
	"soup_web/internal/config"
)

// RateLimitConfig holds configuration for the token bucket rate limiter.
type RateLimitConfig struct {
	// Cache holds bucket state. The fallback cache keeps limits shared
	// across instances when redis is up and local when it is not.
	Cache cache.Cache

	// Logger for structured logging (optional, uses slog.Default if nil)
	Logger *slog.Logger

	// Capacity is the maximum number of tokens in the bucket
	Capacity int

	// RefillRate is the number of tokens added per second
	RefillRate float64

	// Message returned when the limit is exceeded
	Message string

	// KeyGenerator picks the bucket for a request. Default: the signed-in
	// user, else the client IP.
	KeyGenerator func(r *http.Request) string

	// Skipper defines a function to skip middleware
	Skipper func(r *http.Request) bool

	// OnLimitReached is called when a request is rejected
	OnLimitReached func(r *http.Request, key string)
}

// TokenBucket is the stored state of one bucket.
type TokenBucket struct {
	Tokens     float64   `json:"tokens"`
	LastRefill time.Time `json:"last_refill"`
}

// BucketStore keeps token buckets in a cache.
type BucketStore struct {
	cache  cache.Cache
	prefix string
	now    func() time.Time
}

// NewBucketStore creates a store whose keys start with prefix.
func NewBucketStore(c cache.Cache, prefix string) *BucketStore {
	if prefix == "" {
		prefix = "rate_limit:"
	}
	return &BucketStore{cache: c, prefix: prefix, now: time.Now}
}

// Allow takes one token from key's bucket. retryAfter is set when the
// bucket is empty.
func (s *BucketStore) Allow(ctx context.Context, key string, capacity int, refillRate float64) (allowed bool, remaining int, retryAfter time.Duration, err error) {
	fullKey := s.prefix + key
	now := s.now()

	bucket := TokenBucket{Tokens: float64(capacity), LastRefill: now}
	data, err := s.cache.Get(ctx, fullKey)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &bucket); err != nil {
			return false, 0, 0, fmt.Errorf("decode bucket: %w", err)
		}
	case !cache.IsMiss(err):
		return false, 0, 0, err
	}

	elapsed := now.Sub(bucket.LastRefill).Seconds()
	if elapsed > 0 {
		bucket.Tokens = math.Min(float64(capacity), bucket.Tokens+elapsed*refillRate)
	}
	bucket.LastRefill = now

	allowed = bucket.Tokens >= 1
	if allowed {
		bucket.Tokens--
	} else {
		retryAfter = time.Duration((1 - bucket.Tokens) / refillRate * float64(time.Second))
	}

	// keep the key for twice a full refill
	ttl := time.Duration(float64(capacity) / refillRate * 2 * float64(time.Second))
	if ttl < time.Minute {
		ttl = time.Minute
	}
	encoded, err := json.Marshal(bucket)
	if err != nil {
		return false, 0, 0, fmt.Errorf("encode bucket: %w", err)
	}
	if err := s.cache.Set(ctx, fullKey, encoded, ttl); err != nil {
		return false, 0, 0, err
	}
	return allowed, int(bucket.Tokens), retryAfter, nil
}

// Reset empties key's bucket state.
func (s *BucketStore) Reset(ctx context.Context, key string) error {
	return s.cache.Delete(ctx, s.prefix+key)
}

// DefaultRateLimitConfig returns a limiter of 10 requests with one token
// back per second.
func DefaultRateLimitConfig(c cache.Cache) *RateLimitConfig {
	return &RateLimitConfig{
		Cache:        c,
		Capacity:     10,
		RefillRate:   1.0,
		Message:      "Too many requests, please slow down",
		KeyGenerator: defaultKeyGenerator,
	}
}

// defaultKeyGenerator limits signed-in users by id and everyone else by IP.
func defaultKeyGenerator(r *http.Request) string {
	if snap := auth.FromContext(r.Context()); snap.Authenticated && snap.UserID != "" {
		return "user:" + snap.UserID
	}
	return "ip:" + clientIP(r)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit returns a token bucket rate limiting middleware. A failing
// store lets the request through.
func RateLimit(cfg *RateLimitConfig) func(next http.Handler) http.Handler {
	if cfg == nil || cfg.Cache == nil {
		panic("middlewares: RateLimit needs a cache")
	}
	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = defaultKeyGenerator
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = 10
	}
	if cfg.RefillRate <= 0 {
		cfg.RefillRate = 1.0
	}
	if cfg.Message == "" {
		cfg.Message = "Too many requests, please slow down"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	store := NewBucketStore(cfg.Cache, "rate_limit:")

	logger.Debug("rate limiter middleware initialized",
		"capacity", cfg.Capacity,
		"refill_rate", cfg.RefillRate,
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skipper != nil && cfg.Skipper(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := cfg.KeyGenerator(r)
			allowed, remaining, retryAfter, err := store.Allow(r.Context(), key, cfg.Capacity, cfg.RefillRate)
			if err != nil {
				logger.Warn("rate limiter store error, allowing request",
					"path", r.URL.Path,
					"key", key,
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				logger.Warn("rate limit exceeded",
					"method", r.Method,
					"path", r.URL.Path,
					"key", key,
					"retry_after_seconds", seconds,
				)
				if cfg.OnLimitReached != nil {
					cfg.OnLimitReached(r, key)
				}

				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				config.RespondJSON(w, http.StatusTooManyRequests, map[string]any{
					"error":               "Too Many Requests",
					"message":             cfg.Message,
					"retry_after_seconds": seconds,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
