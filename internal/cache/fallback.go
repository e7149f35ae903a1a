package cache

import (
	"context"
	"log/slog"
	"time"
)

// FallbackCache implements a cache with Redis primary and memory fallback
type FallbackCache struct {
	primary  Cache
	fallback Cache
	logger   *slog.Logger
}

// FallbackConfig holds fallback cache configuration
type FallbackConfig struct {
	// Redis configuration. Nil or an empty Addr means memory only.
	Redis *RedisConfig

	// Memory cache configuration
	Memory *Config

	// Logger for structured logging
	Logger *slog.Logger
}

// DefaultFallbackConfig returns a memory-only fallback configuration
func DefaultFallbackConfig() *FallbackConfig {
	return &FallbackConfig{
		Memory: DefaultConfig(),
	}
}

// NewFallbackCache creates a new fallback cache. A Redis connection failure
// is logged and the cache runs on memory alone.
func NewFallbackCache(ctx context.Context, config *FallbackConfig) *FallbackCache {
	if config == nil {
		config = DefaultFallbackConfig()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fc := &FallbackCache{
		fallback: NewMemoryCache(config.Memory),
		logger:   logger,
	}

	if config.Redis == nil || config.Redis.Addr == "" {
		logger.Info("redis not configured, using memory cache only")
		return fc
	}

	if config.Redis.Logger == nil {
		config.Redis.Logger = logger
	}
	redisCache, err := NewRedisCache(ctx, config.Redis)
	if err != nil {
		logger.Warn("redis cache unavailable, using memory cache only", "error", err)
		return fc
	}

	fc.primary = redisCache
	logger.Info("fallback cache initialized with redis primary")
	return fc
}

// newFallback wires two caches directly.
func newFallback(primary, fallback Cache, logger *slog.Logger) *FallbackCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackCache{primary: primary, fallback: fallback, logger: logger}
}

// Get retrieves a value from cache (primary first, then fallback)
func (fc *FallbackCache) Get(ctx context.Context, key string) ([]byte, error) {
	if fc.primary != nil {
		value, err := fc.primary.Get(ctx, key)
		if err == nil {
			return value, nil
		}

		// a miss is authoritative; only connection errors fall through
		if IsMiss(err) {
			return nil, err
		}

		fc.logger.Warn("primary cache get failed, trying fallback", "error", err, "key", key)
	}

	return fc.fallback.Get(ctx, key)
}

// Set stores a value in both caches
func (fc *FallbackCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var primaryErr error

	if fc.primary != nil {
		primaryErr = fc.primary.Set(ctx, key, value, ttl)
		if primaryErr != nil {
			fc.logger.Warn("primary cache set failed", "error", primaryErr, "key", key)
		}
	}

	// Always update fallback
	if err := fc.fallback.Set(ctx, key, value, ttl); err != nil {
		fc.logger.Error("fallback cache set failed", "error", err, "key", key)
		return err
	}

	return primaryErr
}

// Delete removes a value from both caches
func (fc *FallbackCache) Delete(ctx context.Context, key string) error {
	if fc.primary != nil {
		if err := fc.primary.Delete(ctx, key); err != nil {
			fc.logger.Warn("primary cache delete failed", "error", err, "key", key)
		}
	}

	return fc.fallback.Delete(ctx, key)
}

// Ping checks if the primary cache is accessible
func (fc *FallbackCache) Ping(ctx context.Context) error {
	if fc.primary != nil {
		return fc.primary.Ping(ctx)
	}
	return fc.fallback.Ping(ctx)
}

// Close closes both caches
func (fc *FallbackCache) Close() error {
	if fc.primary != nil {
		if err := fc.primary.Close(); err != nil {
			fc.logger.Warn("primary cache close failed", "error", err)
		}
	}
	return fc.fallback.Close()
}
