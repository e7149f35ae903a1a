package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache shares snapshots and buckets across instances.
type RedisCache struct {
	client *redis.Client
	config *Config
	logger *slog.Logger
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	*Config

	Addr     string
	Password string
	DB       int

	// Timeout bounds dialing and each command. Auth lookups sit on the
	// render path, so it stays short.
	Timeout time.Duration

	Logger *slog.Logger
}

// DefaultRedisConfig returns a local Redis with a 500ms command timeout.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Config:  DefaultConfig(),
		Addr:    "localhost:6379",
		Timeout: 500 * time.Millisecond,
	}
}

// NewRedisCache connects to Redis and verifies the connection with a ping.
func NewRedisCache(ctx context.Context, config *RedisConfig) (*RedisCache, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}
	if config.Config == nil {
		config.Config = DefaultConfig()
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultRedisConfig().Timeout
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		MaxRetries:   1,
		DialTimeout:  config.Timeout,
		ReadTimeout:  config.Timeout,
		WriteTimeout: config.Timeout,
	})

	ctx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		logger.Error("redis connection failed", "error", err, "addr", config.Addr)
		return nil, &CacheError{Op: "connect", Err: err}
	}

	logger.Info("redis cache initialized", "addr", config.Addr, "db", config.DB)
	return &RedisCache{client: client, config: config.Config, logger: logger}, nil
}

func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	key = rc.config.key(key)

	result, err := rc.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheNotFound
		}
		rc.logger.Error("redis get failed", "error", err, "key", key)
		return nil, &CacheError{Op: "get", Key: key, Err: err}
	}

	return result, nil
}

func (rc *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	key = rc.config.key(key)
	ttl = rc.config.ttl(ttl)
	if ttl < 0 {
		ttl = 0 // no expiry
	}

	if err := rc.client.Set(ctx, key, value, ttl).Err(); err != nil {
		rc.logger.Error("redis set failed", "error", err, "key", key)
		return &CacheError{Op: "set", Key: key, Err: err}
	}

	return nil
}

func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	key = rc.config.key(key)

	if err := rc.client.Del(ctx, key).Err(); err != nil {
		rc.logger.Error("redis delete failed", "error", err, "key", key)
		return &CacheError{Op: "delete", Key: key, Err: err}
	}

	return nil
}

func (rc *RedisCache) Ping(ctx context.Context) error {
	if err := rc.client.Ping(ctx).Err(); err != nil {
		return &CacheError{Op: "ping", Err: err}
	}
	return nil
}

func (rc *RedisCache) Close() error {
	return rc.client.Close()
}
