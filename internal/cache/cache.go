// Package cache holds the short-lived byte entries behind auth snapshots and
// rate limit buckets: Redis when configured, process memory otherwise.
package cache

import (
	"context"
	"errors"
	"time"
)

// Cache is the byte store auth snapshots and rate buckets live in.
type Cache interface {
	// Get returns ErrCacheNotFound for a missing or expired key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value. A zero ttl means the configured default, a
	// negative one means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	// Ping backs the readiness check.
	Ping(ctx context.Context) error

	Close() error
}

// Config is shared by both backends.
type Config struct {
	DefaultTTL time.Duration
	Prefix     string
}

// DefaultConfig returns a one minute TTL under the "soup:" prefix.
func DefaultConfig() *Config {
	return &Config{
		DefaultTTL: time.Minute,
		Prefix:     "soup:",
	}
}

// CacheError wraps a backend failure with the operation and key.
type CacheError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheError) Error() string {
	if e.Key != "" {
		return "cache " + e.Op + " " + e.Key + " failed: " + e.Err.Error()
	}
	return "cache " + e.Op + " failed: " + e.Err.Error()
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

var (
	errKeyNotFound = errors.New("key not found")
	errUnavailable = errors.New("cache unavailable")

	ErrCacheNotFound    = &CacheError{Op: "get", Err: errKeyNotFound}
	ErrCacheUnavailable = &CacheError{Op: "connection", Err: errUnavailable}
)

// IsMiss reports whether err means the key was absent, as opposed to the
// cache being unreachable.
func IsMiss(err error) bool {
	return errors.Is(err, errKeyNotFound)
}

func (c *Config) key(k string) string {
	return c.Prefix + k
}

func (c *Config) ttl(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return c.DefaultTTL
	}
	return ttl
}
