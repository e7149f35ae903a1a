package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(DefaultConfig())
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), 0))
	got, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, mc.Delete(ctx, "k"))
	_, err = mc.Get(ctx, "k")
	assert.True(t, IsMiss(err))
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(DefaultConfig())
	defer mc.Close()

	now := time.Unix(1000, 0)
	mc.now = func() time.Time { return now }

	require.NoError(t, mc.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, mc.Set(ctx, "forever", []byte("2"), -1))
	assert.Equal(t, 2, mc.Len())

	now = now.Add(2 * time.Second)
	_, err := mc.Get(ctx, "short")
	assert.ErrorIs(t, err, errKeyNotFound)
	_, err = mc.Get(ctx, "forever")
	assert.NoError(t, err)
	assert.Equal(t, 1, mc.Len())
}

func TestMemoryCache_CopiesValues(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(nil)
	defer mc.Close()

	buf := []byte("abc")
	require.NoError(t, mc.Set(ctx, "k", buf, 0))
	buf[0] = 'x'

	got, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

type brokenCache struct{}

var errDown = errors.New("connection refused")

func (brokenCache) Get(context.Context, string) ([]byte, error) {
	return nil, &CacheError{Op: "get", Err: errDown}
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return &CacheError{Op: "set", Err: errDown}
}
func (brokenCache) Delete(context.Context, string) error { return nil }
func (brokenCache) Ping(context.Context) error { return &CacheError{Op: "ping", Err: errDown} }
func (brokenCache) Close() error               { return nil }

func TestFallbackCache_PrimaryErrorsFallThrough(t *testing.T) {
	ctx := context.Background()
	memory := NewMemoryCache(nil)
	fc := newFallback(brokenCache{}, memory, nil)
	defer fc.Close()

	err := fc.Set(ctx, "k", []byte("v"), 0)
	assert.ErrorIs(t, err, errDown)

	got, err := fc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	assert.ErrorIs(t, fc.Ping(ctx), errDown)
}

func TestFallbackCache_PrimaryMissIsAuthoritative(t *testing.T) {
	ctx := context.Background()
	primary := NewMemoryCache(nil)
	secondary := NewMemoryCache(nil)
	require.NoError(t, secondary.Set(ctx, "k", []byte("stale"), 0))

	fc := newFallback(primary, secondary, nil)
	defer fc.Close()

	_, err := fc.Get(ctx, "k")
	assert.True(t, IsMiss(err))
}

func TestNewFallbackCache_MemoryOnly(t *testing.T) {
	fc := NewFallbackCache(context.Background(), &FallbackConfig{Memory: DefaultConfig()})
	defer fc.Close()

	assert.Nil(t, fc.primary, "no redis configured")
	assert.NoError(t, fc.Ping(context.Background()))
}

func TestCacheError(t *testing.T) {
	err := &CacheError{Op: "set", Key: "soup:auth", Err: errDown}
	assert.Equal(t, "cache set soup:auth failed: connection refused", err.Error())
	assert.ErrorIs(t, err, errDown)
}
