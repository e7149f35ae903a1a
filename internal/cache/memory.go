package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache keeps entries in process memory. It is the only store when
// Redis is not configured and the fallback when it is down.
type MemoryCache struct {
	config    *Config
	items     map[string]*memoryCacheItem
	mu        sync.RWMutex
	stopCh    chan struct{}
	closeOnce sync.Once
	now       func() time.Time
}

type memoryCacheItem struct {
	value      []byte
	expiration time.Time
	hasExpiry  bool
}

func (it *memoryCacheItem) expired(now time.Time) bool {
	return it.hasExpiry && now.After(it.expiration)
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(config *Config) *MemoryCache {
	if config == nil {
		config = DefaultConfig()
	}

	mc := &MemoryCache{
		config: config,
		items:  make(map[string]*memoryCacheItem),
		stopCh: make(chan struct{}),
		now:    time.Now,
	}

	// Start cleanup goroutine
	go mc.cleanupExpired(time.Minute)

	return mc
}

// Get retrieves a value from the cache
func (mc *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	key = mc.config.key(key)

	mc.mu.RLock()
	item, exists := mc.items[key]
	mc.mu.RUnlock()

	if !exists {
		return nil, ErrCacheNotFound
	}

	if item.expired(mc.now()) {
		mc.mu.Lock()
		delete(mc.items, key)
		mc.mu.Unlock()
		return nil, ErrCacheNotFound
	}

	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, nil
}

// Set stores a value in the cache with optional TTL
func (mc *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	key = mc.config.key(key)
	ttl = mc.config.ttl(ttl)

	stored := make([]byte, len(value))
	copy(stored, value)
	item := &memoryCacheItem{
		value:     stored,
		hasExpiry: ttl > 0,
	}

	if item.hasExpiry {
		item.expiration = mc.now().Add(ttl)
	}

	mc.mu.Lock()
	mc.items[key] = item
	mc.mu.Unlock()

	return nil
}

// Delete removes a value from the cache
func (mc *MemoryCache) Delete(ctx context.Context, key string) error {
	key = mc.config.key(key)

	mc.mu.Lock()
	delete(mc.items, key)
	mc.mu.Unlock()

	return nil
}

// Len counts live entries.
func (mc *MemoryCache) Len() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	now := mc.now()
	n := 0
	for _, item := range mc.items {
		if !item.expired(now) {
			n++
		}
	}
	return n
}

// Ping checks if the cache is accessible
func (mc *MemoryCache) Ping(ctx context.Context) error {
	return nil
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (mc *MemoryCache) Close() error {
	mc.closeOnce.Do(func() { close(mc.stopCh) })
	return nil
}

// cleanupExpired periodically removes expired items
func (mc *MemoryCache) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.removeExpiredItems()
		case <-mc.stopCh:
			return
		}
	}
}

func (mc *MemoryCache) removeExpiredItems() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := mc.now()
	for key, item := range mc.items {
		if item.expired(now) {
			delete(mc.items, key)
		}
	}
}
