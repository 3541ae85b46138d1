package linkmlio

import (
	"context"
	"sync"
	"time"
)

// InMemoryCache is the default linkml.CacheBackend: a process-local,
// mutex-guarded map with per-entry TTL expiry. Grounded on cache.go's
// ValidatorCache shape (RWMutex-guarded map), generalized to a plain
// byte-value store for cross-process-shaped callers that only need an
// in-process stand-in (e.g. tests, or a single-node deployment).
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheItem
}

type cacheItem struct {
	value   []byte
	expires time.Time // zero means no expiry
}

// NewInMemoryCache returns an empty InMemoryCache.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{entries: make(map[string]cacheItem)}
}

func (c *InMemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	item, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !item.expires.IsZero() && time.Now().After(item.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return item.value, true, nil
}

func (c *InMemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = cacheItem{value: value, expires: expires}
	c.mu.Unlock()
	return nil
}

func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}
