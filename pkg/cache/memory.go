package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryCache is an in-process cache bounded by entry count. When full, the
// least recently used entry is evicted. Entries expire after their own TTL
// or after the cache-wide maximum age, whichever comes first.
type MemoryCache struct {
	mu      sync.RWMutex
	entries *expirable.LRU[string, memEntry]
	closed  bool
	now     func() time.Time
}

type memEntry struct {
	data    []byte
	expires time.Time
}

// NewMemoryCache holds at most maxEntries entries, none older than maxAge.
// Zero disables either bound.
func NewMemoryCache(maxEntries int, maxAge time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: expirable.NewLRU[string, memEntry](max(maxEntries, 0), nil, maxAge),
		now:     time.Now,
	}
}

// Get retrieves a value from the cache and marks it as recently used.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, false, ErrClosed
	}
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && c.now().After(e.expires) {
		c.entries.Remove(key)
		return nil, false, nil
	}
	return e.data, true, nil
}

// Set stores a copy of data. A non-positive ttl keeps the entry until it
// is evicted or reaches the cache's maximum age.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	e := memEntry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.entries.Add(key, e)
	return nil
}

// Delete removes a value from the cache.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	c.entries.Remove(key)
	return nil
}

// Len returns the number of stored entries, including ones whose own TTL
// has passed but that were not read since.
func (c *MemoryCache) Len() int {
	return c.entries.Len()
}

// Close drops every entry. Later calls fail with [ErrClosed].
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.entries.Purge()
	return nil
}

var _ Cache = (*MemoryCache)(nil)
