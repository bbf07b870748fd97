package cache

import (
	"context"
	"time"

	"github.com/matzehuels/stackchart/pkg/observability"
)

// Instrumented reports hits, misses and writes of c to the registered
// cache hooks.
func Instrumented(c Cache) Cache {
	if c == nil {
		return NewNullCache()
	}
	return &instrumented{Cache: c}
}

type instrumented struct{ Cache }

// Get reports a hit or a miss for successful lookups.
func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, KeyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, KeyType(key))
		}
	}
	return data, hit, err
}

// Set reports the stored size of successful writes.
func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	}
	return err
}
