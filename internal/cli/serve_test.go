package cli

import (
	"context"
	"testing"

	"github.com/matzehuels/stackchart/pkg/cache"
)

func TestOpenBackend(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	ctx := context.Background()

	tests := []struct {
		backend string
		check   func(cache.Cache) bool
	}{
		{backendMemory, func(c cache.Cache) bool { _, ok := c.(*cache.MemoryCache); return ok }},
		{backendFile, func(c cache.Cache) bool { _, ok := c.(*cache.FileCache); return ok }},
		{backendNone, func(c cache.Cache) bool { _, ok := c.(*cache.NullCache); return ok }},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			c, err := openBackend(ctx, &serveOpts{backend: tt.backend, entries: 8})
			if err != nil {
				t.Fatalf("openBackend: %v", err)
			}
			defer c.Close()
			if !tt.check(c) {
				t.Errorf("backend %s opened %T", tt.backend, c)
			}
		})
	}
}

func TestOpenBackendErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := openBackend(ctx, &serveOpts{backend: "memcached"}); err == nil {
		t.Error("unknown backend accepted")
	}
	if _, err := openBackend(ctx, &serveOpts{backend: backendRedis, redisURL: "redis://127.0.0.1:1/0"}); err == nil {
		t.Error("unreachable redis accepted")
	}
}
