package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/stackchart/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "layout:a", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout:a")
	if err != nil || !hit || string(data) != "payload" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Set(ctx, "layout:old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "layout:old"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("layout:old")); !os.IsNotExist(err) {
		t.Error("expired entry not removed")
	}

	if err := os.WriteFile(c.path("layout:a"), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "layout:a"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v", hit, err)
	}

	if err := c.Set(ctx, "artifact:b", []byte("y"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "artifact:b"); hit {
		t.Error("entry survived Clear")
	}
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of a missing key: %v", err)
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache(2, 0)
	c.now = func() time.Time { return now }

	buf := []byte("one")
	if err := c.Set(ctx, "a", buf, 0); err != nil {
		t.Fatal(err)
	}
	buf[0] = 'X'
	if data, hit, _ := c.Get(ctx, "a"); !hit || string(data) != "one" {
		t.Errorf("Get(a) = %q, %v; stored bytes must be copied", data, hit)
	}

	_ = c.Set(ctx, "b", []byte("two"), time.Hour)
	_, _, _ = c.Get(ctx, "a")
	_ = c.Set(ctx, "c", []byte("three"), time.Minute)
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("least recently used entry was not evicted")
	}
	if _, hit, _ := c.Get(ctx, "a"); !hit {
		t.Error("recently read entry was evicted")
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "c"); hit {
		t.Error("entry returned after its ttl")
	}
	if _, hit, _ := c.Get(ctx, "a"); !hit {
		t.Error("entry without ttl expired")
	}

	_ = c.Close()
	if _, _, err := c.Get(ctx, "a"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after Close = %v, want ErrClosed", err)
	}
	if err := c.Set(ctx, "a", nil, 0); !errors.Is(err, ErrClosed) {
		t.Errorf("Set after Close = %v, want ErrClosed", err)
	}
}

func TestMemoryCacheMaxAge(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0, 20*time.Millisecond)
	defer c.Close()

	_ = c.Set(ctx, "layout:x", []byte("1"), 0)
	if _, hit, _ := c.Get(ctx, "layout:x"); !hit {
		t.Fatal("fresh entry missing")
	}
	time.Sleep(60 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "layout:x"); hit {
		t.Error("entry outlived the cache's maximum age")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	ds := k.DatasetHash([]byte(`{"rows":[]}`))

	lk1 := k.LayoutKey(ds, LayoutKeyOpts{ConfigHash: "c1", Width: 800, Height: 600})
	lk2 := k.LayoutKey(ds, LayoutKeyOpts{ConfigHash: "c1", Width: 640, Height: 600})
	if lk1 == lk2 {
		t.Error("canvas size must change the layout key")
	}
	if !strings.HasPrefix(lk1, "layout:") {
		t.Errorf("LayoutKey = %s", lk1)
	}

	ak1 := k.ArtifactKey(lk1, ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey(lk1, ArtifactKeyOpts{Format: "png", Scale: 2})
	if ak1 == ak2 {
		t.Error("format must change the artifact key")
	}
	if KeyType(ak1) != "artifact" || KeyType(lk1) != "layout" || KeyType("x") != "other" {
		t.Error("KeyType misclassified a key")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "tenant:acme:")
	plain := NewDefaultKeyer()

	if scoped.DatasetHash([]byte("d")) != plain.DatasetHash([]byte("d")) {
		t.Error("dataset hashes must not be scoped")
	}
	lk := scoped.LayoutKey("h", LayoutKeyOpts{})
	if lk != "tenant:acme:"+plain.LayoutKey("h", LayoutKeyOpts{}) {
		t.Errorf("LayoutKey = %s", lk)
	}
	if KeyType(lk) != "layout" {
		t.Errorf("KeyType(%s) = %s", lk, KeyType(lk))
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (h *countingHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestInstrumented(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	c := Instrumented(NewMemoryCache(0, 0))
	_, _, _ = c.Get(ctx, "layout:x")
	_ = c.Set(ctx, "layout:x", []byte("1"), 0)
	_, _, _ = c.Get(ctx, "layout:x")

	if hooks.hits != 1 || hooks.misses != 1 || hooks.sets != 1 {
		t.Errorf("hits=%d misses=%d sets=%d", hooks.hits, hooks.misses, hooks.sets)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	base := errors.New("connection reset")
	err := Retryable(base)
	if !IsRetryable(err) || !errors.Is(err, base) {
		t.Error("wrapped error should be retryable and unwrap to its cause")
	}
	if err.Error() != base.Error() {
		t.Errorf("Error message should be preserved: %s", err)
	}
	if IsRetryable(ErrClosed) {
		t.Error("plain errors are not retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = time.Millisecond
	ctx := context.Background()

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return ErrClosed
	})
	if err != ErrClosed || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(errors.New("timeout"))
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(errors.New("down"))
	})
	if !IsRetryable(err) || calls != 3 {
		t.Errorf("exhausted: err=%v calls=%d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryWithBackoff(ctx, func() error {
		return Retryable(errors.New("down"))
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
