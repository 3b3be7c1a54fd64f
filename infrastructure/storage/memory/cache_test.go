package memory_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/orchestra-go/domain/cache"
	"github.com/felixgeelhaar/orchestra-go/domain/capability"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/storage/memory"
)

// observation marshals a dispatch result the way the caching middleware
// stores it.
func observation(t *testing.T, output string) []byte {
	t.Helper()
	data, err := json.Marshal(capability.NewResult(output))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestCacheRoundTrip(t *testing.T) {
	t.Parallel()

	c := memory.NewCache()
	ctx := context.Background()
	stored := observation(t, "three results about golang")

	if err := c.Set(ctx, "web_search:golang", stored, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := c.Get(ctx, "web_search:golang")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}

	var result capability.Result
	if err := json.Unmarshal(got, &result); err != nil {
		t.Fatalf("stored observation no longer unmarshals: %v", err)
	}
	if result.Output != "three results about golang" {
		t.Errorf("Output = %v", result.Output)
	}
}

func TestCacheMiss(t *testing.T) {
	t.Parallel()

	c := memory.NewCache()

	_, ok, err := c.Get(context.Background(), "never-stored")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected miss")
	}
}

func TestCacheExpiry(t *testing.T) {
	t.Parallel()

	c := memory.NewCache()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("v"), 20*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "key"); !ok {
		t.Fatal("entry should be live before the TTL elapses")
	}

	time.Sleep(30 * time.Millisecond)

	if _, ok, _ := c.Get(ctx, "key"); ok {
		t.Error("entry should have expired")
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c := memory.NewCache(memory.WithCapacity(2))
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)

	// Touch "a" so "b" becomes the eviction candidate.
	if _, ok, _ := c.Get(ctx, "a"); !ok {
		t.Fatal("a should be present")
	}

	_ = c.Set(ctx, "c", []byte("3"), 0)

	if _, ok, _ := c.Get(ctx, "a"); !ok {
		t.Error("recently used entry was evicted")
	}
	if _, ok, _ := c.Get(ctx, "b"); ok {
		t.Error("least recently used entry survived")
	}
	if _, ok, _ := c.Get(ctx, "c"); !ok {
		t.Error("new entry missing")
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	t.Parallel()

	c := memory.NewCache()
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)

	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Error("deleted entry still present")
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if stats := c.Stats(); stats.Entries != 0 {
		t.Errorf("Entries = %d after Clear", stats.Entries)
	}
}

func TestCacheRejectsEmptyKey(t *testing.T) {
	t.Parallel()

	c := memory.NewCache()

	err := c.Set(context.Background(), "", []byte("v"), 0)
	if !errors.Is(err, cache.ErrInvalidKey) {
		t.Errorf("err = %v, want ErrInvalidKey", err)
	}
}

func TestCacheHonorsContext(t *testing.T) {
	t.Parallel()

	c := memory.NewCache()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Set(ctx, "key", []byte("v"), 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Set err = %v", err)
	}
	if _, _, err := c.Get(ctx, "key"); !errors.Is(err, context.Canceled) {
		t.Errorf("Get err = %v", err)
	}
}

func TestCacheReturnsCopies(t *testing.T) {
	t.Parallel()

	c := memory.NewCache()
	ctx := context.Background()

	_ = c.Set(ctx, "key", []byte("original"), 0)

	got, _, _ := c.Get(ctx, "key")
	got[0] = 'X'

	again, _, _ := c.Get(ctx, "key")
	if string(again) != "original" {
		t.Errorf("stored value mutated through the returned slice: %q", again)
	}
}

func TestCacheCleanupSweepsExpired(t *testing.T) {
	t.Parallel()

	c := memory.NewCache()
	ctx := context.Background()

	_ = c.Set(ctx, "short1", []byte("v"), 10*time.Millisecond)
	_ = c.Set(ctx, "short2", []byte("v"), 10*time.Millisecond)
	_ = c.Set(ctx, "keep", []byte("v"), 0)

	time.Sleep(20 * time.Millisecond)

	if removed := c.Cleanup(); removed != 2 {
		t.Errorf("Cleanup removed %d, want 2", removed)
	}
	if _, ok, _ := c.Get(ctx, "keep"); !ok {
		t.Error("permanent entry removed by Cleanup")
	}
}

func TestCacheStats(t *testing.T) {
	t.Parallel()

	c := memory.NewCache()
	ctx := context.Background()

	_ = c.Set(ctx, "key", []byte("v"), 0)
	_, _, _ = c.Get(ctx, "key")
	_, _, _ = c.Get(ctx, "absent")

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Entries != 1 {
		t.Errorf("Stats = %+v", stats)
	}
}
