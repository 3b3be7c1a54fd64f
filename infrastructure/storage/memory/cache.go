package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/felixgeelhaar/orchestra-go/domain/cache"
)

const defaultCacheCapacity = 1000

// Cache is the in-memory observation cache. Entries expire lazily on
// read; when the entry count reaches capacity the least recently used
// entry is evicted to make room.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	cap     int
	seq     uint64
	hits    int64
	misses  int64
}

type cacheEntry struct {
	value   []byte
	expires time.Time
	used    uint64
}

func (e *cacheEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// CacheOption configures the cache.
type CacheOption func(*Cache)

// WithCapacity bounds the number of entries.
func WithCapacity(n int) CacheOption {
	return func(c *Cache) {
		if n > 0 {
			c.cap = n
		}
	}
}

// NewCache creates an in-memory observation cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		entries: make(map[string]*cacheEntry),
		cap:     defaultCacheCapacity,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get implements cache.Cache.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.expired(time.Now()) {
		if ok {
			delete(c.entries, key)
		}
		c.misses++
		return nil, false, nil
	}

	c.seq++
	e.used = c.seq
	c.hits++
	return slices.Clone(e.value), true, nil
}

// Set implements cache.Cache.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return cache.ErrInvalidKey
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.cap {
		c.evictOldest()
	}

	c.seq++
	e := &cacheEntry{value: slices.Clone(value), used: c.seq}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

// Delete implements cache.Cache.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Clear implements cache.Cache.
func (c *Cache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	return nil
}

// Cleanup sweeps expired entries and reports how many were removed.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Stats reports cache traffic.
func (c *Cache) Stats() cache.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return cache.Stats{
		Hits:    c.hits,
		Misses:  c.misses,
		Entries: int64(len(c.entries)),
	}
}

// evictOldest removes the entry with the lowest use sequence. Caller
// holds the lock.
func (c *Cache) evictOldest() {
	var victim string
	var oldest uint64
	first := true
	for key, e := range c.entries {
		if first || e.used < oldest {
			victim, oldest = key, e.used
			first = false
		}
	}
	if !first {
		delete(c.entries, victim)
	}
}

var _ cache.Cache = (*Cache)(nil)
