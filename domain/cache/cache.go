// Package cache defines the backend contract for the observation
// cache: dispatch results serialized by the caching middleware and
// keyed by capability name plus parameters.
package cache

import (
	"context"
	"time"
)

// Cache stores serialized observations. Backends live in
// infrastructure/storage; the middleware treats them interchangeably.
type Cache interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. A zero ttl stores without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear drops every entry owned by this cache.
	Clear(ctx context.Context) error
}

// Stats counts cache traffic since startup.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int64
}
