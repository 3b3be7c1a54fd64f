package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"github.com/felixgeelhaar/orchestra-go/domain/cache"
	"github.com/felixgeelhaar/orchestra-go/domain/capability"
	"github.com/felixgeelhaar/orchestra-go/domain/middleware"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/logging"
)

// CachingConfig configures the caching middleware.
type CachingConfig struct {
	// TTL is the time-to-live for cached observations. Zero means no
	// expiration.
	TTL time.Duration
}

// Caching returns middleware that serves repeated dispatches of cacheable
// capabilities from the given cache backend. Only capabilities marked
// both cacheable and idempotent participate; failed results are never
// stored. Cache backend errors degrade to a normal dispatch.
func Caching(backend cache.Cache, cfg CachingConfig) middleware.Middleware {
	return func(next middleware.Handler) middleware.Handler {
		return func(ctx context.Context, execCtx *middleware.ExecutionContext) capability.Result {
			if backend == nil || !execCtx.Capability.Descriptor().CanCache() {
				return next(ctx, execCtx)
			}

			key := CacheKey(execCtx.Capability.Name(), execCtx.Params)

			if data, ok, err := backend.Get(ctx, key); err == nil && ok {
				var cached capability.Result
				if json.Unmarshal(data, &cached) == nil {
					cached.Cached = true
					// A cache hit costs nothing.
					cached.Cost = 0
					return cached
				}
			} else if err != nil {
				logging.Warn().
					Add(logging.Capability(execCtx.Capability.Name())).
					Add(logging.ErrorField(err)).
					Msg("cache read failed")
			}

			result := next(ctx, execCtx)
			if result.Failed() {
				return result
			}

			if data, err := json.Marshal(result); err == nil {
				if err := backend.Set(ctx, key, data, cfg.TTL); err != nil {
					logging.Warn().
						Add(logging.Capability(execCtx.Capability.Name())).
						Add(logging.ErrorField(err)).
						Msg("cache write failed")
				}
			}

			return result
		}
	}
}

// CacheKey derives a stable key for a dispatch from the capability name
// and its parameters. Parameters are serialized with sorted keys so
// logically identical actions hash identically.
func CacheKey(name string, params map[string]any) string {
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte(":"))
	h.Write(canonicalParams(params))
	return hex.EncodeToString(h.Sum(nil))
}

func canonicalParams(params map[string]any) []byte {
	if len(params) == 0 {
		return []byte("{}")
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf []byte
	buf = append(buf, '{')
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, _ := json.Marshal(k)
		vb, err := json.Marshal(params[k])
		if err != nil {
			vb = []byte("null")
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		buf = append(buf, vb...)
	}
	return append(buf, '}')
}
