package middleware_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/orchestra-go/domain/capability"
	dommw "github.com/felixgeelhaar/orchestra-go/domain/middleware"
	"github.com/felixgeelhaar/orchestra-go/domain/telemetry"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/middleware"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/observability"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/storage/memory"
)

func cacheableCapability(t *testing.T, calls *atomic.Int32) capability.Capability {
	t.Helper()

	return capability.NewBuilder("web_search").
		WithDescription("Searches the public internet.").
		WithParameter("query", "string", "The search query", true).
		Idempotent().
		Cacheable().
		WithHandler(func(_ context.Context, params map[string]any) (capability.Result, error) {
			calls.Add(1)
			return capability.NewResult("results for " + params["query"].(string)).WithCost(0.01), nil
		}).
		MustBuild()
}

func execCtx(c capability.Capability, params map[string]any) *dommw.ExecutionContext {
	return &dommw.ExecutionContext{
		QueryID:    "query-1",
		Turn:       1,
		Capability: c,
		Params:     params,
	}
}

func directHandler(ctx context.Context, execCtx *dommw.ExecutionContext) capability.Result {
	return execCtx.Capability.Execute(ctx, execCtx.Params)
}

func TestCachingServesRepeatDispatches(t *testing.T) {
	var calls atomic.Int32
	c := cacheableCapability(t, &calls)
	backend := memory.NewCache()

	handler := middleware.Caching(backend, middleware.CachingConfig{TTL: time.Minute})(directHandler)
	params := map[string]any{"query": "go generics"}

	first := handler(context.Background(), execCtx(c, params))
	if first.Failed() || first.Cached {
		t.Fatalf("first dispatch = %+v", first)
	}
	if first.Cost != 0.01 {
		t.Errorf("first cost = %f", first.Cost)
	}

	second := handler(context.Background(), execCtx(c, params))
	if !second.Cached {
		t.Fatal("second dispatch should be served from cache")
	}
	if second.Cost != 0 {
		t.Errorf("cache hit should cost nothing, got %f", second.Cost)
	}
	if second.Output != first.Output {
		t.Errorf("cached output = %v", second.Output)
	}
	if calls.Load() != 1 {
		t.Errorf("handler called %d times, want 1", calls.Load())
	}
}

func TestCachingDistinguishesParams(t *testing.T) {
	var calls atomic.Int32
	c := cacheableCapability(t, &calls)
	backend := memory.NewCache()

	handler := middleware.Caching(backend, middleware.CachingConfig{})(directHandler)

	handler(context.Background(), execCtx(c, map[string]any{"query": "first"}))
	handler(context.Background(), execCtx(c, map[string]any{"query": "second"}))

	if calls.Load() != 2 {
		t.Errorf("handler called %d times, want 2", calls.Load())
	}
}

func TestCachingSkipsNonCacheable(t *testing.T) {
	var calls atomic.Int32
	c := capability.NewBuilder("python_sandbox").
		WithDescription("Runs code.").
		WithHandler(func(context.Context, map[string]any) (capability.Result, error) {
			calls.Add(1)
			return capability.NewResult("ran"), nil
		}).
		MustBuild()

	handler := middleware.Caching(memory.NewCache(), middleware.CachingConfig{})(directHandler)

	handler(context.Background(), execCtx(c, nil))
	handler(context.Background(), execCtx(c, nil))

	if calls.Load() != 2 {
		t.Errorf("non-cacheable capability called %d times, want 2", calls.Load())
	}
}

func TestCachingNeverStoresFailures(t *testing.T) {
	var calls atomic.Int32
	c := capability.NewBuilder("flaky").
		WithDescription("fails once").
		Idempotent().
		Cacheable().
		WithHandler(func(context.Context, map[string]any) (capability.Result, error) {
			if calls.Add(1) == 1 {
				return capability.NewErrorResult("boom"), nil
			}
			return capability.NewResult("ok"), nil
		}).
		MustBuild()

	handler := middleware.Caching(memory.NewCache(), middleware.CachingConfig{})(directHandler)

	first := handler(context.Background(), execCtx(c, nil))
	if !first.Failed() {
		t.Fatal("first dispatch should fail")
	}

	second := handler(context.Background(), execCtx(c, nil))
	if second.Failed() || second.Cached {
		t.Errorf("second dispatch = %+v; failures must not be cached", second)
	}
}

func TestCacheKeyStable(t *testing.T) {
	a := middleware.CacheKey("web_search", map[string]any{"query": "x", "num_results": 3})
	b := middleware.CacheKey("web_search", map[string]any{"num_results": 3, "query": "x"})
	if a != b {
		t.Error("key should not depend on map iteration order")
	}

	c := middleware.CacheKey("web_search", map[string]any{"query": "y", "num_results": 3})
	if a == c {
		t.Error("different params should produce different keys")
	}
	d := middleware.CacheKey("local_search", map[string]any{"query": "x", "num_results": 3})
	if a == d {
		t.Error("different capabilities should produce different keys")
	}
}

func TestLoggingPassesThrough(t *testing.T) {
	var calls atomic.Int32
	c := cacheableCapability(t, &calls)

	handler := middleware.Logging(middleware.LoggingConfig{LogOutput: true})(directHandler)
	result := handler(context.Background(), execCtx(c, map[string]any{"query": "q"}))

	if result.Failed() {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if calls.Load() != 1 {
		t.Errorf("handler called %d times", calls.Load())
	}
}

func TestTracingRecordsSpan(t *testing.T) {
	var calls atomic.Int32
	c := cacheableCapability(t, &calls)

	// The noop tracer satisfies the contract; this exercises the span
	// lifecycle without an exporter.
	handler := middleware.Tracing(observability.NewNoopTracer())(directHandler)
	result := handler(context.Background(), execCtx(c, map[string]any{"query": "q"}))

	if result.Failed() {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
}

func TestMetricsRecordsDispatch(t *testing.T) {
	var calls atomic.Int32
	c := cacheableCapability(t, &calls)

	handler := middleware.Metrics(observability.NewNoopMeter())(directHandler)
	result := handler(context.Background(), execCtx(c, map[string]any{"query": "q"}))

	if result.Failed() {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
}

func TestChainOrder(t *testing.T) {
	var calls atomic.Int32
	c := cacheableCapability(t, &calls)
	backend := memory.NewCache()

	chain := dommw.Chain(
		middleware.Logging(middleware.LoggingConfig{}),
		middleware.Caching(backend, middleware.CachingConfig{}),
	)
	handler := chain(directHandler)
	params := map[string]any{"query": "chained"}

	handler(context.Background(), execCtx(c, params))
	second := handler(context.Background(), execCtx(c, params))

	if !second.Cached {
		t.Error("chained caching should still serve from cache")
	}
	if calls.Load() != 1 {
		t.Errorf("handler called %d times, want 1", calls.Load())
	}
}

var _ telemetry.Tracer = observability.NewNoopTracer()
