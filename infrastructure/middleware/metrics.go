package middleware

import (
	"context"

	"github.com/felixgeelhaar/orchestra-go/domain/capability"
	"github.com/felixgeelhaar/orchestra-go/domain/middleware"
	"github.com/felixgeelhaar/orchestra-go/domain/telemetry"
)

// Metrics returns middleware that records dispatch counts, failures,
// latency, and cost per capability.
func Metrics(meter telemetry.Meter) middleware.Middleware {
	if meter == nil {
		return middleware.Noop()
	}

	dispatches := meter.Counter("orchestra.dispatches",
		telemetry.WithDescription("Total capability dispatches"))
	failures := meter.Counter("orchestra.dispatch.failures",
		telemetry.WithDescription("Failed capability dispatches"))
	cacheHits := meter.Counter("orchestra.dispatch.cache_hits",
		telemetry.WithDescription("Dispatches served from cache"))
	latency := meter.Histogram("orchestra.dispatch.latency",
		telemetry.WithDescription("Capability dispatch latency"),
		telemetry.WithUnit("ms"))
	cost := meter.Histogram("orchestra.dispatch.cost",
		telemetry.WithDescription("Capability dispatch cost"),
		telemetry.WithUnit("USD"))

	return func(next middleware.Handler) middleware.Handler {
		return func(ctx context.Context, execCtx *middleware.ExecutionContext) capability.Result {
			result := next(ctx, execCtx)

			attrs := []telemetry.Attribute{
				telemetry.String("capability", execCtx.Capability.Name()),
			}

			dispatches.Add(ctx, 1, attrs...)
			if result.Failed() {
				failures.Add(ctx, 1, attrs...)
			}
			if result.Cached {
				cacheHits.Add(ctx, 1, attrs...)
			}
			latency.Record(ctx, float64(result.Latency.Milliseconds()), attrs...)
			if result.Cost > 0 {
				cost.Record(ctx, result.Cost, attrs...)
			}

			return result
		}
	}
}
