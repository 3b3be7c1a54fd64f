package middleware

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/orchestra-go/domain/capability"
	"github.com/felixgeelhaar/orchestra-go/domain/middleware"
	"github.com/felixgeelhaar/orchestra-go/domain/telemetry"
)

// Tracing returns middleware that wraps each dispatch in a span.
func Tracing(tracer telemetry.Tracer) middleware.Middleware {
	return func(next middleware.Handler) middleware.Handler {
		return func(ctx context.Context, execCtx *middleware.ExecutionContext) capability.Result {
			if tracer == nil {
				return next(ctx, execCtx)
			}

			ctx, span := tracer.StartSpan(ctx, "capability.dispatch",
				telemetry.WithSpanKind(telemetry.SpanKindInternal),
				telemetry.WithAttributes(
					telemetry.String("capability.name", execCtx.Capability.Name()),
					telemetry.String("query.id", execCtx.QueryID),
					telemetry.Int("loop.turn", execCtx.Turn),
				),
			)
			defer span.End()

			result := next(ctx, execCtx)

			span.SetAttributes(
				telemetry.Float64("capability.cost", result.Cost),
				telemetry.Bool("capability.cached", result.Cached),
				telemetry.Bool("capability.terminal", result.Terminal),
			)

			if result.Failed() {
				span.RecordError(errors.New(result.Error))
				span.SetStatus(telemetry.StatusCodeError, result.Error)
			} else {
				span.SetStatus(telemetry.StatusCodeOK, "")
			}

			return result
		}
	}
}
