// Package middleware provides dispatch middleware implementations:
// logging, caching, tracing, and metrics around capability execution.
package middleware

import (
	"context"

	"github.com/felixgeelhaar/orchestra-go/domain/capability"
	"github.com/felixgeelhaar/orchestra-go/domain/middleware"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/logging"
)

// LoggingConfig configures the logging middleware.
type LoggingConfig struct {
	// LogParams logs action parameters (may contain sensitive data).
	LogParams bool
	// LogOutput logs the observation output (may be large).
	LogOutput bool
}

// Logging returns middleware that logs every capability dispatch.
func Logging(cfg LoggingConfig) middleware.Middleware {
	return func(next middleware.Handler) middleware.Handler {
		return func(ctx context.Context, execCtx *middleware.ExecutionContext) capability.Result {
			name := execCtx.Capability.Name()

			entry := logging.Info().
				Add(logging.QueryID(execCtx.QueryID)).
				Add(logging.Turn(execCtx.Turn)).
				Add(logging.Capability(name))
			if execCtx.Reason != "" {
				entry = entry.Add(logging.Reason(execCtx.Reason))
			}
			if cfg.LogParams && len(execCtx.Params) > 0 {
				entry = entry.Add(logging.Int("param_count", len(execCtx.Params)))
			}
			entry.Msg("dispatching capability")

			result := next(ctx, execCtx)

			if result.Failed() {
				logging.Warn().
					Add(logging.QueryID(execCtx.QueryID)).
					Add(logging.Capability(name)).
					Add(logging.ErrorMsg(result.Error)).
					Add(logging.Duration(result.Latency)).
					Msg("capability dispatch failed")
				return result
			}

			entry = logging.Info().
				Add(logging.QueryID(execCtx.QueryID)).
				Add(logging.Capability(name)).
				Add(logging.Cost(result.Cost)).
				Add(logging.Duration(result.Latency)).
				Add(logging.Cached(result.Cached))
			if cfg.LogOutput {
				output := result.OutputString()
				if len(output) > 500 {
					output = output[:500] + "..."
				}
				entry = entry.Add(logging.Str("output", output))
			}
			entry.Msg("capability dispatched")

			return result
		}
	}
}
