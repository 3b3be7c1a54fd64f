// Package middleware provides composable middleware for capability
// dispatch.
package middleware

import (
	"context"

	"github.com/felixgeelhaar/orchestra-go/domain/capability"
)

// ExecutionContext contains all information needed for middleware decisions.
type ExecutionContext struct {
	// QueryID is the unique identifier for the current trajectory.
	QueryID string
	// Turn is the loop turn that requested this dispatch.
	Turn int
	// Capability is the capability being dispatched.
	Capability capability.Capability
	// Params are the action parameters for the capability.
	Params map[string]any
	// Reason is the decision model's stated reasoning for this dispatch.
	Reason string
}

// Handler dispatches a capability and returns its result.
type Handler func(ctx context.Context, execCtx *ExecutionContext) capability.Result

// Middleware wraps a Handler with additional behavior.
// Middleware can:
// - Execute code before the next handler
// - Execute code after the next handler
// - Short-circuit by not calling next
// - Transform results
type Middleware func(next Handler) Handler

// Chain composes multiple middleware into a single middleware.
// Middleware are executed in the order provided, with each wrapping the next.
// For example, Chain(A, B, C) produces: A -> B -> C -> handler
func Chain(middlewares ...Middleware) Middleware {
	return func(final Handler) Handler {
		// Build chain from right to left so execution is left to right
		handler := final
		for i := len(middlewares) - 1; i >= 0; i-- {
			handler = middlewares[i](handler)
		}
		return handler
	}
}

// Noop returns a middleware that does nothing, just passes through.
func Noop() Middleware {
	return func(next Handler) Handler {
		return next
	}
}
