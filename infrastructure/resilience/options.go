package resilience

import "time"

// Option adjusts one dispatch knob on top of an ExecutorConfig.
type Option func(*ExecutorConfig)

// WithMaxConcurrent caps how many capabilities execute at once.
func WithMaxConcurrent(n int) Option {
	return func(c *ExecutorConfig) {
		c.MaxConcurrent = n
	}
}

// WithCircuitBreaker sets the consecutive-failure threshold that trips
// the circuit and how long it stays open afterwards.
func WithCircuitBreaker(threshold int, cooldown time.Duration) Option {
	return func(c *ExecutorConfig) {
		c.CircuitBreakerThreshold = threshold
		c.CircuitBreakerTimeout = cooldown
	}
}

// WithRetry sets the attempt budget and initial backoff delay used for
// idempotent capabilities.
func WithRetry(attempts int, initialDelay time.Duration) Option {
	return func(c *ExecutorConfig) {
		c.RetryMaxAttempts = attempts
		c.RetryInitialDelay = initialDelay
	}
}

// WithDispatchTimeout bounds a single capability dispatch.
func WithDispatchTimeout(d time.Duration) Option {
	return func(c *ExecutorConfig) {
		c.DefaultTimeout = d
	}
}
