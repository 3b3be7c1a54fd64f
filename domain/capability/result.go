package capability

import (
	"encoding/json"
	"time"
)

// Result contains the outcome of a capability execution. A failed
// execution is still a Result: Error is set, Cost is zero, and the loop
// records it as an observation like any other outcome.
type Result struct {
	// Output is the primary result data.
	Output any `json:"output,omitempty"`

	// Cost is the actual dollar cost incurred by this execution.
	Cost float64 `json:"cost"`

	// Latency is how long the execution took.
	Latency time.Duration `json:"latency"`

	// Terminal indicates this result ends the orchestration loop.
	Terminal bool `json:"terminal,omitempty"`

	// Error holds the failure description; empty on success.
	Error string `json:"error,omitempty"`

	// Cached indicates the result was served from cache.
	Cached bool `json:"cached,omitempty"`

	// Metadata carries auxiliary execution details.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewResult creates a successful result with the given output.
func NewResult(output any) Result {
	return Result{Output: output}
}

// NewErrorResult creates a result representing a failure. Failed
// executions never bill cost.
func NewErrorResult(msg string) Result {
	return Result{Error: msg}
}

// NewTerminalResult creates a result that ends the loop.
func NewTerminalResult(output any) Result {
	return Result{Output: output, Terminal: true}
}

// Failed returns true if the result represents a failure.
func (r Result) Failed() bool {
	return r.Error != ""
}

// WithCost returns a copy of the result with the cost set.
func (r Result) WithCost(cost float64) Result {
	r.Cost = cost
	return r
}

// WithMetadata returns a copy of the result with a metadata entry added.
func (r Result) WithMetadata(key string, value any) Result {
	if r.Metadata == nil {
		r.Metadata = make(map[string]any)
	}
	r.Metadata[key] = value
	return r
}

// OutputString renders the output for observation formatting. Maps and
// slices render as indented JSON, strings as themselves.
func (r Result) OutputString() string {
	switch v := r.Output.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return ""
		}
		return string(data)
	}
}
