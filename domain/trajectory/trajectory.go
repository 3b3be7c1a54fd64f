// Package trajectory provides the append-only record of a single
// orchestrated query: every action the decision model took and every
// observation that came back, in order.
package trajectory

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StepType classifies a trajectory step.
type StepType string

const (
	// StepAction records a decision the model made.
	StepAction StepType = "action"

	// StepObservation records the outcome of dispatching a capability.
	StepObservation StepType = "observation"
)

// Step is a single entry in a trajectory. Steps are immutable once
// appended.
type Step struct {
	Type       StepType      `json:"type"`
	Content    string        `json:"content"`
	Capability string        `json:"capability,omitempty"`
	Cost       float64       `json:"cost"`
	Latency    time.Duration `json:"latency"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Trajectory is the ordered step log for one query. A trajectory belongs
// to exactly one loop run; only the loop appends to it.
type Trajectory struct {
	id    string
	query string
	steps []Step
	mu    sync.RWMutex
}

// New creates an empty trajectory for the given query.
func New(query string) *Trajectory {
	return &Trajectory{
		id:    uuid.New().String(),
		query: query,
		steps: make([]Step, 0),
	}
}

// ID returns the trajectory's unique identifier.
func (t *Trajectory) ID() string {
	return t.id
}

// Query returns the originating query.
func (t *Trajectory) Query() string {
	return t.query
}

// AddAction appends a decision step. Content is the action's canonical
// JSON; cost and latency are those of the model call that produced it.
func (t *Trajectory) AddAction(content string, cost float64, latency time.Duration) {
	t.append(Step{
		Type:    StepAction,
		Content: content,
		Cost:    cost,
		Latency: latency,
	})
}

// AddObservation appends the outcome of a capability dispatch.
func (t *Trajectory) AddObservation(capability, content string, cost float64, latency time.Duration) {
	t.append(Step{
		Type:       StepObservation,
		Content:    content,
		Capability: capability,
		Cost:       cost,
		Latency:    latency,
	})
}

func (t *Trajectory) append(step Step) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if step.Timestamp.IsZero() {
		step.Timestamp = time.Now()
	}
	t.steps = append(t.steps, step)
}

// Steps returns a copy of all steps in chronological order.
func (t *Trajectory) Steps() []Step {
	t.mu.RLock()
	defer t.mu.RUnlock()

	steps := make([]Step, len(t.steps))
	copy(steps, t.steps)
	return steps
}

// Len returns the number of steps.
func (t *Trajectory) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.steps)
}

// TotalCost returns the sum of all step costs.
func (t *Trajectory) TotalCost() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var total float64
	for _, s := range t.steps {
		total += s.Cost
	}
	return total
}

// TotalLatency returns the sum of all step latencies.
func (t *Trajectory) TotalLatency() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var total time.Duration
	for _, s := range t.steps {
		total += s.Latency
	}
	return total
}

// InvokedCapabilities returns the capability name of every observation
// step, in dispatch order. Repeated invocations repeat in the result.
func (t *Trajectory) InvokedCapabilities() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var names []string
	for _, s := range t.steps {
		if s.Type == StepObservation {
			names = append(names, s.Capability)
		}
	}
	return names
}

// History renders the trajectory as labeled lines for display or prompt
// assembly.
func (t *Trajectory) History() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var b strings.Builder
	for _, s := range t.steps {
		switch s.Type {
		case StepAction:
			b.WriteString("Action: ")
		case StepObservation:
			b.WriteString("Observation: ")
		}
		b.WriteString(s.Content)
		b.WriteString("\n")
	}
	return b.String()
}
