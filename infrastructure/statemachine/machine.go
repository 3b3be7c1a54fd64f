// Package statemachine provides the statekit statechart that tracks the
// orchestration loop's phases. The engine drives the machine as it moves
// through each turn; the machine enforces which phase transitions are
// legal and exposes the current phase for logging and inspection.
package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/orchestra-go/domain/trajectory"
)

// Phase identifies a stage of the orchestration loop.
type Phase string

const (
	// PhaseIdle is the initial phase before the first turn.
	PhaseIdle Phase = "idle"
	// PhaseRequesting covers the decision-model call.
	PhaseRequesting Phase = "requesting"
	// PhaseParsing covers response parsing and validation.
	PhaseParsing Phase = "parsing"
	// PhaseDispatching covers capability execution.
	PhaseDispatching Phase = "dispatching"
	// PhaseRetrying is entered when a response could not be parsed and a
	// corrective message is queued for the next turn.
	PhaseRetrying Phase = "retrying"
	// PhaseCompleted is the terminal phase after a terminal capability.
	PhaseCompleted Phase = "completed"
	// PhaseExhausted is the terminal phase when the turn budget runs out.
	PhaseExhausted Phase = "exhausted"
	// PhaseAborted is the terminal phase after a fatal model failure.
	PhaseAborted Phase = "aborted"
)

// Events driving the loop machine.
const (
	EventRequest  statekit.EventType = "REQUEST"
	EventParse    statekit.EventType = "PARSE"
	EventDispatch statekit.EventType = "DISPATCH"
	EventRetry    statekit.EventType = "RETRY"
	EventComplete statekit.EventType = "COMPLETE"
	EventExhaust  statekit.EventType = "EXHAUST"
	EventAbort    statekit.EventType = "ABORT"
)

// Context carries loop state through the machine.
type Context struct {
	Query      string
	Trajectory *trajectory.Trajectory
	Turn       int
	MaxTurns   int
}

// NewContext creates a machine context for one query.
func NewContext(query string, traj *trajectory.Trajectory, maxTurns int) *Context {
	return &Context{
		Query:      query,
		Trajectory: traj,
		MaxTurns:   maxTurns,
	}
}

// BudgetRemaining reports whether another turn may start.
func (c *Context) BudgetRemaining() bool {
	return c.Turn < c.MaxTurns
}

const (
	stateIdle        = statekit.StateID(PhaseIdle)
	stateRequesting  = statekit.StateID(PhaseRequesting)
	stateParsing     = statekit.StateID(PhaseParsing)
	stateDispatching = statekit.StateID(PhaseDispatching)
	stateRetrying    = statekit.StateID(PhaseRetrying)
	stateCompleted   = statekit.StateID(PhaseCompleted)
	stateExhausted   = statekit.StateID(PhaseExhausted)
	stateAborted     = statekit.StateID(PhaseAborted)
)

// countTurn increments the turn counter. A turn is counted when the model
// call begins, so malformed responses consume budget like any other turn.
func countTurn(ctx **Context, _ statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	(*ctx).Turn++
}

// guardBudget allows a new turn only while budget remains.
func guardBudget(ctx *Context, _ statekit.Event) bool {
	if ctx == nil {
		return false
	}
	return ctx.BudgetRemaining()
}

// NewLoopMachine creates the canonical orchestration loop statechart.
//
//	idle -> requesting -> parsing -> dispatching -> requesting -> ...
//	                            \-> retrying ----> requesting
//	                            \-> completed
//	dispatching/retrying -> exhausted   (budget spent)
//	requesting -> aborted               (model failure)
func NewLoopMachine() (*statekit.MachineConfig[*Context], error) {
	return statekit.NewMachine[*Context]("loop").
		WithInitial(stateIdle).
		WithContext(&Context{}).
		WithAction("countTurn", countTurn).
		WithGuard("budgetRemaining", guardBudget).
		State(stateIdle).
			On(EventRequest).Target(stateRequesting).Guard("budgetRemaining").Do("countTurn").
			Done().
		State(stateRequesting).
			On(EventParse).Target(stateParsing).
			On(EventAbort).Target(stateAborted).
			Done().
		State(stateParsing).
			On(EventDispatch).Target(stateDispatching).
			On(EventRetry).Target(stateRetrying).
			On(EventComplete).Target(stateCompleted).
			Done().
		State(stateDispatching).
			On(EventRequest).Target(stateRequesting).Guard("budgetRemaining").Do("countTurn").
			On(EventExhaust).Target(stateExhausted).
			Done().
		State(stateRetrying).
			On(EventRequest).Target(stateRequesting).Guard("budgetRemaining").Do("countTurn").
			On(EventExhaust).Target(stateExhausted).
			Done().
		State(stateCompleted).
			Final().
			Done().
		State(stateExhausted).
			Final().
			Done().
		State(stateAborted).
			Final().
			Done().
		Build()
}
