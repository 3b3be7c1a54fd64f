package statemachine

import (
	"github.com/felixgeelhaar/statekit"
)

// Interpreter wraps the statekit interpreter with loop-specific helpers.
type Interpreter struct {
	interp *statekit.Interpreter[*Context]
	ctx    *Context
}

// NewInterpreter creates an interpreter for the loop machine bound to the
// given context.
func NewInterpreter(machine *statekit.MachineConfig[*Context], ctx *Context) *Interpreter {
	interp := statekit.NewInterpreter(machine)
	interp.UpdateContext(func(c **Context) {
		*c = ctx
	})
	return &Interpreter{
		interp: interp,
		ctx:    ctx,
	}
}

// Start enters the initial phase.
func (i *Interpreter) Start() {
	i.interp.Start()
}

// Stop stops the interpreter.
func (i *Interpreter) Stop() {
	i.interp.Stop()
}

// Phase returns the current loop phase.
func (i *Interpreter) Phase() Phase {
	return Phase(i.interp.State().Value)
}

// Send dispatches an event to the machine. Events not accepted in the
// current phase are ignored by statekit, so the engine's phase tracking
// can never wedge the loop.
func (i *Interpreter) Send(event statekit.EventType) {
	i.interp.Send(statekit.Event{Type: event})
}

// Turn returns the 1-based number of the turn in progress.
func (i *Interpreter) Turn() int {
	return i.ctx.Turn
}

// BudgetRemaining reports whether another turn may start.
func (i *Interpreter) BudgetRemaining() bool {
	return i.ctx.BudgetRemaining()
}

// Done reports whether the machine reached a final phase.
func (i *Interpreter) Done() bool {
	return i.interp.Done()
}

// Context returns the interpreter's loop context.
func (i *Interpreter) Context() *Context {
	return i.ctx
}
