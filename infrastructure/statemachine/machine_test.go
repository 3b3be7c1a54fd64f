package statemachine_test

import (
	"testing"

	"github.com/felixgeelhaar/orchestra-go/domain/trajectory"
	"github.com/felixgeelhaar/orchestra-go/infrastructure/statemachine"
)

func newInterpreter(t *testing.T, maxTurns int) *statemachine.Interpreter {
	t.Helper()

	machine, err := statemachine.NewLoopMachine()
	if err != nil {
		t.Fatalf("NewLoopMachine: %v", err)
	}
	ctx := statemachine.NewContext("test query", trajectory.New("test query"), maxTurns)
	interp := statemachine.NewInterpreter(machine, ctx)
	interp.Start()
	return interp
}

func TestLoopMachineHappyPath(t *testing.T) {
	interp := newInterpreter(t, 5)
	defer interp.Stop()

	if interp.Phase() != statemachine.PhaseIdle {
		t.Fatalf("initial phase = %q", interp.Phase())
	}

	interp.Send(statemachine.EventRequest)
	if interp.Phase() != statemachine.PhaseRequesting {
		t.Fatalf("phase = %q, want requesting", interp.Phase())
	}
	if interp.Turn() != 1 {
		t.Errorf("turn = %d, want 1", interp.Turn())
	}

	interp.Send(statemachine.EventParse)
	interp.Send(statemachine.EventDispatch)
	if interp.Phase() != statemachine.PhaseDispatching {
		t.Fatalf("phase = %q, want dispatching", interp.Phase())
	}

	interp.Send(statemachine.EventRequest)
	interp.Send(statemachine.EventParse)
	interp.Send(statemachine.EventComplete)

	if interp.Phase() != statemachine.PhaseCompleted {
		t.Fatalf("phase = %q, want completed", interp.Phase())
	}
	if !interp.Done() {
		t.Error("completed phase should be final")
	}
	if interp.Turn() != 2 {
		t.Errorf("turn = %d, want 2", interp.Turn())
	}
}

func TestLoopMachineParseRetry(t *testing.T) {
	interp := newInterpreter(t, 5)
	defer interp.Stop()

	interp.Send(statemachine.EventRequest)
	interp.Send(statemachine.EventParse)
	interp.Send(statemachine.EventRetry)

	if interp.Phase() != statemachine.PhaseRetrying {
		t.Fatalf("phase = %q, want retrying", interp.Phase())
	}

	// A retry consumes a turn and loops back to requesting.
	interp.Send(statemachine.EventRequest)
	if interp.Phase() != statemachine.PhaseRequesting {
		t.Fatalf("phase = %q, want requesting", interp.Phase())
	}
	if interp.Turn() != 2 {
		t.Errorf("turn = %d, want 2", interp.Turn())
	}
}

func TestLoopMachineBudgetGuard(t *testing.T) {
	interp := newInterpreter(t, 1)
	defer interp.Stop()

	interp.Send(statemachine.EventRequest)
	interp.Send(statemachine.EventParse)
	interp.Send(statemachine.EventDispatch)

	if interp.BudgetRemaining() {
		t.Fatal("budget should be spent after one turn")
	}

	// The guard blocks a second turn; the phase stays put until the
	// engine acknowledges exhaustion.
	interp.Send(statemachine.EventRequest)
	if interp.Phase() != statemachine.PhaseDispatching {
		t.Fatalf("phase = %q, want dispatching", interp.Phase())
	}

	interp.Send(statemachine.EventExhaust)
	if interp.Phase() != statemachine.PhaseExhausted {
		t.Fatalf("phase = %q, want exhausted", interp.Phase())
	}
	if !interp.Done() {
		t.Error("exhausted phase should be final")
	}
}

func TestLoopMachineAbort(t *testing.T) {
	interp := newInterpreter(t, 5)
	defer interp.Stop()

	interp.Send(statemachine.EventRequest)
	interp.Send(statemachine.EventAbort)

	if interp.Phase() != statemachine.PhaseAborted {
		t.Fatalf("phase = %q, want aborted", interp.Phase())
	}
	if !interp.Done() {
		t.Error("aborted phase should be final")
	}
}

func TestLoopMachineIgnoresInvalidEvents(t *testing.T) {
	interp := newInterpreter(t, 5)
	defer interp.Stop()

	// Dispatch is not legal from idle; the machine stays put.
	interp.Send(statemachine.EventDispatch)
	if interp.Phase() != statemachine.PhaseIdle {
		t.Fatalf("phase = %q, want idle", interp.Phase())
	}
}
