package trajectory_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/orchestra-go/domain/trajectory"
)

func TestTrajectory_AppendOrder(t *testing.T) {
	t.Parallel()

	tr := trajectory.New("what is 2+2?")
	tr.AddAction(`{"tool": "sandbox"}`, 0, 10*time.Millisecond)
	tr.AddObservation("sandbox", "[sandbox] Result:\n4", 0, 5*time.Millisecond)
	tr.AddAction(`{"tool": "finish"}`, 0, 8*time.Millisecond)

	steps := tr.Steps()
	if len(steps) != 3 {
		t.Fatalf("Len = %d, want 3", len(steps))
	}
	want := []trajectory.StepType{
		trajectory.StepAction,
		trajectory.StepObservation,
		trajectory.StepAction,
	}
	for i, s := range steps {
		if s.Type != want[i] {
			t.Errorf("step %d type = %s, want %s", i, s.Type, want[i])
		}
	}
	if steps[1].Capability != "sandbox" {
		t.Errorf("observation capability = %q", steps[1].Capability)
	}
}

func TestTrajectory_Totals(t *testing.T) {
	t.Parallel()

	tr := trajectory.New("query")
	tr.AddAction("a1", 0.5, 100*time.Millisecond)
	tr.AddObservation("gemini", "out", 0.25, 300*time.Millisecond)
	tr.AddObservation("web_search", "out", 0.25, 200*time.Millisecond)

	if got := tr.TotalCost(); got != 1.0 {
		t.Errorf("TotalCost = %v, want 1.0", got)
	}
	if got := tr.TotalLatency(); got != 600*time.Millisecond {
		t.Errorf("TotalLatency = %v, want 600ms", got)
	}
}

func TestTrajectory_InvokedCapabilities(t *testing.T) {
	t.Parallel()

	tr := trajectory.New("query")
	tr.AddAction("a", 0, 0)
	tr.AddObservation("web_search", "o", 0, 0)
	tr.AddAction("a", 0, 0)
	tr.AddObservation("web_search", "o", 0, 0)
	tr.AddObservation("sandbox", "o", 0, 0)

	got := tr.InvokedCapabilities()
	want := []string{"web_search", "web_search", "sandbox"}
	if len(got) != len(want) {
		t.Fatalf("InvokedCapabilities = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("InvokedCapabilities[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTrajectory_History(t *testing.T) {
	t.Parallel()

	tr := trajectory.New("query")
	tr.AddAction(`{"tool": "finish"}`, 0, 0)
	tr.AddObservation("finish", "done", 0, 0)

	h := tr.History()
	if !strings.Contains(h, "Action: ") || !strings.Contains(h, "Observation: ") {
		t.Errorf("History() = %q", h)
	}
}

func TestTrajectory_ConcurrentReads(t *testing.T) {
	t.Parallel()

	tr := trajectory.New("query")
	for i := 0; i < 10; i++ {
		tr.AddObservation("sandbox", "o", 0.001, time.Millisecond)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tr.TotalCost()
			_ = tr.Steps()
			_ = tr.Len()
		}()
	}
	wg.Wait()

	if tr.Len() != 10 {
		t.Errorf("Len = %d, want 10", tr.Len())
	}
}

func TestTrajectory_UniqueIDs(t *testing.T) {
	t.Parallel()

	a := trajectory.New("q1")
	b := trajectory.New("q2")
	if a.ID() == b.ID() {
		t.Error("trajectories should have unique IDs")
	}
	if a.Query() != "q1" {
		t.Errorf("Query = %q, want q1", a.Query())
	}
}
