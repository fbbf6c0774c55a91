package brainstorm

import (
	"testing"

	"github.com/weavehq/weave/internal/state"
	"github.com/weavehq/weave/internal/task"
)

func twoTaskState() (*state.ProjectState, *task.Task, *task.Task) {
	s := state.New("req")
	t1 := task.New("T1", "first")
	t2 := task.New("T2", "second")
	t2.Dependencies = []string{"T1"}
	_ = s.AppendTask(t1)
	_ = s.AppendTask(t2)
	return s, t1, t2
}

func TestDeferAndRestore(t *testing.T) {
	s, t1, t2 := twoTaskState()

	if err := Defer(s, "T1", "T2:promoted"); err != nil {
		t.Fatalf("defer failed: %v", err)
	}
	if t1.Status != task.StatusDeferred {
		t.Errorf("expected T1 DEFERRED, got %s", t1.Status)
	}
	if len(t2.Dependencies) != 0 {
		t.Errorf("expected T2.Dependencies empty, got %v", t2.Dependencies)
	}
	if len(t2.SuspendedDependencies) != 1 || t2.SuspendedDependencies[0] != "T1" {
		t.Errorf("expected T2.SuspendedDependencies = [T1], got %v", t2.SuspendedDependencies)
	}

	if err := Restore(s, "T1"); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if t1.Status != task.StatusPending {
		t.Errorf("expected T1 PENDING after restore, got %s", t1.Status)
	}
	if len(t2.Dependencies) != 1 || t2.Dependencies[0] != "T1" {
		t.Errorf("expected T2.Dependencies = [T1] after restore, got %v", t2.Dependencies)
	}
	if len(t2.SuspendedDependencies) != 0 {
		t.Errorf("expected T2.SuspendedDependencies empty after restore, got %v", t2.SuspendedDependencies)
	}
}

func TestTerminateRemovesFromDownstream(t *testing.T) {
	s, _, t2 := twoTaskState()
	if err := Terminate(s, "T1"); err != nil {
		t.Fatalf("terminate failed: %v", err)
	}
	if len(t2.Dependencies) != 0 {
		t.Errorf("expected T2 dependencies cleared, got %v", t2.Dependencies)
	}
	t1, _ := s.TaskByID("T1")
	if t1.Status != task.StatusTerminated {
		t.Errorf("expected T1 TERMINATED, got %s", t1.Status)
	}
}

func TestDropRemovesTask(t *testing.T) {
	s, _, t2 := twoTaskState()
	if err := Drop(s, "T1"); err != nil {
		t.Fatalf("drop failed: %v", err)
	}
	if _, ok := s.TaskByID("T1"); ok {
		t.Errorf("expected T1 to be removed")
	}
	if len(t2.Dependencies) != 0 {
		t.Errorf("expected T2 dependencies cleared after drop, got %v", t2.Dependencies)
	}
}

func TestSplitInheritsDownstreamLinks(t *testing.T) {
	s := state.New("req")
	upstream := task.New("U1", "upstream")
	target := task.New("T1", "target")
	target.Dependencies = []string{"U1"}
	downstream := task.New("D1", "downstream")
	downstream.Dependencies = []string{"T1"}
	_ = s.AppendTask(upstream)
	_ = s.AppendTask(target)
	_ = s.AppendTask(downstream)

	err := Split(s, "T1",
		TaskSpec{Title: "T1 safe part"},
		TaskSpec{Title: "T1 risky part"},
		"T1-risky:promoted")
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}

	if _, ok := s.TaskByID("T1"); ok {
		t.Errorf("expected original T1 to be replaced")
	}
	safe, ok := s.TaskByID("T1-safe")
	if !ok || safe.Status != task.StatusPending {
		t.Fatalf("expected T1-safe PENDING, got %+v", safe)
	}
	risky, ok := s.TaskByID("T1-risky")
	if !ok || risky.Status != task.StatusDeferred {
		t.Fatalf("expected T1-risky DEFERRED, got %+v", risky)
	}
	d, _ := s.TaskByID("D1")
	if len(d.Dependencies) != 1 || d.Dependencies[0] != "T1-safe" {
		t.Errorf("expected D1 to depend on T1-safe, got %v", d.Dependencies)
	}
	if len(d.SuspendedDependencies) != 1 || d.SuspendedDependencies[0] != "T1-risky" {
		t.Errorf("expected D1 to suspend T1-risky, got %v", d.SuspendedDependencies)
	}
}

func TestDeferRefusesOnUnknownTask(t *testing.T) {
	s, _, _ := twoTaskState()
	if err := Defer(s, "T9", "T2:promoted"); err == nil {
		t.Errorf("expected defer of unknown task to be refused")
	}
}

func TestDeferTransitivePrivateUpstream(t *testing.T) {
	s := state.New("req")
	upstream := task.New("U1", "upstream")
	target := task.New("T1", "target")
	target.Dependencies = []string{"U1"}
	_ = s.AppendTask(upstream)
	_ = s.AppendTask(target)

	if err := Defer(s, "T1", "T1:promoted"); err != nil {
		t.Fatalf("defer failed: %v", err)
	}
	u1, _ := s.TaskByID("U1")
	if u1.Status != task.StatusDeferred {
		t.Errorf("expected U1 (private upstream with no other consumer) to also be deferred, got %s", u1.Status)
	}
}
