package scheduler

import (
	"testing"

	"github.com/weavehq/weave/internal/gate"
	"github.com/weavehq/weave/internal/state"
	"github.com/weavehq/weave/internal/task"
)

func mustGateResult(taskID string, kind task.GateKind, output string) gate.Result {
	return gate.Result{TaskID: taskID, Kind: kind, Status: gate.StatusFail, Output: output}
}

func newState(tasks ...*task.Task) *state.ProjectState {
	s := state.New("req")
	for _, t := range tasks {
		_ = s.AppendTask(t)
	}
	return s
}

func TestSelectNextTaskInsertionOrder(t *testing.T) {
	t1 := task.New("T1", "a")
	t2 := task.New("T2", "b")
	s := newState(t1, t2)

	got := SelectNextTask(s)
	if got == nil || got.ID != "T1" {
		t.Fatalf("expected T1 selected first, got %v", got)
	}
}

func TestSelectNextTaskRespectsDependencies(t *testing.T) {
	t1 := task.New("T1", "a")
	t1.Status = task.StatusInProgress
	t2 := task.New("T2", "b")
	t2.Dependencies = []string{"T1"}
	s := newState(t1, t2)

	if got := SelectNextTask(s); got != nil {
		t.Fatalf("expected no task selectable, got %v", got)
	}
}

func TestSelectNextTaskExcludesNonPending(t *testing.T) {
	for _, st := range []task.Status{
		task.StatusDeferred, task.StatusInProgress, task.StatusInReview,
		task.StatusDone, task.StatusFailed, task.StatusTerminated,
	} {
		t1 := task.New("T1", "a")
		t1.Status = st
		s := newState(t1)
		if got := SelectNextTask(s); got != nil {
			t.Errorf("status %s: expected not selectable, got %v", st, got)
		}
	}
}

func TestCheckDeferredTriggersCompleted(t *testing.T) {
	trigger := "T3:completed"
	t1 := task.New("T1", "a")
	t1.Status = task.StatusDeferred
	t1.DeferTrigger = &trigger
	t2 := task.New("T2", "b")
	t3 := task.New("T3", "c")
	t3.Status = task.StatusDone
	s := newState(t1, t2, t3)

	result := CheckDeferredTriggers(s, "T3", nil)
	if len(result.Promoted) != 1 || result.Promoted[0] != "T1" {
		t.Fatalf("expected T1 promoted, got %v", result.Promoted)
	}
	if t1.Status != task.StatusPending {
		t.Errorf("expected T1 status PENDING, got %s", t1.Status)
	}
}

func TestCheckDeferredTriggersGateTagMatch(t *testing.T) {
	trigger := "T1:accuracy_below_threshold"
	t1 := task.New("T1", "a")
	t2 := task.New("T2", "b")
	t2.Status = task.StatusDeferred
	t2.DeferTrigger = &trigger
	s := newState(t1, t2)
	s.RecordGateResult(mustGateResult("T1", task.GateNumeric, "accuracy_below_threshold: 0.42"))

	result := CheckDeferredTriggers(s, "T1", nil)
	if len(result.Promoted) != 1 || result.Promoted[0] != "T2" {
		t.Fatalf("expected T2 promoted via gate output match, got %v", result.Promoted)
	}
}

func TestCheckDeferredTriggersNoMatch(t *testing.T) {
	trigger := "T9:completed"
	t1 := task.New("T1", "a")
	t1.Status = task.StatusDeferred
	t1.DeferTrigger = &trigger
	t2 := task.New("T2", "b")
	t2.Status = task.StatusDone
	s := newState(t1, t2)

	result := CheckDeferredTriggers(s, "T2", nil)
	if len(result.Promoted) != 0 {
		t.Errorf("expected no promotion, got %v", result.Promoted)
	}
}
