package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/weavehq/weave/internal/gate"
	"github.com/weavehq/weave/internal/review"
	"github.com/weavehq/weave/internal/state"
	"github.com/weavehq/weave/internal/task"
)

func TestWhyExplainsGatesAndDecisions(t *testing.T) {
	withCLITestDir(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	st, err := openStorage(cfg)
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}

	s := state.New("add rate limiting")
	s.AdvancePhase(state.PhaseExecute)
	tk := task.New("T1", "build limiter")
	s.Tasks = append(s.Tasks, tk)
	s.RecordGateResult(gate.Result{TaskID: "T1", Kind: task.GateKind("unit"), Status: gate.StatusFail, Output: "panic: nil deref"})
	s.RecordDecision(review.Decision{TaskID: "T1", Kind: review.DecisionRevise, Feedback: "handle nil input"})
	s.RecordBrainstormResult(review.BrainstormResult{
		HookName: "after_decompose", TaskID: "T1",
		Question: "risky cross-cutting change?", Answer: "proceed",
		ActionTaken: "kept as-is", Timestamp: time.Now(),
	})
	if err := saveState(st, s); err != nil {
		t.Fatalf("save state: %v", err)
	}
	st.Close()

	cmd := newWhyCmd()
	cmd.SetArgs([]string{"add rate limiting", "T1"})
	out := captureStdout(t, func() {
		if err := cmd.Execute(); err != nil {
			t.Fatalf("execute why: %v", err)
		}
	})

	for _, want := range []string{"T1", "unit: fail", "revise", "handle nil input", "proceed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got: %q", want, out)
		}
	}
}

func TestWhyErrorsOnUnknownTask(t *testing.T) {
	withCLITestDir(t)

	cmd := newWhyCmd()
	cmd.SetArgs([]string{"add rate limiting", "NOPE"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for unknown task id")
	}
}
