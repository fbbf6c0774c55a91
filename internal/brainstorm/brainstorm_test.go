package brainstorm

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/weavehq/weave/internal/state"
	"github.com/weavehq/weave/internal/task"
)

func flaggableState() *state.ProjectState {
	s := state.New("req")
	t1 := task.New("T1", "Integrate third-party vendor API")
	_ = s.AppendTask(t1)
	return s
}

func TestRunAutoDefersFlagged(t *testing.T) {
	s := flaggableState()
	result, err := Run(s, "after_decompose", DefaultChecks(), Options{Mode: ModeAuto, Config: DefaultConfig()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != RunResolved {
		t.Errorf("expected resolved, got %s", result)
	}
	t1, _ := s.TaskByID("T1")
	if t1.Status != task.StatusDeferred {
		t.Errorf("expected T1 deferred by auto mode, got %s", t1.Status)
	}
	if len(s.BrainstormResults) != 1 {
		t.Errorf("expected one brainstorm audit entry, got %d", len(s.BrainstormResults))
	}
}

func TestRunInteractiveAppliesDecision(t *testing.T) {
	s := flaggableState()
	result, err := Run(s, "after_decompose", DefaultChecks(), Options{
		Mode: ModeInteractive,
		Input: func(f Flagged) (string, string) {
			return "terminate", "not worth the risk"
		},
		Config: DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != RunResolved {
		t.Errorf("expected resolved, got %s", result)
	}
	t1, _ := s.TaskByID("T1")
	if t1.Status != task.StatusTerminated {
		t.Errorf("expected T1 terminated, got %s", t1.Status)
	}
}

func TestRunFileModeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	promptPath := filepath.Join(dir, "prompt.json")
	responsePath := filepath.Join(dir, "response.json")

	s := flaggableState()
	result, err := Run(s, "after_decompose", DefaultChecks(), Options{
		Mode:         ModeFile,
		PromptPath:   promptPath,
		ResponsePath: responsePath,
		Config:       DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != RunUnresolved {
		t.Errorf("expected unresolved on first call (no response file yet), got %s", result)
	}
	if _, err := os.Stat(promptPath); err != nil {
		t.Fatalf("expected prompt file to be written: %v", err)
	}

	resp := Response{
		HookName: "after_decompose",
		Answers: []PromptAnswer{
			{TaskID: "T1", Answer: "defer", Feedback: "revisit later"},
		},
	}
	data, _ := json.Marshal(resp)
	if err := os.WriteFile(responsePath, data, 0o644); err != nil {
		t.Fatalf("failed to write response: %v", err)
	}

	result, err = Run(s, "after_decompose", DefaultChecks(), Options{
		Mode:         ModeFile,
		PromptPath:   promptPath,
		ResponsePath: responsePath,
		Config:       DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("unexpected error on second call: %v", err)
	}
	if result != RunResolved {
		t.Errorf("expected resolved on second call, got %s", result)
	}
	t1, _ := s.TaskByID("T1")
	if t1.Status != task.StatusDeferred {
		t.Errorf("expected T1 deferred, got %s", t1.Status)
	}
}

func TestRunNoFlaggedTasksResolvesImmediately(t *testing.T) {
	s := state.New("req")
	t1 := task.New("T1", "internal cache refactor")
	_ = s.AppendTask(t1)

	result, err := Run(s, "after_decompose", DefaultChecks(), Options{Mode: ModeAuto, Config: DefaultConfig()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != RunResolved {
		t.Errorf("expected resolved, got %s", result)
	}
	if len(s.BrainstormResults) != 0 {
		t.Errorf("expected no brainstorm entries for a clean task, got %d", len(s.BrainstormResults))
	}
}
