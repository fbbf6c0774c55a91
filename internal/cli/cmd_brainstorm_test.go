package cli

import (
	"strings"
	"testing"

	"github.com/weavehq/weave/internal/state"
	"github.com/weavehq/weave/internal/task"
)

func TestBrainstormResolvesImmediatelyWhenNothingFlagged(t *testing.T) {
	withCLITestDir(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	st, err := openStorage(cfg)
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}

	s := state.New("tidy up logging")
	s.AdvancePhase(state.PhaseExecute)
	s.Tasks = append(s.Tasks, task.New("T1", "rotate log files"))
	if err := saveState(st, s); err != nil {
		t.Fatalf("save state: %v", err)
	}
	st.Close()

	cmd := newBrainstormCmd()
	cmd.SetArgs([]string{"tidy", "up", "logging"})
	out := captureStdout(t, func() {
		if err := cmd.Execute(); err != nil {
			t.Fatalf("execute brainstorm: %v", err)
		}
	})
	if !strings.Contains(out, "resolved") {
		t.Errorf("output should say resolved when nothing was flagged, got: %q", out)
	}
}

func TestBrainstormFileModeFlagsUnresolvedWithoutAResponse(t *testing.T) {
	tmpDir := withCLITestDir(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	st, err := openStorage(cfg)
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}

	s := state.New("rewrite the auth middleware")
	s.AdvancePhase(state.PhaseExecute)
	risky := task.New("T1", "integrate third-party OAuth vendor")
	s.Tasks = append(s.Tasks, risky)
	if err := saveState(st, s); err != nil {
		t.Fatalf("save state: %v", err)
	}
	st.Close()

	promptPath := tmpDir + "/prompt.json"
	responsePath := tmpDir + "/response.json"

	cmd := newBrainstormCmd()
	cmd.SetArgs([]string{
		"--prompt-file", promptPath,
		"--response-file", responsePath,
		"rewrite", "the", "auth", "middleware",
	})
	out := captureStdout(t, func() {
		if err := cmd.Execute(); err != nil {
			t.Fatalf("execute brainstorm: %v", err)
		}
	})
	if !strings.Contains(out, "unresolved") {
		t.Errorf("output should say unresolved with no response file yet, got: %q", out)
	}
}
