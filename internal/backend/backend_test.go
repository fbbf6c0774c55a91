package backend

import (
	"context"
	"testing"

	"github.com/weavehq/weave/internal/integration"
	"github.com/weavehq/weave/internal/orchestrator"
	"github.com/weavehq/weave/internal/task"
)

func integrationTestFixture() integration.Test {
	return integration.Test{Name: "full-integration", CoveredTaskIDs: []string{"T1"}}
}

func TestExecSpecialistParsesDraftFromStdout(t *testing.T) {
	s := &ExecSpecialist{Command: `cat <<'EOF'
{"task_id":"T1","files":{"a.go":"package a"},"test_files":{},"explanation":"done"}
EOF`}

	tk := task.New("T1", "do the thing")
	d, err := s.Generate(context.Background(), tk, orchestrator.Brief{Task: tk})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.TaskID != "T1" || d.Files["a.go"] != "package a" {
		t.Errorf("unexpected draft: %+v", d)
	}
}

func TestExecSpecialistPropagatesNonZeroExit(t *testing.T) {
	s := &ExecSpecialist{Command: "exit 1"}
	tk := task.New("T1", "do the thing")
	if _, err := s.Generate(context.Background(), tk, orchestrator.Brief{Task: tk}); err == nil {
		t.Fatal("expected error on non-zero exit")
	}
}

func TestExecReviewerDefaultsTaskID(t *testing.T) {
	r := &ExecReviewer{Command: `echo '{"kind":"approve"}'`}
	tk := task.New("T1", "do the thing")
	decision, err := r.Review(context.Background(), tk, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.TaskID != "T1" || decision.Kind != "approve" {
		t.Errorf("unexpected decision: %+v", decision)
	}
}

func TestShellGateRunnerPassesOnZeroExit(t *testing.T) {
	r := &ShellGateRunner{Commands: map[task.GateKind]string{task.GateUnit: "true"}}
	tk := task.New("T1", "do the thing")
	result, err := r.Run(context.Background(), tk, nil, task.GateUnit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != "pass" {
		t.Errorf("expected pass, got %s", result.Status)
	}
}

func TestShellGateRunnerFailsOnNonZeroExit(t *testing.T) {
	r := &ShellGateRunner{Commands: map[task.GateKind]string{task.GateUnit: "false"}}
	tk := task.New("T1", "do the thing")
	result, err := r.Run(context.Background(), tk, nil, task.GateUnit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != "fail" {
		t.Errorf("expected fail, got %s", result.Status)
	}
}

func TestShellGateRunnerSkipsUnconfiguredKind(t *testing.T) {
	r := &ShellGateRunner{Commands: map[task.GateKind]string{}}
	tk := task.New("T1", "do the thing")
	result, err := r.Run(context.Background(), tk, nil, task.GateLint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != "skipped" {
		t.Errorf("expected skipped, got %s", result.Status)
	}
}

func TestShellIntegrationRunnerReportsPassFail(t *testing.T) {
	r := &ShellIntegrationRunner{Command: "true"}
	result, err := r.Run(context.Background(), integrationTestFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Passed {
		t.Error("expected pass")
	}

	r.Command = "false"
	result, err = r.Run(context.Background(), integrationTestFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Passed {
		t.Error("expected fail")
	}
}
