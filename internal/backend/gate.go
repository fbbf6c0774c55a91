package backend

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/weavehq/weave/internal/draft"
	"github.com/weavehq/weave/internal/gate"
	"github.com/weavehq/weave/internal/task"
)

// ShellGateRunner implements gate.Runner by running a real shell command
// per gate kind (e.g. "go build ./...", "go test ./...", "golangci-lint
// run") in WorkDir; the command's exit code decides pass/fail.
type ShellGateRunner struct {
	Commands map[task.GateKind]string
	WorkDir  string
	Timeout  time.Duration
}

// Run implements gate.Runner.
func (r *ShellGateRunner) Run(ctx context.Context, t *task.Task, d *draft.Draft, kind task.GateKind) (gate.Result, error) {
	command, ok := r.Commands[kind]
	if !ok || command == "" {
		return gate.Result{TaskID: t.ID, Kind: kind, Status: gate.StatusSkipped, Output: "no command configured"}, nil
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", command)
	if r.WorkDir != "" {
		cmd.Dir = r.WorkDir
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	status := gate.StatusPass
	if err := cmd.Run(); err != nil {
		status = gate.StatusFail
	}
	return gate.Result{TaskID: t.ID, Kind: kind, Status: status, Output: out.String()}, nil
}
