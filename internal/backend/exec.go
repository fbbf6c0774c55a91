// Package backend provides concrete, pluggable implementations of the
// orchestrator's Specialist/Reviewer/gate.Runner/integration.Runner
// contracts: one family that shells out to an operator-configured external
// program (JSON on stdin, JSON on stdout — the same "bring your own brain"
// boundary orc draws around its Claude CLI executor, generalized so this
// repo never depends on a specific code-generation backend), and one gate
// runner that executes real shell commands (go build, go test, a linter).
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

// runJSON execs name with args, writes req as JSON to stdin, and decodes
// the process's stdout as JSON into resp. A non-zero exit or malformed
// output is returned as an error so the orchestrator's circuit breaker and
// retry policy can treat this backend like any other flaky dependency.
func runJSON(ctx context.Context, command string, timeout time.Duration, req, resp any) error {
	if command == "" {
		return fmt.Errorf("backend: no command configured")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("backend: encode request: %w", err)
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("backend: %s: %w (stderr: %s)", command, err, stderr.String())
	}
	if err := json.Unmarshal(stdout.Bytes(), resp); err != nil {
		return fmt.Errorf("backend: decode response from %s: %w", command, err)
	}
	return nil
}
