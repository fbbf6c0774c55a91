// Package gate defines GateResult and the pluggable gate-runner contracts
// from the external interfaces design. The gate kinds themselves
// (build/unit/lint/contract/numeric) live on task.GateKind since a task's
// required gate list is part of the task entity.
package gate

import (
	"context"
	"fmt"

	"github.com/weavehq/weave/internal/draft"
	"github.com/weavehq/weave/internal/task"
)

// Status is the outcome of one gate run.
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of one gate run, stored keyed by "<task_id>:<gate_kind>".
type Result struct {
	TaskID string         `json:"task_id"`
	Kind   task.GateKind  `json:"kind"`
	Status Status         `json:"status"`
	Output string         `json:"output"`
}

// Key returns the storage key for this result, per §6.4: "<task_id>:<kind>".
func (r Result) Key() string {
	return Key(r.TaskID, r.Kind)
}

// Key formats the storage key for a task id and gate kind.
func Key(taskID string, kind task.GateKind) string {
	return fmt.Sprintf("%s:%s", taskID, kind)
}

// AllPass reports whether every result in results has status PASS.
func AllPass(results []Result) bool {
	for _, r := range results {
		if r.Status != StatusPass {
			return false
		}
	}
	return true
}

// Runner runs a single gate kind against a task's draft.
type Runner interface {
	Run(ctx context.Context, t *task.Task, d *draft.Draft, kind task.GateKind) (Result, error)
}

// Registry runs every gate a task declares and returns all results.
type Registry interface {
	RunAll(ctx context.Context, t *task.Task, d *draft.Draft) ([]Result, error)
}

// RunnerRegistry adapts a single Runner into a Registry by iterating over
// the task's declared gate list, per the orchestrator's verify step. A task
// with no declared gates passes trivially without invoking the runner.
type RunnerRegistry struct {
	Runner Runner
}

// RunAll implements Registry.
func (g *RunnerRegistry) RunAll(ctx context.Context, t *task.Task, d *draft.Draft) ([]Result, error) {
	if len(t.Gates) == 0 {
		return nil, nil
	}
	results := make([]Result, 0, len(t.Gates))
	for _, kind := range t.Gates {
		r, err := g.Runner.Run(ctx, t, d, kind)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}
