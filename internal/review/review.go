// Package review defines the human/AI review verdict types and the
// pluggable Reviewer contract from the external interfaces design.
package review

import (
	"context"
	"time"

	"github.com/weavehq/weave/internal/draft"
	"github.com/weavehq/weave/internal/task"
)

// DecisionKind is a human review verdict.
type DecisionKind string

const (
	DecisionApprove DecisionKind = "approve"
	DecisionRevise  DecisionKind = "revise"
	DecisionReject  DecisionKind = "reject"
	DecisionPause   DecisionKind = "pause"
)

// Decision is a human review verdict on a task's draft.
type Decision struct {
	TaskID   string       `json:"task_id"`
	Kind     DecisionKind `json:"kind"`
	Feedback string       `json:"feedback,omitempty"`
}

// Result is an AI review verdict for a named hook check.
type Result struct {
	HookName    string   `json:"hook_name"`
	Approved    bool     `json:"approved"`
	Issues      []string `json:"issues,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// HumanApproval is a gate verdict recorded for a human_check hook.
type HumanApproval struct {
	HookName  string    `json:"hook_name"`
	Approved  bool      `json:"approved"`
	Feedback  string    `json:"feedback,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Reviewer issues decisions on a task's draft and on gate failures.
type Reviewer interface {
	Review(ctx context.Context, t *task.Task, d *draft.Draft) (Decision, error)
	ReviewGateFailure(ctx context.Context, t *task.Task) (Decision, error)
}

// BrainstormResult is the audit entry recorded for one task mutation
// decision made by the brainstorm subsystem.
type BrainstormResult struct {
	HookName     string    `json:"hook_name"`
	TaskID       string    `json:"task_id"`
	Question     string    `json:"question"`
	Options      []string  `json:"options"`
	Answer       string    `json:"answer"`
	ActionTaken  string    `json:"action_taken"`
	Timestamp    time.Time `json:"timestamp"`
}
