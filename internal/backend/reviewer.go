package backend

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/weavehq/weave/internal/draft"
	"github.com/weavehq/weave/internal/review"
	"github.com/weavehq/weave/internal/task"
)

// ExecReviewer implements review.Reviewer by invoking an external command,
// once for a normal draft review and once (with no draft) for a
// gate-failure override decision.
type ExecReviewer struct {
	Command string
	Timeout time.Duration
}

type reviewRequest struct {
	RequestID string       `json:"request_id"`
	Kind      string       `json:"kind"` // "review" or "gate_failure"
	Task      *task.Task   `json:"task"`
	Draft     *draft.Draft `json:"draft,omitempty"`
}

// Review implements review.Reviewer.
func (r *ExecReviewer) Review(ctx context.Context, t *task.Task, d *draft.Draft) (review.Decision, error) {
	req := reviewRequest{RequestID: uuid.NewString(), Kind: "review", Task: t, Draft: d}
	var decision review.Decision
	if err := runJSON(ctx, r.Command, r.Timeout, req, &decision); err != nil {
		return review.Decision{}, err
	}
	if decision.TaskID == "" {
		decision.TaskID = t.ID
	}
	return decision, nil
}

// ReviewGateFailure implements review.Reviewer.
func (r *ExecReviewer) ReviewGateFailure(ctx context.Context, t *task.Task) (review.Decision, error) {
	req := reviewRequest{RequestID: uuid.NewString(), Kind: "gate_failure", Task: t}
	var decision review.Decision
	if err := runJSON(ctx, r.Command, r.Timeout, req, &decision); err != nil {
		return review.Decision{}, err
	}
	if decision.TaskID == "" {
		decision.TaskID = t.ID
	}
	return decision, nil
}
