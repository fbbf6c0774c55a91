package backend

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/weavehq/weave/internal/draft"
	"github.com/weavehq/weave/internal/orchestrator"
	"github.com/weavehq/weave/internal/task"
)

// ExecSpecialist implements orchestrator.Specialist by invoking an
// external command once per Generate call.
type ExecSpecialist struct {
	Command string
	Timeout time.Duration
}

// specialistRequest carries a fresh RequestID per call so an external
// program can correlate its own logs/queue entries back to this
// invocation, the same role orc's uuid.NewString() plays for transcript
// message ids.
type specialistRequest struct {
	RequestID string             `json:"request_id"`
	Task      *task.Task         `json:"task"`
	Brief     orchestrator.Brief `json:"brief"`
}

// Generate implements orchestrator.Specialist.
func (s *ExecSpecialist) Generate(ctx context.Context, t *task.Task, brief orchestrator.Brief) (*draft.Draft, error) {
	req := specialistRequest{RequestID: uuid.NewString(), Task: t, Brief: brief}
	var d draft.Draft
	if err := runJSON(ctx, s.Command, s.Timeout, req, &d); err != nil {
		return nil, err
	}
	if d.TaskID == "" {
		d.TaskID = t.ID
	}
	return &d, nil
}
