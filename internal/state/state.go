// Package state defines ProjectState, the root aggregate that the entire
// orchestration engine reads and mutates. It exclusively owns tasks,
// drafts, gate results, and every other sub-entity; callers receive
// transient copies, never live references, when handing state to backends.
package state

import (
	"fmt"
	"sort"
	"time"

	"github.com/weavehq/weave/internal/audit"
	"github.com/weavehq/weave/internal/draft"
	"github.com/weavehq/weave/internal/gate"
	"github.com/weavehq/weave/internal/integration"
	"github.com/weavehq/weave/internal/review"
	"github.com/weavehq/weave/internal/task"
)

// Phase is a named stage of the pipeline; the state holds exactly one.
type Phase string

const (
	PhaseIntake    Phase = "intake"
	PhaseAudit     Phase = "audit"
	PhaseDecompose Phase = "decompose"
	PhaseExecute   Phase = "execute"
	PhaseVerify    Phase = "verify"
	PhaseIntegrate Phase = "integrate"
)

// phaseOrder gives the sequence phases advance through, used to validate
// phase-function preconditions (§8 idempotence law).
var phaseOrder = []Phase{PhaseIntake, PhaseAudit, PhaseDecompose, PhaseExecute, PhaseVerify, PhaseIntegrate}

// ProjectState is the root aggregate: the single shared state object every
// component reads and mutates.
type ProjectState struct {
	RawRequest   string            `json:"raw_request"`
	ParsedIntent map[string]any    `json:"parsed_intent"`

	AuditItems []audit.Item `json:"audit_items"`

	Tasks         []*task.Task `json:"tasks"`
	CurrentTaskID string       `json:"current_task_id,omitempty"`

	Drafts      map[string]*draft.Draft `json:"drafts"`
	GateResults map[string]gate.Result  `json:"gate_results"`

	IntegrationResults []integration.Result `json:"integration_results"`

	Phase         Phase   `json:"phase"`
	BlockedReason *string `json:"blocked_reason,omitempty"`

	HumanDecisions []review.Decision         `json:"human_decisions"`
	ReviewResults  []review.Result           `json:"review_results"`
	HumanApprovals []review.HumanApproval    `json:"human_approvals"`
	BrainstormResults []review.BrainstormResult `json:"brainstorm_results"`

	OptimizationHistory   []string       `json:"optimization_history,omitempty"`
	LastOptimization      *time.Time     `json:"last_optimization,omitempty"`
	OptimizationMetadata  map[string]any `json:"optimization_metadata,omitempty"`
}

// New constructs a fresh ProjectState for a raw request, in the INTAKE phase.
func New(rawRequest string) *ProjectState {
	return &ProjectState{
		RawRequest:     rawRequest,
		ParsedIntent:   map[string]any{},
		AuditItems:     []audit.Item{},
		Tasks:          []*task.Task{},
		Drafts:         map[string]*draft.Draft{},
		GateResults:    map[string]gate.Result{},
		Phase:          PhaseIntake,
		HumanDecisions: []review.Decision{},
		ReviewResults:  []review.Result{},
		HumanApprovals: []review.HumanApproval{},
		BrainstormResults: []review.BrainstormResult{},
	}
}

// TaskByID returns the task with the given id, and whether it was found.
func (s *ProjectState) TaskByID(id string) (*task.Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// TasksByID returns a lookup map of every task in the state, used by
// scheduler and validation functions that need O(1) dependency resolution.
func (s *ProjectState) TasksByID() map[string]*task.Task {
	m := make(map[string]*task.Task, len(s.Tasks))
	for _, t := range s.Tasks {
		m[t.ID] = t
	}
	return m
}

// RemoveTask removes the task with id from the state entirely (used by the
// brainstorm drop mutation) and returns whether it was present.
func (s *ProjectState) RemoveTask(id string) bool {
	for i, t := range s.Tasks {
		if t.ID == id {
			s.Tasks = append(s.Tasks[:i], s.Tasks[i+1:]...)
			return true
		}
	}
	return false
}

// AppendTask appends a new task, enforcing invariant 1 (unique ids) and
// the task's own struct-level field requirements.
func (s *ProjectState) AppendTask(t *task.Task) error {
	if err := t.ValidateStruct(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}
	if _, exists := s.TaskByID(t.ID); exists {
		return fmt.Errorf("duplicate task id %s", t.ID)
	}
	s.Tasks = append(s.Tasks, t)
	return nil
}

// ValidateInvariants checks invariants 1, 2, 4, 5, 6, 7, 8 against the
// current state. It does not mutate anything.
func (s *ProjectState) ValidateInvariants() error {
	seen := make(map[string]bool, len(s.Tasks))
	for _, t := range s.Tasks {
		if seen[t.ID] {
			return fmt.Errorf("duplicate task id %s", t.ID)
		}
		seen[t.ID] = true
	}

	byID := s.TasksByID()
	for _, t := range s.Tasks {
		if err := t.ValidateDependencies(byID); err != nil {
			return err
		}
		if t.Status == task.StatusDeferred {
			if t.DeferTrigger == nil || *t.DeferTrigger == "" {
				return fmt.Errorf("deferred task %s has no defer_trigger", t.ID)
			}
		}
	}

	if err := task.DetectCycle(s.Tasks); err != nil {
		return err
	}

	inProgressCount := 0
	for _, t := range s.Tasks {
		if t.Status == task.StatusInProgress {
			inProgressCount++
		}
	}
	if (s.CurrentTaskID != "") != (inProgressCount > 0) {
		return fmt.Errorf("current_task_id set (%v) must agree with an in-progress task existing (%d in progress)", s.CurrentTaskID != "", inProgressCount)
	}

	if s.BlockedReason != nil {
		if s.Phase == PhaseIntake || s.Phase == PhaseAudit || s.Phase == PhaseDecompose {
			return fmt.Errorf("blocked_reason set while phase is %s, must be EXECUTE or later", s.Phase)
		}
	}

	for key, r := range s.GateResults {
		if key != gate.Key(r.TaskID, r.Kind) {
			return fmt.Errorf("gate result key %q does not match <task_id>:<gate_kind> for %+v", key, r)
		}
	}

	return nil
}

// AssertPhase returns an error unless the state's current phase is want,
// enforcing each phase function's precondition (§8 idempotence law: running
// the pipeline twice on an already-past phase is a no-op).
func (s *ProjectState) AssertPhase(want Phase) error {
	if s.Phase != want {
		return fmt.Errorf("expected phase %s, state is in phase %s", want, s.Phase)
	}
	return nil
}

// AdvancePhase sets the state's phase to to. It does not check the
// pipeline order, so it also moves the state back (e.g. to PhaseDecompose).
func (s *ProjectState) AdvancePhase(to Phase) {
	s.Phase = to
}

// IsPastOrAt reports whether the state's phase is at or after target in
// pipeline order.
func (s *ProjectState) IsPastOrAt(target Phase) bool {
	cur := indexOf(s.Phase)
	t := indexOf(target)
	return cur >= t
}

func indexOf(p Phase) int {
	for i, ph := range phaseOrder {
		if ph == p {
			return i
		}
	}
	return -1
}

// SetBlocked sets blocked_reason, per every suspension point in the
// orchestrator design.
func (s *ProjectState) SetBlocked(reason string) {
	s.BlockedReason = &reason
}

// ClearBlocked clears blocked_reason, letting the caller resume.
func (s *ProjectState) ClearBlocked() {
	s.BlockedReason = nil
}

// RecordGateResult stores r under its canonical key, replacing any prior
// result for the same task+kind (gate retry semantics, §3 lifecycle).
func (s *ProjectState) RecordGateResult(r gate.Result) {
	if s.GateResults == nil {
		s.GateResults = map[string]gate.Result{}
	}
	s.GateResults[r.Key()] = r
}

// GateResultsForTask returns every stored gate result whose key is
// prefixed "<taskID>:", in deterministic key order.
func (s *ProjectState) GateResultsForTask(taskID string) []gate.Result {
	prefix := taskID + ":"
	var out []gate.Result
	var keys []string
	for k := range s.GateResults {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, s.GateResults[k])
	}
	return out
}

// RecordDraft stores d keyed by task id, overwriting on revision.
func (s *ProjectState) RecordDraft(d *draft.Draft) {
	if s.Drafts == nil {
		s.Drafts = map[string]*draft.Draft{}
	}
	s.Drafts[d.TaskID] = d
}

// RecordDecision appends a human decision to the audit trail.
func (s *ProjectState) RecordDecision(d review.Decision) {
	s.HumanDecisions = append(s.HumanDecisions, d)
}

// RecordReviewResult appends an AI review result to the audit trail.
func (s *ProjectState) RecordReviewResult(r review.Result) {
	s.ReviewResults = append(s.ReviewResults, r)
}

// RecordHumanApproval appends a human_check verdict to the audit trail.
func (s *ProjectState) RecordHumanApproval(a review.HumanApproval) {
	s.HumanApprovals = append(s.HumanApprovals, a)
}

// RecordBrainstormResult appends a brainstorm mutation decision to the
// audit trail.
func (s *ProjectState) RecordBrainstormResult(b review.BrainstormResult) {
	s.BrainstormResults = append(s.BrainstormResults, b)
}

// RecordIntegrationResult appends one integration test outcome to the
// audit trail.
func (s *ProjectState) RecordIntegrationResult(r integration.Result) {
	s.IntegrationResults = append(s.IntegrationResults, r)
}

// StartTask marks t IN_PROGRESS and sets current_task_id, per invariant 5.
func (s *ProjectState) StartTask(t *task.Task) {
	t.Status = task.StatusInProgress
	s.CurrentTaskID = t.ID
}

// CompleteTask marks t DONE and clears current_task_id.
func (s *ProjectState) CompleteTask(t *task.Task) {
	t.Status = task.StatusDone
	if s.CurrentTaskID == t.ID {
		s.CurrentTaskID = ""
	}
}

// FailTask marks t FAILED and clears current_task_id.
func (s *ProjectState) FailTask(t *task.Task) {
	t.Status = task.StatusFailed
	if s.CurrentTaskID == t.ID {
		s.CurrentTaskID = ""
	}
}
