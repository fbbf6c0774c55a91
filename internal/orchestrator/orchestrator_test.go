package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/weavehq/weave/internal/draft"
	"github.com/weavehq/weave/internal/gate"
	"github.com/weavehq/weave/internal/integration"
	"github.com/weavehq/weave/internal/review"
	"github.com/weavehq/weave/internal/state"
	"github.com/weavehq/weave/internal/task"
)

type fakeSpecialist struct {
	calls int
	err   error
}

func (f *fakeSpecialist) Generate(ctx context.Context, t *task.Task, b Brief) (*draft.Draft, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	d := draft.New(t.ID)
	d.Files["main.go"] = "package main"
	return d, nil
}

type fakeReviewer struct {
	decisions    []review.DecisionKind
	gateDecision review.DecisionKind
	i            int
}

func (f *fakeReviewer) Review(ctx context.Context, t *task.Task, d *draft.Draft) (review.Decision, error) {
	kind := review.DecisionApprove
	if f.i < len(f.decisions) {
		kind = f.decisions[f.i]
	}
	f.i++
	return review.Decision{TaskID: t.ID, Kind: kind}, nil
}

func (f *fakeReviewer) ReviewGateFailure(ctx context.Context, t *task.Task) (review.Decision, error) {
	kind := f.gateDecision
	if kind == "" {
		kind = review.DecisionReject
	}
	return review.Decision{TaskID: t.ID, Kind: kind}, nil
}

type fakeGates struct {
	failFirstN int
	calls      int
}

func (f *fakeGates) RunAll(ctx context.Context, t *task.Task, d *draft.Draft) ([]gate.Result, error) {
	f.calls++
	status := gate.StatusPass
	if f.calls <= f.failFirstN {
		status = gate.StatusFail
	}
	return []gate.Result{{TaskID: t.ID, Kind: task.GateUnit, Status: status, Output: "ran"}}, nil
}

type fakeIntegration struct {
	pass bool
}

func (f *fakeIntegration) Run(ctx context.Context, test integration.Test) (integration.Result, error) {
	return integration.Result{TestName: test.Name, Passed: f.pass, CoveredTaskIDs: test.CoveredTaskIDs}, nil
}

func oneTaskState() *state.ProjectState {
	s := state.New("req")
	t1 := task.New("T1", "only task")
	t1.Gates = []task.GateKind{task.GateUnit}
	_ = s.AppendTask(t1)
	s.Phase = state.PhaseExecute
	return s
}

func TestRunCompletesSingleTaskAndIntegrates(t *testing.T) {
	s := oneTaskState()
	o := New(DefaultConfig(), Backends{
		Specialist:        &fakeSpecialist{},
		Reviewer:          &fakeReviewer{},
		Gates:             &fakeGates{},
		IntegrationRunner: &fakeIntegration{pass: true},
	}, Hooks{}, nil, nil, nil)

	if err := o.Run(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t1, _ := s.TaskByID("T1")
	if t1.Status != task.StatusDone {
		t.Errorf("expected T1 DONE, got %s", t1.Status)
	}
	if s.Phase != state.PhaseIntegrate {
		t.Errorf("expected phase INTEGRATE, got %s", s.Phase)
	}
	if len(s.IntegrationResults) != 1 || !s.IntegrationResults[0].Passed {
		t.Errorf("expected one passing integration result, got %+v", s.IntegrationResults)
	}
}

func TestRunRevisesThenApproves(t *testing.T) {
	s := oneTaskState()
	specialist := &fakeSpecialist{}
	o := New(DefaultConfig(), Backends{
		Specialist:        specialist,
		Reviewer:          &fakeReviewer{decisions: []review.DecisionKind{review.DecisionRevise, review.DecisionApprove}},
		Gates:             &fakeGates{},
		IntegrationRunner: &fakeIntegration{pass: true},
	}, Hooks{}, nil, nil, nil)

	if err := o.Run(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t1, _ := s.TaskByID("T1")
	if t1.Status != task.StatusDone {
		t.Errorf("expected T1 DONE after one revision, got %s", t1.Status)
	}
	if specialist.calls != 2 {
		t.Errorf("expected specialist called twice (initial + revision), got %d", specialist.calls)
	}
}

func TestRunBlocksOnRevisionExhaustion(t *testing.T) {
	s := oneTaskState()
	// MaxRevisions=3 means the loop tolerates 3 REVISE decisions and only
	// pauses once the 4th attempt also comes back REVISE.
	o := New(DefaultConfig(), Backends{
		Specialist: &fakeSpecialist{},
		Reviewer: &fakeReviewer{decisions: []review.DecisionKind{
			review.DecisionRevise, review.DecisionRevise, review.DecisionRevise, review.DecisionRevise,
		}},
		Gates: &fakeGates{},
	}, Hooks{}, nil, nil, nil)

	if err := o.Run(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.BlockedReason == nil {
		t.Fatalf("expected blocked_reason set on revision exhaustion")
	}
	t1, _ := s.TaskByID("T1")
	if t1.Status != task.StatusInProgress {
		t.Errorf("expected T1 left IN_PROGRESS (paused, resumable), got %s", t1.Status)
	}
}

func TestRunToleratesMaxRevisionsBeforePausing(t *testing.T) {
	s := oneTaskState()
	specialist := &fakeSpecialist{}
	// Exactly MaxRevisions (3) REVISE decisions, approved on the 4th
	// attempt: the boundary case that must NOT pause.
	o := New(DefaultConfig(), Backends{
		Specialist: specialist,
		Reviewer: &fakeReviewer{decisions: []review.DecisionKind{
			review.DecisionRevise, review.DecisionRevise, review.DecisionRevise, review.DecisionApprove,
		}},
		Gates:             &fakeGates{},
		IntegrationRunner: &fakeIntegration{pass: true},
	}, Hooks{}, nil, nil, nil)

	if err := o.Run(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.BlockedReason != nil {
		t.Fatalf("expected no pause, task approved on the 4th attempt: %v", *s.BlockedReason)
	}
	t1, _ := s.TaskByID("T1")
	if t1.Status != task.StatusDone {
		t.Errorf("expected T1 DONE after 3 revisions, got %s", t1.Status)
	}
	if specialist.calls != 4 {
		t.Errorf("expected specialist called 4 times (initial + 3 revisions), got %d", specialist.calls)
	}
}

func TestRunRejectFailsTask(t *testing.T) {
	s := oneTaskState()
	o := New(DefaultConfig(), Backends{
		Specialist: &fakeSpecialist{},
		Reviewer:   &fakeReviewer{decisions: []review.DecisionKind{review.DecisionReject}},
		Gates:      &fakeGates{},
	}, Hooks{}, nil, nil, nil)

	if err := o.Run(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t1, _ := s.TaskByID("T1")
	if t1.Status != task.StatusFailed {
		t.Errorf("expected T1 FAILED, got %s", t1.Status)
	}
}

func TestRunGateRetryThenPass(t *testing.T) {
	s := oneTaskState()
	gates := &fakeGates{failFirstN: 1}
	o := New(DefaultConfig(), Backends{
		Specialist:        &fakeSpecialist{},
		Reviewer:          &fakeReviewer{},
		Gates:             gates,
		IntegrationRunner: &fakeIntegration{pass: true},
	}, Hooks{}, nil, nil, nil)

	if err := o.Run(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t1, _ := s.TaskByID("T1")
	if t1.Status != task.StatusDone {
		t.Errorf("expected T1 DONE after gate retry, got %s", t1.Status)
	}
}

func TestRunGateExhaustionOverriddenByReviewerApproval(t *testing.T) {
	s := oneTaskState()
	gates := &fakeGates{failFirstN: 99}
	o := New(DefaultConfig(), Backends{
		Specialist:        &fakeSpecialist{},
		Reviewer:          &fakeReviewer{gateDecision: review.DecisionApprove},
		Gates:             gates,
		IntegrationRunner: &fakeIntegration{pass: true},
	}, Hooks{}, nil, nil, nil)

	if err := o.Run(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t1, _ := s.TaskByID("T1")
	if t1.Status != task.StatusDone {
		t.Errorf("expected T1 DONE via gate-failure override, got %s", t1.Status)
	}
}

func TestRunGateLoopRunsMaxGateRetriesPlusOneAttempts(t *testing.T) {
	s := oneTaskState()
	// MaxGateRetries=2 means 3 gate runs total; a pass on the 3rd (final)
	// attempt must still succeed the task, not have already given up.
	gates := &fakeGates{failFirstN: 2}
	o := New(DefaultConfig(), Backends{
		Specialist:        &fakeSpecialist{},
		Reviewer:          &fakeReviewer{},
		Gates:             gates,
		IntegrationRunner: &fakeIntegration{pass: true},
	}, Hooks{}, nil, nil, nil)

	if err := o.Run(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t1, _ := s.TaskByID("T1")
	if t1.Status != task.StatusDone {
		t.Errorf("expected T1 DONE after passing on the 3rd gate attempt, got %s", t1.Status)
	}
	if gates.calls != 3 {
		t.Errorf("expected 3 gate runs (MaxGateRetries+1), got %d", gates.calls)
	}
}

func TestRunGateExhaustionBlocksWithoutOverride(t *testing.T) {
	s := oneTaskState()
	gates := &fakeGates{failFirstN: 99}
	o := New(DefaultConfig(), Backends{
		Specialist: &fakeSpecialist{},
		Reviewer:   &fakeReviewer{gateDecision: review.DecisionReject},
		Gates:      gates,
	}, Hooks{}, nil, nil, nil)

	if err := o.Run(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.BlockedReason == nil {
		t.Fatalf("expected blocked_reason set on gate retry exhaustion")
	}
}

func TestRunSpecialistFailurePropagatesError(t *testing.T) {
	s := oneTaskState()
	cfg := DefaultConfig()
	cfg.RetryAttempts = 1
	o := New(cfg, Backends{
		Specialist: &fakeSpecialist{err: errors.New("backend down")},
		Reviewer:   &fakeReviewer{},
		Gates:      &fakeGates{},
	}, Hooks{}, nil, nil, nil)

	err := o.Run(context.Background(), s)
	if err == nil {
		t.Fatalf("expected error from exhausted specialist backend")
	}
	t1, _ := s.TaskByID("T1")
	if t1.Status != task.StatusFailed {
		t.Errorf("expected T1 FAILED, got %s", t1.Status)
	}
}

func TestRunIntegrationExhaustionReturnsToDecompose(t *testing.T) {
	s := oneTaskState()
	o := New(DefaultConfig(), Backends{
		Specialist:        &fakeSpecialist{},
		Reviewer:          &fakeReviewer{},
		Gates:             &fakeGates{},
		IntegrationRunner: &fakeIntegration{pass: false},
	}, Hooks{}, nil, nil, nil)

	if err := o.Run(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Phase != state.PhaseDecompose {
		t.Errorf("expected phase DECOMPOSE after integration exhaustion, got %s", s.Phase)
	}
	if s.BlockedReason != nil {
		t.Errorf("expected no blocked_reason on integration exhaustion, phase revert is the signal, got %v", *s.BlockedReason)
	}
	if len(s.IntegrationResults) != o.cfg.MaxIntegrationRetries {
		t.Errorf("expected %d integration attempts recorded, got %d", o.cfg.MaxIntegrationRetries, len(s.IntegrationResults))
	}
}

func TestRunEmptyTaskGraphAdvancesToIntegrate(t *testing.T) {
	s := state.New("req")
	s.Phase = state.PhaseExecute
	o := New(DefaultConfig(), Backends{
		Specialist:        &fakeSpecialist{},
		Reviewer:          &fakeReviewer{},
		Gates:             &fakeGates{},
		IntegrationRunner: &fakeIntegration{pass: true},
	}, Hooks{}, nil, nil, nil)

	if err := o.Run(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Phase != state.PhaseIntegrate {
		t.Errorf("expected phase INTEGRATE for an empty task graph, got %s", s.Phase)
	}
	if len(s.IntegrationResults) != 1 || !s.IntegrationResults[0].Passed {
		t.Errorf("expected one passing integration result, got %+v", s.IntegrationResults)
	}
}
