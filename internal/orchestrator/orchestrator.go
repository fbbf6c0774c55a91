// Package orchestrator drives the execute/verify loop (§4.5): select the
// next runnable task, assemble its brief, run it through the specialist
// and reviewer with a bounded revision budget, run its gates with a
// bounded retry budget, and fall through to the closing integration run
// once every task is DONE. Each backend call (specialist, reviewer, gate
// registry, integration runner) is wrapped in a circuit breaker with
// bounded exponential backoff, so a flaky backend degrades into
// blocked_reason rather than a hard crash.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	weaveerrors "github.com/weavehq/weave/internal/errors"
	"github.com/weavehq/weave/internal/draft"
	"github.com/weavehq/weave/internal/gate"
	"github.com/weavehq/weave/internal/hooks"
	"github.com/weavehq/weave/internal/integration"
	"github.com/weavehq/weave/internal/metrics"
	"github.com/weavehq/weave/internal/review"
	"github.com/weavehq/weave/internal/scheduler"
	"github.com/weavehq/weave/internal/state"
	"github.com/weavehq/weave/internal/storage"
	"github.com/weavehq/weave/internal/task"
)

// Specialist produces a draft for a task given its brief.
type Specialist interface {
	Generate(ctx context.Context, t *task.Task, brief Brief) (*draft.Draft, error)
}

// Config holds orchestrator run budgets, per §4.5's named limits.
type Config struct {
	MaxRevisions          int
	MaxGateRetries        int
	MaxIntegrationRetries int
	PollInterval          time.Duration

	RetryAttempts uint64 // per-backend-call retry budget under the circuit breaker
}

// DefaultConfig returns the budgets named in §4.5.
func DefaultConfig() *Config {
	return &Config{
		MaxRevisions:          3,
		MaxGateRetries:        2,
		MaxIntegrationRetries: 2,
		PollInterval:          2 * time.Second,
		RetryAttempts:         3,
	}
}

// Backends bundles every pluggable collaborator the orchestrator drives.
type Backends struct {
	Specialist        Specialist
	Reviewer          review.Reviewer
	Gates             gate.Registry
	IntegrationRunner integration.Runner
}

// Hooks bundles the hook-point callbacks wired in around the core loop.
type Hooks struct {
	AfterTaskComplete   map[string]hooks.AICheck
	HumanCheck          hooks.HumanDecisionFunc // nil disables human_check
	Regenerate          hooks.RegenerateFunc
}

// Orchestrator drives one ProjectState through its execute/verify loop.
type Orchestrator struct {
	cfg      *Config
	backends Backends
	hooks    Hooks
	storage  storage.Backend
	metrics  *metrics.Metrics
	logger   *slog.Logger

	specialistBreaker  *gobreaker.CircuitBreaker[*draft.Draft]
	reviewerBreaker    *gobreaker.CircuitBreaker[review.Decision]
	gateBreaker        *gobreaker.CircuitBreaker[[]gate.Result]
	integrationBreaker *gobreaker.CircuitBreaker[[]integration.Result]
}

// New constructs an Orchestrator. backend and m may be nil (no persistence,
// no metrics, respectively).
func New(cfg *Config, backends Backends, h Hooks, backend storage.Backend, m *metrics.Metrics, logger *slog.Logger) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:                cfg,
		backends:           backends,
		hooks:              h,
		storage:            backend,
		metrics:            m,
		logger:             logger,
		specialistBreaker:  NewBreaker[*draft.Draft]("specialist", logger),
		reviewerBreaker:    NewBreaker[review.Decision]("reviewer", logger),
		gateBreaker:        NewBreaker[[]gate.Result]("gates", logger),
		integrationBreaker: NewBreaker[[]integration.Result]("integration", logger),
	}
}

// Run drives s through the execute/verify loop until no further task can
// be started: either every task is DONE and integration has run, the
// state is blocked (blocked_reason set, safe to resume later), or a
// scheduling dead end is reached (e.g. every remaining task is DEFERRED).
func (o *Orchestrator) Run(ctx context.Context, s *state.ProjectState) error {
	for {
		if s.BlockedReason != nil {
			return nil
		}

		next := scheduler.SelectNextTask(s)
		if next == nil {
			if len(s.Tasks) == 0 {
				o.logger.Info("decompose produced no tasks; advancing straight to integration")
				return o.runIntegration(ctx, s)
			}
			if allDone(s) {
				return o.runIntegration(ctx, s)
			}
			o.logger.Info("no runnable task and not all done; pausing", "phase", s.Phase)
			return nil
		}

		if err := o.executeTask(ctx, s, next); err != nil {
			return err
		}
		o.persist(s)
	}
}

func allDone(s *state.ProjectState) bool {
	for _, t := range s.Tasks {
		if t.Status != task.StatusDone && t.Status != task.StatusTerminated {
			return false
		}
	}
	return len(s.Tasks) > 0
}

func (o *Orchestrator) persist(s *state.ProjectState) {
	if o.storage == nil {
		return
	}
	if err := o.storage.Save(s.RawRequest, s); err != nil {
		o.logger.Warn("persist state failed", "error", err)
	}
}

// executeTask runs one task end to end: specialist -> reviewer (bounded
// revisions) -> gates (bounded retries) -> complete -> after_task_complete
// hooks.
func (o *Orchestrator) executeTask(ctx context.Context, s *state.ProjectState, t *task.Task) error {
	start := time.Now()
	s.StartTask(t)
	o.logger.Info("task started", "task_id", t.ID)

	brief := assembleBrief(s, t)
	d, approved, err := o.reviewLoop(ctx, s, t, brief)
	if err != nil {
		s.FailTask(t)
		o.recordDuration(start)
		o.recordFailure()
		return err
	}
	if !approved {
		// Rejected, paused, or revisions exhausted: reviewLoop already set
		// FailTask or blocked_reason as appropriate.
		o.recordDuration(start)
		return nil
	}

	passed, err := o.gateLoop(ctx, s, t, d)
	if err != nil {
		s.FailTask(t)
		o.recordDuration(start)
		o.recordFailure()
		return err
	}
	if !passed {
		o.recordDuration(start)
		return nil
	}

	s.CompleteTask(t)
	o.recordDuration(start)
	if o.metrics != nil {
		o.metrics.TasksCompleted.Inc()
	}
	o.logger.Info("task completed", "task_id", t.ID)

	o.runAfterTaskComplete(s, t)

	scheduler.CheckDeferredTriggers(s, t.ID, o.logger)
	return nil
}

func (o *Orchestrator) recordDuration(start time.Time) {
	if o.metrics != nil {
		o.metrics.TaskDuration.Observe(time.Since(start).Seconds())
	}
}

func (o *Orchestrator) recordFailure() {
	if o.metrics != nil {
		o.metrics.TasksFailed.Inc()
	}
}

// reviewLoop runs the specialist/reviewer cycle, tolerating up to
// MaxRevisions REVISE decisions before giving up on the next one.
// It returns the final approved draft and true, or (nil, false, nil) if
// the task was rejected/paused/exhausted (state already reflects that),
// or a non-nil error on a backend failure.
func (o *Orchestrator) reviewLoop(ctx context.Context, s *state.ProjectState, t *task.Task, brief Brief) (*draft.Draft, bool, error) {
	var feedback []string
	var prev *draft.Draft

	for attempt := 0; attempt <= o.cfg.MaxRevisions; attempt++ {
		brief.RevisionFeedback = feedback
		brief.PreviousDraft = prev

		d, err := callWithRetry(ctx, o.specialistBreaker, o.cfg.RetryAttempts, func() (*draft.Draft, error) {
			return o.backends.Specialist.Generate(ctx, t, brief)
		})
		if err != nil {
			return nil, false, weaveerrors.Wrap(weaveerrors.CodeSpecialistFailed, fmt.Sprintf("specialist failed for task %s", t.ID), err)
		}
		s.RecordDraft(d)

		decision, err := callWithRetry(ctx, o.reviewerBreaker, o.cfg.RetryAttempts, func() (review.Decision, error) {
			return o.backends.Reviewer.Review(ctx, t, d)
		})
		if err != nil {
			return nil, false, weaveerrors.Wrap(weaveerrors.CodeReviewerFailed, fmt.Sprintf("reviewer failed for task %s", t.ID), err)
		}
		s.RecordDecision(decision)

		switch decision.Kind {
		case review.DecisionApprove:
			return d, true, nil
		case review.DecisionRevise:
			feedback = append(feedback, decision.Feedback)
			prev = d
			continue
		case review.DecisionReject:
			s.FailTask(t)
			return nil, false, nil
		case review.DecisionPause:
			s.SetBlocked(fmt.Sprintf("task %s paused by reviewer: %s", t.ID, decision.Feedback))
			return nil, false, nil
		default:
			return nil, false, weaveerrors.New(weaveerrors.CodeReviewerFailed, fmt.Sprintf("unknown review decision %q", decision.Kind))
		}
	}

	reason := fmt.Sprintf("task %s exhausted %d revisions", t.ID, o.cfg.MaxRevisions)
	s.SetBlocked(reason)
	return nil, false, nil
}

// gateLoop runs t's gates up to MaxGateRetries+1 times (the first run plus
// MaxGateRetries retries), regenerating the
// draft with gate-failure feedback between attempts. On final exhaustion
// it gives the reviewer a one-shot chance to APPROVE the failure outright
// (the resolved open question on overriding a stuck gate), otherwise it
// blocks the task.
func (o *Orchestrator) gateLoop(ctx context.Context, s *state.ProjectState, t *task.Task, d *draft.Draft) (bool, error) {
	for attempt := 0; attempt <= o.cfg.MaxGateRetries; attempt++ {
		results, err := callWithRetry(ctx, o.gateBreaker, o.cfg.RetryAttempts, func() ([]gate.Result, error) {
			return o.backends.Gates.RunAll(ctx, t, d)
		})
		if err != nil {
			return false, weaveerrors.Wrap(weaveerrors.CodeGateRunnerFailed, fmt.Sprintf("gate runner failed for task %s", t.ID), err)
		}
		for _, r := range results {
			s.RecordGateResult(r)
			if o.metrics != nil {
				o.metrics.RecordGateRun(string(r.Kind), string(r.Status))
			}
		}
		if gate.AllPass(results) {
			return true, nil
		}

		if attempt == o.cfg.MaxGateRetries {
			decision, err := o.backends.Reviewer.ReviewGateFailure(ctx, t)
			if err == nil && decision.Kind == review.DecisionApprove {
				s.RecordDecision(decision)
				o.logger.Warn("gate failure overridden by reviewer approval", "task_id", t.ID)
				return true, nil
			}
			reason := fmt.Sprintf("task %s exhausted %d gate retries", t.ID, o.cfg.MaxGateRetries)
			s.SetBlocked(reason)
			return false, nil
		}

		feedback := gateFailureFeedback(results)
		regenerated, err := callWithRetry(ctx, o.specialistBreaker, o.cfg.RetryAttempts, func() (*draft.Draft, error) {
			return o.backends.Specialist.Generate(ctx, t, Brief{Task: t.Clone(), RevisionFeedback: feedback, PreviousDraft: d})
		})
		if err != nil {
			return false, weaveerrors.Wrap(weaveerrors.CodeSpecialistFailed, fmt.Sprintf("specialist regeneration failed for task %s", t.ID), err)
		}
		s.RecordDraft(regenerated)
		d = regenerated
	}
	return false, nil
}

func gateFailureFeedback(results []gate.Result) []string {
	var out []string
	for _, r := range results {
		if r.Status == gate.StatusFail {
			out = append(out, fmt.Sprintf("gate %s failed: %s", r.Kind, r.Output))
		}
	}
	return out
}

// runAfterTaskComplete fires the after_task_complete hook point:
// ai_review (if configured), human_check (if configured), and regenerate,
// per §4.4.
func (o *Orchestrator) runAfterTaskComplete(s *state.ProjectState, t *task.Task) {
	if len(o.hooks.AfterTaskComplete) > 0 {
		hooks.RunAIReview(s, "after_task_complete", o.hooks.AfterTaskComplete)
	}
	if o.hooks.HumanCheck != nil {
		hooks.RunHumanCheckInteractive(s, "after_task_complete", o.hooks.HumanCheck)
	}
	hooks.RunRegenerate(s, o.hooks.Regenerate, o.logger)
}

// runIntegration synthesizes and runs the closing integration test once
// every task is DONE, running it at most MaxIntegrationRetries times in
// total before
// reverting to PhaseDecompose so a caller can inject a diagnostic task,
// per §4.5.
func (o *Orchestrator) runIntegration(ctx context.Context, s *state.ProjectState) error {
	test := integration.Test{Name: "full-integration"}
	for _, t := range s.Tasks {
		if t.Status == task.StatusDone {
			test.CoveredTaskIDs = append(test.CoveredTaskIDs, t.ID)
		}
	}

	for attempt := 1; attempt <= o.cfg.MaxIntegrationRetries; attempt++ {
		results, err := callWithRetry(ctx, o.integrationBreaker, o.cfg.RetryAttempts, func() ([]integration.Result, error) {
			r, err := o.backends.IntegrationRunner.Run(ctx, test)
			return []integration.Result{r}, err
		})
		if err != nil {
			return weaveerrors.Wrap(weaveerrors.CodeIntegrationFailed, "integration runner failed", err)
		}
		for _, r := range results {
			s.RecordIntegrationResult(r)
		}
		if allIntegrationsPassed(results) {
			s.AdvancePhase(state.PhaseIntegrate)
			o.logger.Info("integration passed")
			o.persist(s)
			return nil
		}
		if attempt == o.cfg.MaxIntegrationRetries {
			s.AdvancePhase(state.PhaseDecompose)
			o.logger.Warn("integration exhausted retries; returning to decompose for diagnostic task injection",
				"retries", o.cfg.MaxIntegrationRetries)
			o.persist(s)
			return nil
		}
	}
	return nil
}

func allIntegrationsPassed(results []integration.Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
