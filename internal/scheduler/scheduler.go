// Package scheduler answers "which task runs next?" and "which deferred
// tasks must be promoted now?" deterministically given a ProjectState.
//
// Unlike the teacher's heap-based priority scheduler, selection here is a
// single insertion-order scan: §8 property 6 requires select_next_task to
// be deterministic given the state, and §4.1 defines "next" as "earliest
// in the task list", not priority-ordered.
package scheduler

import (
	"log/slog"
	"strings"

	"github.com/weavehq/weave/internal/state"
	"github.com/weavehq/weave/internal/task"
)

// SelectNextTask returns the first task (in task-list insertion order)
// whose status is PENDING and all of whose current dependencies are DONE.
// It never returns a DEFERRED, IN_PROGRESS, IN_REVIEW, DONE, FAILED, or
// TERMINATED task, and returns nil when no task qualifies.
func SelectNextTask(s *state.ProjectState) *task.Task {
	byID := s.TasksByID()
	for _, t := range s.Tasks {
		if t.Status != task.StatusPending {
			continue
		}
		if t.CanRun(byID) {
			return t
		}
	}
	return nil
}

// PromotionResult reports the outcome of one check_deferred_triggers call.
type PromotionResult struct {
	Promoted  []string
	Ambiguous []string
}

// CheckDeferredTriggers scans every DEFERRED task and promotes (status ->
// PENDING, suspended dependencies restored) those whose defer_trigger
// names completedTaskID and whose condition matches per §4.1. Promotion of
// a task recursively re-evaluates downstream deferred tasks, since a
// promoted task's restored dependencies may themselves satisfy other
// deferred tasks' triggers (e.g. chained "T:promoted" triggers).
func CheckDeferredTriggers(s *state.ProjectState, completedTaskID string, logger *slog.Logger) PromotionResult {
	if logger == nil {
		logger = slog.Default()
	}
	var result PromotionResult
	frontier := []string{completedTaskID}

	for len(frontier) > 0 {
		triggerTaskID := frontier[0]
		frontier = frontier[1:]

		for _, t := range s.Tasks {
			if t.Status != task.StatusDeferred || t.DeferTrigger == nil {
				continue
			}
			triggerTask, cond, ok := splitTrigger(*t.DeferTrigger)
			if !ok || triggerTask != triggerTaskID {
				continue
			}
			matched, ambiguous := matchesCondition(s, triggerTaskID, cond)
			if !matched {
				continue
			}
			if ambiguous {
				result.Ambiguous = append(result.Ambiguous, t.ID)
				logger.Warn("ambiguous defer_trigger match, promoting on first match",
					"task_id", t.ID, "trigger", *t.DeferTrigger)
			}
			promote(t)
			logger.Info("promoted deferred task", "task_id", t.ID, "trigger", *t.DeferTrigger)
			result.Promoted = append(result.Promoted, t.ID)
			frontier = append(frontier, t.ID)
		}
	}

	return result
}

// splitTrigger parses "TASK-ID:condition" into its parts.
func splitTrigger(trigger string) (taskID, cond string, ok bool) {
	idx := strings.IndexByte(trigger, ':')
	if idx < 0 {
		return "", "", false
	}
	return trigger[:idx], trigger[idx+1:], true
}

// matchesCondition implements the well-known-token and gate-output-tag
// matching rule resolved in SPEC_FULL.md (supplemented feature 1): cond
// matches if it is "completed" or "promoted", or if it is a case-sensitive
// substring of the tag portion (gate kind) or of the output text of any gate
// result "<triggerTaskID>:*" recorded for triggerTaskID. ambiguous reports
// whether more than one gate result matched.
func matchesCondition(s *state.ProjectState, triggerTaskID, cond string) (matched, ambiguous bool) {
	if cond == "completed" || cond == "promoted" {
		return true, false
	}
	matches := 0
	for _, r := range s.GateResultsForTask(triggerTaskID) {
		tag := string(r.Kind)
		if strings.Contains(tag, cond) || strings.Contains(r.Output, cond) {
			matches++
		}
	}
	return matches > 0, matches > 1
}

// promote reverts a deferred task to PENDING and restores its suspended
// dependencies, per §4.1's promotion contract.
func promote(t *task.Task) {
	t.Status = task.StatusPending
	if len(t.SuspendedDependencies) > 0 {
		t.Dependencies = append(t.Dependencies, t.SuspendedDependencies...)
		t.SuspendedDependencies = nil
	}
	t.DeferTrigger = nil
}
