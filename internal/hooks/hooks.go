// Package hooks implements the hook subsystem: ai_review checks,
// human-approval gates, and the brainstorm/critical_review/regenerate
// hook kinds, with the bounded-retry policy for ai_review and human_check.
package hooks

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/weavehq/weave/internal/brainstorm"
	"github.com/weavehq/weave/internal/review"
	"github.com/weavehq/weave/internal/state"
)

// Point is a named hook point in the pipeline.
type Point string

const (
	PointAfterAudit        Point = "after_audit"
	PointAfterDecompose    Point = "after_decompose"
	PointAfterTaskComplete Point = "after_task_complete"
)

// MaxHookAttempts is the retry budget for an ai_review hook, per §4.4.
const MaxHookAttempts = 3

// AICheck is one named ai_review predicate: state -> (warnings, errors).
type AICheck func(s *state.ProjectState) (warnings, errors []string)

// AICheckNames enumerates the configured checks named in §4.4.
const (
	CheckCompleteness      = "completeness"
	CheckBranchAwareness   = "branch_awareness"
	CheckDevelopableRespect = "developable_respect"
	CheckDependencyOrder   = "dependency_order"
	CheckScopeSanity       = "scope_sanity"
	CheckNoFrozenMutation  = "no_frozen_mutation"
)

// RunAIReview runs every configured named check against s and combines
// their warnings/errors into one review.Result; approved iff no errors.
func RunAIReview(s *state.ProjectState, hookName string, checks map[string]AICheck) review.Result {
	var warnings, errs []string
	for _, name := range sortedKeys(checks) {
		w, e := checks[name](s)
		warnings = append(warnings, w...)
		errs = append(errs, e...)
	}
	result := review.Result{
		HookName:    hookName,
		Approved:    len(errs) == 0,
		Issues:      errs,
		Suggestions: warnings,
	}
	s.RecordReviewResult(result)
	return result
}

func sortedKeys(checks map[string]AICheck) []string {
	keys := make([]string, 0, len(checks))
	for k := range checks {
		keys = append(keys, k)
	}
	// Deterministic order: the configured hook kind list in §4.4 is fixed,
	// so a stable lexical sort is enough to make repeated runs reproducible.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// RerunFunc re-runs the phase preceding a hook, applying review feedback
// (issues) before the hook is re-evaluated.
type RerunFunc func(issues []string) error

// RunAIReviewWithRetry runs the ai_review hook up to MaxHookAttempts times,
// re-invoking rerun with the recorded issues between failed attempts (so
// rerun runs at most MaxHookAttempts-1 times). On exhaustion
// it sets blocked_reason and returns the last result with an error, per
// the retry policy in §4.4.
func RunAIReviewWithRetry(s *state.ProjectState, hookName string, checks map[string]AICheck, rerun RerunFunc, logger *slog.Logger) (review.Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var last review.Result
	for attempt := 1; attempt <= MaxHookAttempts; attempt++ {
		last = RunAIReview(s, hookName, checks)
		if last.Approved {
			return last, nil
		}
		logger.Warn("ai_review hook failed", "hook", hookName, "attempt", attempt, "issues", last.Issues)
		if attempt == MaxHookAttempts {
			break
		}
		if rerun == nil {
			break
		}
		if err := rerun(last.Issues); err != nil {
			return last, err
		}
	}
	reason := fmt.Sprintf("ai_review hook %q exhausted %d attempts", hookName, MaxHookAttempts)
	s.SetBlocked(reason)
	return last, errors.New(reason)
}

// HumanDecisionFunc obtains a human_check decision synchronously, for
// interactive mode.
type HumanDecisionFunc func() (approved bool, feedback string)

// RunHumanCheckInteractive prompts synchronously and records the result.
func RunHumanCheckInteractive(s *state.ProjectState, hookName string, input HumanDecisionFunc) review.HumanApproval {
	approved, feedback := input()
	approval := review.HumanApproval{HookName: hookName, Approved: approved, Feedback: feedback, Timestamp: time.Now()}
	s.RecordHumanApproval(approval)
	if !approved {
		s.SetBlocked(fmt.Sprintf("human_check hook %q rejected: %s", hookName, feedback))
	}
	return approval
}

// humanCheckPrompt/Response mirror the brainstorm file-mode format (§6.3),
// specialized to a single yes/no decision with feedback.
type humanCheckPrompt struct {
	HookName string `json:"hook_name"`
	Question string `json:"question"`
}

type humanCheckResponse struct {
	HookName string `json:"hook_name"`
	Approved bool   `json:"approved"`
	Feedback string `json:"feedback,omitempty"`
}

// RunHumanCheckFile implements human_check's file mode: first call writes
// a prompt and returns unresolved; a later call with the response file
// present applies it. Missing response on a later call stays unresolved,
// per §4.3's file-mode semantics (shared with brainstorm).
func RunHumanCheckFile(s *state.ProjectState, hookName, question, promptPath, responsePath string) (brainstorm.RunResult, error) {
	if _, err := os.Stat(responsePath); err != nil {
		data, err := json.MarshalIndent(humanCheckPrompt{HookName: hookName, Question: question}, "", "  ")
		if err != nil {
			return brainstorm.RunUnresolved, err
		}
		if err := os.WriteFile(promptPath, data, 0o644); err != nil {
			return brainstorm.RunUnresolved, err
		}
		return brainstorm.RunUnresolved, nil
	}

	data, err := os.ReadFile(responsePath)
	if err != nil {
		return brainstorm.RunUnresolved, nil
	}
	var resp humanCheckResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return brainstorm.RunUnresolved, err
	}
	approval := review.HumanApproval{HookName: hookName, Approved: resp.Approved, Feedback: resp.Feedback, Timestamp: time.Now()}
	s.RecordHumanApproval(approval)
	if !resp.Approved {
		s.SetBlocked(fmt.Sprintf("human_check hook %q rejected: %s", hookName, resp.Feedback))
		return brainstorm.RunUnresolved, nil
	}
	return brainstorm.RunResolved, nil
}

// RunBrainstorm invokes the brainstorm subsystem for the "brainstorm" hook
// kind.
func RunBrainstorm(s *state.ProjectState, hookName string, checks map[string]brainstorm.RiskCheck, opts brainstorm.Options) (brainstorm.RunResult, error) {
	return brainstorm.Run(s, hookName, checks, opts)
}

// RunCriticalReview invokes the brainstorm subsystem for the
// "critical_review" hook kind; it is semantically identical to
// RunBrainstorm but named separately since it fires at a different hook
// point with its own configured check set.
func RunCriticalReview(s *state.ProjectState, hookName string, checks map[string]brainstorm.RiskCheck, opts brainstorm.Options) (brainstorm.RunResult, error) {
	return brainstorm.Run(s, hookName, checks, opts)
}

// RegenerateFunc fires a downstream side effect (dashboard / dependency
// graph regeneration). It never blocks the pipeline: errors are logged,
// not surfaced as blocked_reason.
type RegenerateFunc func(s *state.ProjectState) error

// RunRegenerate invokes fn and logs (but does not propagate) any error,
// per §4.4: "never blocks".
func RunRegenerate(s *state.ProjectState, fn RegenerateFunc, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	if fn == nil {
		return
	}
	if err := fn(s); err != nil {
		logger.Warn("regenerate hook failed", "error", err)
	}
}
