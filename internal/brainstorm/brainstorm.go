package brainstorm

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/weavehq/weave/internal/review"
	"github.com/weavehq/weave/internal/state"
	"github.com/weavehq/weave/internal/task"
)

// Mode selects how run_brainstorm resolves flagged tasks.
type Mode string

const (
	ModeAuto        Mode = "auto"
	ModeInteractive Mode = "interactive"
	ModeFile        Mode = "file"
)

// Flagged is one task flagged by a risk check, with the reason text.
type Flagged struct {
	TaskID string
	Reason string
}

// PromptQuestion is one entry in a file-mode hook prompt, per §6.3.
type PromptQuestion struct {
	TaskID     string   `json:"task_id"`
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	RiskReason string   `json:"risk_reason,omitempty"`
}

// Prompt is the JSON document file-mode hooks write, per §6.3.
type Prompt struct {
	HookName  string           `json:"hook_name"`
	Questions []PromptQuestion `json:"questions"`
}

// PromptAnswer mirrors one prompt question with the chosen answer.
type PromptAnswer struct {
	TaskID   string `json:"task_id"`
	Question string `json:"question"`
	Options  []string `json:"options"`
	Answer   string `json:"answer"`
	Feedback string `json:"feedback,omitempty"`
}

// Response is the JSON document a human supplies back for file-mode hooks.
type Response struct {
	HookName string         `json:"hook_name"`
	Answers  []PromptAnswer `json:"answers"`
}

// DefaultOptions are the options offered for every flagged task. Split is
// deliberately not offered here: it needs a safe/risky TaskSpec pair that
// neither the interactive nor file-mode answer format can carry, so it's
// only reachable by calling Split directly.
var DefaultOptions = []string{"defer", "restore", "terminate", "drop", "ignore"}

// InputFunc obtains a decision synchronously for interactive mode; it
// returns the chosen option (one of DefaultOptions) and optional feedback.
type InputFunc func(f Flagged) (answer, feedback string)

// RunResult is the outcome of one run_brainstorm call.
type RunResult string

const (
	RunResolved   RunResult = "resolved"
	RunUnresolved RunResult = "unresolved"
)

// Options configures a run_brainstorm call.
type Options struct {
	Mode         Mode
	Input        InputFunc // required for ModeInteractive
	PromptPath   string    // used for ModeFile
	ResponsePath string    // used for ModeFile
	Config       Config
}

// Run evaluates checks against every task in s and resolves flagged tasks
// per the configured mode, appending a BrainstormResult for every decision.
// See §4.3.
func Run(s *state.ProjectState, hookName string, checks map[string]RiskCheck, opts Options) (RunResult, error) {
	flagged := evaluate(s, checks, opts.Config)
	if len(flagged) == 0 {
		return RunResolved, nil
	}

	switch opts.Mode {
	case ModeAuto:
		return runAuto(s, hookName, flagged)
	case ModeInteractive:
		return runInteractive(s, hookName, flagged, opts.Input)
	case ModeFile:
		return runFile(s, hookName, flagged, opts.PromptPath, opts.ResponsePath)
	default:
		return RunUnresolved, fmt.Errorf("unknown brainstorm mode %q", opts.Mode)
	}
}

// evaluate runs every check against every task. Checks are pure and
// read-only over the task slice, so each task's checks run in its own
// goroutine via errgroup; results land in a slot per task index and are
// flattened in task order afterward, so the flagged list stays
// deterministic regardless of goroutine completion order. Mutation
// (apply) always happens afterward, single-threaded.
func evaluate(s *state.ProjectState, checks map[string]RiskCheck, cfg Config) []Flagged {
	tasks := s.Tasks
	reasons := make([]string, len(tasks))

	var g errgroup.Group
	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			if t.Status.IsTerminal() || t.Status == task.StatusDeferred {
				return nil
			}
			for _, check := range checks {
				if reason := check(t, tasks, cfg); reason != "" {
					reasons[i] = reason
					break
				}
			}
			return nil
		})
	}
	_ = g.Wait() // checks never return an error

	var out []Flagged
	for i, reason := range reasons {
		if reason != "" {
			out = append(out, Flagged{TaskID: tasks[i].ID, Reason: reason})
		}
	}
	return out
}

func runAuto(s *state.ProjectState, hookName string, flagged []Flagged) (RunResult, error) {
	for _, f := range flagged {
		trigger := f.TaskID + ":promoted"
		if err := Defer(s, f.TaskID, trigger); err != nil {
			return RunUnresolved, err
		}
		record(s, hookName, f, "defer", "defer (auto mode default action)")
	}
	return RunResolved, nil
}

func runInteractive(s *state.ProjectState, hookName string, flagged []Flagged, input InputFunc) (RunResult, error) {
	if input == nil {
		return RunUnresolved, fmt.Errorf("interactive mode requires an input function")
	}
	for _, f := range flagged {
		answer, feedback := input(f)
		if err := apply(s, f.TaskID, answer, feedback); err != nil {
			return RunUnresolved, err
		}
		record(s, hookName, f, answer, feedback)
	}
	return RunResolved, nil
}

func runFile(s *state.ProjectState, hookName string, flagged []Flagged, promptPath, responsePath string) (RunResult, error) {
	if _, err := os.Stat(responsePath); err != nil {
		prompt := Prompt{HookName: hookName}
		for _, f := range flagged {
			prompt.Questions = append(prompt.Questions, PromptQuestion{
				TaskID: f.TaskID, Question: "how should this task be handled?",
				Options: DefaultOptions, RiskReason: f.Reason,
			})
		}
		data, err := json.MarshalIndent(prompt, "", "  ")
		if err != nil {
			return RunUnresolved, err
		}
		if err := os.WriteFile(promptPath, data, 0o644); err != nil {
			return RunUnresolved, err
		}
		return RunUnresolved, nil
	}

	data, err := os.ReadFile(responsePath)
	if err != nil {
		return RunUnresolved, nil
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return RunUnresolved, err
	}
	byTaskID := make(map[string]PromptAnswer, len(resp.Answers))
	for _, a := range resp.Answers {
		byTaskID[a.TaskID] = a
	}
	for _, f := range flagged {
		a, ok := byTaskID[f.TaskID]
		if !ok {
			return RunUnresolved, fmt.Errorf("missing response for task %s", f.TaskID)
		}
		if err := apply(s, f.TaskID, a.Answer, a.Feedback); err != nil {
			return RunUnresolved, err
		}
		record(s, hookName, f, a.Answer, a.Feedback)
	}
	return RunResolved, nil
}

// apply dispatches a chosen option to the corresponding mutation. "ignore"
// leaves the task untouched but is still recorded for audit.
func apply(s *state.ProjectState, taskID, answer, feedback string) error {
	switch answer {
	case "defer":
		return Defer(s, taskID, taskID+":promoted")
	case "restore":
		return Restore(s, taskID)
	case "terminate":
		return Terminate(s, taskID)
	case "drop":
		return Drop(s, taskID)
	case "ignore":
		return nil
	default:
		return fmt.Errorf("unsupported brainstorm answer %q for task %s", answer, taskID)
	}
}

func record(s *state.ProjectState, hookName string, f Flagged, answer, actionSummary string) {
	s.RecordBrainstormResult(review.BrainstormResult{
		HookName:    hookName,
		TaskID:      f.TaskID,
		Question:    f.Reason,
		Options:     DefaultOptions,
		Answer:      answer,
		ActionTaken: actionSummary,
		Timestamp:   time.Now(),
	})
}
