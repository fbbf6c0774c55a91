package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/weavehq/weave/internal/hooks"
)

// approveStep is the human_check analogue of optionStep: a fixed
// approve/reject choice instead of brainstorm's per-check option list.
type approveStep struct {
	title string
}

func (s approveStep) Title() string       { return s.title }
func (s approveStep) Description() string { return "" }

func (s approveStep) Init(vars Vars) tea.Model {
	return &optionModel{options: []string{"approve", "reject"}}
}

func (s approveStep) Collect(model tea.Model, vars Vars) {
	if m, ok := model.(*optionModel); ok {
		vars["answer"] = m.options[m.cursor]
	}
}

// ApprovalDecisionInput returns a hooks.HumanDecisionFunc that runs a
// two-step Flow (approve/reject, then optional feedback) over the terminal,
// for wiring into orchestrator.Hooks.HumanCheck.
func ApprovalDecisionInput(title string) hooks.HumanDecisionFunc {
	return func() (approved bool, feedback string) {
		flow := NewFlow(approveStep{title: title}, feedbackStep{})
		if err := flow.Run(); err != nil {
			return false, "flow cancelled: " + err.Error()
		}
		vars := flow.Vars()
		answer, _ := vars["answer"].(string)
		feedback, _ = vars["feedback"].(string)
		return strings.TrimSpace(answer) == "approve", feedback
	}
}
