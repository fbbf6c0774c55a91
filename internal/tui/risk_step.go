package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/weavehq/weave/internal/brainstorm"
)

var (
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// optionStep lets the operator pick one of brainstorm.DefaultOptions for a
// flagged task.
type optionStep struct {
	flagged brainstorm.Flagged
}

func (s optionStep) Title() string { return "task " + s.flagged.TaskID + " flagged" }
func (s optionStep) Description() string { return s.flagged.Reason }

func (s optionStep) Init(vars Vars) tea.Model {
	return &optionModel{options: brainstorm.DefaultOptions}
}

func (s optionStep) Collect(model tea.Model, vars Vars) {
	if m, ok := model.(*optionModel); ok {
		vars["answer"] = m.options[m.cursor]
	}
}

type optionModel struct {
	options []string
	cursor  int
}

func (m *optionModel) Init() tea.Cmd { return nil }

func (m *optionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter", " ":
		return m, Advance()
	}
	return m, nil
}

func (m *optionModel) View() string {
	var b strings.Builder
	for i, opt := range m.options {
		line := "  " + opt
		if i == m.cursor {
			line = cursorStyle.Render("> " + opt)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + hintStyle.Render("↑/↓: choose • enter: confirm"))
	return b.String()
}

// feedbackStep collects optional free-text feedback to attach to the
// decision, e.g. the reason a task was terminated.
type feedbackStep struct{}

func (feedbackStep) Title() string       { return "feedback (optional)" }
func (feedbackStep) Description() string { return "" }

func (feedbackStep) Init(vars Vars) tea.Model {
	ti := textinput.New()
	ti.Placeholder = "press enter to skip"
	ti.Focus()
	ti.Width = 60
	return &feedbackModel{input: ti}
}

func (feedbackStep) Collect(model tea.Model, vars Vars) {
	if m, ok := model.(*feedbackModel); ok {
		vars["feedback"] = m.input.Value()
	}
}

type feedbackModel struct {
	input textinput.Model
}

func (m *feedbackModel) Init() tea.Cmd { return textinput.Blink }

func (m *feedbackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		return m, Advance()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *feedbackModel) View() string {
	return m.input.View() + "\n\n" + hintStyle.Render("enter: confirm")
}

// RiskDecisionInput returns a brainstorm.InputFunc that, for each flagged
// task, runs a two-step Flow (pick an option, then optional feedback) over
// the terminal and feeds the result back to run_brainstorm.
func RiskDecisionInput() brainstorm.InputFunc {
	return func(f brainstorm.Flagged) (answer, feedback string) {
		flow := NewFlow(optionStep{flagged: f}, feedbackStep{})
		if err := flow.Run(); err != nil {
			return "defer", "flow cancelled: " + err.Error()
		}
		vars := flow.Vars()
		answer, _ = vars["answer"].(string)
		feedback, _ = vars["feedback"].(string)
		if answer == "" {
			answer = "defer"
		}
		return answer, feedback
	}
}
