// Package tui provides the interactive terminal surfaces used by the
// brainstorm hook's interactive mode and by weave watch: a small
// Bubbletea step-sequencer (Flow) and a live status view.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Vars holds the data a Flow's steps read from and write into as they run.
type Vars map[string]any

// Step is a single screen in a Flow.
type Step interface {
	Title() string
	Description() string
	Init(vars Vars) tea.Model
	Collect(model tea.Model, vars Vars)
}

// Styles controls a Flow's rendering.
type Styles struct {
	Title       lipgloss.Style
	Description lipgloss.Style
	Progress    lipgloss.Style
}

// DefaultStyles returns the styling every Flow uses (the brainstorm and
// human_check prompts); weave watch renders with its own styles.
func DefaultStyles() Styles {
	return Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginBottom(1),
		Description: lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginBottom(1),
		Progress:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// Flow runs a fixed sequence of Steps to completion, collecting each
// step's result into a shared Vars map.
type Flow struct {
	steps   []Step
	current int
	vars    Vars
	model   tea.Model
	styles  Styles
	err     error
}

// NewFlow builds a Flow over steps, starting from an empty Vars map.
func NewFlow(steps ...Step) *Flow {
	return &Flow{steps: steps, vars: Vars{}, styles: DefaultStyles()}
}

// Vars returns the flow's accumulated results after Run returns.
func (f *Flow) Vars() Vars { return f.vars }

// Run drives the flow interactively over the terminal and returns once
// every step has completed, or an error if the user aborted.
func (f *Flow) Run() error {
	if len(f.steps) == 0 {
		return nil
	}
	f.model = f.steps[0].Init(f.vars)
	if _, err := tea.NewProgram(f).Run(); err != nil {
		return fmt.Errorf("flow: %w", err)
	}
	return f.err
}

// Init implements tea.Model.
func (f *Flow) Init() tea.Cmd {
	if f.model == nil {
		return nil
	}
	return f.model.Init()
}

// stepDoneMsg signals the current step collected its result and the flow
// should advance.
type stepDoneMsg struct{}

// Advance returns a command that completes the current step.
func Advance() tea.Cmd {
	return func() tea.Msg { return stepDoneMsg{} }
}

// Update implements tea.Model.
func (f *Flow) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			f.err = fmt.Errorf("cancelled")
			return f, tea.Quit
		}
	}

	if _, ok := msg.(stepDoneMsg); ok {
		f.steps[f.current].Collect(f.model, f.vars)
		f.current++
		if f.current >= len(f.steps) {
			return f, tea.Quit
		}
		f.model = f.steps[f.current].Init(f.vars)
		return f, f.model.Init()
	}

	if f.model == nil {
		return f, nil
	}
	var cmd tea.Cmd
	f.model, cmd = f.model.Update(msg)
	return f, cmd
}

// View implements tea.Model.
func (f *Flow) View() string {
	if f.current >= len(f.steps) {
		return ""
	}
	step := f.steps[f.current]

	s := f.styles.Progress.Render(fmt.Sprintf("%d/%d", f.current+1, len(f.steps))) + "\n\n"
	s += f.styles.Title.Render(step.Title()) + "\n"
	if desc := step.Description(); desc != "" {
		s += f.styles.Description.Render(desc) + "\n"
	}
	if f.model != nil {
		s += f.model.View()
	}
	return s
}
