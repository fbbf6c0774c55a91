package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/weavehq/weave/internal/state"
)

// IsInteractive reports whether stdout is a terminal, used to decide
// between the live watch view and a single plain-text status dump.
func IsInteractive() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	blockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// RenderStatus renders a one-shot, non-interactive summary of s, used by
// `weave status` and as the fallback for `weave watch` when stdout is not
// a terminal.
func RenderStatus(s *state.ProjectState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "phase: %s\n", s.Phase)
	if s.BlockedReason != nil {
		fmt.Fprintf(&b, "%s\n", blockedStyle.Render("blocked: "+*s.BlockedReason))
	}
	for _, t := range s.Tasks {
		line := fmt.Sprintf("  [%s] %-6s %s", t.ID, t.Status, t.Title)
		if t.Status == "done" {
			line = doneStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// Loader retrieves the latest project state for a watch session, reading
// from whatever storage backend the caller wired in.
type Loader func() (*state.ProjectState, error)

// tickMsg drives the watch view's refresh cadence.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// WatchModel is a live-refreshing read-only view of project state, used by
// `weave watch`. It never mutates state; it only reloads and re-renders.
type WatchModel struct {
	load Loader
	s    *state.ProjectState
	err  error
}

// NewWatchModel builds a WatchModel that refreshes via load once a second.
func NewWatchModel(load Loader) *WatchModel {
	return &WatchModel{load: load}
}

// Run drives the watch view until the user quits.
func (m *WatchModel) Run() error {
	_, err := tea.NewProgram(m).Run()
	return err
}

func (m *WatchModel) Init() tea.Cmd {
	return tea.Batch(m.refresh(), tick())
}

func (m *WatchModel) refresh() tea.Cmd {
	return func() tea.Msg {
		s, err := m.load()
		if err != nil {
			return watchErrMsg{err}
		}
		return watchStateMsg{s}
	}
}

type watchStateMsg struct{ s *state.ProjectState }
type watchErrMsg struct{ err error }

func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		return m, tea.Batch(m.refresh(), tick())
	case watchStateMsg:
		m.s = msg.s
		m.err = nil
	case watchErrMsg:
		m.err = msg.err
	}
	return m, nil
}

func (m *WatchModel) View() string {
	header := headerStyle.Render("weave watch") + "  " + dimStyle.Render("q: quit")
	if m.err != nil {
		return header + "\n\n" + blockedStyle.Render(m.err.Error())
	}
	if m.s == nil {
		return header + "\n\nloading..."
	}
	return header + "\n\n" + RenderStatus(m.s)
}
