// Package tui runs a session controller as a bubbletea program. bubbletea owns
// raw mode and restores the terminal on every exit path.
package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/passman-cli/passman/internal/session"
)

// ErrAborted is returned when the program stops before the session reached
// its exit state. Nothing should be persisted in that case.
var ErrAborted = errors.New("session ended before exit")

// Model is the bubbletea model wrapping a session controller
type Model struct {
	ctrl  *session.Controller
	width int
}

// NewModel creates a model for ctrl
func NewModel(ctrl *session.Controller) Model {
	return Model{ctrl: ctrl}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		for _, k := range translate(msg) {
			m.ctrl.Handle(k)
		}
		if m.ctrl.Done() {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.ctrl.Done() {
		return ""
	}
	return Render(m.ctrl.Screen(), m.width)
}

// Run drives ctrl until it reaches its exit state. A clipboard still held
// when the program ends is cleared.
func Run(ctrl *session.Controller, opts ...tea.ProgramOption) (err error) {
	defer func() {
		if rerr := ctrl.Release(); rerr != nil && err == nil {
			err = fmt.Errorf("failed to clear clipboard: %w", rerr)
		}
	}()

	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	if _, err := tea.NewProgram(NewModel(ctrl), opts...).Run(); err != nil {
		return fmt.Errorf("terminal session failed: %w", err)
	}

	if !ctrl.Done() {
		return ErrAborted
	}
	return nil
}
