// Package status provides the status bar and substitute data banner.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/geovis/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/geovis/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/geovis/internal/core/domain"
)

// State represents the current view state for display.
type State string

const (
	StateReady   State = "ready"
	StateLoading State = "loading"
	StateError   State = "error"
	StateHelp    State = "help"
)

// Bar displays view status and keybinding hints.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	state    State
	message  string
	rowCount int
	fallback *domain.TransportError
	bindings []key.Binding
	width    int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the state, row count and data provenance.
func (s *Bar) renderLeft() string {
	var left string
	switch s.state {
	case StateLoading:
		left = s.styles.Muted.Render("Loading...")
	case StateError:
		if s.message != "" {
			left = s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		} else {
			left = s.styles.Error.Render("Error")
		}
	case StateHelp:
		left = s.styles.Normal.Render("Help")
	case StateReady:
		if s.rowCount > 0 {
			left = s.styles.Normal.Render(fmt.Sprintf("%d rows", s.rowCount))
		} else {
			left = s.styles.Muted.Render("Ready")
		}
	}

	if s.fallback != nil {
		left += " " + s.styles.Warning.Render("[substitute data]")
	}
	return left
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	bindings := s.bindings
	if len(bindings) == 0 {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetRowCount sets the number of rows on screen.
func (s *Bar) SetRowCount(count int) {
	s.rowCount = count
}

// RowCount returns the current row count.
func (s *Bar) RowCount() int {
	return s.rowCount
}

// SetFallback records the failure behind substitute data, or nil for live data.
func (s *Bar) SetFallback(cause *domain.TransportError) {
	s.fallback = cause
}

// IsFallback reports whether the bar is showing substitute data.
func (s *Bar) IsFallback() bool {
	return s.fallback != nil
}

// SetBindings sets the keybinding hints. Empty restores the short help.
func (s *Bar) SetBindings(bindings []key.Binding) {
	s.bindings = bindings
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to default state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.rowCount = 0
	s.fallback = nil
}

// Banner renders the substitute data banner for cause. It returns an empty
// string for live data.
func Banner(s *styles.Styles, cause *domain.TransportError) string {
	if cause == nil {
		return ""
	}
	if s == nil {
		s = styles.DefaultStyles()
	}

	text := "SUBSTITUTE DATA: the observation source is unavailable"
	if cause.Status != 0 {
		text += fmt.Sprintf(" (status %d)", cause.Status)
	}
	if cause.Detail != "" {
		text += ": " + cause.Detail
	}
	return s.Fallback.Render(text)
}
