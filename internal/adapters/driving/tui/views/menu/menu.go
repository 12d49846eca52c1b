// Package menu provides the dashboard's start screen.
package menu

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/geovis/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/geovis/internal/adapters/driving/tui/styles"
)

// Entry is one selectable line of the start screen.
type Entry struct {
	Label       string
	Description string
	Target      messages.ViewType
	Quit        bool
}

var entries = []Entry{
	{
		Label:       "Brand Comparison",
		Description: "Scores of every tracked brand across active queries",
		Target:      messages.ViewComparison,
	},
	{
		Label:       "Help",
		Description: "Key bindings and how substitute data is marked",
		Target:      messages.ViewHelp,
	},
	{
		Label:       "Quit",
		Description: "Leave the dashboard",
		Quit:        true,
	},
}

// View is the start screen.
type View struct {
	styles *styles.Styles
	cursor int
	width  int
	height int
	ready  bool
}

// NewView creates the start screen.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{styles: s, width: 80, height: 24}
}

// Init implements the view lifecycle.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and opens the chosen entry.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v, v.handleKey(msg.String())
	}
	return v, nil
}

func (v *View) handleKey(key string) tea.Cmd {
	switch key {
	case "up", "k":
		v.cursor = max(0, v.cursor-1)
	case "down", "j":
		v.cursor = min(len(entries)-1, v.cursor+1)
	case "q":
		return tea.Quit
	case "enter":
		entry := entries[v.cursor]
		if entry.Quit {
			return tea.Quit
		}
		return func() tea.Msg { return messages.ViewChanged{View: entry.Target} }
	}
	return nil
}

// View renders the start screen.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("geovis"))
	b.WriteString("\n")
	b.WriteString(v.styles.Subtitle.Render("Brand Visibility in AI Answers"))
	b.WriteString("\n\n")

	for i, entry := range entries {
		if i == v.cursor {
			b.WriteString("> " + v.styles.Selected.Render(entry.Label))
			b.WriteString("\n    " + v.styles.Muted.Render(entry.Description))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(entry.Label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.legend())
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[j/k] move  [enter] open  [q] quit"))
	return b.String()
}

// legend shows the colours brands are drawn in, primary first.
func (v *View) legend() string {
	return v.styles.Muted.Render("Colours: ") +
		v.styles.Brand(0, "primary") + " " +
		v.styles.Brand(1, "competitor")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Cursor returns the index of the highlighted entry.
func (v *View) Cursor() int {
	return v.cursor
}

// Entries returns the start screen entries.
func Entries() []Entry {
	return append([]Entry(nil), entries...)
}
