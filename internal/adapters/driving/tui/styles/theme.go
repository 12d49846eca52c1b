// Package styles provides colour themes and styling for the dashboard.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the dashboard colour scheme. Brand colours live in Palette.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
}

// DefaultTheme is a dark scheme with an amber warning colour, which the
// substitute data banner uses as its background.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    "#0EA5E9",
		Secondary:  "#A78BFA",
		Background: "#111827",
		Foreground: "#E5E7EB",
		Muted:      "#6B7280",
		Success:    "#4ADE80",
		Warning:    "#FBBF24",
		Error:      "#F87171",
		Border:     "#374151",
	}
}

// Palette assigns colours to brands by their position in a query's tracked
// list. Position 0 is the primary brand. A Palette is never modified after
// construction.
type Palette struct {
	primary     lipgloss.Color
	competitors []lipgloss.Color
}

// NewPalette creates a palette. Competitor colours are reused cyclically.
func NewPalette(primary lipgloss.Color, competitors ...lipgloss.Color) Palette {
	return Palette{
		primary:     primary,
		competitors: append([]lipgloss.Color(nil), competitors...),
	}
}

// DefaultPalette returns the default brand palette.
func DefaultPalette() Palette {
	return NewPalette(
		lipgloss.Color("#22C55E"), // Green
		lipgloss.Color("#3B82F6"), // Blue
		lipgloss.Color("#F97316"), // Orange
		lipgloss.Color("#EC4899"), // Pink
		lipgloss.Color("#EAB308"), // Amber
	)
}

// Brand returns the colour for the brand at position i of a tracked list.
func (p Palette) Brand(i int) lipgloss.Color {
	if i <= 0 || len(p.competitors) == 0 {
		return p.primary
	}
	return p.competitors[(i-1)%len(p.competitors)]
}

// Styles are the lipgloss styles shared by every view.
type Styles struct {
	theme   *Theme
	palette Palette

	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Normal    lipgloss.Style
	Muted     lipgloss.Style
	Selected  lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Help      lipgloss.Style
	Border    lipgloss.Style
	StatusBar lipgloss.Style

	// Fallback marks substitute data and is never rendered dimmed.
	Fallback lipgloss.Style
}

// NewStyles creates styles from a theme and brand palette.
func NewStyles(theme *Theme, palette Palette) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	if palette.primary == "" {
		palette = DefaultPalette()
	}

	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return &Styles{
		theme:   theme,
		palette: palette,

		Title:    fg(theme.Primary).Bold(true),
		Subtitle: fg(theme.Secondary).Bold(true),
		Normal:   fg(theme.Foreground),
		Muted:    fg(theme.Muted),
		Selected: fg(theme.Background).Background(theme.Primary).Bold(true),
		Error:    fg(theme.Error),
		Success:  fg(theme.Success),
		Warning:  fg(theme.Warning),
		Help:     fg(theme.Muted).Italic(true),
		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),
		StatusBar: fg(theme.Muted).
			Background(theme.Background).
			Padding(0, 1),
		Fallback: fg(theme.Background).
			Background(theme.Warning).
			Bold(true).
			Padding(0, 1),
	}
}

// DefaultStyles returns styles with the default theme and palette.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme(), DefaultPalette())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Palette returns the brand palette used by these styles.
func (s *Styles) Palette() Palette {
	return s.palette
}

// Brand renders text in the colour of the brand at position i.
func (s *Styles) Brand(i int, text string) string {
	return lipgloss.NewStyle().Foreground(s.palette.Brand(i)).Render(text)
}
