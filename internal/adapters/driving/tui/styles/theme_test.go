package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()
	require.NotNil(t, theme)

	seen := make(map[lipgloss.Color]string)
	for name, c := range map[string]lipgloss.Color{
		"primary":    theme.Primary,
		"secondary":  theme.Secondary,
		"background": theme.Background,
		"foreground": theme.Foreground,
		"muted":      theme.Muted,
		"success":    theme.Success,
		"warning":    theme.Warning,
		"error":      theme.Error,
		"border":     theme.Border,
	} {
		assert.NotEmpty(t, string(c), name)
		if other, dup := seen[c]; dup {
			t.Errorf("%s and %s share colour %s", name, other, c)
		}
		seen[c] = name
	}
}

func TestPalette_Brand(t *testing.T) {
	primary := lipgloss.Color("#000001")
	a := lipgloss.Color("#00000a")
	b := lipgloss.Color("#00000b")
	palette := NewPalette(primary, a, b)

	tests := []struct {
		name     string
		index    int
		expected lipgloss.Color
	}{
		{"primary brand", 0, primary},
		{"negative index", -1, primary},
		{"first competitor", 1, a},
		{"second competitor", 2, b},
		{"wraps around", 3, a},
		{"wraps twice", 5, a},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, palette.Brand(tt.index))
		})
	}
}

func TestPalette_NoCompetitorColours(t *testing.T) {
	primary := lipgloss.Color("#123456")
	palette := NewPalette(primary)

	assert.Equal(t, primary, palette.Brand(3))
}

func TestNewPalette_CopiesColours(t *testing.T) {
	competitors := []lipgloss.Color{"#00000a", "#00000b"}
	palette := NewPalette("#000001", competitors...)

	competitors[0] = "#ffffff"

	assert.Equal(t, lipgloss.Color("#00000a"), palette.Brand(1))
}

func TestNewStyles(t *testing.T) {
	theme := DefaultTheme()
	styles := NewStyles(theme, DefaultPalette())
	assert.Same(t, theme, styles.Theme())

	defaults := NewStyles(nil, Palette{})
	assert.NotNil(t, defaults.Theme())
	assert.Equal(t, DefaultPalette().Brand(0), defaults.Palette().Brand(0))
}

func TestStyles_Brand(t *testing.T) {
	styles := DefaultStyles()

	assert.Contains(t, styles.Brand(0, "Levoit"), "Levoit")
	assert.Contains(t, styles.Brand(2, "Coway"), "Coway")
}

func TestStyles_Render(t *testing.T) {
	styles := DefaultStyles()

	for name, style := range map[string]lipgloss.Style{
		"title":      styles.Title,
		"subtitle":   styles.Subtitle,
		"normal":     styles.Normal,
		"muted":      styles.Muted,
		"selected":   styles.Selected,
		"error":      styles.Error,
		"success":    styles.Success,
		"warning":    styles.Warning,
		"help":       styles.Help,
		"status bar": styles.StatusBar,
	} {
		assert.Contains(t, style.Render("best air purifier"), "best air purifier", name)
	}

	assert.Contains(t, styles.Fallback.Render("SUBSTITUTE DATA"), "SUBSTITUTE DATA")
	assert.Contains(t, styles.Border.Render("Levoit"), "Levoit")
}
