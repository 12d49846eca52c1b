package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()
	require.NotNil(t, km)

	tests := []struct {
		name    string
		binding key.Binding
		keys    []string
	}{
		{"quit", km.Quit, []string{"q", "ctrl+c"}},
		{"help", km.Help, []string{"?"}},
		{"back", km.Back, []string{"esc"}},
		{"up", km.Up, []string{"up", "k"}},
		{"down", km.Down, []string{"down", "j"}},
		{"select", km.Select, []string{"enter"}},
		{"reload", km.Reload, []string{"r"}},
		{"sort", km.Sort, []string{"s"}},
		{"granularity", km.Granularity, []string{"g"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.keys, tt.binding.Keys())
			assert.NotEmpty(t, tt.binding.Help().Key)
			assert.NotEmpty(t, tt.binding.Help().Desc)
			assert.True(t, tt.binding.Enabled())
		})
	}
}

func TestViewHelp(t *testing.T) {
	km := DefaultKeyMap()

	assert.Equal(t, []key.Binding{km.Quit, km.Help}, km.ShortHelp())

	comparison := km.ComparisonHelp()
	require.Len(t, comparison, 6)
	assert.Equal(t, "s", comparison[3].Help().Key)
	assert.Equal(t, "esc", comparison[5].Help().Key)

	trends := km.TrendsHelp()
	require.Len(t, trends, 3)
	assert.Equal(t, "g", trends[0].Help().Key)
}

func TestSections(t *testing.T) {
	sections := DefaultKeyMap().Sections()

	require.Len(t, sections, 3)
	assert.Equal(t, "Navigation", sections[0].Title)
	assert.Equal(t, "Brand Comparison", sections[1].Title)
	assert.Len(t, sections[1].Bindings, 5)
	assert.Equal(t, "granularity", sections[2].Bindings[0].Help().Desc)
}
