// Package keymap defines keybindings for the dashboard.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds every dashboard binding. Views match on the same keys.
type KeyMap struct {
	Quit        key.Binding
	Help        key.Binding
	Back        key.Binding
	Up          key.Binding
	Down        key.Binding
	Select      key.Binding
	Reload      key.Binding
	Sort        key.Binding
	Granularity key.Binding
}

// Section is a titled group of bindings on the help screen.
type Section struct {
	Title    string
	Bindings []key.Binding
}

func binding(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:        binding("q", "quit", "q", "ctrl+c"),
		Help:        binding("?", "help", "?"),
		Back:        binding("esc", "back", "esc"),
		Up:          binding("↑/k", "up", "up", "k"),
		Down:        binding("↓/j", "down", "down", "j"),
		Select:      binding("enter", "trends", "enter"),
		Reload:      binding("r", "reload", "r"),
		Sort:        binding("s", "sort", "s"),
		Granularity: binding("g", "granularity", "g"),
	}
}

// ShortHelp is shown in the status bar when a view has no bindings of its own.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// ComparisonHelp returns keybindings for the comparison view.
func (k *KeyMap) ComparisonHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Sort, k.Reload, k.Back}
}

// TrendsHelp returns keybindings for the trends view.
func (k *KeyMap) TrendsHelp() []key.Binding {
	return []key.Binding{k.Granularity, k.Reload, k.Back}
}

// Sections lists the bindings per screen for the help view.
func (k *KeyMap) Sections() []Section {
	return []Section{
		{Title: "Navigation", Bindings: []key.Binding{k.Back, k.Quit}},
		{Title: "Brand Comparison", Bindings: []key.Binding{k.Up, k.Down, k.Select, k.Sort, k.Reload}},
		{Title: "Trends", Bindings: []key.Binding{k.Granularity, k.Reload}},
	}
}
