package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/geovis/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/geovis/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/geovis/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/geovis/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/geovis/internal/adapters/driving/tui/views/comparison"
	"github.com/custodia-labs/geovis/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/geovis/internal/adapters/driving/tui/views/trends"
)

// App is the dashboard application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the dashboard styles.
	styles *styles.Styles

	keymap *keymap.KeyMap

	menuView       *menu.View
	comparisonView *comparison.View
	trendsView     *trends.View
	statusBar      *status.Bar

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new dashboard with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.NewStyles(styles.DefaultTheme(), ports.Palette)
	km := keymap.DefaultKeyMap()

	return &App{
		ports:          ports,
		ctx:            context.Background(),
		styles:         s,
		keymap:         km,
		menuView:       menu.NewView(s),
		comparisonView: comparison.NewView(s, ports.Facade),
		trendsView:     trends.NewView(s, ports.Facade, ports.Now),
		statusBar:      status.NewBar(s, km),
		currentView:    messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app and its fetches.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.comparisonView.WithContext(ctx)
	a.trendsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("geovis - Brand Visibility"),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView != messages.ViewHelp && key.Matches(msg, a.keymap.Help) {
			a.currentView = messages.ViewHelp
			a.syncStatus()
			return a, nil
		}

		switch a.currentView {
		case messages.ViewMenu:
			a.menuView, cmd = a.menuView.Update(msg)
		case messages.ViewComparison:
			a.comparisonView, cmd = a.comparisonView.Update(msg)
		case messages.ViewTrends:
			a.trendsView, cmd = a.trendsView.Update(msg)
		case messages.ViewHelp:
			if key.Matches(msg, a.keymap.Back) {
				a.currentView = messages.ViewMenu
			}
		}
		a.syncStatus()
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewComparison && len(a.comparisonView.Rows()) == 0 {
			cmd = a.comparisonView.Init()
		}
		a.syncStatus()
		return a, cmd

	case messages.QuerySelected:
		a.currentView = messages.ViewTrends
		cmd = a.trendsView.SetQuery(msg)
		a.syncStatus()
		return a, cmd

	case messages.ComparisonLoaded:
		a.comparisonView, cmd = a.comparisonView.Update(msg)
		a.err = msg.Err
		a.syncStatus()
		return a, cmd

	case messages.TrendsLoaded, messages.LatestLoaded:
		a.trendsView, cmd = a.trendsView.Update(msg)
		a.err = a.trendsView.Err()
		a.syncStatus()
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.syncStatus()
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	return a, nil
}

// syncStatus mirrors the active view's state into the status bar. The
// substitute data marker stays until the view shows live data again.
func (a *App) syncStatus() {
	a.statusBar.Clear()
	a.statusBar.SetBindings(nil)

	switch a.currentView {
	case messages.ViewComparison:
		a.statusBar.SetBindings(a.keymap.ComparisonHelp())
		a.statusBar.SetRowCount(len(a.comparisonView.Rows()))
		a.statusBar.SetFallback(a.comparisonView.Fallback())
		if a.comparisonView.Loading() {
			a.statusBar.SetState(status.StateLoading)
		}
	case messages.ViewTrends:
		a.statusBar.SetBindings(a.keymap.TrendsHelp())
		a.statusBar.SetRowCount(len(a.trendsView.Points()))
		a.statusBar.SetFallback(a.trendsView.Fallback())
	case messages.ViewHelp:
		a.statusBar.SetState(status.StateHelp)
	case messages.ViewMenu:
	}

	if a.err != nil {
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(a.err.Error())
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewComparison:
		body = a.comparisonView.View()
	case messages.ViewTrends:
		body = a.trendsView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.menuView.View()
	}

	return body + "\n\n" + a.statusBar.View()
}

// viewHelp renders the help view from the keymap.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n")
	for _, section := range a.keymap.Sections() {
		b.WriteString("\n" + a.styles.Subtitle.Render(section.Title) + "\n")
		for _, binding := range section.Bindings {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-10s  %s\n", h.Key, h.Desc)
		}
	}
	b.WriteString("\n")
	b.WriteString(a.styles.Muted.Render(
		"Data marked SUBSTITUTE DATA comes from the built-in catalog because\n" +
			"the observation source could not be reached."))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("[esc] back to menu"))
	return b.String()
}

// Run starts the dashboard.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// StatusBar returns the status bar.
func (a *App) StatusBar() *status.Bar {
	return a.statusBar
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.comparisonView.SetDimensions(width, height)
	a.trendsView.SetDimensions(width, height)
	a.statusBar.SetWidth(width)
}
