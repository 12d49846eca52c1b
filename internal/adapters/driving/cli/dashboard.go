package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/geovis/internal/adapters/driving/tui"
)

// isTerminal reports whether stdout is an interactive terminal.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// dashboardCmd represents the dashboard command.
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive dashboard",
	Long: `Launch the interactive terminal dashboard for geovis.

The dashboard shows the brand comparison across active queries and, for a
selected query, its latest rankings and visibility trend. Substitute data
is marked with a banner for as long as it is on screen.

Controls:
  ↑/k, ↓/j - Navigate queries
  Enter    - Open trends
  s        - Cycle comparison ordering
  g        - Cycle trend granularity
  r        - Reload
  Esc      - Back
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	if facade == nil {
		return errors.New("visibility facade not configured")
	}
	if !isTerminal() {
		return errors.New("dashboard requires an interactive terminal; use the comparison and rankings commands instead")
	}

	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in dashboard: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	// The dashboard is long-running, so background tasks run alongside it.
	stopScheduler := startScheduler(cmd.Context())
	defer stopScheduler()

	app, err := tui.NewApp(&tui.Ports{Facade: facade, Now: now})
	if err != nil {
		return fmt.Errorf("failed to create dashboard: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}

	return nil
}
