// Package cli provides the geovis command-line interface.
package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driven"
	"github.com/custodia-labs/geovis/internal/core/ports/driving"
	"github.com/custodia-labs/geovis/internal/logger"
	"github.com/custodia-labs/geovis/internal/metrics"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	verbose    bool
	jsonOutput bool
)

// now is the clock used for default time windows.
var now = time.Now

// Services used by the commands. Set by main via SetServices.
var (
	facade             driving.VisibilityFacade
	queryService       driving.QueryService
	observationService driving.ObservationService
	settingsService    driving.SettingsService
	scheduler          driving.Scheduler
	schedulerConfig    domain.SchedulerConfig
	localSource        driven.VisibilitySource
	collector          *metrics.Collector
)

// Services holds everything the commands need.
type Services struct {
	// Facade serves every read, falling back to substitute data.
	Facade driving.VisibilityFacade

	Queries      driving.QueryService
	Observations driving.ObservationService
	Settings     driving.SettingsService

	Scheduler       driving.Scheduler
	SchedulerConfig domain.SchedulerConfig

	// LocalSource is the engine served by `geovis serve`.
	LocalSource driven.VisibilitySource

	Metrics *metrics.Collector
}

var rootCmd = &cobra.Command{
	Use:   "geovis",
	Short: "Track brand visibility in AI-generated answers",
	Long: `geovis tracks how brands rank in answers produced by AI assistants.

It keeps a registry of tracked queries, ingests rank observations, derives
visibility scores and trends, and compares every tracked brand against the
primary brand. Reads fall back to substitute data when the observation
source is unavailable; such output is always marked.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}

// SetServices configures the services used by every command.
func SetServices(s Services) {
	facade = s.Facade
	queryService = s.Queries
	observationService = s.Observations
	settingsService = s.Settings
	scheduler = s.Scheduler
	schedulerConfig = s.SchedulerConfig
	localSource = s.LocalSource
	collector = s.Metrics
}

// SetVersion sets the version reported by `geovis version`.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.Execute()
}
