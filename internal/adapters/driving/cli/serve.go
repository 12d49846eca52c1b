package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geovis/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/geovis/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the visibility API over HTTP",
	Long: `Serve the visibility API backed by the local store.

Routes live under /api/v1/visibility. /health reports liveness and
/metrics exposes Prometheus metrics. When the scheduler is enabled, cached
latest rankings and comparisons are refreshed in the background.

Point another geovis at this server with:
  geovis settings set source.url http://localhost:8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if localSource == nil {
		return errors.New("visibility engine not configured")
	}

	addr := serveAddr
	if addr == "" && settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			addr = settings.Server.Addr
		}
	}
	if addr == "" {
		addr = ":8080"
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopScheduler := startScheduler(ctx)
	defer stopScheduler()

	server := httpapi.New(httpapi.Deps{
		Source:       localSource,
		Queries:      queryService,
		Observations: observationService,
		Metrics:      collector,
	})

	cmd.Printf("Serving visibility API on %s\n", addr)
	return server.Run(ctx, addr)
}

// startScheduler runs the background scheduler when enabled. The returned
// function stops it.
func startScheduler(ctx context.Context) func() {
	if scheduler == nil || !schedulerConfig.Enabled {
		return func() {}
	}

	schedulerCtx, cancel := context.WithCancel(ctx)
	go func() {
		// Scheduler errors never stop the foreground command.
		if err := scheduler.Start(schedulerCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("scheduler stopped: %v", err)
		}
	}()

	return func() {
		cancel()
		if err := scheduler.Stop(); err != nil {
			logger.Warn("scheduler stop error: %v", err)
		}
	}
}
