package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geovis/internal/adapters/driving/dropdir"
	"github.com/custodia-labs/geovis/internal/adapters/wire"
	"github.com/custodia-labs/geovis/internal/core/domain"
)

var rankingsCmd = &cobra.Command{
	Use:   "rankings",
	Short: "Inspect and ingest rank observations",
}

var rankingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rank observations, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRankingsList,
}

var rankingsLatestCmd = &cobra.Command{
	Use:   "latest [query-id]",
	Short: "Show the latest rank per platform and brand",
	Args:  cobra.ExactArgs(1),
	RunE:  runRankingsLatest,
}

var rankingsTrendsCmd = &cobra.Command{
	Use:   "trends [query-id]",
	Short: "Show rank and score trends over time",
	Long: `Show average rank and score per time bucket for each tracked brand.

Without --from/--to the window is the last 30 days (daily), 12 weeks
(weekly) or 12 months (monthly). Buckets without observations are shown
with a sample count of 0.`,
	Args: cobra.ExactArgs(1),
	RunE: runRankingsTrends,
}

var rankingsIngestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Store a batch of observations from a JSON file",
	Long: `Store a batch of observations from a JSON file. Use - to read stdin.

The file has the same shape as the body of POST /api/v1/visibility/rankings:
  {"source_run_id": "...", "observations": [...], "snapshots": [...]}`,
	Args: cobra.ExactArgs(1),
	RunE: runRankingsIngest,
}

var rankingsWatchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest batches dropped into a directory",
	Long: `Watch a directory and ingest every JSON batch written to it.

Stored files move to ingested/, rejected files to failed/. Runs until
interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runRankingsWatch,
}

// Flags for rankings list.
var (
	rankingsQuery    string
	rankingsPlatform string
	rankingsBrand    string
	rankingsFrom     string
	rankingsTo       string
	rankingsPage     int
	rankingsPageSize int
)

// Flags for rankings trends.
var (
	trendsBrands      []string
	trendsGranularity string
	trendsFrom        string
	trendsTo          string
)

func init() {
	rankingsListCmd.Flags().StringVar(&rankingsQuery, "query", "", "Filter by query ID")
	rankingsListCmd.Flags().StringVar(&rankingsPlatform, "platform", "", "Filter by platform (chatgpt, perplexity, google_ai)")
	rankingsListCmd.Flags().StringVar(&rankingsBrand, "brand", "", "Filter by brand")
	rankingsListCmd.Flags().StringVar(&rankingsFrom, "from", "", "Only observations at or after this time")
	rankingsListCmd.Flags().StringVar(&rankingsTo, "to", "", "Only observations before this time")
	rankingsListCmd.Flags().IntVar(&rankingsPage, "page", 0, "Page number (1-based)")
	rankingsListCmd.Flags().IntVar(&rankingsPageSize, "page-size", 0, "Items per page")

	rankingsTrendsCmd.Flags().StringSliceVarP(&trendsBrands, "brand", "b", nil, "Brands to include (default all tracked)")
	rankingsTrendsCmd.Flags().StringVarP(&trendsGranularity, "granularity", "g", string(domain.GranularityDaily),
		"Bucket width (daily, weekly, monthly)")
	rankingsTrendsCmd.Flags().StringVar(&trendsFrom, "from", "", "Window start")
	rankingsTrendsCmd.Flags().StringVar(&trendsTo, "to", "", "Window end (exclusive)")

	rankingsCmd.AddCommand(rankingsListCmd)
	rankingsCmd.AddCommand(rankingsLatestCmd)
	rankingsCmd.AddCommand(rankingsTrendsCmd)
	rankingsCmd.AddCommand(rankingsIngestCmd)
	rankingsCmd.AddCommand(rankingsWatchCmd)
	rootCmd.AddCommand(rankingsCmd)
}

func runRankingsList(cmd *cobra.Command, _ []string) error {
	if facade == nil {
		return errors.New("visibility service not configured")
	}

	filter := domain.ObservationFilter{
		Platform: domain.Platform(rankingsPlatform),
		Brand:    rankingsBrand,
	}
	var err error
	if rankingsQuery != "" {
		if filter.QueryID, err = parseID("query_id", rankingsQuery); err != nil {
			return err
		}
	}
	if filter.From, err = parseTimeFlag("from", rankingsFrom); err != nil {
		return err
	}
	if filter.To, err = parseTimeFlag("to", rankingsTo); err != nil {
		return err
	}

	result, err := facade.Rankings(cmd.Context(), filter, domain.PageRequest{Page: rankingsPage, PageSize: rankingsPageSize})
	if err != nil {
		return fmt.Errorf("failed to list rankings: %w", err)
	}

	return printResult(cmd, result,
		func(p domain.Page[domain.RankObservation]) wire.Paginated[wire.Ranking] {
			return wire.NewPaginated(p, wire.FromRanking)
		},
		func(page domain.Page[domain.RankObservation]) {
			if len(page.Items) == 0 {
				cmd.Println("No observations found.")
				return
			}
			printObservations(cmd, page.Items)
			printPageFooter(cmd, page, "observations")
		})
}

func runRankingsLatest(cmd *cobra.Command, args []string) error {
	if facade == nil {
		return errors.New("visibility service not configured")
	}

	id, err := parseID("query_id", args[0])
	if err != nil {
		return err
	}

	result, err := facade.Latest(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get latest rankings: %w", err)
	}

	return printResult(cmd, result, wire.FromRankings, func(observations []domain.RankObservation) {
		if len(observations) == 0 {
			cmd.Println("No observations recorded for this query.")
			return
		}
		printObservations(cmd, observations)
	})
}

func printObservations(cmd *cobra.Command, observations []domain.RankObservation) {
	tw := newTable(cmd, "ID", "QUERY", "PLATFORM", "BRAND", "RANK", "SCRAPED")
	for i := range observations {
		o := &observations[i]
		row(tw, o.ID, o.QueryID, o.Platform, o.Brand, formatRank(o.RankPosition), formatTime(o.ScrapedAt))
	}
	tw.Flush()
}

func runRankingsTrends(cmd *cobra.Command, args []string) error {
	if facade == nil {
		return errors.New("visibility service not configured")
	}

	id, err := parseID("query_id", args[0])
	if err != nil {
		return err
	}

	granularity := domain.Granularity(trendsGranularity)
	if !granularity.IsValid() {
		return domain.NewValidationError("granularity", "unknown granularity "+trendsGranularity)
	}
	from, to, err := window(trendsFrom, trendsTo, granularity.Period())
	if err != nil {
		return err
	}

	req := domain.TrendRequest{
		QueryID:     id,
		Brands:      trendsBrands,
		From:        from,
		To:          to,
		Granularity: granularity,
	}
	result, err := facade.Trends(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to get trends: %w", err)
	}

	return printResult(cmd, result, wire.FromTrends, func(points []domain.TrendPoint) {
		if len(points) == 0 {
			cmd.Println("No trend data.")
			return
		}
		tw := newTable(cmd, "BUCKET", "BRAND", "AVG RANK", "AVG SCORE", "SAMPLES")
		for _, p := range points {
			row(tw, p.Timestamp.Format("2006-01-02"), p.Brand, formatAvgRank(p.AvgRank),
				formatScore(p.AvgScore), p.SampleCount)
		}
		tw.Flush()
	})
}

func runRankingsIngest(cmd *cobra.Command, args []string) error {
	if observationService == nil {
		return errors.New("observation service not configured")
	}

	var data []byte
	var err error
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read batch: %w", err)
	}

	var req wire.IngestRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("failed to parse batch: %w", err)
	}

	result, err := observationService.Append(cmd.Context(), req.ToDomain())
	if err != nil {
		return fmt.Errorf("failed to ingest batch: %w", err)
	}
	if collector != nil {
		collector.ObserveIngest(len(result.Observations))
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), wire.FromIngest(*result))
	}
	cmd.Printf("Stored %d observations and %d snapshots (run %s).\n",
		len(result.Observations), result.Snapshots, result.RunID)
	return nil
}

func runRankingsWatch(cmd *cobra.Command, args []string) error {
	if observationService == nil {
		return errors.New("observation service not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to open drop directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher := dropdir.New(dir, observationService.Append)
	watcher.OnOutcome(func(o dropdir.Outcome) {
		if o.Err != nil {
			cmd.Printf("rejected %s: %v\n", o.Path, o.Err)
			return
		}
		if collector != nil {
			collector.ObserveIngest(len(o.Result.Observations))
		}
		cmd.Printf("stored %d observations from %s\n", len(o.Result.Observations), o.Path)
	})

	cmd.Printf("Watching %s for ranking batches (Ctrl+C to stop)...\n", strings.TrimSuffix(dir, "/"))
	return watcher.Run(ctx)
}
