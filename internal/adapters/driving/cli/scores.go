package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geovis/internal/adapters/wire"
	"github.com/custodia-labs/geovis/internal/core/domain"
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show visibility scores",
}

var scoresListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scores for every tracked brand",
	Args:  cobra.NoArgs,
	RunE:  runScoresList,
}

var scoresGetCmd = &cobra.Command{
	Use:   "get [query-id] [brand]",
	Short: "Compute one brand's score for a query",
	Long: `Compute one brand's visibility score for a query.

The raw period scores the latest observation per platform. Aggregated
periods (daily, weekly, monthly) average the bucket scores over the window,
by default the last 30 days, 12 weeks or 12 months. The primary brand's
score includes its competitive gap.`,
	Args: cobra.ExactArgs(2),
	RunE: runScoresGet,
}

var comparisonCmd = &cobra.Command{
	Use:   "comparison",
	Short: "Compare every tracked brand across active queries",
	Args:  cobra.NoArgs,
	RunE:  runComparison,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [snapshot-id]",
	Short: "Show a raw answer snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshot,
}

// Flags for scores.
var (
	scoresQuery    string
	scoresBrand    string
	scoresPeriod   string
	scoresFrom     string
	scoresTo       string
	scoresPage     int
	scoresPageSize int
)

// Flags for comparison.
var (
	comparisonCategory string
	comparisonPeriod   string
	comparisonFrom     string
	comparisonTo       string
	comparisonSort     string
)

func init() {
	scoresListCmd.Flags().StringVar(&scoresQuery, "query", "", "Filter by query ID")
	scoresListCmd.Flags().StringVar(&scoresBrand, "brand", "", "Filter by brand")
	scoresListCmd.Flags().StringVar(&scoresPeriod, "period", "", "Score period (raw, daily, weekly, monthly)")
	scoresListCmd.Flags().IntVar(&scoresPage, "page", 0, "Page number (1-based)")
	scoresListCmd.Flags().IntVar(&scoresPageSize, "page-size", 0, "Items per page")

	scoresGetCmd.Flags().StringVar(&scoresPeriod, "period", "", "Score period (raw, daily, weekly, monthly)")
	scoresGetCmd.Flags().StringVar(&scoresFrom, "from", "", "Window start for aggregated periods")
	scoresGetCmd.Flags().StringVar(&scoresTo, "to", "", "Window end for aggregated periods")

	comparisonCmd.Flags().StringVar(&comparisonCategory, "category", "", "Only queries of this category")
	comparisonCmd.Flags().StringVar(&comparisonPeriod, "period", "", "Score period (raw, daily, weekly, monthly)")
	comparisonCmd.Flags().StringVar(&comparisonFrom, "from", "", "Only observations at or after this time")
	comparisonCmd.Flags().StringVar(&comparisonTo, "to", "", "Only observations before this time")
	comparisonCmd.Flags().StringVar(&comparisonSort, "sort", "id", "Row order (id, gap, score)")

	scoresCmd.AddCommand(scoresListCmd)
	scoresCmd.AddCommand(scoresGetCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(comparisonCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func runScoresList(cmd *cobra.Command, _ []string) error {
	if facade == nil {
		return errors.New("visibility service not configured")
	}

	filter := domain.ScoreFilter{Brand: scoresBrand, Period: domain.Period(scoresPeriod)}
	if scoresQuery != "" {
		id, err := parseID("query_id", scoresQuery)
		if err != nil {
			return err
		}
		filter.QueryID = id
	}

	result, err := facade.Scores(cmd.Context(), filter, domain.PageRequest{Page: scoresPage, PageSize: scoresPageSize})
	if err != nil {
		return fmt.Errorf("failed to list scores: %w", err)
	}

	return printResult(cmd, result,
		func(p domain.Page[domain.ScoreRecord]) wire.Paginated[wire.Score] {
			return wire.NewPaginated(p, wire.FromScore)
		},
		func(page domain.Page[domain.ScoreRecord]) {
			if len(page.Items) == 0 {
				cmd.Println("No scores found.")
				return
			}
			tw := newTable(cmd, "QUERY", "BRAND", "SCORE", "GAP", "PERIOD")
			for i := range page.Items {
				s := &page.Items[i]
				row(tw, s.QueryID, s.Brand, formatScore(s.VisibilityScore), formatOptionalScore(s.CompetitiveGap), s.Period)
			}
			tw.Flush()
			printPageFooter(cmd, page, "scores")
		})
}

func runScoresGet(cmd *cobra.Command, args []string) error {
	if facade == nil {
		return errors.New("visibility service not configured")
	}

	id, err := parseID("query_id", args[0])
	if err != nil {
		return err
	}

	period := domain.Period(scoresPeriod)
	if period == "" {
		period = domain.PeriodRaw
	}
	req := domain.ScoreRequest{QueryID: id, Brand: args[1], Period: period}
	if req.From, err = parseTimeFlag("from", scoresFrom); err != nil {
		return err
	}
	if req.To, err = parseTimeFlag("to", scoresTo); err != nil {
		return err
	}

	result, err := facade.Score(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to compute score: %w", err)
	}

	return printResult(cmd, result,
		func(s *domain.ScoreRecord) wire.Score { return wire.FromScore(*s) },
		func(s *domain.ScoreRecord) {
			cmd.Printf("Query:  %d\n", s.QueryID)
			cmd.Printf("Brand:  %s\n", s.Brand)
			cmd.Printf("Period: %s\n", s.Period)
			cmd.Printf("Score:  %s\n", formatScore(s.VisibilityScore))
			if s.CompetitiveGap != nil {
				cmd.Printf("Gap:    %+.2f\n", *s.CompetitiveGap)
			}
		})
}

func runComparison(cmd *cobra.Command, _ []string) error {
	if facade == nil {
		return errors.New("visibility service not configured")
	}

	filter := domain.ComparisonFilter{Period: domain.Period(comparisonPeriod)}
	var err error
	if filter.Category, err = parseCategory(comparisonCategory); err != nil {
		return err
	}
	if filter.From, err = parseTimeFlag("from", comparisonFrom); err != nil {
		return err
	}
	if filter.To, err = parseTimeFlag("to", comparisonTo); err != nil {
		return err
	}
	order, err := comparisonOrder(comparisonSort)
	if err != nil {
		return err
	}

	result, err := facade.Comparison(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to compute comparison: %w", err)
	}
	result.Data = order(result.Data)

	return printResult(cmd, result, wire.FromComparison, func(rows []domain.ComparisonRow) {
		if len(rows) == 0 {
			cmd.Println("No active queries.")
			return
		}
		tw := newTable(cmd, "ID", "QUERY", "PRIMARY", "COMPETITORS", "GAP")
		for i := range rows {
			r := &rows[i]
			split := min(1, len(r.Brands))
			row(tw, r.QueryID, r.QueryText, brandScores(r, r.Brands[:split]), brandScores(r, r.Brands[split:]),
				fmt.Sprintf("%+.2f", r.CompetitiveGap))
		}
		tw.Flush()
	})
}

func comparisonOrder(sortBy string) (func([]domain.ComparisonRow) []domain.ComparisonRow, error) {
	switch sortBy {
	case "", "id":
		return func(rows []domain.ComparisonRow) []domain.ComparisonRow { return rows }, nil
	case "gap":
		return domain.SortByGap, nil
	case "score":
		return domain.SortByPrimaryScore, nil
	default:
		return nil, domain.NewValidationError("sort", "must be one of id, gap, score")
	}
}

func brandScores(r *domain.ComparisonRow, brands []string) string {
	if len(brands) == 0 {
		return "-"
	}
	parts := make([]string, len(brands))
	for i, b := range brands {
		parts[i] = b + " " + formatScore(r.ScoreByBrand[b])
	}
	return strings.Join(parts, ", ")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	if facade == nil {
		return errors.New("visibility service not configured")
	}

	result, err := facade.Snapshot(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get snapshot: %w", err)
	}

	return printResult(cmd, result,
		func(s *domain.Snapshot) wire.Snapshot { return wire.FromSnapshot(*s) },
		func(s *domain.Snapshot) {
			cmd.Printf("ID:       %s\n", s.ID)
			cmd.Printf("Query:    %d %s\n", s.QueryID, s.QueryText)
			cmd.Printf("Platform: %s\n", s.Platform.Description())
			cmd.Printf("Scraped:  %s (%dms)\n", formatTime(s.ScrapedAt), s.ScrapeDurationMs)
			if s.Metadata.URL != "" {
				cmd.Printf("URL:      %s (status %d)\n", s.Metadata.URL, s.Metadata.StatusCode)
			}
			cmd.Println()
			cmd.Println(s.RawContent)
		})
}
