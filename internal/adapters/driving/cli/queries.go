package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/geovis/internal/adapters/wire"
	"github.com/custodia-labs/geovis/internal/core/domain"
)

var queriesCmd = &cobra.Command{
	Use:     "queries",
	Aliases: []string{"query"},
	Short:   "Manage tracked visibility queries",
}

var queriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked queries",
	Args:  cobra.NoArgs,
	RunE:  runQueriesList,
}

var queriesGetCmd = &cobra.Command{
	Use:   "get [query-id]",
	Short: "Show one query",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueriesGet,
}

var queriesCreateCmd = &cobra.Command{
	Use:   "create [text]",
	Short: "Start tracking a query",
	Long: `Start tracking a query. The first --brand is the primary brand; the
rest are its competitors.

Example:
  geovis queries create "best air purifier for allergies" \
    --brand Levoit --brand Dyson --brand Coway --category product_comparison`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQueriesCreate,
}

var queriesUpdateCmd = &cobra.Command{
	Use:   "update [query-id]",
	Short: "Change a query's text, category, priority, brands or status",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueriesUpdate,
}

var queriesDeactivateCmd = &cobra.Command{
	Use:   "deactivate [query-id]",
	Short: "Stop tracking a query without deleting its history",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueriesDeactivate,
}

// Flags for queries list.
var (
	queriesCategory string
	queriesPriority string
	queriesActive   string
	queriesPage     int
	queriesPageSize int
)

// Flags for queries create and update.
var (
	queryText     string
	queryCategory string
	queryPriority string
	queryBrands   []string
	queryActive   bool
)

func init() {
	queriesListCmd.Flags().StringVar(&queriesCategory, "category", "", "Filter by category")
	queriesListCmd.Flags().StringVar(&queriesPriority, "priority", "", "Filter by priority (high, medium, low)")
	queriesListCmd.Flags().StringVar(&queriesActive, "active", "", "Filter by status (true, false)")
	queriesListCmd.Flags().IntVar(&queriesPage, "page", 0, "Page number (1-based)")
	queriesListCmd.Flags().IntVar(&queriesPageSize, "page-size", 0, "Items per page")

	queriesCreateCmd.Flags().StringSliceVarP(&queryBrands, "brand", "b", nil, "Tracked brand, primary first (repeatable)")
	queriesCreateCmd.Flags().StringVar(&queryCategory, "category", "", "Query category (default general)")
	queriesCreateCmd.Flags().StringVar(&queryPriority, "priority", "", "Query priority (default medium)")

	queriesUpdateCmd.Flags().StringVar(&queryText, "text", "", "New query text")
	queriesUpdateCmd.Flags().StringVar(&queryCategory, "category", "", "New category")
	queriesUpdateCmd.Flags().StringVar(&queryPriority, "priority", "", "New priority")
	queriesUpdateCmd.Flags().StringSliceVarP(&queryBrands, "brand", "b", nil, "Replace tracked brands (repeatable)")
	queriesUpdateCmd.Flags().BoolVar(&queryActive, "active", true, "Set active status")

	queriesCmd.AddCommand(queriesListCmd)
	queriesCmd.AddCommand(queriesGetCmd)
	queriesCmd.AddCommand(queriesCreateCmd)
	queriesCmd.AddCommand(queriesUpdateCmd)
	queriesCmd.AddCommand(queriesDeactivateCmd)
	rootCmd.AddCommand(queriesCmd)
}

func runQueriesList(cmd *cobra.Command, _ []string) error {
	if facade == nil {
		return errors.New("visibility service not configured")
	}

	var filter domain.QueryFilter
	var err error
	if filter.Category, err = parseCategory(queriesCategory); err != nil {
		return err
	}
	if filter.Priority, err = parsePriority(queriesPriority); err != nil {
		return err
	}
	if filter.Active, err = parseTriState("active", queriesActive); err != nil {
		return err
	}

	result, err := facade.Queries(cmd.Context(), filter, domain.PageRequest{Page: queriesPage, PageSize: queriesPageSize})
	if err != nil {
		return fmt.Errorf("failed to list queries: %w", err)
	}

	return printResult(cmd, result,
		func(p domain.Page[domain.VisibilityQuery]) wire.Paginated[wire.Query] {
			return wire.NewPaginated(p, wire.FromQuery)
		},
		func(page domain.Page[domain.VisibilityQuery]) {
			if len(page.Items) == 0 {
				cmd.Println("No queries found.")
				return
			}
			tw := newTable(cmd, "ID", "QUERY", "CATEGORY", "PRIORITY", "BRANDS", "ACTIVE", "SCORE")
			for i := range page.Items {
				q := &page.Items[i]
				row(tw, q.ID, q.Text, q.Category, q.Priority, strings.Join(q.TrackedBrands, ", "),
					yesNo(q.Active), formatOptionalScore(q.LatestScore))
			}
			tw.Flush()
			printPageFooter(cmd, page, "queries")
		})
}

func runQueriesGet(cmd *cobra.Command, args []string) error {
	if facade == nil {
		return errors.New("visibility service not configured")
	}

	id, err := parseID("query_id", args[0])
	if err != nil {
		return err
	}

	result, err := facade.Query(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get query: %w", err)
	}

	return printResult(cmd, result,
		func(q *domain.VisibilityQuery) wire.Query { return wire.FromQuery(*q) },
		func(q *domain.VisibilityQuery) { printQuery(cmd, q) })
}

func runQueriesCreate(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	input := domain.QueryCreate{
		Text:     strings.Join(args, " "),
		Category: domain.Category(queryCategory),
		Priority: domain.Priority(queryPriority),
		Brands:   queryBrands,
	}

	query, err := queryService.Create(cmd.Context(), input)
	if err != nil {
		return fmt.Errorf("failed to create query: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), wire.FromQuery(*query))
	}
	cmd.Printf("Created query %d: %s\n", query.ID, query.Text)
	return nil
}

func runQueriesUpdate(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	id, err := parseID("query_id", args[0])
	if err != nil {
		return err
	}

	var update domain.QueryUpdate
	flags := cmd.Flags()
	if flags.Changed("text") {
		update.Text = &queryText
	}
	if flags.Changed("category") {
		c := domain.Category(queryCategory)
		update.Category = &c
	}
	if flags.Changed("priority") {
		p := domain.Priority(queryPriority)
		update.Priority = &p
	}
	if flags.Changed("brand") {
		update.Brands = queryBrands
	}
	if flags.Changed("active") {
		update.Active = &queryActive
	}
	if update.IsEmpty() {
		return errors.New("nothing to update: pass at least one of --text, --category, --priority, --brand, --active")
	}

	query, err := queryService.Update(cmd.Context(), id, update)
	if err != nil {
		return fmt.Errorf("failed to update query: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), wire.FromQuery(*query))
	}
	cmd.Printf("Updated query %d.\n", query.ID)
	printQuery(cmd, query)
	return nil
}

func runQueriesDeactivate(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	id, err := parseID("query_id", args[0])
	if err != nil {
		return err
	}

	if err := queryService.Deactivate(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to deactivate query: %w", err)
	}

	cmd.Printf("Query %d deactivated.\n", id)
	return nil
}

func printQuery(cmd *cobra.Command, q *domain.VisibilityQuery) {
	cmd.Printf("ID:          %d\n", q.ID)
	cmd.Printf("Query:       %s\n", q.Text)
	cmd.Printf("Category:    %s\n", q.Category)
	cmd.Printf("Priority:    %s\n", q.Priority)
	cmd.Printf("Primary:     %s\n", q.PrimaryBrand())
	if competitors := q.Competitors(); len(competitors) > 0 {
		cmd.Printf("Competitors: %s\n", strings.Join(competitors, ", "))
	}
	cmd.Printf("Active:      %s\n", yesNo(q.Active))
	cmd.Printf("Score:       %s\n", formatOptionalScore(q.LatestScore))
	cmd.Printf("Created:     %s\n", formatTime(q.CreatedAt))
	cmd.Printf("Updated:     %s\n", formatTime(q.UpdatedAt))
}
