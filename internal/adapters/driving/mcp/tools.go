package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/geovis/internal/core/domain"
)

// fallbackReason explains why a result is substitute data.
func fallbackReason[T any](r domain.Result[T]) string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// ListQueriesInput is the input schema for the list_queries tool.
type ListQueriesInput struct {
	Category string `json:"category,omitempty" jsonschema:"product_comparison, brand_search, category_search or general"`
	Priority string `json:"priority,omitempty" jsonschema:"high, medium or low"`
	Active   *bool  `json:"active,omitempty" jsonschema:"only active (true) or inactive (false) queries"`
	Page     int    `json:"page,omitempty" jsonschema:"1-based page number"`
	PageSize int    `json:"page_size,omitempty" jsonschema:"items per page"`
}

// ListQueriesOutput is the output schema for the list_queries tool.
type ListQueriesOutput struct {
	IsFallback     bool          `json:"is_fallback" jsonschema:"true when substitute data is shown"`
	FallbackReason string        `json:"fallback_reason,omitempty" jsonschema:"why substitute data was served"`
	Queries        []QueryOutput `json:"queries"`
	Total          int           `json:"total"`
	Page           int           `json:"page"`
	TotalPages     int           `json:"total_pages"`
}

// QueryOutput represents one tracked query.
type QueryOutput struct {
	ID          int64    `json:"id"`
	Text        string   `json:"text"`
	Category    string   `json:"category"`
	Priority    string   `json:"priority"`
	Brands      []string `json:"brands"`
	Active      bool     `json:"active"`
	LatestScore *float64 `json:"latest_score,omitempty"`
}

// LatestRankingsInput is the input schema for the latest_rankings tool.
type LatestRankingsInput struct {
	QueryID int64 `json:"query_id" jsonschema:"the tracked query"`
}

// LatestRankingsOutput is the output schema for the latest_rankings tool.
type LatestRankingsOutput struct {
	IsFallback     bool            `json:"is_fallback" jsonschema:"true when substitute data is shown"`
	FallbackReason string          `json:"fallback_reason,omitempty" jsonschema:"why substitute data was served"`
	Rankings       []RankingOutput `json:"rankings"`
}

// RankingOutput is one observation. Rank 0 means the brand was absent.
type RankingOutput struct {
	Platform  string `json:"platform"`
	Brand     string `json:"brand"`
	Rank      int    `json:"rank"`
	ScrapedAt string `json:"scraped_at"`
}

// TrendsInput is the input schema for the trends tool.
type TrendsInput struct {
	QueryID     int64    `json:"query_id" jsonschema:"the tracked query"`
	Brands      []string `json:"brands,omitempty" jsonschema:"brands to include (default all tracked)"`
	Granularity string   `json:"granularity,omitempty" jsonschema:"daily, weekly or monthly (default daily)"`
	From        string   `json:"from,omitempty" jsonschema:"window start, RFC 3339 or YYYY-MM-DD"`
	To          string   `json:"to,omitempty" jsonschema:"window end (exclusive), RFC 3339 or YYYY-MM-DD"`
}

// TrendsOutput is the output schema for the trends tool.
type TrendsOutput struct {
	IsFallback     bool               `json:"is_fallback" jsonschema:"true when substitute data is shown"`
	FallbackReason string             `json:"fallback_reason,omitempty" jsonschema:"why substitute data was served"`
	Points         []TrendPointOutput `json:"points"`
}

// TrendPointOutput is one bucket for one brand. SampleCount 0 marks a gap.
type TrendPointOutput struct {
	Bucket      string  `json:"bucket"`
	Brand       string  `json:"brand"`
	AvgRank     float64 `json:"avg_rank"`
	AvgScore    float64 `json:"avg_score"`
	SampleCount int     `json:"sample_count"`
}

// ComparisonInput is the input schema for the comparison tool.
type ComparisonInput struct {
	Category string `json:"category,omitempty" jsonschema:"only queries of this category"`
	Period   string `json:"period,omitempty" jsonschema:"raw, daily, weekly or monthly (default raw)"`
	Sort     string `json:"sort,omitempty" jsonschema:"id (default), gap (largest deficit first) or score"`
}

// ComparisonOutput is the output schema for the comparison tool.
type ComparisonOutput struct {
	IsFallback     bool                  `json:"is_fallback" jsonschema:"true when substitute data is shown"`
	FallbackReason string                `json:"fallback_reason,omitempty" jsonschema:"why substitute data was served"`
	Rows           []ComparisonRowOutput `json:"rows"`
}

// ComparisonRowOutput compares every tracked brand on one query.
type ComparisonRowOutput struct {
	QueryID        int64              `json:"query_id"`
	QueryText      string             `json:"query_text"`
	PrimaryBrand   string             `json:"primary_brand"`
	Scores         map[string]float64 `json:"scores"`
	CompetitiveGap float64            `json:"competitive_gap"`
}

// ScoreInput is the input schema for the score tool.
type ScoreInput struct {
	QueryID int64  `json:"query_id" jsonschema:"the tracked query"`
	Brand   string `json:"brand" jsonschema:"a brand tracked by the query"`
	Period  string `json:"period,omitempty" jsonschema:"raw, daily, weekly or monthly (default raw)"`
}

// ScoreOutput is the output schema for the score tool.
type ScoreOutput struct {
	IsFallback     bool     `json:"is_fallback" jsonschema:"true when substitute data is shown"`
	FallbackReason string   `json:"fallback_reason,omitempty" jsonschema:"why substitute data was served"`
	QueryID        int64    `json:"query_id"`
	Brand          string   `json:"brand"`
	Score          float64  `json:"score"`
	CompetitiveGap *float64 `json:"competitive_gap,omitempty"`
	Period         string   `json:"period"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_queries",
		Description: "List tracked AI-answer queries with their latest primary-brand visibility score",
	}, s.handleListQueries)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "latest_rankings",
		Description: "Latest rank of every brand on every AI platform for one query",
	}, s.handleLatestRankings)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "trends",
		Description: "Average rank and visibility score per day, week or month for a query's brands",
	}, s.handleTrends)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "comparison",
		Description: "Visibility scores of every tracked brand across active queries, with the primary brand's competitive gap",
	}, s.handleComparison)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "score",
		Description: "Visibility score of one brand on one query",
	}, s.handleScore)
}

// handleListQueries handles the list_queries tool invocation.
func (s *Server) handleListQueries(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListQueriesInput,
) (*mcp.CallToolResult, ListQueriesOutput, error) {
	filter := domain.QueryFilter{Active: input.Active}
	if input.Category != "" {
		c := domain.Category(input.Category)
		filter.Category = &c
	}
	if input.Priority != "" {
		p := domain.Priority(input.Priority)
		filter.Priority = &p
	}

	result, err := s.ports.Facade.Queries(ctx, filter, domain.PageRequest{Page: input.Page, PageSize: input.PageSize})
	if err != nil {
		return nil, ListQueriesOutput{}, err
	}

	page := result.Data
	output := ListQueriesOutput{
		IsFallback:     result.IsFallback(),
		FallbackReason: fallbackReason(result),
		Queries:        make([]QueryOutput, len(page.Items)),
		Total:          page.Total,
		Page:           page.Page,
		TotalPages:     page.TotalPages(),
	}
	for i := range page.Items {
		q := &page.Items[i]
		output.Queries[i] = QueryOutput{
			ID:          q.ID,
			Text:        q.Text,
			Category:    q.Category.String(),
			Priority:    q.Priority.String(),
			Brands:      q.TrackedBrands,
			Active:      q.Active,
			LatestScore: q.LatestScore,
		}
	}

	return nil, output, nil
}

// handleLatestRankings handles the latest_rankings tool invocation.
func (s *Server) handleLatestRankings(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LatestRankingsInput,
) (*mcp.CallToolResult, LatestRankingsOutput, error) {
	result, err := s.ports.Facade.Latest(ctx, input.QueryID)
	if err != nil {
		return nil, LatestRankingsOutput{}, err
	}

	output := LatestRankingsOutput{
		IsFallback:     result.IsFallback(),
		FallbackReason: fallbackReason(result),
		Rankings:       make([]RankingOutput, len(result.Data)),
	}
	for i, o := range result.Data {
		output.Rankings[i] = RankingOutput{
			Platform:  o.Platform.String(),
			Brand:     o.Brand,
			Rank:      o.RankPosition,
			ScrapedAt: o.ScrapedAt.UTC().Format(time.RFC3339),
		}
	}

	return nil, output, nil
}

// handleTrends handles the trends tool invocation.
func (s *Server) handleTrends(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TrendsInput,
) (*mcp.CallToolResult, TrendsOutput, error) {
	granularity := domain.Granularity(input.Granularity)
	if granularity == "" {
		granularity = domain.GranularityDaily
	}
	if !granularity.IsValid() {
		return nil, TrendsOutput{}, domain.NewValidationError("granularity", "unknown granularity "+input.Granularity)
	}

	from, err := parseTime("from", input.From)
	if err != nil {
		return nil, TrendsOutput{}, err
	}
	to, err := parseTime("to", input.To)
	if err != nil {
		return nil, TrendsOutput{}, err
	}
	defFrom, defTo := granularity.Period().DefaultWindow(s.now())
	if from.IsZero() {
		from = defFrom
	}
	if to.IsZero() {
		to = defTo
	}

	result, err := s.ports.Facade.Trends(ctx, domain.TrendRequest{
		QueryID:     input.QueryID,
		Brands:      input.Brands,
		From:        from,
		To:          to,
		Granularity: granularity,
	})
	if err != nil {
		return nil, TrendsOutput{}, err
	}

	output := TrendsOutput{
		IsFallback:     result.IsFallback(),
		FallbackReason: fallbackReason(result),
		Points:         make([]TrendPointOutput, len(result.Data)),
	}
	for i, p := range result.Data {
		output.Points[i] = TrendPointOutput{
			Bucket:      p.Timestamp.Format(time.RFC3339),
			Brand:       p.Brand,
			AvgRank:     p.AvgRank,
			AvgScore:    p.AvgScore,
			SampleCount: p.SampleCount,
		}
	}

	return nil, output, nil
}

// handleComparison handles the comparison tool invocation.
func (s *Server) handleComparison(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ComparisonInput,
) (*mcp.CallToolResult, ComparisonOutput, error) {
	filter := domain.ComparisonFilter{Period: domain.Period(input.Period)}
	if input.Category != "" {
		c := domain.Category(input.Category)
		filter.Category = &c
	}

	result, err := s.ports.Facade.Comparison(ctx, filter)
	if err != nil {
		return nil, ComparisonOutput{}, err
	}

	rows := result.Data
	switch input.Sort {
	case "", "id":
	case "gap":
		rows = domain.SortByGap(rows)
	case "score":
		rows = domain.SortByPrimaryScore(rows)
	default:
		return nil, ComparisonOutput{}, domain.NewValidationError("sort", "must be one of id, gap, score")
	}

	output := ComparisonOutput{
		IsFallback:     result.IsFallback(),
		FallbackReason: fallbackReason(result),
		Rows:           make([]ComparisonRowOutput, len(rows)),
	}
	for i := range rows {
		r := &rows[i]
		primary := ""
		if len(r.Brands) > 0 {
			primary = r.Brands[0]
		}
		output.Rows[i] = ComparisonRowOutput{
			QueryID:        r.QueryID,
			QueryText:      r.QueryText,
			PrimaryBrand:   primary,
			Scores:         r.ScoreByBrand,
			CompetitiveGap: r.CompetitiveGap,
		}
	}

	return nil, output, nil
}

// handleScore handles the score tool invocation.
func (s *Server) handleScore(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ScoreInput,
) (*mcp.CallToolResult, ScoreOutput, error) {
	period := domain.Period(input.Period)
	if period == "" {
		period = domain.PeriodRaw
	}

	result, err := s.ports.Facade.Score(ctx, domain.ScoreRequest{
		QueryID: input.QueryID,
		Brand:   input.Brand,
		Period:  period,
	})
	if err != nil {
		return nil, ScoreOutput{}, err
	}

	rec := result.Data
	return nil, ScoreOutput{
		IsFallback:     result.IsFallback(),
		FallbackReason: fallbackReason(result),
		QueryID:        rec.QueryID,
		Brand:          rec.Brand,
		Score:          rec.VisibilityScore,
		CompetitiveGap: rec.CompetitiveGap,
		Period:         rec.Period.String(),
	}, nil
}

// parseTime accepts RFC 3339 timestamps or plain dates. Empty is zero.
func parseTime(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	return time.Time{}, domain.NewValidationError(field, "expected RFC 3339 timestamp or YYYY-MM-DD")
}
