package wire

import (
	"time"

	"github.com/custodia-labs/geovis/internal/core/domain"
)

// BasePath is the API prefix shared by server and client.
const BasePath = "/api/v1/visibility"

// ErrorBody is the body of every non-2xx response.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// Meta describes one page of a paginated response.
type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// Paginated is the envelope of list endpoints.
type Paginated[T any] struct {
	Data []T `json:"data"`
	Meta Meta `json:"meta"`
}

// NewPaginated converts a domain page with convert applied to every item.
func NewPaginated[D, W any](page domain.Page[D], convert func(D) W) Paginated[W] {
	out := Paginated[W]{
		Data: make([]W, len(page.Items)),
		Meta: Meta{
			Total:      page.Total,
			Page:       page.Page,
			PageSize:   page.PageSize,
			TotalPages: page.TotalPages(),
		},
	}
	for i, item := range page.Items {
		out.Data[i] = convert(item)
	}
	return out
}

// PageOf converts a paginated response back to a domain page.
func PageOf[W, D any](p Paginated[W], convert func(W) D) domain.Page[D] {
	out := domain.Page[D]{
		Items:    make([]D, len(p.Data)),
		Total:    p.Meta.Total,
		Page:     p.Meta.Page,
		PageSize: p.Meta.PageSize,
	}
	for i, item := range p.Data {
		out.Items[i] = convert(item)
	}
	return out
}

// Query is a monitored query.
type Query struct {
	ID          int64     `json:"id"`
	QueryText   string    `json:"query_text"`
	Category    string    `json:"category"`
	Priority    string    `json:"priority"`
	Brands      []string  `json:"brands"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	LatestScore *float64  `json:"latest_score"`
}

// FromQuery converts a domain query.
func FromQuery(q domain.VisibilityQuery) Query {
	return Query{
		ID:          q.ID,
		QueryText:   q.Text,
		Category:    string(q.Category),
		Priority:    string(q.Priority),
		Brands:      nonNil(q.TrackedBrands),
		IsActive:    q.Active,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
		LatestScore: q.LatestScore,
	}
}

// ToDomain converts back to a domain query.
func (q Query) ToDomain() domain.VisibilityQuery {
	return domain.VisibilityQuery{
		ID:            q.ID,
		Text:          q.QueryText,
		Category:      domain.Category(q.Category),
		Priority:      domain.Priority(q.Priority),
		TrackedBrands: q.Brands,
		Active:        q.IsActive,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
		LatestScore:   q.LatestScore,
	}
}

// QueryCreate is the body of POST /queries.
type QueryCreate struct {
	QueryText string   `json:"query_text"`
	Category  string   `json:"category,omitempty"`
	Priority  string   `json:"priority,omitempty"`
	Brands    []string `json:"brands"`
}

// ToDomain converts the request body.
func (c QueryCreate) ToDomain() domain.QueryCreate {
	return domain.QueryCreate{
		Text:     c.QueryText,
		Category: domain.Category(c.Category),
		Priority: domain.Priority(c.Priority),
		Brands:   c.Brands,
	}
}

// QueryUpdate is the body of PUT /queries/{id}. Absent fields are unchanged.
type QueryUpdate struct {
	QueryText *string  `json:"query_text,omitempty"`
	Category  *string  `json:"category,omitempty"`
	Priority  *string  `json:"priority,omitempty"`
	Brands    []string `json:"brands,omitempty"`
	IsActive  *bool    `json:"is_active,omitempty"`
}

// ToDomain converts the request body.
func (u QueryUpdate) ToDomain() domain.QueryUpdate {
	out := domain.QueryUpdate{
		Text:   u.QueryText,
		Brands: u.Brands,
		Active: u.IsActive,
	}
	if u.Category != nil {
		c := domain.Category(*u.Category)
		out.Category = &c
	}
	if u.Priority != nil {
		p := domain.Priority(*u.Priority)
		out.Priority = &p
	}
	return out
}

// Ranking is one rank observation.
type Ranking struct {
	ID           int64     `json:"id"`
	QueryID      int64     `json:"query_id"`
	Platform     string    `json:"platform"`
	Brand        string    `json:"brand"`
	RankPosition int       `json:"rank_position"`
	Snippet      *string   `json:"snippet"`
	SourceURLs   []string  `json:"source_urls"`
	SnapshotID   *string   `json:"snapshot_id"`
	ScrapedAt    time.Time `json:"scraped_at"`
	SourceRunID  *string   `json:"source_run_id"`
}

// FromRanking converts a domain observation.
func FromRanking(o domain.RankObservation) Ranking {
	return Ranking{
		ID:           o.ID,
		QueryID:      o.QueryID,
		Platform:     string(o.Platform),
		Brand:        o.Brand,
		RankPosition: o.RankPosition,
		Snippet:      optional(o.Snippet),
		SourceURLs:   o.SourceURLs,
		SnapshotID:   optional(o.SnapshotID),
		ScrapedAt:    o.ScrapedAt,
		SourceRunID:  optional(o.SourceRunID),
	}
}

// ToDomain converts back to a domain observation.
func (r Ranking) ToDomain() domain.RankObservation {
	return domain.RankObservation{
		ID:           r.ID,
		QueryID:      r.QueryID,
		Platform:     domain.Platform(r.Platform),
		Brand:        r.Brand,
		RankPosition: r.RankPosition,
		Snippet:      deref(r.Snippet),
		SourceURLs:   r.SourceURLs,
		SnapshotID:   deref(r.SnapshotID),
		ScrapedAt:    r.ScrapedAt,
		SourceRunID:  deref(r.SourceRunID),
	}
}

// FromRankings converts a slice of observations, never returning nil.
func FromRankings(observations []domain.RankObservation) []Ranking {
	out := make([]Ranking, len(observations))
	for i, o := range observations {
		out[i] = FromRanking(o)
	}
	return out
}

// ToRankings converts a slice back to domain observations.
func ToRankings(rankings []Ranking) []domain.RankObservation {
	out := make([]domain.RankObservation, len(rankings))
	for i, r := range rankings {
		out[i] = r.ToDomain()
	}
	return out
}

// Score is one score record.
type Score struct {
	QueryID         int64     `json:"query_id"`
	Brand           string    `json:"brand"`
	VisibilityScore float64   `json:"visibility_score"`
	CompetitiveGap  *float64  `json:"competitive_gap"`
	Period          string    `json:"period"`
	ComputedAt      time.Time `json:"computed_at"`
}

// FromScore converts a domain score record.
func FromScore(s domain.ScoreRecord) Score {
	return Score{
		QueryID:         s.QueryID,
		Brand:           s.Brand,
		VisibilityScore: s.VisibilityScore,
		CompetitiveGap:  s.CompetitiveGap,
		Period:          string(s.Period),
		ComputedAt:      s.ComputedAt,
	}
}

// ToDomain converts back to a domain score record.
func (s Score) ToDomain() domain.ScoreRecord {
	return domain.ScoreRecord{
		QueryID:         s.QueryID,
		Brand:           s.Brand,
		VisibilityScore: s.VisibilityScore,
		CompetitiveGap:  s.CompetitiveGap,
		Period:          domain.Period(s.Period),
		ComputedAt:      s.ComputedAt,
	}
}

// TrendPoint is one (bucket, brand) cell.
type TrendPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	Brand       string    `json:"brand"`
	AvgRank     float64   `json:"avg_rank"`
	AvgScore    float64   `json:"avg_score"`
	SampleCount int       `json:"sample_count"`
}

// FromTrends converts a trend series.
func FromTrends(points []domain.TrendPoint) []TrendPoint {
	out := make([]TrendPoint, len(points))
	for i, p := range points {
		out[i] = TrendPoint(p)
	}
	return out
}

// ToTrends converts a series back to domain points.
func ToTrends(points []TrendPoint) []domain.TrendPoint {
	out := make([]domain.TrendPoint, len(points))
	for i, p := range points {
		out[i] = domain.TrendPoint(p)
	}
	return out
}

// ComparisonRow is one row of the comparison table.
type ComparisonRow struct {
	QueryID        int64              `json:"query_id"`
	QueryText      string             `json:"query_text"`
	Brands         []string           `json:"brands"`
	ScoreByBrand   map[string]float64 `json:"score_by_brand"`
	CompetitiveGap float64            `json:"competitive_gap"`
}

// FromComparison converts a comparison table.
func FromComparison(rows []domain.ComparisonRow) []ComparisonRow {
	out := make([]ComparisonRow, len(rows))
	for i, r := range rows {
		out[i] = ComparisonRow{
			QueryID:        r.QueryID,
			QueryText:      r.QueryText,
			Brands:         nonNil(r.Brands),
			ScoreByBrand:   r.ScoreByBrand,
			CompetitiveGap: r.CompetitiveGap,
		}
	}
	return out
}

// ToComparison converts a table back to domain rows.
func ToComparison(rows []ComparisonRow) []domain.ComparisonRow {
	out := make([]domain.ComparisonRow, len(rows))
	for i, r := range rows {
		out[i] = domain.ComparisonRow{
			QueryID:        r.QueryID,
			QueryText:      r.QueryText,
			Brands:         r.Brands,
			ScoreByBrand:   r.ScoreByBrand,
			CompetitiveGap: r.CompetitiveGap,
		}
	}
	return out
}

// SnapshotMetadata describes how a snapshot was captured.
type SnapshotMetadata struct {
	URL           string `json:"url"`
	StatusCode    int    `json:"status_code"`
	ContentLength int    `json:"content_length"`
}

// Snapshot is a raw answer document.
type Snapshot struct {
	ID               string           `json:"_id"`
	QueryID          int64            `json:"query_id"`
	Platform         string           `json:"platform"`
	QueryText        string           `json:"query_text"`
	RawContent       string           `json:"raw_content"`
	ContentHash      string           `json:"content_hash"`
	ScrapedAt        time.Time        `json:"scraped_at"`
	ScrapeDurationMs int64            `json:"scrape_duration_ms"`
	Metadata         SnapshotMetadata `json:"metadata"`
}

// FromSnapshot converts a domain snapshot.
func FromSnapshot(s domain.Snapshot) Snapshot {
	return Snapshot{
		ID:               s.ID,
		QueryID:          s.QueryID,
		Platform:         string(s.Platform),
		QueryText:        s.QueryText,
		RawContent:       s.RawContent,
		ContentHash:      s.ContentHash,
		ScrapedAt:        s.ScrapedAt,
		ScrapeDurationMs: s.ScrapeDurationMs,
		Metadata:         SnapshotMetadata(s.Metadata),
	}
}

// ToDomain converts back to a domain snapshot.
func (s Snapshot) ToDomain() domain.Snapshot {
	return domain.Snapshot{
		ID:               s.ID,
		QueryID:          s.QueryID,
		Platform:         domain.Platform(s.Platform),
		QueryText:        s.QueryText,
		RawContent:       s.RawContent,
		ContentHash:      s.ContentHash,
		ScrapedAt:        s.ScrapedAt,
		ScrapeDurationMs: s.ScrapeDurationMs,
		Metadata:         domain.SnapshotMetadata(s.Metadata),
	}
}

// IngestRequest is the body of POST /rankings.
type IngestRequest struct {
	SourceRunID  string     `json:"source_run_id,omitempty"`
	Observations []Ranking  `json:"observations"`
	Snapshots    []Snapshot `json:"snapshots,omitempty"`
}

// ToDomain converts the request body.
func (r IngestRequest) ToDomain() domain.IngestBatch {
	batch := domain.IngestBatch{
		SourceRunID:  r.SourceRunID,
		Observations: ToRankings(r.Observations),
	}
	for _, s := range r.Snapshots {
		batch.Snapshots = append(batch.Snapshots, s.ToDomain())
	}
	return batch
}

// IngestResponse reports a stored batch.
type IngestResponse struct {
	RunID        string    `json:"run_id"`
	Observations []Ranking `json:"observations"`
	Snapshots    int       `json:"snapshots"`
}

// FromIngest converts an ingest result.
func FromIngest(r domain.IngestResult) IngestResponse {
	return IngestResponse{
		RunID:        r.RunID,
		Observations: FromRankings(r.Observations),
		Snapshots:    r.Snapshots,
	}
}

// ResultError describes why a result is substitute data.
type ResultError struct {
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// Result is the presentation envelope of a facade read.
type Result[T any] struct {
	Data       T            `json:"data"`
	IsFallback bool         `json:"isFallback"`
	Error      *ResultError `json:"error,omitempty"`
}

// NewResult wraps a facade result with convert applied to its data.
func NewResult[D, W any](r domain.Result[D], convert func(D) W) Result[W] {
	out := Result[W]{Data: convert(r.Data), IsFallback: r.IsFallback()}
	if r.Err != nil {
		out.Error = &ResultError{Status: r.Err.Status, Detail: r.Err.Detail}
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
