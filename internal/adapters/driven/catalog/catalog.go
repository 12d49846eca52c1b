package catalog

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driven"
)

// Ensure Catalog implements the interface.
var _ driven.VisibilitySource = (*Catalog)(nil)

// Catalog serves the static substitute data set.
type Catalog struct {
	now func() time.Time
	loc *time.Location
}

// New creates a catalog using the wall clock. Latest rankings are stamped
// with the current time and trend windows default to end now.
func New() *Catalog {
	return &Catalog{now: time.Now}
}

// NewAt creates a catalog with a fixed clock.
func NewAt(now func() time.Time) *Catalog {
	return &Catalog{now: now}
}

// SetLocation sets the timezone trend buckets are cut in. nil means UTC.
func (c *Catalog) SetLocation(loc *time.Location) {
	c.loc = loc
}

func (c *Catalog) location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// ListQueries returns catalog queries matching filter, newest first.
func (c *Catalog) ListQueries(
	_ context.Context,
	filter domain.QueryFilter,
	page domain.PageRequest,
) (domain.Page[domain.VisibilityQuery], error) {
	req, err := page.Normalize(0, 0)
	if err != nil {
		return domain.Page[domain.VisibilityQuery]{}, err
	}

	queries := make([]domain.VisibilityQuery, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		q := entries[i].query()
		if filter.Matches(&q) {
			queries = append(queries, q)
		}
	}
	return domain.Paginate(queries, req), nil
}

// GetQuery returns one catalog query.
func (c *Catalog) GetQuery(_ context.Context, id int64) (*domain.VisibilityQuery, error) {
	e, ok := lookup(id)
	if !ok {
		return nil, fmt.Errorf("query %d: %w", id, domain.ErrNotFound)
	}
	q := e.query()
	return &q, nil
}

// ListRankings returns catalog observations matching filter.
func (c *Catalog) ListRankings(
	_ context.Context,
	filter domain.ObservationFilter,
	page domain.PageRequest,
) (domain.Page[domain.RankObservation], error) {
	req, err := page.Normalize(0, 0)
	if err != nil {
		return domain.Page[domain.RankObservation]{}, err
	}

	now := c.now()
	var out []domain.RankObservation
	for i := len(entries) - 1; i >= 0; i-- {
		rows := rankings(entries[i].id, now)
		for j := len(rows) - 1; j >= 0; j-- {
			if filter.Matches(&rows[j]) {
				out = append(out, rows[j])
			}
		}
	}
	return domain.Paginate(out, req), nil
}

// LatestRankings returns one observation per (platform, brand). Unknown
// queries have no observations.
func (c *Catalog) LatestRankings(_ context.Context, queryID int64) ([]domain.RankObservation, error) {
	if _, ok := lookup(queryID); !ok {
		return []domain.RankObservation{}, nil
	}
	rows := rankings(queryID, c.now())
	domain.SortByKey(rows)
	return rows, nil
}

// Trends returns a deterministic series around each brand's baseline.
func (c *Catalog) Trends(_ context.Context, req domain.TrendRequest) ([]domain.TrendPoint, error) {
	if _, ok := lookup(req.QueryID); !ok {
		return nil, fmt.Errorf("query %d: %w", req.QueryID, domain.ErrNotFound)
	}
	if req.Granularity == "" {
		req.Granularity = domain.GranularityDaily
	}
	if req.From.IsZero() || req.To.IsZero() {
		req.From, req.To = req.Granularity.Period().DefaultWindow(c.now())
	}
	brands := req.Brands
	if len(brands) == 0 {
		brands = Brands
	}
	for _, b := range brands {
		if _, ok := baseRanks[b]; !ok {
			return nil, domain.NewValidationError("brands", "brand "+b+" is not tracked")
		}
	}

	starts := req.Granularity.Buckets(req.From, req.To, c.location())
	points := make([]domain.TrendPoint, 0, len(starts)*len(brands))
	for i, start := range starts {
		for _, brand := range brands {
			drift := math.Sin(float64(i)*0.3+float64(brandIndex(brand))) * 0.5
			points = append(points, domain.TrendPoint{
				Timestamp:   start,
				Brand:       brand,
				AvgRank:     math.Max(1, round1(baseRanks[brand]+drift)),
				AvgScore:    round1(baseScores[brand] + drift*8),
				SampleCount: trendSamples,
			})
		}
	}
	return points, nil
}

// Score returns the catalog score of one brand. The primary brand's
// record carries the competitive gap.
func (c *Catalog) Score(_ context.Context, req domain.ScoreRequest) (*domain.ScoreRecord, error) {
	e, ok := lookup(req.QueryID)
	if !ok {
		return nil, fmt.Errorf("query %d: %w", req.QueryID, domain.ErrNotFound)
	}
	rec := c.record(e, req.Brand, req.Period)
	return &rec, nil
}

// ListScores returns a record for every (query, brand) pair matching filter.
func (c *Catalog) ListScores(
	_ context.Context,
	filter domain.ScoreFilter,
	page domain.PageRequest,
) (domain.Page[domain.ScoreRecord], error) {
	req, err := page.Normalize(0, 0)
	if err != nil {
		return domain.Page[domain.ScoreRecord]{}, err
	}
	period := filter.Period
	if period == "" {
		period = domain.PeriodRaw
	}

	var out []domain.ScoreRecord
	for _, e := range entries {
		if filter.QueryID != 0 && e.id != filter.QueryID {
			continue
		}
		for _, b := range Brands {
			if filter.Brand != "" && b != filter.Brand {
				continue
			}
			out = append(out, c.record(e, b, period))
		}
	}
	return domain.Paginate(out, req), nil
}

// Comparison returns one row per catalog query matching the category,
// ordered by query ID.
func (c *Catalog) Comparison(_ context.Context, filter domain.ComparisonFilter) ([]domain.ComparisonRow, error) {
	rows := make([]domain.ComparisonRow, 0, len(entries))
	for _, e := range entries {
		if filter.Category != nil && e.category != *filter.Category {
			continue
		}
		rows = append(rows, e.comparisonRow())
	}
	return rows, nil
}

// Snapshot reconstructs the snapshot referenced by a catalog observation.
func (c *Catalog) Snapshot(_ context.Context, id string) (*domain.Snapshot, error) {
	queryID, platform, brand, ok := parseSnapshotID(id)
	if !ok {
		return nil, fmt.Errorf("snapshot %s: %w", id, domain.ErrNotFound)
	}
	e, _ := lookup(queryID)

	raw := snippet(brand, platform, latestRanks[brand][platform])
	return &domain.Snapshot{
		ID:          id,
		QueryID:     queryID,
		Platform:    platform,
		QueryText:   e.text,
		RawContent:  raw,
		ContentHash: domain.ContentAddress(raw),
		ScrapedAt:   c.now().UTC(),
		Metadata: domain.SnapshotMetadata{
			URL:           sourceURL(platform, brand),
			StatusCode:    200,
			ContentLength: len(raw),
		},
	}, nil
}

func (c *Catalog) record(e entry, brand string, period domain.Period) domain.ScoreRecord {
	score, _ := e.scoreOf(brand)
	rec := domain.ScoreRecord{
		QueryID:         e.id,
		Brand:           brand,
		VisibilityScore: score,
		Period:          period,
		ComputedAt:      c.now().UTC(),
	}
	if brand == Brands[0] {
		gap := e.gap()
		rec.CompetitiveGap = &gap
	}
	return rec
}

// rankings builds the latest scrape of a query: one row per brand and
// platform, with IDs starting at queryID*100+1.
func rankings(queryID int64, at time.Time) []domain.RankObservation {
	platforms := domain.AllPlatforms()
	out := make([]domain.RankObservation, 0, len(Brands)*len(platforms))
	id := queryID * 100
	for _, brand := range Brands {
		for _, p := range platforms {
			id++
			rank := latestRanks[brand][p]
			out = append(out, domain.RankObservation{
				ID:           id,
				QueryID:      queryID,
				Platform:     p,
				Brand:        brand,
				RankPosition: rank,
				Snippet:      snippet(brand, p, rank),
				SourceURLs:   []string{sourceURL(p, brand)},
				SnapshotID:   snapshotID(queryID, p, brand),
				ScrapedAt:    at.UTC(),
			})
		}
	}
	return out
}

func snippet(brand string, p domain.Platform, rank int) string {
	standing := "notable"
	if rank == 1 {
		standing = "top"
	}
	return fmt.Sprintf("%s is mentioned as a %s choice for this query on %s.", brand, standing, p)
}

func sourceURL(p domain.Platform, brand string) string {
	return "https://example.com/" + string(p) + "/" + strings.ToLower(brand)
}

func snapshotID(queryID int64, p domain.Platform, brand string) string {
	return fmt.Sprintf("snap_%d_%s_%s", queryID, p, strings.ToLower(brand))
}

// parseSnapshotID reverses snapshotID. Platform names may contain '_'.
func parseSnapshotID(id string) (int64, domain.Platform, string, bool) {
	rest, ok := strings.CutPrefix(id, "snap_")
	if !ok {
		return 0, "", "", false
	}
	idPart, rest, ok := strings.Cut(rest, "_")
	if !ok {
		return 0, "", "", false
	}
	queryID, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, "", "", false
	}
	if _, ok := lookup(queryID); !ok {
		return 0, "", "", false
	}
	sep := strings.LastIndex(rest, "_")
	if sep < 0 {
		return 0, "", "", false
	}
	platform := domain.Platform(rest[:sep])
	if !platform.IsValid() {
		return 0, "", "", false
	}
	for _, b := range Brands {
		if strings.ToLower(b) == rest[sep+1:] {
			return queryID, platform, b, true
		}
	}
	return 0, "", "", false
}

func brandIndex(brand string) int {
	for i, b := range Brands {
		if b == brand {
			return i
		}
	}
	return 0
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
