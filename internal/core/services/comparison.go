package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driven"
	"github.com/custodia-labs/geovis/internal/core/ports/driving"
	"github.com/custodia-labs/geovis/internal/logger"
)

// Ensure ComparisonService implements the interface.
var _ driving.ComparisonService = (*ComparisonService)(nil)

// ComparisonService builds the head-to-head comparison table.
type ComparisonService struct {
	queries *QueryService
	scores  *ScoreService
	cache   driven.ResultCache
	cfg     Config
}

// NewComparisonService creates a new comparison service.
func NewComparisonService(queries *QueryService, scores *ScoreService, cfg Config) *ComparisonService {
	return &ComparisonService{queries: queries, scores: scores, cfg: cfg}
}

// SetCache sets the cache for comparison tables.
func (s *ComparisonService) SetCache(cache driven.ResultCache) {
	s.cache = cache
}

// Comparison returns one row per active query matching filter, ordered by
// query ID ascending. Every tracked brand has an entry in ScoreByBrand.
func (s *ComparisonService) Comparison(ctx context.Context, filter domain.ComparisonFilter) ([]domain.ComparisonRow, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return cached(ctx, s.cache, comparisonKey(filter), s.cfg.cacheTTL(), func(ctx context.Context) ([]domain.ComparisonRow, error) {
		return s.compute(ctx, filter)
	})
}

// Refresh recomputes the table and overwrites the cached copy.
func (s *ComparisonService) Refresh(ctx context.Context, filter domain.ComparisonFilter) ([]domain.ComparisonRow, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.compute(ctx, filter)
	if err != nil {
		return nil, err
	}
	store(ctx, s.cache, comparisonKey(filter), s.cfg.cacheTTL(), rows)
	return rows, nil
}

// compute scores each query in a bounded worker group. Each worker writes
// only its own row.
func (s *ComparisonService) compute(ctx context.Context, filter domain.ComparisonFilter) ([]domain.ComparisonRow, error) {
	queries, err := s.queries.activeQueries(ctx, filter.Category)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.ComparisonRow, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.workers())
	for i := range queries {
		g.Go(func() error {
			scores, err := s.scores.brandScores(gctx, &queries[i], filter.Period, filter.From, filter.To)
			if err != nil {
				return fmt.Errorf("scoring query %d: %w", queries[i].ID, err)
			}
			rows[i] = comparisonRow(&queries[i], scores)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("Comparison computed for %d queries", len(rows))
	return rows, nil
}

func comparisonRow(query *domain.VisibilityQuery, scores map[string]float64) domain.ComparisonRow {
	row := domain.ComparisonRow{
		QueryID:      query.ID,
		QueryText:    query.Text,
		Brands:       append([]string(nil), query.TrackedBrands...),
		ScoreByBrand: make(map[string]float64, len(query.TrackedBrands)),
	}
	for _, brand := range query.TrackedBrands {
		row.ScoreByBrand[brand] = domain.ClampScore(scores[brand])
	}
	row.CompetitiveGap = gapFor(query, row.ScoreByBrand)
	return row
}
