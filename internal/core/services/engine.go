package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driven"
	"github.com/custodia-labs/geovis/internal/core/ports/driving"
	"github.com/custodia-labs/geovis/internal/logger"
)

// Ensure Engine implements the interfaces.
var (
	_ driven.VisibilitySource = (*Engine)(nil)
	_ driving.CacheWarmer     = (*Engine)(nil)
)

// Engine composes the local services into a VisibilitySource backed by
// the local stores.
type Engine struct {
	queries      *QueryService
	observations *ObservationService
	scores       *ScoreService
	comparison   *ComparisonService
	snapshots    *SnapshotService
}

// NewEngine wires the local services over the given stores.
func NewEngine(
	queries driven.QueryStore,
	rankings driven.RankingStore,
	snapshots driven.SnapshotStore,
	cfg Config,
) *Engine {
	querySvc := NewQueryService(queries, cfg)
	scoreSvc := NewScoreService(querySvc, rankings, cfg)
	return &Engine{
		queries:      querySvc,
		observations: NewObservationService(rankings, queries, snapshots, cfg),
		scores:       scoreSvc,
		comparison:   NewComparisonService(querySvc, scoreSvc, cfg),
		snapshots:    NewSnapshotService(snapshots),
	}
}

// SetCache enables result caching for latest projections and comparisons.
func (e *Engine) SetCache(cache driven.ResultCache) {
	e.queries.SetCache(cache)
	e.observations.SetCache(cache)
	e.comparison.SetCache(cache)
}

// Queries returns the registry service.
func (e *Engine) Queries() *QueryService { return e.queries }

// Observations returns the observation service.
func (e *Engine) Observations() *ObservationService { return e.observations }

// Scores returns the score service.
func (e *Engine) Scores() *ScoreService { return e.scores }

// ComparisonTable returns the comparison service.
func (e *Engine) ComparisonTable() *ComparisonService { return e.comparison }

// Snapshots returns the snapshot service.
func (e *Engine) Snapshots() *SnapshotService { return e.snapshots }

// ListQueries returns a page of queries with LatestScore filled in.
func (e *Engine) ListQueries(
	ctx context.Context,
	filter domain.QueryFilter,
	page domain.PageRequest,
) (domain.Page[domain.VisibilityQuery], error) {
	result, err := e.queries.List(ctx, filter, page)
	if err != nil {
		return result, err
	}
	for i := range result.Items {
		if err := e.fillLatestScore(ctx, &result.Items[i]); err != nil {
			return domain.Page[domain.VisibilityQuery]{}, err
		}
	}
	return result, nil
}

// GetQuery retrieves one query with LatestScore filled in.
func (e *Engine) GetQuery(ctx context.Context, id int64) (*domain.VisibilityQuery, error) {
	query, err := e.queries.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.fillLatestScore(ctx, query); err != nil {
		return nil, err
	}
	return query, nil
}

// fillLatestScore sets the primary brand's raw score when the query has
// been observed at all.
func (e *Engine) fillLatestScore(ctx context.Context, query *domain.VisibilityQuery) error {
	latest, err := e.scores.latestIn(ctx, query.ID, time.Time{}, time.Time{})
	if err != nil {
		return err
	}
	if len(latest) == 0 {
		query.LatestScore = nil
		return nil
	}
	score := rawScores(latest, query.TrackedBrands, e.scores.cfg.Model)[query.PrimaryBrand()]
	query.LatestScore = &score
	return nil
}

// ListRankings returns a page of observations, newest first.
func (e *Engine) ListRankings(
	ctx context.Context,
	filter domain.ObservationFilter,
	page domain.PageRequest,
) (domain.Page[domain.RankObservation], error) {
	return e.observations.List(ctx, filter, page)
}

// LatestRankings returns the latest observation per (platform, brand).
func (e *Engine) LatestRankings(ctx context.Context, queryID int64) ([]domain.RankObservation, error) {
	return e.observations.Latest(ctx, queryID)
}

// Trends returns the query's trend series.
func (e *Engine) Trends(ctx context.Context, req domain.TrendRequest) ([]domain.TrendPoint, error) {
	return e.observations.Trends(ctx, req)
}

// Score computes one score record.
func (e *Engine) Score(ctx context.Context, req domain.ScoreRequest) (*domain.ScoreRecord, error) {
	return e.scores.Score(ctx, req)
}

// ListScores returns a page of score records.
func (e *Engine) ListScores(
	ctx context.Context,
	filter domain.ScoreFilter,
	page domain.PageRequest,
) (domain.Page[domain.ScoreRecord], error) {
	return e.scores.List(ctx, filter, page)
}

// Comparison returns the comparison table.
func (e *Engine) Comparison(ctx context.Context, filter domain.ComparisonFilter) ([]domain.ComparisonRow, error) {
	return e.comparison.Comparison(ctx, filter)
}

// Snapshot retrieves a raw answer snapshot.
func (e *Engine) Snapshot(ctx context.Context, id string) (*domain.Snapshot, error) {
	return e.snapshots.Get(ctx, id)
}

// WarmCaches recomputes the latest projection of every active query and
// the unfiltered comparison table. It returns the number of queries warmed.
func (e *Engine) WarmCaches(ctx context.Context) (int, error) {
	queries, err := e.queries.activeQueries(ctx, nil)
	if err != nil {
		return 0, err
	}
	for i := range queries {
		if err := e.observations.refreshLatest(ctx, queries[i].ID); err != nil {
			return i, fmt.Errorf("warming latest for query %d: %w", queries[i].ID, err)
		}
	}
	if _, err := e.comparison.Refresh(ctx, domain.ComparisonFilter{}); err != nil {
		return len(queries), fmt.Errorf("warming comparison: %w", err)
	}
	logger.Debug("Warmed caches for %d queries", len(queries))
	return len(queries), nil
}
