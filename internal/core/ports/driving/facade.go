package driving

import (
	"context"

	"github.com/custodia-labs/geovis/internal/core/domain"
)

// VisibilityFacade is the single read entry point for presentation
// adapters. Every result is tagged live or fallback.
//
// The returned error is non-nil only for local failures (validation,
// not found) or when no substitute data exists. Transport failures are
// answered with a fallback result instead.
type VisibilityFacade interface {
	Queries(ctx context.Context, filter domain.QueryFilter, page domain.PageRequest) (domain.Result[domain.Page[domain.VisibilityQuery]], error)
	Query(ctx context.Context, id int64) (domain.Result[*domain.VisibilityQuery], error)
	Rankings(ctx context.Context, filter domain.ObservationFilter, page domain.PageRequest) (domain.Result[domain.Page[domain.RankObservation]], error)
	Latest(ctx context.Context, queryID int64) (domain.Result[[]domain.RankObservation], error)
	Trends(ctx context.Context, req domain.TrendRequest) (domain.Result[[]domain.TrendPoint], error)
	Score(ctx context.Context, req domain.ScoreRequest) (domain.Result[*domain.ScoreRecord], error)
	Scores(ctx context.Context, filter domain.ScoreFilter, page domain.PageRequest) (domain.Result[domain.Page[domain.ScoreRecord]], error)
	Comparison(ctx context.Context, filter domain.ComparisonFilter) (domain.Result[[]domain.ComparisonRow], error)
	Snapshot(ctx context.Context, id string) (domain.Result[*domain.Snapshot], error)

	// Overview fetches the registry page and comparison table concurrently.
	// When one section falls back or has no data, the error is a
	// *domain.PartialAggregationError and the overview is still usable.
	Overview(ctx context.Context, filter domain.QueryFilter, page domain.PageRequest, cmp domain.ComparisonFilter) (*domain.Overview, error)
}
