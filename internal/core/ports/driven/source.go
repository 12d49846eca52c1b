package driven

import (
	"context"

	"github.com/custodia-labs/geovis/internal/core/domain"
)

// VisibilitySource answers every read the presentation layer makes.
// The local engine, the remote HTTP client and the static catalog all
// implement it, so the facade can swap one for another.
type VisibilitySource interface {
	// ListQueries returns a page of queries ordered by ID descending.
	ListQueries(ctx context.Context, filter domain.QueryFilter, page domain.PageRequest) (domain.Page[domain.VisibilityQuery], error)

	// GetQuery retrieves one query.
	GetQuery(ctx context.Context, id int64) (*domain.VisibilityQuery, error)

	// ListRankings returns a page of observations, newest first.
	ListRankings(ctx context.Context, filter domain.ObservationFilter, page domain.PageRequest) (domain.Page[domain.RankObservation], error)

	// LatestRankings returns the latest observation per (platform, brand).
	LatestRankings(ctx context.Context, queryID int64) ([]domain.RankObservation, error)

	// Trends returns one point per (bucket, brand) in chronological order.
	Trends(ctx context.Context, req domain.TrendRequest) ([]domain.TrendPoint, error)

	// Score computes one score record.
	Score(ctx context.Context, req domain.ScoreRequest) (*domain.ScoreRecord, error)

	// ListScores returns a page of score records.
	ListScores(ctx context.Context, filter domain.ScoreFilter, page domain.PageRequest) (domain.Page[domain.ScoreRecord], error)

	// Comparison returns one row per active query, ordered by query ID.
	Comparison(ctx context.Context, filter domain.ComparisonFilter) ([]domain.ComparisonRow, error)

	// Snapshot retrieves a raw answer snapshot.
	Snapshot(ctx context.Context, id string) (*domain.Snapshot, error)
}
