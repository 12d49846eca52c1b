package driving

import (
	"context"

	"github.com/custodia-labs/geovis/internal/core/domain"
)

// ObservationService reads and appends rank observations.
type ObservationService interface {
	// List returns a page of observations, newest first.
	List(ctx context.Context, filter domain.ObservationFilter, page domain.PageRequest) (domain.Page[domain.RankObservation], error)

	// Latest returns one observation per observed (platform, brand).
	Latest(ctx context.Context, queryID int64) ([]domain.RankObservation, error)

	// Trends buckets the query's history into one point per (bucket, brand).
	Trends(ctx context.Context, req domain.TrendRequest) ([]domain.TrendPoint, error)

	// Append validates and stores an upstream batch.
	Append(ctx context.Context, batch domain.IngestBatch) (*domain.IngestResult, error)
}

// SnapshotService serves raw answer snapshots.
type SnapshotService interface {
	// Get retrieves a snapshot by content address.
	Get(ctx context.Context, id string) (*domain.Snapshot, error)
}
