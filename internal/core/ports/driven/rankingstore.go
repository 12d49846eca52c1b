package driven

import (
	"context"

	"github.com/custodia-labs/geovis/internal/core/domain"
)

// RankingStore persists rank observations. Observations are never updated
// or deleted once appended.
type RankingStore interface {
	// Append stores observations atomically and returns them with IDs assigned
	// in input order.
	Append(ctx context.Context, observations []domain.RankObservation) ([]domain.RankObservation, error)

	// List returns observations matching filter ordered by ScrapedAt
	// descending, then ID descending.
	List(ctx context.Context, filter domain.ObservationFilter) ([]domain.RankObservation, error)

	// Latest returns one observation per (platform, brand) observed for the
	// query, picking the highest ScrapedAt and then the highest ID.
	Latest(ctx context.Context, queryID int64) ([]domain.RankObservation, error)
}
