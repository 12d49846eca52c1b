package driving

import (
	"context"

	"github.com/custodia-labs/geovis/internal/core/domain"
)

// ScoreService derives visibility scores from observation history.
type ScoreService interface {
	// Score computes the score of one brand for one query over a period.
	Score(ctx context.Context, req domain.ScoreRequest) (*domain.ScoreRecord, error)

	// List computes scores for every (active query, tracked brand) pair
	// matching filter.
	List(ctx context.Context, filter domain.ScoreFilter, page domain.PageRequest) (domain.Page[domain.ScoreRecord], error)
}

// ComparisonService builds the head-to-head comparison table.
type ComparisonService interface {
	// Comparison returns one row per active query matching filter,
	// ordered by query ID ascending.
	Comparison(ctx context.Context, filter domain.ComparisonFilter) ([]domain.ComparisonRow, error)
}
