package driven

import (
	"context"

	"github.com/custodia-labs/geovis/internal/core/domain"
)

// QueryStore persists monitored queries.
type QueryStore interface {
	// Create stores a new query and assigns its ID.
	Create(ctx context.Context, query *domain.VisibilityQuery) error

	// Save updates an existing query.
	// Returns domain.ErrNotFound if the query does not exist.
	Save(ctx context.Context, query domain.VisibilityQuery) error

	// Get retrieves a query by ID.
	Get(ctx context.Context, id int64) (*domain.VisibilityQuery, error)

	// List returns queries matching filter ordered by ID descending.
	List(ctx context.Context, filter domain.QueryFilter) ([]domain.VisibilityQuery, error)
}
