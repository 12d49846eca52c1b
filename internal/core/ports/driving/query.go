package driving

import (
	"context"

	"github.com/custodia-labs/geovis/internal/core/domain"
)

// QueryService manages the query registry.
type QueryService interface {
	// List returns a page of queries matching filter, ordered by ID descending.
	List(ctx context.Context, filter domain.QueryFilter, page domain.PageRequest) (domain.Page[domain.VisibilityQuery], error)

	// Get retrieves a query by ID.
	Get(ctx context.Context, id int64) (*domain.VisibilityQuery, error)

	// Create registers a new query.
	Create(ctx context.Context, input domain.QueryCreate) (*domain.VisibilityQuery, error)

	// Update applies a partial update.
	Update(ctx context.Context, id int64, update domain.QueryUpdate) (*domain.VisibilityQuery, error)

	// Deactivate soft-deletes a query. Its history is kept.
	Deactivate(ctx context.Context, id int64) error
}
