package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driven"
	"github.com/custodia-labs/geovis/internal/core/ports/driving"
	"github.com/custodia-labs/geovis/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService manages the query registry.
type QueryService struct {
	store driven.QueryStore
	cache driven.ResultCache
	cfg   Config
}

// NewQueryService creates a new query service.
func NewQueryService(store driven.QueryStore, cfg Config) *QueryService {
	return &QueryService{store: store, cfg: cfg}
}

// SetCache sets the cache whose comparisons are dropped on every registry
// write.
func (s *QueryService) SetCache(cache driven.ResultCache) {
	s.cache = cache
}

// List returns a page of queries matching filter, ordered by ID descending.
func (s *QueryService) List(
	ctx context.Context,
	filter domain.QueryFilter,
	page domain.PageRequest,
) (domain.Page[domain.VisibilityQuery], error) {
	if s.store == nil {
		return domain.Page[domain.VisibilityQuery]{}, domain.ErrNotImplemented
	}
	if err := filter.Validate(); err != nil {
		return domain.Page[domain.VisibilityQuery]{}, err
	}
	req, err := s.cfg.normalize(page)
	if err != nil {
		return domain.Page[domain.VisibilityQuery]{}, err
	}
	queries, err := s.store.List(ctx, filter)
	if err != nil {
		return domain.Page[domain.VisibilityQuery]{}, fmt.Errorf("listing queries: %w", err)
	}
	return domain.Paginate(queries, req), nil
}

// Get retrieves a query by ID.
func (s *QueryService) Get(ctx context.Context, id int64) (*domain.VisibilityQuery, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	if id <= 0 {
		return nil, domain.NewValidationError("query_id", "must be positive")
	}
	return s.store.Get(ctx, id)
}

// Create registers a new query. Category defaults to general and priority
// to medium.
func (s *QueryService) Create(ctx context.Context, input domain.QueryCreate) (*domain.VisibilityQuery, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}

	now := s.cfg.now()
	query := domain.VisibilityQuery{
		Text:          strings.TrimSpace(input.Text),
		Category:      input.Category,
		Priority:      input.Priority,
		TrackedBrands: domain.OrderBrands(trimBrands(input.Brands), s.cfg.PrimaryBrand),
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if query.Category == "" {
		query.Category = domain.CategoryGeneral
	}
	if query.Priority == "" {
		query.Priority = domain.PriorityMedium
	}
	if err := query.Validate(s.cfg.PrimaryBrand); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, &query); err != nil {
		return nil, fmt.Errorf("creating query: %w", err)
	}
	invalidate(ctx, s.cache, comparisonKeyPrefix)
	logger.Info("Registered query %d %q tracking %v", query.ID, query.Text, query.TrackedBrands)
	return &query, nil
}

// Update applies a partial update. Changing the tracked brands is allowed
// but logged, since trends before and after the change are not comparable.
func (s *QueryService) Update(ctx context.Context, id int64, update domain.QueryUpdate) (*domain.VisibilityQuery, error) {
	if update.IsEmpty() {
		return nil, domain.NewValidationError("", "no fields to update")
	}
	query, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Text != nil {
		query.Text = strings.TrimSpace(*update.Text)
	}
	if update.Category != nil {
		query.Category = *update.Category
	}
	if update.Priority != nil {
		query.Priority = *update.Priority
	}
	if update.Active != nil {
		query.Active = *update.Active
	}
	if update.Brands != nil {
		brands := domain.OrderBrands(trimBrands(update.Brands), s.cfg.PrimaryBrand)
		if !slices.Equal(brands, query.TrackedBrands) {
			logger.Warn("Query %d tracked brands changed from %v to %v: trend continuity is broken",
				id, query.TrackedBrands, brands)
		}
		query.TrackedBrands = brands
	}
	if err := query.Validate(s.cfg.PrimaryBrand); err != nil {
		return nil, err
	}

	query.UpdatedAt = s.cfg.now()
	if err := s.store.Save(ctx, *query); err != nil {
		return nil, fmt.Errorf("updating query %d: %w", id, err)
	}
	invalidate(ctx, s.cache, comparisonKeyPrefix, latestKey(id))
	return query, nil
}

// Deactivate soft-deletes a query. Deactivating an inactive query is a no-op.
func (s *QueryService) Deactivate(ctx context.Context, id int64) error {
	query, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !query.Active {
		return nil
	}
	query.Active = false
	query.UpdatedAt = s.cfg.now()
	if err := s.store.Save(ctx, *query); err != nil {
		return fmt.Errorf("deactivating query %d: %w", id, err)
	}
	invalidate(ctx, s.cache, comparisonKeyPrefix, latestKey(id))
	return nil
}

// activeQueries lists every active query, optionally of one category,
// ordered by ID ascending.
func (s *QueryService) activeQueries(ctx context.Context, category *domain.Category) ([]domain.VisibilityQuery, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	active := true
	queries, err := s.store.List(ctx, domain.QueryFilter{Category: category, Active: &active})
	if err != nil {
		return nil, fmt.Errorf("listing active queries: %w", err)
	}
	slices.SortFunc(queries, func(a, b domain.VisibilityQuery) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
	return queries, nil
}

func trimBrands(brands []string) []string {
	out := make([]string, len(brands))
	for i, b := range brands {
		out[i] = strings.TrimSpace(b)
	}
	return out
}
