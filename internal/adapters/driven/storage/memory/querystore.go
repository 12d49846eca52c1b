package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driven"
)

// Ensure QueryStore implements the interface.
var _ driven.QueryStore = (*QueryStore)(nil)

// QueryStore is an in-memory implementation of driven.QueryStore.
type QueryStore struct {
	mu      sync.RWMutex
	nextID  int64
	queries map[int64]domain.VisibilityQuery
}

// NewQueryStore creates a new in-memory query store.
func NewQueryStore() *QueryStore {
	return &QueryStore{
		queries: make(map[int64]domain.VisibilityQuery),
	}
}

// Create stores a new query and assigns its ID.
func (s *QueryStore) Create(_ context.Context, query *domain.VisibilityQuery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	query.ID = s.nextID
	s.queries[query.ID] = cloneQuery(*query)
	return nil
}

// Save updates an existing query.
func (s *QueryStore) Save(_ context.Context, query domain.VisibilityQuery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.queries[query.ID]; !ok {
		return domain.ErrNotFound
	}
	s.queries[query.ID] = cloneQuery(query)
	return nil
}

// Get retrieves a query by ID.
func (s *QueryStore) Get(_ context.Context, id int64) (*domain.VisibilityQuery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	query, ok := s.queries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	query = cloneQuery(query)
	return &query, nil
}

// List returns queries matching filter, newest first.
func (s *QueryStore) List(_ context.Context, filter domain.QueryFilter) ([]domain.VisibilityQuery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.VisibilityQuery, 0, len(s.queries))
	for _, query := range s.queries {
		if filter.Matches(&query) {
			result = append(result, cloneQuery(query))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func cloneQuery(q domain.VisibilityQuery) domain.VisibilityQuery {
	q.TrackedBrands = append([]string(nil), q.TrackedBrands...)
	q.LatestScore = nil
	return q
}
