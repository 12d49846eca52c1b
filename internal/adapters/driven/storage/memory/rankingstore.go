package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driven"
)

// Ensure RankingStore implements the interface.
var _ driven.RankingStore = (*RankingStore)(nil)

// RankingStore is an in-memory, append-only implementation of
// driven.RankingStore.
type RankingStore struct {
	mu           sync.RWMutex
	nextID       int64
	observations []domain.RankObservation
}

// NewRankingStore creates a new in-memory ranking store.
func NewRankingStore() *RankingStore {
	return &RankingStore{}
}

// Append stores observations and assigns IDs in input order.
func (s *RankingStore) Append(
	_ context.Context,
	observations []domain.RankObservation,
) ([]domain.RankObservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]domain.RankObservation, len(observations))
	for i, o := range observations {
		s.nextID++
		o.ID = s.nextID
		o = cloneObservation(o)
		s.observations = append(s.observations, o)
		stored[i] = cloneObservation(o)
	}
	return stored, nil
}

// List returns matching observations, newest first.
func (s *RankingStore) List(_ context.Context, filter domain.ObservationFilter) ([]domain.RankObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.RankObservation
	for i := range s.observations {
		if filter.Matches(&s.observations[i]) {
			result = append(result, cloneObservation(s.observations[i]))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Supersedes(&result[j])
	})
	return result, nil
}

// Latest returns one observation per (platform, brand) for the query.
func (s *RankingStore) Latest(ctx context.Context, queryID int64) ([]domain.RankObservation, error) {
	observations, err := s.List(ctx, domain.ObservationFilter{QueryID: queryID})
	if err != nil {
		return nil, err
	}
	return domain.LatestByKey(observations), nil
}

func cloneObservation(o domain.RankObservation) domain.RankObservation {
	if o.SourceURLs != nil {
		o.SourceURLs = append([]string(nil), o.SourceURLs...)
	}
	return o
}
