package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interface.
var _ driven.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore is an in-memory implementation of driven.SnapshotStore.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]domain.Snapshot
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[string]domain.Snapshot),
	}
}

// Save stores a snapshot. The first write for a content address wins.
func (s *SnapshotStore) Save(_ context.Context, snapshot domain.Snapshot) error {
	if snapshot.ID == "" {
		return domain.NewValidationError("snapshot_id", "is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snapshots[snapshot.ID]; ok {
		return nil
	}
	s.snapshots[snapshot.ID] = snapshot
	return nil
}

// Get retrieves a snapshot by content address.
func (s *SnapshotStore) Get(_ context.Context, id string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.snapshots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &snapshot, nil
}
