package driven

import (
	"context"

	"github.com/custodia-labs/geovis/internal/core/domain"
)

// SnapshotStore persists raw answer snapshots by content address.
type SnapshotStore interface {
	// Save stores a sealed snapshot. Saving content that already exists is a no-op.
	Save(ctx context.Context, snapshot domain.Snapshot) error

	// Get retrieves a snapshot by content address.
	Get(ctx context.Context, id string) (*domain.Snapshot, error)
}
