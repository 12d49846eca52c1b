package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geovis/internal/core/domain"
)

func TestSnapshotStore_SaveGet(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	snap := domain.Snapshot{QueryID: 1, Platform: domain.PlatformChatGPT, RawContent: "Levoit is a top pick."}
	snap.Seal()
	require.NoError(t, store.Save(ctx, snap))

	got, err := store.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.RawContent, got.RawContent)
	assert.Equal(t, domain.ContentAddress("Levoit is a top pick."), got.ContentHash)
}

func TestSnapshotStore_Save_FirstWriteWins(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	first := domain.Snapshot{QueryID: 1, RawContent: "same"}
	first.Seal()
	second := domain.Snapshot{QueryID: 2, RawContent: "same"}
	second.Seal()

	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, second))

	got, err := store.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.QueryID)
}

func TestSnapshotStore_Errors(t *testing.T) {
	store := NewSnapshotStore()

	err := store.Save(context.Background(), domain.Snapshot{RawContent: "unsealed"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
