package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geovis/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "geovis-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// createTestQuery creates a query to satisfy foreign key constraints.
func createTestQuery(t *testing.T, store *Store, text string) *domain.VisibilityQuery {
	t.Helper()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	q := &domain.VisibilityQuery{
		Text:          text,
		Category:      domain.CategoryProductComparison,
		Priority:      domain.PriorityHigh,
		TrackedBrands: []string{"Levoit", "Dyson", "Coway", "Honeywell"},
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, store.QueryStore().Create(context.Background(), q))
	return q
}

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "geovis-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewStore(filepath.Join(tempDir, "nested", "data"))
	require.NoError(t, err)
	defer store.Close()

	dbPath := filepath.Join(tempDir, "nested", "data", "geovis.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_Migrations(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)

	for _, table := range []string{"queries", "rank_observations", "snapshots", "scheduled_tasks", "task_results"} {
		var exists int
		err := store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&exists)
		require.NoError(t, err)
		assert.Equal(t, 1, exists, "table %s should exist", table)
	}
}

func TestStore_MigrationIdempotency(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "geovis-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store1, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, store1.Close())

	store2, err := NewStore(tempDir)
	require.NoError(t, err)
	defer store2.Close()

	var count int
	require.NoError(t, store2.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"001_initial.up.sql":      {Data: []byte("SELECT 1;")},
		"001_initial.down.sql":    {Data: []byte("SELECT 1;")},
		"010_snapshot_idx.up.sql": {Data: []byte("SELECT 1;")},
		"002_brands.up.sql":       {Data: []byte("SELECT 1;")},
		"README.up.sql":           {Data: []byte("not a migration")},
	}

	pending, err := pendingMigrations(fsys, 1)
	require.NoError(t, err)
	assert.Equal(t, []migration{
		{version: 2, name: "002_brands.up.sql"},
		{version: 10, name: "010_snapshot_idx.up.sql"},
	}, pending)

	pending, err = pendingMigrations(fsys, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestStore_FailedMigrationLeavesNoTrace(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.migrate(fstest.MapFS{
		"002_broken.up.sql": {Data: []byte("CREATE TABLE brand_aliases (id INTEGER); CREATE TABLE oops (;")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "002_broken.up.sql")

	var version, tables int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
	require.NoError(t, store.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='brand_aliases'",
	).Scan(&tables))
	assert.Zero(t, tables)
}

func TestStore_Pragmas(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var journalMode string
	require.NoError(t, store.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var fkEnabled int
	require.NoError(t, store.db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled))
	assert.Equal(t, 1, fkEnabled)
}

func TestStore_InterfaceGetters(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.NotNil(t, store.QueryStore())
	assert.NotNil(t, store.RankingStore())
	assert.NotNil(t, store.SnapshotStore())
	assert.NotNil(t, store.SchedulerStore())
}

// ==================== QueryStore Tests ====================

func TestQueryStore_CreateAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	created := createTestQuery(t, store, "best air purifier 2025")
	assert.Equal(t, int64(1), created.ID)

	got, err := store.QueryStore().Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "best air purifier 2025", got.Text)
	assert.Equal(t, []string{"Levoit", "Dyson", "Coway", "Honeywell"}, got.TrackedBrands)
	assert.Equal(t, domain.CategoryProductComparison, got.Category)
	assert.True(t, got.Active)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	assert.Nil(t, got.LatestScore)
}

func TestQueryStore_Get_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.QueryStore().Get(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQueryStore_Save(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	q := createTestQuery(t, store, "levoit core 300 review")
	q.Active = false
	q.Priority = domain.PriorityLow
	require.NoError(t, store.QueryStore().Save(ctx, *q))

	got, err := store.QueryStore().Get(ctx, q.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, domain.PriorityLow, got.Priority)

	err = store.QueryStore().Save(ctx, domain.VisibilityQuery{ID: 42, TrackedBrands: []string{"X"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQueryStore_List_FilterAndOrder(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	createTestQuery(t, store, "q1")
	q2 := createTestQuery(t, store, "q2")
	createTestQuery(t, store, "q3")
	q2.Active = false
	require.NoError(t, store.QueryStore().Save(ctx, *q2))

	all, err := store.QueryStore().List(ctx, domain.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "q3", all[0].Text)
	assert.Equal(t, "q1", all[2].Text)

	active := true
	category := domain.CategoryProductComparison
	filtered, err := store.QueryStore().List(ctx, domain.QueryFilter{Active: &active, Category: &category})
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, "q3", filtered[0].Text)
	assert.Equal(t, "q1", filtered[1].Text)
}

// ==================== RankingStore Tests ====================

func rank(queryID int64, platform domain.Platform, brand string, position int, at time.Time) domain.RankObservation {
	return domain.RankObservation{
		QueryID:      queryID,
		Platform:     platform,
		Brand:        brand,
		RankPosition: position,
		Snippet:      brand + " is mentioned.",
		SourceURLs:   []string{"https://example.com/a", "https://example.com/b"},
		ScrapedAt:    at,
		SourceRunID:  "run-1",
	}
}

func TestRankingStore_AppendAndList(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	q := createTestQuery(t, store, "best air purifier 2025")
	base := time.Date(2025, 3, 1, 10, 0, 0, 123456789, time.UTC)

	stored, err := store.RankingStore().Append(ctx, []domain.RankObservation{
		rank(q.ID, domain.PlatformChatGPT, "Levoit", 1, base),
		rank(q.ID, domain.PlatformChatGPT, "Dyson", 2, base.Add(time.Hour)),
		rank(q.ID, domain.PlatformPerplexity, "Levoit", 0, base.Add(2*time.Hour)),
	})
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Less(t, stored[0].ID, stored[1].ID)
	assert.Less(t, stored[1].ID, stored[2].ID)

	list, err := store.RankingStore().List(ctx, domain.ObservationFilter{QueryID: q.ID})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, domain.PlatformPerplexity, list[0].Platform)
	assert.Equal(t, "Levoit", list[2].Brand)
	assert.True(t, base.Equal(list[2].ScrapedAt))
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, list[2].SourceURLs)
	assert.Equal(t, "run-1", list[2].SourceRunID)

	windowed, err := store.RankingStore().List(ctx, domain.ObservationFilter{
		QueryID: q.ID,
		From:    base,
		To:      base.Add(time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	assert.Equal(t, "Levoit", windowed[0].Brand)

	byPlatform, err := store.RankingStore().List(ctx, domain.ObservationFilter{Platform: domain.PlatformChatGPT, Brand: "Dyson"})
	require.NoError(t, err)
	require.Len(t, byPlatform, 1)
}

func TestRankingStore_Append_Atomic(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	q := createTestQuery(t, store, "q")
	now := time.Now()

	// The second observation violates the foreign key.
	_, err := store.RankingStore().Append(ctx, []domain.RankObservation{
		rank(q.ID, domain.PlatformChatGPT, "Levoit", 1, now),
		rank(999, domain.PlatformChatGPT, "Levoit", 1, now),
	})
	require.Error(t, err)

	list, err := store.RankingStore().List(ctx, domain.ObservationFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRankingStore_Latest(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	q := createTestQuery(t, store, "q")
	other := createTestQuery(t, store, "other")
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := store.RankingStore().Append(ctx, []domain.RankObservation{
		rank(q.ID, domain.PlatformChatGPT, "Levoit", 3, base),
		rank(q.ID, domain.PlatformChatGPT, "Levoit", 1, base.Add(time.Hour)),
		rank(q.ID, domain.PlatformGoogleAI, "Dyson", 2, base),
		rank(q.ID, domain.PlatformGoogleAI, "Dyson", 4, base),
		rank(other.ID, domain.PlatformChatGPT, "Levoit", 5, base.Add(5*time.Hour)),
	})
	require.NoError(t, err)

	latest, err := store.RankingStore().Latest(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, domain.PlatformChatGPT, latest[0].Platform)
	assert.Equal(t, 1, latest[0].RankPosition)
	assert.Equal(t, domain.PlatformGoogleAI, latest[1].Platform)
	// Equal timestamps resolve to the later write.
	assert.Equal(t, 4, latest[1].RankPosition)

	none, err := store.RankingStore().Latest(ctx, 12345)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRankingStore_ConcurrentAppends(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	q := createTestQuery(t, store, "q")
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.RankingStore().Append(ctx, []domain.RankObservation{
				rank(q.ID, domain.PlatformChatGPT, "Levoit", 1, now),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := store.RankingStore().List(ctx, domain.ObservationFilter{QueryID: q.ID})
	require.NoError(t, err)
	assert.Len(t, list, 10)
}

// ==================== SnapshotStore Tests ====================

func TestSnapshotStore_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	snap := domain.Snapshot{
		QueryID:          1,
		Platform:         domain.PlatformPerplexity,
		QueryText:        "best air purifier 2025",
		RawContent:       "1. Levoit Core 300\n2. Dyson Pure Cool",
		ScrapedAt:        time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		ScrapeDurationMs: 850,
		Metadata:         domain.SnapshotMetadata{URL: "https://perplexity.ai", StatusCode: 200},
	}
	snap.Seal()

	require.NoError(t, store.SnapshotStore().Save(ctx, snap))
	// Saving the same content again is a no-op.
	require.NoError(t, store.SnapshotStore().Save(ctx, snap))

	got, err := store.SnapshotStore().Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.RawContent, got.RawContent)
	assert.Equal(t, snap.ContentHash, got.ContentHash)
	assert.Equal(t, snap.Metadata, got.Metadata)
	assert.Equal(t, int64(850), got.ScrapeDurationMs)
	assert.True(t, snap.ScrapedAt.Equal(got.ScrapedAt))
}

func TestSnapshotStore_Errors(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	_, err := store.SnapshotStore().Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = store.SnapshotStore().Save(ctx, domain.Snapshot{RawContent: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ==================== Helper Function Tests ====================

func TestTimeFormat_SortsLexically(t *testing.T) {
	a := time.Date(2025, 3, 1, 10, 0, 0, 5, time.UTC)
	b := time.Date(2025, 3, 1, 10, 0, 0, 50, time.UTC)
	assert.Less(t, formatTime(a), formatTime(b))
	assert.True(t, a.Equal(parseTime(formatTime(a))))

	loc := time.FixedZone("X", 3600)
	assert.Equal(t, formatTime(a), formatTime(a.In(loc)))
	assert.True(t, parseTime("garbage").IsZero())
}

func TestFormatNullableTime(t *testing.T) {
	assert.Nil(t, formatNullableTime(time.Time{}))

	now := time.Now()
	assert.Equal(t, formatTime(now), formatNullableTime(now))
}

func TestBoolToInt(t *testing.T) {
	assert.Equal(t, 1, boolToInt(true))
	assert.Equal(t, 0, boolToInt(false))
}

func TestNullString(t *testing.T) {
	assert.Nil(t, nullString(""))
	assert.Equal(t, "hello", nullString("hello"))
}
