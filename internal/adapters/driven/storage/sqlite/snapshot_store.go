package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driven"
)

// snapshotStore implements driven.SnapshotStore.
type snapshotStore struct {
	store *Store
}

var _ driven.SnapshotStore = (*snapshotStore)(nil)

// snapshotMetadata is the JSON shape of the metadata column.
type snapshotMetadata struct {
	URL           string `json:"url,omitempty"`
	StatusCode    int    `json:"status_code,omitempty"`
	ContentLength int    `json:"content_length"`
}

// Save stores a snapshot. Existing content addresses are left untouched.
func (s *snapshotStore) Save(ctx context.Context, snapshot domain.Snapshot) error {
	if snapshot.ID == "" {
		return domain.NewValidationError("snapshot_id", "is required")
	}

	metaJSON, err := json.Marshal(snapshotMetadata(snapshot.Metadata))
	if err != nil {
		return fmt.Errorf("marshalling snapshot metadata: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO snapshots
			(id, query_id, platform, query_text, raw_content, content_hash, scraped_at, scrape_duration_ms, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, snapshot.ID, snapshot.QueryID, string(snapshot.Platform), nullString(snapshot.QueryText),
		snapshot.RawContent, snapshot.ContentHash, formatTime(snapshot.ScrapedAt),
		snapshot.ScrapeDurationMs, string(metaJSON))
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// Get retrieves a snapshot by content address.
func (s *snapshotStore) Get(ctx context.Context, id string) (*domain.Snapshot, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, query_id, platform, query_text, raw_content, content_hash,
			scraped_at, scrape_duration_ms, metadata
		FROM snapshots WHERE id = ?
	`, id)

	var snap domain.Snapshot
	var platform, scrapedAt, metaJSON string
	var queryText sql.NullString
	if err := row.Scan(&snap.ID, &snap.QueryID, &platform, &queryText, &snap.RawContent,
		&snap.ContentHash, &scrapedAt, &snap.ScrapeDurationMs, &metaJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}

	var meta snapshotMetadata
	if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
		return nil, fmt.Errorf("unmarshalling snapshot metadata: %w", err)
	}
	snap.Platform = domain.Platform(platform)
	snap.QueryText = queryText.String
	snap.ScrapedAt = parseTime(scrapedAt)
	snap.Metadata = domain.SnapshotMetadata(meta)

	return &snap, nil
}
