package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driven"
)

// rankingStore implements driven.RankingStore.
type rankingStore struct {
	store *Store
}

var _ driven.RankingStore = (*rankingStore)(nil)

const observationColumns = `id, query_id, platform, brand, rank_position, snippet,
	source_urls, snapshot_id, scraped_at, source_run_id`

// Append stores observations in one transaction and assigns IDs in input
// order. Either every observation is stored or none is.
func (s *rankingStore) Append(
	ctx context.Context,
	observations []domain.RankObservation,
) ([]domain.RankObservation, error) {
	if len(observations) == 0 {
		return []domain.RankObservation{}, nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rank_observations
			(query_id, platform, brand, rank_position, snippet, source_urls, snapshot_id, scraped_at, source_run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	stored := make([]domain.RankObservation, len(observations))
	for i, o := range observations {
		urls := o.SourceURLs
		if urls == nil {
			urls = []string{}
		}
		urlsJSON, err := json.Marshal(urls)
		if err != nil {
			return nil, fmt.Errorf("marshalling source urls: %w", err)
		}

		res, err := stmt.ExecContext(ctx, o.QueryID, string(o.Platform), o.Brand, o.RankPosition,
			nullString(o.Snippet), string(urlsJSON), nullString(o.SnapshotID),
			formatTime(o.ScrapedAt), nullString(o.SourceRunID))
		if err != nil {
			return nil, fmt.Errorf("inserting observation %d: %w", i, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("reading observation id: %w", err)
		}
		o.ID = id
		o.ScrapedAt = o.ScrapedAt.UTC()
		stored[i] = o
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing observations: %w", err)
	}
	return stored, nil
}

// List returns matching observations ordered by scraped_at then id, newest first.
func (s *rankingStore) List(ctx context.Context, filter domain.ObservationFilter) ([]domain.RankObservation, error) {
	var where []string
	var args []any
	if filter.QueryID != 0 {
		where = append(where, "query_id = ?")
		args = append(args, filter.QueryID)
	}
	if filter.Platform != "" {
		where = append(where, "platform = ?")
		args = append(args, string(filter.Platform))
	}
	if filter.Brand != "" {
		where = append(where, "brand = ?")
		args = append(args, filter.Brand)
	}
	if !filter.From.IsZero() {
		where = append(where, "scraped_at >= ?")
		args = append(args, formatTime(filter.From))
	}
	if !filter.To.IsZero() {
		where = append(where, "scraped_at < ?")
		args = append(args, formatTime(filter.To))
	}

	q := `SELECT ` + observationColumns + ` FROM rank_observations`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY scraped_at DESC, id DESC"

	return s.query(ctx, q, args...)
}

// Latest returns one observation per (platform, brand) for the query.
func (s *rankingStore) Latest(ctx context.Context, queryID int64) ([]domain.RankObservation, error) {
	return s.query(ctx, `
		SELECT `+observationColumns+` FROM (
			SELECT *, ROW_NUMBER() OVER (
				PARTITION BY platform, brand ORDER BY scraped_at DESC, id DESC
			) AS rn
			FROM rank_observations
			WHERE query_id = ?
		) WHERE rn = 1
		ORDER BY platform, brand
	`, queryID)
}

func (s *rankingStore) query(ctx context.Context, q string, args ...any) ([]domain.RankObservation, error) {
	rows, err := s.store.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying observations: %w", err)
	}
	return collect(rows, scanObservation)
}

func scanObservation(row scanner) (domain.RankObservation, error) {
	var o domain.RankObservation
	var platform, urlsJSON, scrapedAt string
	var snippet, snapshotID, runID sql.NullString

	if err := row.Scan(&o.ID, &o.QueryID, &platform, &o.Brand, &o.RankPosition,
		&snippet, &urlsJSON, &snapshotID, &scrapedAt, &runID); err != nil {
		return o, fmt.Errorf("scanning observation: %w", err)
	}

	if err := json.Unmarshal([]byte(urlsJSON), &o.SourceURLs); err != nil {
		return o, fmt.Errorf("unmarshalling source urls: %w", err)
	}
	o.Platform = domain.Platform(platform)
	o.Snippet = snippet.String
	o.SnapshotID = snapshotID.String
	o.SourceRunID = runID.String
	o.ScrapedAt = parseTime(scrapedAt)

	return o, nil
}
