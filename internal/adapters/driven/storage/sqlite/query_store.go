package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driven"
)

// queryStore implements driven.QueryStore.
type queryStore struct {
	store *Store
}

var _ driven.QueryStore = (*queryStore)(nil)

const queryColumns = `id, query_text, category, priority, tracked_brands, active, created_at, updated_at`

// Create stores a new query and assigns its ID.
func (s *queryStore) Create(ctx context.Context, query *domain.VisibilityQuery) error {
	brandsJSON, err := json.Marshal(query.TrackedBrands)
	if err != nil {
		return fmt.Errorf("marshalling tracked brands: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO queries (query_text, category, priority, tracked_brands, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, query.Text, string(query.Category), string(query.Priority), string(brandsJSON),
		boolToInt(query.Active), formatTime(query.CreatedAt), formatTime(query.UpdatedAt))
	if err != nil {
		return fmt.Errorf("creating query: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading query id: %w", err)
	}
	query.ID = id
	return nil
}

// Save updates an existing query.
func (s *queryStore) Save(ctx context.Context, query domain.VisibilityQuery) error {
	brandsJSON, err := json.Marshal(query.TrackedBrands)
	if err != nil {
		return fmt.Errorf("marshalling tracked brands: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE queries SET
			query_text = ?,
			category = ?,
			priority = ?,
			tracked_brands = ?,
			active = ?,
			updated_at = ?
		WHERE id = ?
	`, query.Text, string(query.Category), string(query.Priority), string(brandsJSON),
		boolToInt(query.Active), formatTime(query.UpdatedAt), query.ID)
	if err != nil {
		return fmt.Errorf("saving query: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("saving query: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Get retrieves a query by ID.
func (s *queryStore) Get(ctx context.Context, id int64) (*domain.VisibilityQuery, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+queryColumns+` FROM queries WHERE id = ?`, id)

	query, err := scanQuery(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return query, nil
}

// List returns queries matching filter, newest first.
func (s *queryStore) List(ctx context.Context, filter domain.QueryFilter) ([]domain.VisibilityQuery, error) {
	var where []string
	var args []any
	if filter.Category != nil {
		where = append(where, "category = ?")
		args = append(args, string(*filter.Category))
	}
	if filter.Priority != nil {
		where = append(where, "priority = ?")
		args = append(args, string(*filter.Priority))
	}
	if filter.Active != nil {
		where = append(where, "active = ?")
		args = append(args, boolToInt(*filter.Active))
	}

	q := `SELECT ` + queryColumns + ` FROM queries`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id DESC"

	rows, err := s.store.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying queries: %w", err)
	}
	defer rows.Close()

	var queries []domain.VisibilityQuery //nolint:prealloc // size unknown from query
	for rows.Next() {
		query, err := scanQuery(rows)
		if err != nil {
			return nil, err
		}
		queries = append(queries, *query)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating queries: %w", err)
	}

	return queries, nil
}

// scanQuery scans one queries row. sql.ErrNoRows is returned unwrapped.
func scanQuery(row scanner) (*domain.VisibilityQuery, error) {
	var query domain.VisibilityQuery
	var category, priority, brandsJSON, createdAt, updatedAt string
	var active int

	if err := row.Scan(&query.ID, &query.Text, &category, &priority,
		&brandsJSON, &active, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning query: %w", err)
	}

	if err := json.Unmarshal([]byte(brandsJSON), &query.TrackedBrands); err != nil {
		return nil, fmt.Errorf("unmarshalling tracked brands: %w", err)
	}
	query.Category = domain.Category(category)
	query.Priority = domain.Priority(priority)
	query.Active = active == 1
	query.CreatedAt = parseTime(createdAt)
	query.UpdatedAt = parseTime(updatedAt)

	return &query, nil
}
