package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/core/ports/driven"
)

// schedulerStore keeps cache-warm timing and run history.
type schedulerStore struct {
	store *Store
}

var _ driven.SchedulerStore = (*schedulerStore)(nil)

const (
	taskColumns   = `id, name, interval_seconds, last_run, next_run, last_error, last_success, enabled`
	resultColumns = `task_id, started_at, ended_at, success, error, items_processed`
)

func (s *schedulerStore) GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM scheduled_tasks WHERE id = ?`, taskID)

	task, err := scanTask(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("loading task %s: %w", taskID, err)
	}
	return &task, nil
}

func (s *schedulerStore) ListTasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	rows, err := s.store.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM scheduled_tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return collect(rows, scanTask)
}

// SaveTask upserts by ID.
func (s *schedulerStore) SaveTask(ctx context.Context, task *domain.ScheduledTask) error {
	if task == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO scheduled_tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			interval_seconds = excluded.interval_seconds,
			last_run = excluded.last_run,
			next_run = excluded.next_run,
			last_error = excluded.last_error,
			last_success = excluded.last_success,
			enabled = excluded.enabled`,
		task.ID, task.Name, int64(task.Interval/time.Second),
		formatNullableTime(task.LastRun), formatNullableTime(task.NextRun),
		nullString(task.LastError), formatNullableTime(task.LastSuccess),
		boolToInt(task.Enabled),
	)
	if err != nil {
		return fmt.Errorf("saving task %s: %w", task.ID, err)
	}
	return nil
}

func (s *schedulerStore) RecordResult(ctx context.Context, r *domain.TaskResult) error {
	if r == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx,
		`INSERT INTO task_results (`+resultColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		r.TaskID, formatTime(r.StartedAt), formatTime(r.EndedAt),
		boolToInt(r.Success), nullString(r.Error), r.ItemsProcessed,
	)
	if err != nil {
		return fmt.Errorf("recording %s run: %w", r.TaskID, err)
	}
	return nil
}

// GetTaskHistory returns up to limit runs, newest first.
func (s *schedulerStore) GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+resultColumns+` FROM task_results WHERE task_id = ? ORDER BY started_at DESC, id DESC LIMIT ?`,
		taskID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("loading %s history: %w", taskID, err)
	}
	return collect(rows, scanResult)
}

// PruneHistory drops all but the newest keep runs of each task.
func (s *schedulerStore) PruneHistory(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM task_results WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (
					PARTITION BY task_id ORDER BY started_at DESC, id DESC
				) AS age FROM task_results
			) WHERE age > ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("pruning task history: %w", err)
	}
	return nil
}

// scanTask returns sql.ErrNoRows unwrapped so GetTask can detect it.
func scanTask(row scanner) (domain.ScheduledTask, error) {
	var (
		task                              domain.ScheduledTask
		seconds                           int64
		lastRun, nextRun, lastErr, lastOK sql.NullString
		enabled                           int
	)
	err := row.Scan(&task.ID, &task.Name, &seconds, &lastRun, &nextRun, &lastErr, &lastOK, &enabled)
	if err != nil {
		return task, err
	}

	task.Interval = time.Duration(seconds) * time.Second
	task.LastRun = parseNullableTime(lastRun)
	task.NextRun = parseNullableTime(nextRun)
	task.LastError = lastErr.String
	task.LastSuccess = parseNullableTime(lastOK)
	task.Enabled = enabled == 1
	return task, nil
}

func scanResult(row scanner) (domain.TaskResult, error) {
	var (
		r                  domain.TaskResult
		startedAt, endedAt string
		success            int
		errMsg             sql.NullString
	)
	if err := row.Scan(&r.TaskID, &startedAt, &endedAt, &success, &errMsg, &r.ItemsProcessed); err != nil {
		return r, fmt.Errorf("scanning task result: %w", err)
	}

	r.StartedAt = parseTime(startedAt)
	r.EndedAt = parseTime(endedAt)
	r.Success = success == 1
	r.Error = errMsg.String
	return r, nil
}
