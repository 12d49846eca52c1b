package driven

import (
	"context"

	"github.com/custodia-labs/geovis/internal/core/domain"
)

// SchedulerStore keeps task timing across restarts, so a restarted
// `geovis serve` does not re-warm caches that are still fresh.
type SchedulerStore interface {
	// GetTask returns nil and no error for an unknown ID.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)
	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	RecordResult(ctx context.Context, result *domain.TaskResult) error
	// GetTaskHistory returns at most limit runs, newest first.
	GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)
	// PruneHistory keeps the newest keep runs of each task.
	PruneHistory(ctx context.Context, keep int) error
}
