package domain

import "time"

// TaskIDCacheWarm recomputes latest rankings and the comparison table so
// cached reads stay fresh between ingests.
const TaskIDCacheWarm = "cache-warm"

// DefaultCacheWarmInterval is how often the cache-warm task runs unless
// scheduler.cache_warm.interval overrides it.
const DefaultCacheWarmInterval = 30 * time.Minute

// ScheduledTask is a recurring background job and its persisted timing.
// A zero NextRun means the task runs on the first check.
type ScheduledTask struct {
	ID       string
	Name     string
	Interval time.Duration
	Enabled  bool

	LastRun     time.Time
	NextRun     time.Time
	LastSuccess time.Time
	LastError   string
}

// IsDue reports whether the task should run at now.
func (t *ScheduledTask) IsDue(now time.Time) bool {
	return t.Enabled && !t.NextRun.After(now)
}

// Reconfigure applies cfg. Changing the interval pushes NextRun one new
// interval past now so a shortened interval does not fire immediately.
func (t *ScheduledTask) Reconfigure(cfg TaskConfig, now time.Time) {
	if t.Interval != cfg.Interval {
		t.Interval = cfg.Interval
		t.NextRun = now.Add(cfg.Interval)
	}
	t.Enabled = cfg.Enabled
}

// Complete records the outcome of a run and schedules the next one an
// interval after it ended.
func (t *ScheduledTask) Complete(r TaskResult) {
	t.LastRun = r.StartedAt
	t.NextRun = r.EndedAt.Add(t.Interval)
	if r.Success {
		t.LastError = ""
		t.LastSuccess = r.EndedAt
		return
	}
	t.LastError = r.Error
}

// TaskResult is one execution of a task. ItemsProcessed counts the
// queries the run touched.
type TaskResult struct {
	TaskID         string
	StartedAt      time.Time
	EndedAt        time.Time
	Success        bool
	Error          string
	ItemsProcessed int
}

// Duration is how long the run took.
func (r TaskResult) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// TaskConfig is the configured state of a single task.
type TaskConfig struct {
	Enabled  bool
	Interval time.Duration
}

// SchedulerConfig is the scheduler master switch plus per-task settings.
type SchedulerConfig struct {
	Enabled     bool
	TaskConfigs map[string]TaskConfig
}

// GetTaskConfig returns the settings for taskID, zero when unset.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerConfig enables cache warming every thirty minutes.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]TaskConfig{
			TaskIDCacheWarm: {Enabled: true, Interval: DefaultCacheWarmInterval},
		},
	}
}
