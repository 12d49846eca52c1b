package dropdir

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geovis/internal/core/domain"
)

const batchJSON = `{
  "source_run_id": "run-7",
  "observations": [
    {"query_id": 1, "platform": "chatgpt", "brand": "Levoit", "rank_position": 1, "scraped_at": "2025-03-01T10:00:00Z"},
    {"query_id": 1, "platform": "chatgpt", "brand": "Dyson", "rank_position": 2, "scraped_at": "2025-03-01T10:00:00Z"}
  ]
}`

// recorder collects ingested batches.
type recorder struct {
	mu      sync.Mutex
	batches []domain.IngestBatch
	err     error
}

func (r *recorder) ingest(_ context.Context, batch domain.IngestBatch) (*domain.IngestResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.batches = append(r.batches, batch)
	return &domain.IngestResult{RunID: batch.SourceRunID, Observations: batch.Observations}, nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func startWatcher(t *testing.T, dir string, rec *recorder) <-chan Outcome {
	t.Helper()

	outcomes := make(chan Outcome, 8)
	w := New(dir, rec.ingest)
	w.OnOutcome(func(o Outcome) { outcomes <- o })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})

	// Run creates the subdirectories before watching.
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, FailedDir))
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	return outcomes
}

func waitOutcome(t *testing.T, outcomes <-chan Outcome) Outcome {
	t.Helper()
	select {
	case o := <-outcomes:
		return o
	case <-time.After(5 * time.Second):
		t.Fatal("no file was handled")
		return Outcome{}
	}
}

func TestWatcher_IngestsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(batchJSON), 0o644))

	rec := &recorder{}
	outcomes := startWatcher(t, dir, rec)

	o := waitOutcome(t, outcomes)
	require.NoError(t, o.Err)
	assert.Equal(t, "run-7", o.Result.RunID)

	require.Equal(t, 1, rec.count())
	batch := rec.batches[0]
	require.Len(t, batch.Observations, 2)
	assert.Equal(t, domain.PlatformChatGPT, batch.Observations[0].Platform)
	assert.Equal(t, "Dyson", batch.Observations[1].Brand)

	assert.FileExists(t, filepath.Join(dir, IngestedDir, "a.json"))
	assert.NoFileExists(t, filepath.Join(dir, "a.json"))
}

func TestWatcher_IngestsNewFiles(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	outcomes := startWatcher(t, dir, rec)

	// Written elsewhere then renamed in, so the watcher never sees a partial file.
	tmp := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, os.WriteFile(tmp, []byte(batchJSON), 0o644))
	require.NoError(t, os.Rename(tmp, filepath.Join(dir, "batch.json")))

	o := waitOutcome(t, outcomes)
	require.NoError(t, o.Err)
	assert.Equal(t, 1, rec.count())
	assert.FileExists(t, filepath.Join(dir, IngestedDir, "batch.json"))
}

func TestWatcher_RejectedBatchMovedToFailed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(batchJSON), 0o644))

	rec := &recorder{err: domain.NewValidationError("query_id", "unknown query")}
	outcomes := startWatcher(t, dir, rec)

	o := waitOutcome(t, outcomes)
	assert.ErrorIs(t, o.Err, domain.ErrInvalidInput)
	assert.FileExists(t, filepath.Join(dir, FailedDir, "bad.json"))
}

func TestWatcher_TransientFailureLeavesFile(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{err: errors.New("database is locked")}
	w := New(dir, rec.ingest)

	path := filepath.Join(dir, "retry.json")
	require.NoError(t, os.WriteFile(path, []byte(batchJSON), 0o644))

	w.process(context.Background(), path)

	assert.FileExists(t, path)
}

func TestWatcher_PartialFileIsRetried(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := New(dir, rec.ingest)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, IngestedDir), 0o755))

	path := filepath.Join(dir, "slow.json")
	require.NoError(t, os.WriteFile(path, []byte(batchJSON[:40]), 0o644))
	w.process(context.Background(), path)
	assert.Equal(t, 0, rec.count())
	assert.FileExists(t, path)

	require.NoError(t, os.WriteFile(path, []byte(batchJSON), 0o644))
	w.process(context.Background(), path)
	assert.Equal(t, 1, rec.count())
	assert.NoFileExists(t, path)
}

func TestDropFile(t *testing.T) {
	dir := t.TempDir()
	batch := filepath.Join(dir, "batch.json")
	hidden := filepath.Join(dir, ".batch.json")
	text := filepath.Join(dir, "notes.txt")
	sub := filepath.Join(dir, "nested.json")
	for _, p := range []string{batch, hidden, text} {
		require.NoError(t, os.WriteFile(p, []byte("{}"), 0o644))
	}
	require.NoError(t, os.Mkdir(sub, 0o755))

	tests := []struct {
		name     string
		event    fsnotify.Event
		expected bool
	}{
		{"create json", fsnotify.Event{Name: batch, Op: fsnotify.Create}, true},
		{"write json", fsnotify.Event{Name: batch, Op: fsnotify.Write}, true},
		{"chmod ignored", fsnotify.Event{Name: batch, Op: fsnotify.Chmod}, false},
		{"remove ignored", fsnotify.Event{Name: batch, Op: fsnotify.Remove}, false},
		{"hidden ignored", fsnotify.Event{Name: hidden, Op: fsnotify.Create}, false},
		{"non-json ignored", fsnotify.Event{Name: text, Op: fsnotify.Create}, false},
		{"directory ignored", fsnotify.Event{Name: sub, Op: fsnotify.Create}, false},
		{"vanished ignored", fsnotify.Event{Name: filepath.Join(dir, "gone.json"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := dropFile(tt.event)
			assert.Equal(t, tt.expected, ok)
		})
	}
}
