// Package dropdir ingests ranking batches dropped as JSON files into a
// watched directory.
//
// A file is decoded as a wire.IngestRequest. Stored batches are moved to
// the ingested/ subdirectory; batches rejected as invalid are moved to
// failed/ so they are not retried. Files that fail to decode are assumed to
// be partially written and are retried on the next write event.
package dropdir

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/geovis/internal/adapters/wire"
	"github.com/custodia-labs/geovis/internal/core/domain"
	"github.com/custodia-labs/geovis/internal/logger"
)

// Subdirectories receiving handled files.
const (
	IngestedDir = "ingested"
	FailedDir   = "failed"
)

// IngestFunc stores one batch.
type IngestFunc func(ctx context.Context, batch domain.IngestBatch) (*domain.IngestResult, error)

// Outcome describes one handled file.
type Outcome struct {
	Path   string
	Result *domain.IngestResult
	Err    error
}

// Watcher watches a directory for ranking batches.
type Watcher struct {
	dir    string
	ingest IngestFunc
	report func(Outcome)
}

// New creates a watcher for dir.
func New(dir string, ingest IngestFunc) *Watcher {
	return &Watcher{dir: dir, ingest: ingest, report: func(Outcome) {}}
}

// OnOutcome registers a callback invoked after each stored or rejected file.
func (w *Watcher) OnOutcome(fn func(Outcome)) {
	if fn != nil {
		w.report = fn
	}
}

// Run ingests files already present, then watches for new ones until ctx
// is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	for _, sub := range []string{IngestedDir, FailedDir} {
		if err := os.MkdirAll(filepath.Join(w.dir, sub), 0o755); err != nil {
			return fmt.Errorf("creating %s directory: %w", sub, err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	if err := w.processExisting(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if path, ok := dropFile(event); ok {
				w.process(ctx, path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("dropdir: watcher error: %v", err)
		}
	}
}

func (w *Watcher) processExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", w.dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && isBatchFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		w.process(ctx, filepath.Join(w.dir, name))
	}
	return nil
}

// dropFile reports whether event announces a batch file worth reading.
func dropFile(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if !isBatchFile(filepath.Base(event.Name)) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return event.Name, true
}

func isBatchFile(name string) bool {
	return !strings.HasPrefix(name, ".") && strings.EqualFold(filepath.Ext(name), ".json")
}

func (w *Watcher) process(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Already moved by an earlier event.
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("dropdir: reading %s: %v", path, err)
		}
		return
	}

	var req wire.IngestRequest
	if err := json.Unmarshal(data, &req); err != nil {
		logger.Debug("dropdir: %s is not complete JSON yet: %v", path, err)
		return
	}

	result, err := w.ingest(ctx, req.ToDomain())
	switch {
	case err == nil:
		w.move(path, IngestedDir)
		logger.Info("dropdir: stored %d observations from %s (run %s)",
			len(result.Observations), filepath.Base(path), result.RunID)
	case errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound):
		w.move(path, FailedDir)
		logger.Error("dropdir: rejected %s: %v", filepath.Base(path), err)
	default:
		// Left in place; retried on the next event or restart.
		logger.Error("dropdir: ingesting %s: %v", filepath.Base(path), err)
		return
	}
	w.report(Outcome{Path: path, Result: result, Err: err})
}

func (w *Watcher) move(path, sub string) {
	target := filepath.Join(w.dir, sub, filepath.Base(path))
	if err := os.Rename(path, target); err != nil {
		logger.Warn("dropdir: moving %s to %s: %v", path, sub, err)
	}
}
