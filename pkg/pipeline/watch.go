package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/coolbeans/lawlink/pkg/config"
	"gopkg.in/fsnotify.v1"
)

// DefaultDebounce is how long Watch waits for writes to settle before
// running the batch again.
const DefaultDebounce = 500 * time.Millisecond

// InputFiles lists every file a batch reads, sorted and without duplicates.
func InputFiles(cfg *config.BatchConfig) []string {
	seen := make(map[string]bool)
	var files []string
	for _, spec := range cfg.Documents {
		for _, path := range []string{spec.Source, spec.Rows, spec.Page} {
			if path == "" {
				continue
			}
			path = filepath.Clean(path)
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
		}
	}
	sort.Strings(files)
	return files
}

// Watch runs the batch once and then again after any of its input files
// changes, until ctx is done. Runs never overlap: events arriving during a
// run are coalesced into the next one. Each finished run is handed to
// onReport.
func (r *Runner) Watch(ctx context.Context, cfg *config.BatchConfig, label string, debounce time.Duration, onReport func(*Report)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files on save, so the parent directories are
	// watched and events are filtered by name.
	inputs := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, path := range InputFiles(cfg) {
		inputs[path] = true
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %s: %w", dir, err)
		}
	}

	run := func() error {
		report, err := r.Run(ctx, cfg, label)
		if report != nil && onReport != nil {
			onReport(report)
		}
		return err
	}
	if err := run(); err != nil {
		return err
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !inputs[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			r.Logger.Debug("input changed", "file", event.Name, "op", event.Op.String())
			pending = true
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.Logger.Warn("watch error", "error", err)

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			r.Logger.Info("inputs changed, running batch again")
			if err := run(); err != nil {
				return err
			}
		}
	}
}
