package models

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultSettle is the quiet period applied when TableWatcher.Settle is
// left zero.
const defaultSettle = 200 * time.Millisecond

// TableWatcher re-reads the model table whenever the file behind it
// changes on disk. Create one with NewTableWatcher, set Settle if the
// default does not suit, then drive it with Run.
type TableWatcher struct {
	// Settle is how long the table file must stay quiet after an event
	// before the reload fires. Editors emit several events per save;
	// the quiet period folds a burst into a single reload. Zero means
	// 200ms.
	Settle time.Duration

	path   string
	logger *slog.Logger
}

// NewTableWatcher prepares a watcher for the table file at path. A nil
// logger falls back to slog.Default.
func NewTableWatcher(path string, logger *slog.Logger) *TableWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &TableWatcher{
		path:   path,
		logger: logger.With("component", "models.watch"),
	}
}

// Run blocks watching the table file and calls onChange each time the
// file settles after an edit. Reload failures are logged and watching
// continues with the previous table intact. Run returns nil once ctx is
// cancelled; any other return means the watch itself broke.
func (tw *TableWatcher) Run(ctx context.Context, onChange func() error) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start file watch: %w", err)
	}
	defer fsw.Close()

	// Watch the directory rather than the file itself. Editors that
	// save through a temp file and a rename swap the inode, and a watch
	// pinned to the old inode goes silent after the first save.
	dir := filepath.Dir(tw.path)
	base := filepath.Base(tw.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	settle := tw.Settle
	if settle <= 0 {
		settle = defaultSettle
	}

	// The timer is armed only while an edit burst is in flight. Timer
	// channels are unbuffered as of go1.23, so Reset needs no drain.
	timer := time.NewTimer(settle)
	timer.Stop()
	defer timer.Stop()

	tw.logger.Info("watching model table for edits",
		"path", tw.path,
		"settle_ms", settle.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-timer.C:
			tw.logger.Info("reloading model table", "path", tw.path)
			if err := onChange(); err != nil {
				tw.logger.Error("model table reload failed",
					"path", tw.path,
					"error", err,
				)
			}

		case ev, ok := <-fsw.Events:
			if !ok {
				return errors.New("file event stream closed")
			}
			if ev.Op == fsnotify.Chmod || filepath.Base(ev.Name) != base {
				continue
			}
			tw.logger.Debug("table file touched", "op", ev.Op.String(), "path", ev.Name)
			timer.Reset(settle)

		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("file error stream closed")
			}
			tw.logger.Warn("file watch error, continuing", "error", err)
		}
	}
}
