package daemon

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	ferrors "git.home.luguber.info/inful/webtree/internal/foundation/errors"
	"git.home.luguber.info/inful/webtree/internal/logfields"
)

// SourceWatcher reports file system changes below a source directory.
type SourceWatcher struct {
	root     string
	excludes []string
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
}

// NewSourceWatcher watches root and every directory below it, except the
// excluded absolute paths (typically the output directory).
func NewSourceWatcher(root string, excludes []string, logger *slog.Logger) (*SourceWatcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, ferrors.PathError("failed to resolve source directory").
			WithCause(err).
			WithContext("source", root).
			Build()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to create file watcher").Build()
	}
	if logger == nil {
		logger = slog.Default()
	}
	sw := &SourceWatcher{root: abs, watcher: w, logger: logger}
	for _, ex := range excludes {
		if a, err := filepath.Abs(ex); err == nil {
			sw.excludes = append(sw.excludes, a)
		}
	}
	if err := sw.addDirsRecursive(abs); err != nil {
		_ = w.Close()
		return nil, err
	}
	return sw, nil
}

// Run calls trigger for every relevant event until ctx is done.
func (sw *SourceWatcher) Run(ctx context.Context, trigger func()) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sw.watcher.Events:
			if !ok {
				return nil
			}
			sw.handleEvent(ev, trigger)
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return nil
			}
			sw.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// Close stops watching.
func (sw *SourceWatcher) Close() error {
	return sw.watcher.Close()
}

func (sw *SourceWatcher) handleEvent(ev fsnotify.Event, trigger func()) {
	if shouldIgnoreEvent(ev.Name) || sw.excluded(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = sw.addDirsRecursive(ev.Name)
		}
	}
	sw.logger.Debug("Source change detected", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func (sw *SourceWatcher) addDirsRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != sw.root && (strings.HasPrefix(d.Name(), ".") || sw.excluded(path)) {
			return filepath.SkipDir
		}
		if err := sw.watcher.Add(path); err != nil {
			sw.logger.Warn("Failed to watch directory", slog.String("dir", path), logfields.Error(err))
		}
		return nil
	})
}

func (sw *SourceWatcher) excluded(path string) bool {
	for _, ex := range sw.excludes {
		if path == ex || strings.HasPrefix(path, ex+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// shouldIgnoreEvent reports events for hidden, editor swap and lock files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
