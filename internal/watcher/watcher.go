// Package watcher feeds the source buffer from a file on disk, so the
// playground can be driven from an external editor.
package watcher

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/codepad-dev/codepad/internal/logging"
)

// ContentHandler receives the file's full contents after each change.
type ContentHandler func(content string)

// FileWatcher watches a single source file. Debouncing is the
// scheduler's job; the watcher forwards every write as-is.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	handler ContentHandler
	logger  logging.Logger
}

// NewFileWatcher creates a watcher for the given file. The parent
// directory is watched rather than the file itself, since editors that
// save via rename would otherwise detach the watch.
func NewFileWatcher(path string, handler ContentHandler, logger logging.Logger) (*FileWatcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		fsw.Close()
		return nil, err
	}

	if logger == nil {
		logger = logging.NopLogger{}
	}

	return &FileWatcher{
		watcher: fsw,
		path:    absPath,
		handler: handler,
		logger:  logger.WithComponent("watcher"),
	}, nil
}

// Path returns the absolute path being watched.
func (w *FileWatcher) Path() string {
	return w.path
}

// Start starts the watch loop.
func (w *FileWatcher) Start(ctx context.Context) {
	go w.watchLoop(ctx)
}

// Stop stops the watcher and releases its resources.
func (w *FileWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *FileWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, err, "file watcher error")
		}
	}
}

func (w *FileWatcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}

	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	data, err := os.ReadFile(w.path)
	if err != nil {
		w.logger.Warn(ctx, err, "failed to read changed file", "path", w.path)
		return
	}

	w.logger.Debug(ctx, "file changed", "path", w.path, "bytes", len(data))
	w.handler(string(data))
}
