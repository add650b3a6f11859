package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/duckdesk/duckdesk/internal/fsindex"
	"github.com/duckdesk/duckdesk/internal/observability"
)

// Change reports the first structural change seen under a watched root.
type Change struct {
	Changed bool   `json:"changed"`
	Path    string `json:"path,omitempty"`
	Op      string `json:"op,omitempty"`
}

type Watcher struct {
	root    string
	watcher *fsnotify.Watcher
	logger  *slog.Logger
}

// New registers every readable directory under root. fsnotify is not
// recursive, so directories created later are only seen through the
// resulting Create event on their parent.
func New(root string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = observability.Discard()
	}
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", fsindex.ErrNotFound, root)
		}
		return nil, &fsindex.IOError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", fsindex.ErrNotDirectory, root)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{root: root, watcher: fw, logger: logger}
	if err := w.addRecursive(); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addRecursive() error {
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == w.root {
				return &fsindex.IOError{Path: path, Err: err}
			}
			w.logger.Warn("skipping unwatchable directory", slog.String("path", path), slog.String("error", err.Error()))
			return fs.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			if path == w.root {
				return &fsindex.IOError{Path: path, Err: err}
			}
			w.logger.Warn("skipping unwatchable directory", slog.String("path", path), slog.String("error", err.Error()))
			return fs.SkipDir
		}
		return nil
	})
}

// Next blocks until a create, remove or rename happens, the timeout passes,
// or ctx is done. Content writes do not change the tree and are ignored.
func (w *Watcher) Next(ctx context.Context, timeout time.Duration) (Change, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return Change{}, ctx.Err()
		case <-timer.C:
			return Change{}, nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return Change{}, errors.New("watcher closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.DebugContext(ctx, "workspace changed", slog.String("path", event.Name), slog.String("op", event.Op.String()))
			return Change{Changed: true, Path: event.Name, Op: event.Op.String()}, nil
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return Change{}, errors.New("watcher closed")
			}
			w.logger.WarnContext(ctx, "watcher error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func Wait(ctx context.Context, root string, timeout time.Duration, logger *slog.Logger) (Change, error) {
	w, err := New(root, logger)
	if err != nil {
		return Change{}, err
	}
	defer func() { _ = w.Close() }()
	return w.Next(ctx, timeout)
}
