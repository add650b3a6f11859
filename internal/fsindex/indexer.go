package fsindex

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/duckdesk/duckdesk/internal/observability"
)

const DefaultMaxDepth = 64

type Options struct {
	MaxDepth       int
	FollowSymlinks bool
	Logger         *slog.Logger
}

type Indexer struct {
	maxDepth       int
	followSymlinks bool
	logger         *slog.Logger
	readDir        func(string) ([]os.DirEntry, error)
}

func New(opts Options) *Indexer {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = observability.Discard()
	}
	return &Indexer{
		maxDepth:       opts.MaxDepth,
		followSymlinks: opts.FollowSymlinks,
		logger:         opts.Logger,
		readDir:        os.ReadDir,
	}
}

// Index builds the pruned tree under root, or under the working directory
// when root is empty. The root node is returned even when nothing below it
// survives pruning.
func (ix *Indexer) Index(ctx context.Context, root string) (*Node, error) {
	node, err := ix.index(ctx, root)
	switch {
	case err == nil:
		observability.ObserveIndex("ok", node.Count())
	case errors.Is(err, ErrNotFound):
		observability.ObserveIndex("not_found", 0)
	case errors.Is(err, ErrNotDirectory):
		observability.ObserveIndex("not_directory", 0)
	default:
		observability.ObserveIndex("io_error", 0)
	}
	return node, err
}

func (ix *Indexer) index(ctx context.Context, root string) (*Node, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, &IOError{Path: ".", Err: err}
		}
		root = wd
	}
	root = filepath.Clean(root)

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, root)
		}
		return nil, &IOError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, &IOError{Path: root, Err: err}
	}
	entries, err := ix.readDir(root)
	if err != nil {
		return nil, &IOError{Path: root, Err: err}
	}

	w := &walker{Indexer: ix, ctx: ctx, ancestors: map[string]struct{}{resolved: {}}}
	node := &Node{
		Kind:     KindDirectory,
		Name:     displayName(root),
		Path:     root,
		Children: w.children(root, entries, 1),
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ix.logger.DebugContext(ctx, "directory indexed",
		slog.String("root", root),
		slog.Int("nodes", node.Count()),
		slog.Int("skipped_dirs", w.skipped),
	)
	return node, nil
}

func displayName(root string) string {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return filepath.Base(root)
}

type walker struct {
	*Indexer
	ctx       context.Context
	ancestors map[string]struct{}
	skipped   int
}

func (w *walker) children(dir string, entries []os.DirEntry, depth int) []*Node {
	var out []*Node
	for _, entry := range entries {
		if w.ctx.Err() != nil {
			return out
		}
		if node := w.entry(filepath.Join(dir, entry.Name()), entry, depth); node != nil {
			out = append(out, node)
		}
	}
	return out
}

func (w *walker) entry(path string, entry os.DirEntry, depth int) *Node {
	isDir := entry.IsDir()
	if entry.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		if err != nil {
			w.logger.DebugContext(w.ctx, "skipping broken symlink", slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}
		isDir = info.IsDir()
		if isDir && !w.followSymlinks {
			return nil
		}
	}

	if isDir {
		return w.directory(path, entry.Name(), depth)
	}
	kind := Classify(entry.Name(), false)
	if kind == KindIgnored {
		return nil
	}
	return &Node{Kind: kind, Name: entry.Name(), Path: path}
}

func (w *walker) directory(path, name string, depth int) *Node {
	if depth > w.maxDepth {
		w.skip(path, "max_depth", nil)
		return nil
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		w.skip(path, "unreadable", err)
		return nil
	}
	if _, seen := w.ancestors[resolved]; seen {
		w.skip(path, "cycle", nil)
		return nil
	}
	entries, err := w.readDir(path)
	if err != nil {
		w.skip(path, "unreadable", err)
		return nil
	}

	w.ancestors[resolved] = struct{}{}
	children := w.children(path, entries, depth+1)
	delete(w.ancestors, resolved)

	if len(children) == 0 {
		return nil
	}
	return &Node{Kind: KindDirectory, Name: name, Path: path, Children: children}
}

func (w *walker) skip(path, reason string, err error) {
	w.skipped++
	observability.IncSkippedDir(reason)
	if err != nil {
		w.logger.WarnContext(w.ctx, "skipping unreadable directory",
			slog.String("path", path),
			slog.String("reason", reason),
			slog.String("error", err.Error()),
		)
		return
	}
	w.logger.DebugContext(w.ctx, "skipping directory", slog.String("path", path), slog.String("reason", reason))
}
