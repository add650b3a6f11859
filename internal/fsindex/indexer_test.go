package fsindex

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFiles(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
}

func mkdirs(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(p)), 0o755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
	}
}

// shape flattens a tree into "kind:relative/path" entries for comparison.
func shape(root *Node) []string {
	var out []string
	var walk func(prefix string, n *Node)
	walk = func(prefix string, n *Node) {
		for _, child := range n.Children {
			rel := prefix + child.Name
			out = append(out, string(child.Kind)+":"+rel)
			walk(rel+"/", child)
		}
	}
	walk("", root)
	return out
}

func newTestIndexer() *Indexer {
	return New(Options{FollowSymlinks: true})
}

func TestIndexClassifiesAndPrunes(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.sql", "b.csv", "notes.txt")
	mkdirs(t, root, "empty")

	tree, err := newTestIndexer().Index(context.Background(), root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	want := []string{"query:a.sql", "data:b.csv"}
	if got := shape(tree); !reflect.DeepEqual(got, want) {
		t.Fatalf("shape = %v, want %v", got, want)
	}
	if tree.Kind != KindDirectory || tree.Path != root || tree.Name != filepath.Base(root) {
		t.Fatalf("root = %#v", tree)
	}
	if tree.Children[0].Path != filepath.Join(root, "a.sql") {
		t.Fatalf("leaf path = %q", tree.Children[0].Path)
	}
}

func TestIndexPrunesNestedEmptyDirectories(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "x/y/z")
	writeFiles(t, root, "x/y/readme.md")

	tree, err := newTestIndexer().Index(context.Background(), root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if len(tree.Children) != 0 {
		t.Fatalf("expected pruned tree, got %v", shape(tree))
	}
}

func TestIndexKeepsDeepLeafAndIgnoresCase(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "d1/d2/q.SQL", "DATA.PARQUET", "book.Xlsx", "noext")

	tree, err := newTestIndexer().Index(context.Background(), root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	want := []string{"data:DATA.PARQUET", "data:book.Xlsx", "directory:d1", "directory:d1/d2", "query:d1/d2/q.SQL"}
	if got := shape(tree); !reflect.DeepEqual(got, want) {
		t.Fatalf("shape = %v, want %v", got, want)
	}
}

func TestIndexIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.sql", "sub/b.csv", "sub/deeper/c.parquet", "skip/me.txt")

	indexer := newTestIndexer()
	first, err := indexer.Index(context.Background(), root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	second, err := indexer.Index(context.Background(), root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("trees differ: %v vs %v", shape(first), shape(second))
	}
}

func TestIndexMissingRootIsNotFound(t *testing.T) {
	_, err := newTestIndexer().Index(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Index() error = %v, want ErrNotFound", err)
	}
}

func TestIndexFileRootIsNotDirectory(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.sql")
	_, err := newTestIndexer().Index(context.Background(), filepath.Join(root, "a.sql"))
	if !errors.Is(err, ErrNotDirectory) {
		t.Fatalf("Index() error = %v, want ErrNotDirectory", err)
	}
}

func TestIndexUnreadableRootIsIOError(t *testing.T) {
	root := t.TempDir()
	indexer := newTestIndexer()
	indexer.readDir = func(string) ([]os.DirEntry, error) { return nil, fs.ErrPermission }

	_, err := indexer.Index(context.Background(), root)
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("Index() error = %v, want *IOError", err)
	}
	if ioErr.Path != root || !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("IOError = %#v", ioErr)
	}
}

func TestIndexUnreadableSubdirectoryIsPruned(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.sql", "locked/b.csv", "open/c.csv")
	locked := filepath.Join(root, "locked")

	indexer := newTestIndexer()
	indexer.readDir = func(path string) ([]os.DirEntry, error) {
		if path == locked {
			return nil, fs.ErrPermission
		}
		return os.ReadDir(path)
	}

	tree, err := indexer.Index(context.Background(), root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	want := []string{"query:a.sql", "directory:open", "data:open/c.csv"}
	if got := shape(tree); !reflect.DeepEqual(got, want) {
		t.Fatalf("shape = %v, want %v", got, want)
	}
}

func TestIndexSymlinkCycleTerminates(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "sub/a.sql")
	if err := os.Symlink(root, filepath.Join(root, "sub", "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	tree, err := newTestIndexer().Index(context.Background(), root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	want := []string{"directory:sub", "query:sub/a.sql"}
	if got := shape(tree); !reflect.DeepEqual(got, want) {
		t.Fatalf("shape = %v, want %v", got, want)
	}
}

func TestIndexFollowsDirectorySymlinks(t *testing.T) {
	outside := t.TempDir()
	writeFiles(t, outside, "dat.csv")
	root := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "nowhere.sql"), filepath.Join(root, "broken.sql")); err != nil {
		t.Fatalf("Symlink() error = %v", err)
	}

	tree, err := newTestIndexer().Index(context.Background(), root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	want := []string{"directory:link", "data:link/dat.csv"}
	if got := shape(tree); !reflect.DeepEqual(got, want) {
		t.Fatalf("shape = %v, want %v", got, want)
	}

	noFollow, err := New(Options{FollowSymlinks: false}).Index(context.Background(), root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if len(noFollow.Children) != 0 {
		t.Fatalf("expected symlinked directory to be skipped, got %v", shape(noFollow))
	}
}

func TestIndexRespectsMaxDepth(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a/b/c.sql", "a/top.csv")

	tree, err := New(Options{MaxDepth: 1}).Index(context.Background(), root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	want := []string{"directory:a", "data:a/top.csv"}
	if got := shape(tree); !reflect.DeepEqual(got, want) {
		t.Fatalf("shape = %v, want %v", got, want)
	}
}

func TestIndexDefaultsToWorkingDirectory(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "q.sql")
	t.Chdir(root)

	tree, err := newTestIndexer().Index(context.Background(), "")
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if got := shape(tree); !reflect.DeepEqual(got, []string{"query:q.sql"}) {
		t.Fatalf("shape = %v", got)
	}
}

func TestIndexHonoursCancellation(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.sql")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestIndexer().Index(ctx, root); !errors.Is(err, context.Canceled) {
		t.Fatalf("Index() error = %v, want context.Canceled", err)
	}
}

func TestNodeCountAndFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.sql", "sub/b.csv")

	tree, err := newTestIndexer().Index(context.Background(), root)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if tree.Count() != 4 {
		t.Fatalf("Count() = %d, want 4", tree.Count())
	}
	files := tree.Files()
	if len(files) != 2 || files[0].Name != "a.sql" || files[1].Name != "b.csv" {
		t.Fatalf("Files() = %v", files)
	}
}
