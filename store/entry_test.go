package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/rindex/rindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Directory r contains a.txt, b.txt and a symlink c pointing back at r.
func TestEntry_Load_SelfLoop(t *testing.T) {
	t.Parallel()

	root := tempRoot(t)
	writeFile(t, filepath.Join(root, "a.txt"), "hello")
	writeFile(t, filepath.Join(root, "b.txt"), "world")
	symlink(t, root, filepath.Join(root, "c"))

	s := NewSession()
	n, err := s.Open(root)
	require.NoError(t, err)
	nodes, errs := loadAll(t, n.(*DirNode))

	require.Contains(t, nodes, "a.txt")
	require.Contains(t, nodes, "b.txt")
	assert.Equal(t, "hello", readAll(t, nodes["a.txt"].(*FileNode)))
	assert.Equal(t, "world", readAll(t, nodes["b.txt"].(*FileNode)))

	require.Contains(t, errs, "c")
	assert.ErrorIs(t, errs["c"], ErrSymlinkLoop)
	var pathErr *fs.PathError
	require.True(t, errors.As(errs["c"], &pathErr))
	assert.Equal(t, filepath.Join(root, "c"), pathErr.Path, "loop must be reported on the original path")
}

func TestEntry_Load_MutualLoop(t *testing.T) {
	t.Parallel()

	// a/tob -> b and b/toa -> a
	root := tempRoot(t)
	a, b := filepath.Join(root, "a"), filepath.Join(root, "b")
	mkdir(t, a)
	mkdir(t, b)
	symlink(t, b, filepath.Join(a, "tob"))
	symlink(t, a, filepath.Join(b, "toa"))

	s := NewSession()
	n, err := s.Open(root)
	require.NoError(t, err)
	top, errs := loadAll(t, n.(*DirNode))
	require.Empty(t, errs)
	require.IsType(t, &DirNode{}, top["a"])

	nodes, errs := loadAll(t, top["a"].(*DirNode))
	require.Empty(t, errs)
	tob, ok := nodes["tob"].(*DirNode)
	require.True(t, ok, "first traversal of a symlink must succeed")
	assert.Equal(t, filepath.Join(a, "tob"), tob.Path())

	nodes, errs = loadAll(t, tob)
	require.Empty(t, errs)
	toa, ok := nodes["toa"].(*DirNode)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(a, "tob", "toa"), toa.Path())

	_, errs = loadAll(t, toa)
	require.Contains(t, errs, "tob")
	assert.ErrorIs(t, errs["tob"], ErrSymlinkLoop, "re-entering the cycle must fail")
}

func TestEntry_Load_AcyclicSymlink(t *testing.T) {
	t.Parallel()

	root := tempRoot(t)
	target := filepath.Join(root, "target")
	writeFile(t, filepath.Join(target, "c.txt"), "content")
	mkdir(t, filepath.Join(root, "r"))
	symlink(t, target, filepath.Join(root, "r", "dirlink"))
	symlink(t, filepath.Join(target, "c.txt"), filepath.Join(root, "r", "filelink"))

	s := NewSession()
	n, err := s.Open(filepath.Join(root, "r"))
	require.NoError(t, err)
	nodes, errs := loadAll(t, n.(*DirNode))
	require.Empty(t, errs)

	dir, ok := nodes["dirlink"].(*DirNode)
	require.True(t, ok, "symlink to a directory must resolve to a directory node")
	assert.Equal(t, filepath.Join(root, "r", "dirlink"), dir.Path())

	file, ok := nodes["filelink"].(*FileNode)
	require.True(t, ok, "symlink to a file must resolve to a file node")
	assert.Equal(t, filepath.Join(root, "r", "filelink"), file.Path())
	assert.Equal(t, int64(len("content")), file.Size())
	assert.Equal(t, "content", readAll(t, file))

	inner, _ := loadAll(t, dir)
	require.Contains(t, inner, "c.txt")
	assert.Equal(t, rindex.FileKind, inner["c.txt"].Kind())
}

// Sibling symlinks to the same target: the guard is global to the session,
// so the second one is reported as a loop even though it is not nested.
func TestEntry_Load_SharedTargetIsGlobal(t *testing.T) {
	t.Parallel()

	root := tempRoot(t)
	shared := filepath.Join(root, "shared")
	mkdir(t, shared)
	mkdir(t, filepath.Join(root, "r", "x"))
	mkdir(t, filepath.Join(root, "r", "y"))
	symlink(t, shared, filepath.Join(root, "r", "x", "link"))
	symlink(t, shared, filepath.Join(root, "r", "y", "link"))

	s := NewSession()
	rn, err := s.Open(filepath.Join(root, "r"))
	require.NoError(t, err)

	x, err := s.Open(filepath.Join(root, "r", "x"))
	require.NoError(t, err)
	nodes, errs := loadAll(t, x.(*DirNode))
	require.Empty(t, errs)
	require.Contains(t, nodes, "link")

	y, err := s.Open(filepath.Join(root, "r", "y"))
	require.NoError(t, err)
	_, errs = loadAll(t, y.(*DirNode))
	require.Contains(t, errs, "link")
	assert.ErrorIs(t, errs["link"], ErrSymlinkLoop)
	assert.Contains(t, s.Visited(), shared)
	assert.Equal(t, filepath.Join(root, "r"), rn.Path())
}

func TestEntry_Load_UnsupportedLeavesGuard(t *testing.T) {
	t.Parallel()

	root := tempRoot(t)
	mkfifo(t, filepath.Join(root, "pipe"))

	s := NewSession()
	n, err := s.Open(root)
	require.NoError(t, err)
	before := s.Visited()

	_, errs := loadAll(t, n.(*DirNode))
	require.Contains(t, errs, "pipe")
	assert.ErrorIs(t, errs["pipe"], ErrUnsupportedEntryType)
	assert.Equal(t, before, s.Visited(), "cycle guard must be left unmodified")
}

func TestEntry_Load_DanglingSymlink(t *testing.T) {
	t.Parallel()

	root := tempRoot(t)
	symlink(t, filepath.Join(root, "nowhere"), filepath.Join(root, "dangling"))

	s := NewSession()
	n, err := s.Open(root)
	require.NoError(t, err)

	_, errs := loadAll(t, n.(*DirNode))
	require.Contains(t, errs, "dangling")
	assert.ErrorIs(t, errs["dangling"], fs.ErrNotExist)
	assert.NotErrorIs(t, errs["dangling"], ErrSymlinkLoop)
}

func TestEntry_Load_FailureDoesNotStopIteration(t *testing.T) {
	t.Parallel()

	root := tempRoot(t)
	symlink(t, root, filepath.Join(root, "loop"))
	for _, name := range []string{"1", "2", "3"} {
		writeFile(t, filepath.Join(root, name), name)
	}

	n, err := NewSession().Open(root)
	require.NoError(t, err)
	nodes, errs := loadAll(t, n.(*DirNode))
	assert.Len(t, errs, 1)
	assert.Len(t, nodes, 3)
}

func TestFileNode_StaleMetadata(t *testing.T) {
	t.Parallel()

	root := tempRoot(t)
	path := filepath.Join(root, "a.txt")
	writeFile(t, path, "short")

	n, err := NewSession().Open(path)
	require.NoError(t, err)
	file := n.(*FileNode)
	require.NoError(t, os.WriteFile(path, []byte("much longer"), 0o644))

	assert.Equal(t, int64(5), file.Size(), "metadata is a snapshot")
	assert.Equal(t, uint64(5), file.Attr().Size)
	assert.Equal(t, "much longer", readAll(t, file), "content is read at Read time")
}

func TestFileNode_ReadRemoved(t *testing.T) {
	t.Parallel()

	root := tempRoot(t)
	path := filepath.Join(root, "a.txt")
	writeFile(t, path, "x")

	n, err := NewSession().Open(path)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	_, err = n.(*FileNode).Read()
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestNode_Kinds(t *testing.T) {
	t.Parallel()

	root := tempRoot(t)
	writeFile(t, filepath.Join(root, "f"), "")
	s := NewSession()

	dir, err := s.Open(root)
	require.NoError(t, err)
	file, err := s.Open(filepath.Join(root, "f"))
	require.NoError(t, err)

	for _, n := range []Node{dir, file} {
		switch v := n.(type) {
		case *FileNode:
			assert.Equal(t, rindex.FileKind, v.Kind())
			assert.Equal(t, "f", v.Name())
		case *DirNode:
			assert.Equal(t, rindex.DirKind, v.Kind())
			assert.Equal(t, filepath.Base(root), v.Name())
		}
	}
	assert.Equal(t, "file", rindex.FileKind.String())
	assert.Equal(t, "dir", rindex.DirKind.String())
}
