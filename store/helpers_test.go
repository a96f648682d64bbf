package store

import (
	"io"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

// tempRoot returns a canonical temporary directory so paths reported by the
// session can be compared with canonical targets directly
func tempRoot(t *testing.T) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func mkdir(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
}

func symlink(t *testing.T, target, link string) {
	t.Helper()
	require.NoError(t, os.Symlink(target, link))
}

func mkfifo(t *testing.T, path string) {
	t.Helper()
	if err := syscall.Mkfifo(path, 0o644); err != nil {
		t.Skipf("mkfifo not supported: %v", err)
	}
}

func readAll(t *testing.T, n *FileNode) string {
	t.Helper()
	r, err := n.Read()
	require.NoError(t, err)
	defer r.Close()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}

// loadAll iterates dir and resolves every entry, keyed by entry name
func loadAll(t *testing.T, dir *DirNode) (map[string]Node, map[string]error) {
	t.Helper()
	it, err := dir.Iter()
	require.NoError(t, err)
	defer it.Close()

	nodes := make(map[string]Node)
	errs := make(map[string]error)
	for e, err := range it.All() {
		require.NoError(t, err)
		n, err := e.Load()
		if err != nil {
			errs[e.Name()] = err
			continue
		}
		nodes[e.Name()] = n
	}
	return nodes, errs
}

func mustOpenDir(t *testing.T, s *Session, path string) *DirNode {
	t.Helper()
	n, err := s.Open(path)
	require.NoError(t, err)
	dir, ok := n.(*DirNode)
	require.True(t, ok, "expected *DirNode, got %T", n)
	return dir
}
