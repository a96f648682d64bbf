package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate_AtRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, SentinelName), nil, 0o644))

	loc, err := Locate(root)
	require.NoError(t, err)
	assert.Equal(t, root, loc.Root)
	assert.Empty(t, loc.Segments)
	assert.Equal(t, ".", loc.Rel())
	assert.Equal(t, root, loc.Target())
}

func TestLocate_Descended(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, SentinelName), nil, 0o644))
	start := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(start, 0o755))

	loc, err := Locate(start)
	require.NoError(t, err)
	assert.Equal(t, root, loc.Root)
	assert.Equal(t, []string{"a", "b", "c"}, loc.Segments, "segments must be in descending order")
	assert.Equal(t, "a/b/c", loc.Rel())
	assert.Equal(t, start, loc.Target())
	assert.Equal(t, filepath.Join(root, SentinelName), loc.SentinelPath(SentinelName))
}

func TestLocate_NearestWins(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	inner := filepath.Join(root, "inner")
	require.NoError(t, os.MkdirAll(filepath.Join(inner, "x"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, SentinelName), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(inner, SentinelName), nil, 0o644))

	loc, err := Locate(filepath.Join(inner, "x"))
	require.NoError(t, err)
	assert.Equal(t, inner, loc.Root)
	assert.Equal(t, []string{"x"}, loc.Segments)
}

func TestLocate_FromFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, SentinelName), nil, 0o644))
	file := filepath.Join(root, "sub", "hello.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o755))
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o644))

	loc, err := Locate(file)
	require.NoError(t, err, "a file start must be searched from its directory")
	assert.Equal(t, root, loc.Root)
	assert.Equal(t, []string{"sub", "hello.txt"}, loc.Segments)
	assert.Equal(t, "sub/hello.txt", loc.Rel())
	assert.Equal(t, file, loc.Target())
}

func TestLocate_NotFound(t *testing.T) {
	t.Parallel()

	// a random sentinel name will not exist anywhere above the temp dir
	_, err := LocateSentinel(t.TempDir(), "rindex-test-missing-sentinel.toml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRepoNotFound)
}

func TestLocate_SentinelNotFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, SentinelName), 0o755))

	_, err := Locate(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSentinelNotFile)
}

func TestLocate_RelativeStart(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, SentinelName), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	t.Chdir(root)

	loc, err := Locate("sub")
	require.NoError(t, err)
	assert.Equal(t, []string{"sub"}, loc.Segments)
	assert.True(t, filepath.IsAbs(loc.Root))
}
