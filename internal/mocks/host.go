package mocks

import (
	"io"
	"io/fs"
	"time"

	"github.com/rindex/rindex"
	"github.com/stretchr/testify/mock"
)

// MockHost implements rindex.Host for testing across packages
type MockHost struct {
	mock.Mock
}

func (m *MockHost) Stat(path string) (fs.FileInfo, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(fs.FileInfo), args.Error(1)
}

func (m *MockHost) ListDir(path string) (rindex.DirLister, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(rindex.DirLister), args.Error(1)
}

func (m *MockHost) Canonicalize(path string) (string, error) {
	args := m.Called(path)
	return args.String(0), args.Error(1)
}

func (m *MockHost) OpenRead(path string) (io.ReadCloser, error) {
	args := m.Called(path)

	// Handle function return types so each call can get a fresh reader
	if fn, ok := args.Get(0).(func(string) io.ReadCloser); ok {
		return fn(path), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

var _ rindex.Host = (*MockHost)(nil)

// MockDirLister implements rindex.DirLister for testing across packages
type MockDirLister struct {
	mock.Mock
}

func (m *MockDirLister) Next() (fs.DirEntry, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(fs.DirEntry), args.Error(1)
}

func (m *MockDirLister) Close() error {
	return m.Called().Error(0)
}

var _ rindex.DirLister = (*MockDirLister)(nil)

// FakeInfo is a static fs.FileInfo for hosts that don't touch the disk
type FakeInfo struct {
	FName    string
	FSize    int64
	FMode    fs.FileMode
	FModTime time.Time
}

func (i FakeInfo) Name() string       { return i.FName }
func (i FakeInfo) Size() int64        { return i.FSize }
func (i FakeInfo) Mode() fs.FileMode  { return i.FMode }
func (i FakeInfo) ModTime() time.Time { return i.FModTime }
func (i FakeInfo) IsDir() bool        { return i.FMode.IsDir() }
func (i FakeInfo) Sys() any           { return nil }

// FakeDirEntry is a static fs.DirEntry
type FakeDirEntry struct {
	FName string
	FType fs.FileMode
}

func (e FakeDirEntry) Name() string               { return e.FName }
func (e FakeDirEntry) IsDir() bool                { return e.FType.IsDir() }
func (e FakeDirEntry) Type() fs.FileMode          { return e.FType.Type() }
func (e FakeDirEntry) Info() (fs.FileInfo, error) { return FakeInfo{FName: e.FName, FMode: e.FType}, nil }
