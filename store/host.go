package store

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rindex/rindex"
)

// OSHost implements [rindex.Host] on top of the local operating system
type OSHost struct{}

func (OSHost) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func (OSHost) ListDir(path string) (rindex.DirLister, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &osLister{f: f}, nil
}

// Canonicalize makes path absolute first so the result matches what
// realpath(3) would return for a relative input.
func (OSHost) Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func (OSHost) OpenRead(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// osLister pulls one entry per call from an open directory handle
type osLister struct {
	f *os.File
}

func (l *osLister) Next() (fs.DirEntry, error) {
	if l.f == nil {
		return nil, io.EOF
	}
	ents, err := l.f.ReadDir(1)
	if len(ents) == 1 {
		return ents[0], nil
	}
	if err == nil {
		err = io.EOF
	}
	return nil, err
}

func (l *osLister) Close() error {
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

var _ rindex.Host = OSHost{}
