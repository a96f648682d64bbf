package rindex

import (
	"io"
	"io/fs"
)

// Host is the set of filesystem primitives the storage layer consumes.
// The OS implementation lives in the store package; tests may substitute
// their own.
type Host interface {
	// Stat returns metadata for path, following symlinks
	Stat(path string) (fs.FileInfo, error)

	// ListDir opens a lazy listing of the directory at path
	ListDir(path string) (DirLister, error)

	// Canonicalize returns the absolute, symlink-free form of path
	Canonicalize(path string) (string, error)

	// OpenRead opens the file at path for reading
	OpenRead(path string) (io.ReadCloser, error)
}

// DirLister yields the entries of one directory listing, one per call.
type DirLister interface {
	// Next returns the next entry, or io.EOF once the listing is exhausted
	Next() (fs.DirEntry, error)

	// Close releases the underlying handle. Safe to call more than once.
	Close() error
}
