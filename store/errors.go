package store

import (
	"errors"
	"io/fs"
)

var (
	// ErrUnsupportedEntryType is returned for entries that are neither a
	// regular file, a directory nor a symlink (sockets, devices, FIFOs...)
	ErrUnsupportedEntryType = errors.New("entry is neither a directory nor a file")

	// ErrSymlinkLoop is returned when a symlink's canonical target has
	// already been entered in the same session
	ErrSymlinkLoop = errors.New("symlink loop detected")

	// ErrSessionBusy is returned when a session is used from a second
	// traversal chain while another operation still holds it
	ErrSessionBusy = errors.New("storage session is in use")
)

// Core errors are reported as *fs.PathError so callers get the offending
// path alongside a sentinel they can match with errors.Is. OS errors are
// returned as the host produced them.
func errUnsupported(op, path string) error {
	return &fs.PathError{Op: op, Path: path, Err: ErrUnsupportedEntryType}
}

func errSymlinkLoop(path string) error {
	return &fs.PathError{Op: "load", Path: path, Err: ErrSymlinkLoop}
}

func errBusy(op, path string) error {
	return &fs.PathError{Op: op, Path: path, Err: ErrSessionBusy}
}
