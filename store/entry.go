package store

import (
	"io/fs"
	"path/filepath"
)

// Entry is one unresolved item of a directory listing
type Entry struct {
	dir     string
	raw     fs.DirEntry
	session *Session
}

// Name returns the raw file name of the entry
func (e *Entry) Name() string {
	return e.raw.Name()
}

// Path returns the listed directory joined with the entry name
func (e *Entry) Path() string {
	return filepath.Join(e.dir, e.raw.Name())
}

// Type returns the type bits reported by the listing
func (e *Entry) Type() fs.FileMode {
	return e.raw.Type()
}

// Load resolves the entry into a node.
//
// Files and directories are classified from the listing's type hint
// without an extra metadata query for directories. Symlinks are resolved
// to their canonical target, which is entered into the session's cycle
// guard; if it was entered before, Load fails with [ErrSymlinkLoop].
// Otherwise the node is opened through the original, unresolved path.
func (e *Entry) Load() (Node, error) {
	s := e.session
	path := e.Path()
	if !s.acquire() {
		return nil, errBusy("load", path)
	}
	defer s.release()

	typ := e.raw.Type()
	switch {
	case typ.IsRegular():
		info, err := s.host.Stat(path)
		if err != nil {
			return nil, err
		}
		return newFileNode(s, path, info), nil
	case typ.IsDir():
		return &DirNode{path: path, session: s}, nil
	case typ&fs.ModeSymlink != 0:
		canon, err := s.host.Canonicalize(path)
		if err != nil {
			return nil, err
		}
		if !s.guard.enter(canon) {
			s.logger.Debug().Str("path", path).Str("target", canon).Msg("Symlink target already entered")
			return nil, errSymlinkLoop(path)
		}
		s.logger.Trace().Str("path", path).Str("target", canon).Msg("Following symlink")
		return s.open(path)
	default:
		return nil, errUnsupported("load", path)
	}
}
