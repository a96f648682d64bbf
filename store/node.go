package store

import (
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/rindex/rindex"
)

// Node is a resolved filesystem item: either a *FileNode or a *DirNode.
// Callers are expected to type-switch over both variants.
type Node interface {
	rindex.NodeInfo
	node()
}

// FileNode is a regular file with metadata captured when it was resolved.
// The metadata is never refreshed.
type FileNode struct {
	path    string
	info    fs.FileInfo
	attr    fuse.Attr
	session *Session
}

func newFileNode(s *Session, path string, info fs.FileInfo) *FileNode {
	n := &FileNode{path: path, info: info, session: s}
	// ToAttr returns nil when the platform stat is unavailable; fall back
	// to the portable fields
	if a := fuse.ToAttr(info); a != nil {
		n.attr = *a
	} else {
		mtime := info.ModTime()
		n.attr = fuse.Attr{
			Size:      uint64(info.Size()),
			Mode:      uint32(info.Mode().Perm()) | fuse.S_IFREG,
			Nlink:     1,
			Mtime:     uint64(mtime.Unix()),
			Mtimensec: uint32(mtime.Nanosecond()),
		}
	}
	return n
}

func (n *FileNode) node() {}

func (n *FileNode) Path() string { return n.path }

func (n *FileNode) Name() string { return filepath.Base(n.path) }

func (n *FileNode) Kind() rindex.NodeKind { return rindex.FileKind }

// Info returns the metadata snapshot taken at resolution time
func (n *FileNode) Info() fs.FileInfo { return n.info }

// Size returns the size captured at resolution time
func (n *FileNode) Size() int64 { return n.info.Size() }

// ModTime returns the modification time captured at resolution time
func (n *FileNode) ModTime() time.Time { return n.info.ModTime() }

// Attr returns a copy of the low-level attributes (inode, links, blocks,
// timestamps) captured at resolution time
func (n *FileNode) Attr() fuse.Attr { return n.attr }

// Read opens the file for reading. The content may no longer match the
// captured metadata if the file changed in between.
func (n *FileNode) Read() (io.ReadCloser, error) {
	n.session.logger.Trace().Str("path", n.path).Msg("Read called")
	return n.session.host.OpenRead(n.path)
}

// DirNode is a directory bound to the session it was resolved from. Its
// entries are only listed when Iter is called.
type DirNode struct {
	path    string
	session *Session
}

func (n *DirNode) node() {}

func (n *DirNode) Path() string { return n.path }

func (n *DirNode) Name() string { return filepath.Base(n.path) }

func (n *DirNode) Kind() rindex.NodeKind { return rindex.DirKind }

// Session returns the session the directory is bound to
func (n *DirNode) Session() *Session { return n.session }

// Iter opens the directory listing. Each call starts a fresh listing.
func (n *DirNode) Iter() (*EntryIterator, error) {
	s := n.session
	if !s.acquire() {
		return nil, errBusy("iter", n.path)
	}
	defer s.release()

	s.logger.Trace().Str("path", n.path).Msg("Iter called")
	lister, err := s.host.ListDir(n.path)
	if err != nil {
		return nil, err
	}
	return &EntryIterator{dir: n.path, lister: lister, session: s}, nil
}

var (
	_ Node = (*FileNode)(nil)
	_ Node = (*DirNode)(nil)
)
