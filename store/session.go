// Package store implements lazy, cycle-safe traversal of a local file
// hierarchy.
//
// A [Session] classifies paths into [Node] values. Directory nodes list
// their entries lazily through an [EntryIterator]; each [Entry] is resolved
// into a node on demand with [Entry.Load]. Symlinks are followed, and every
// canonical symlink target is remembered for the lifetime of the session so
// that entering the same target twice reports [ErrSymlinkLoop].
//
// [Session.Open] on a directory also records that directory's canonical
// path, so after opening /r any symlink resolving to /r reports
// [ErrSymlinkLoop], even one reached from an unrelated part of the tree.
package store

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rindex/rindex"
	"github.com/rindex/rindex/internal/util"
)

// Session owns the cycle guard of one traversal task. Nodes, iterators and
// entries derived from it hold a pointer back to it.
//
// A session is meant to be driven by one traversal path at a time. The
// single-writer lock makes a second, concurrent user fail with
// [ErrSessionBusy] instead of interleaving with the first.
type Session struct {
	id     string
	host   rindex.Host
	guard  *cycleGuard
	mu     sync.Mutex // held for the duration of each operation
	logger util.Logger
}

// Option configures a Session
type Option func(*Session)

// WithHost replaces the OS host, mostly useful for tests
func WithHost(h rindex.Host) Option {
	return func(s *Session) {
		s.host = h
	}
}

// NewSession creates a session with an empty cycle guard
func NewSession(opts ...Option) *Session {
	s := &Session{
		id:    uuid.NewString(),
		host:  OSHost{},
		guard: newCycleGuard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = util.GetLogger("Store").With().Str("session", s.id).Logger()
	return s
}

// ID returns the session's unique identifier, as attached to its log lines
func (s *Session) ID() string {
	return s.id
}

// Visited returns the canonical targets entered so far, sorted
func (s *Session) Visited() []string {
	return s.guard.snapshot()
}

// Open classifies path into a node. Symlinks are followed. A directory
// root is recorded as entered so that a symlink leading back to it is
// reported as a loop; Open itself never checks the guard, so opening the
// same path again always succeeds.
func (s *Session) Open(path string) (Node, error) {
	if !s.acquire() {
		return nil, errBusy("open", path)
	}
	defer s.release()

	s.logger.Trace().Str("path", path).Msg("Open called")
	node, err := s.open(path)
	if err != nil {
		return nil, err
	}
	if _, ok := node.(*DirNode); ok {
		if canon, err := s.host.Canonicalize(path); err == nil {
			s.guard.enter(canon)
		} else {
			s.logger.Debug().Err(err).Str("path", path).Msg("Could not canonicalize root; not recorded")
		}
	}
	return node, nil
}

// open is Open without locking or root bookkeeping. It is also used to
// resolve the original path of a symlink entry.
func (s *Session) open(path string) (Node, error) {
	info, err := s.host.Stat(path)
	if err != nil {
		return nil, err
	}
	switch {
	case info.Mode().IsRegular():
		return newFileNode(s, path, info), nil
	case info.IsDir():
		return &DirNode{path: path, session: s}, nil
	default:
		s.logger.Debug().Str("path", path).Str("mode", info.Mode().String()).Msg("Unsupported entry type")
		return nil, errUnsupported("open", path)
	}
}

func (s *Session) acquire() bool {
	return s.mu.TryLock()
}

func (s *Session) release() {
	s.mu.Unlock()
}
