package index

import (
	"errors"
	"path"
	"path/filepath"
	"time"

	"github.com/rindex/rindex/checksum"
	"github.com/rindex/rindex/internal/util"
	"github.com/rindex/rindex/repo"
	"github.com/rindex/rindex/store"
	"github.com/rs/zerolog"
)

// Options tunes a Builder
type Options struct {
	// SkipErrors records entries that fail to load or read in
	// Index.Skipped instead of aborting the build
	SkipErrors bool
	// ChunkSize is the read buffer used while hashing
	ChunkSize int
}

// Builder walks a storage session rooted at a repository and records every
// regular file according to the repository configuration
type Builder struct {
	session *store.Session
	root    string
	cfg     *repo.Config
	reg     *checksum.Registry
	opts    Options
	logger  zerolog.Logger
}

// NewBuilder creates a Builder for the repository at root
func NewBuilder(s *store.Session, root string, cfg *repo.Config, reg *checksum.Registry, opts Options) *Builder {
	return &Builder{
		session: s,
		root:    root,
		cfg:     cfg,
		reg:     reg,
		opts:    opts,
		logger:  util.GetLogger("Index").With().Str("session", s.ID()).Logger(),
	}
}

// Build indexes the slash-separated repository-relative path rel, "." for
// the whole repository
func (b *Builder) Build(rel string) (*Index, error) {
	rel = path.Clean("/" + filepath.ToSlash(rel))[1:]
	if rel == "" {
		rel = "."
	}
	b.logger.Trace().Str("path", rel).Msg("Build")

	idx := &Index{cfg: b.cfg}
	pc := b.cfg.Lookup(rel)
	if pc.Data == repo.DataIgnore {
		b.logger.Debug().Str("path", rel).Msg("Path is ignored")
		return idx, nil
	}
	if pc.Data == repo.DataBind {
		b.logger.Debug().Str("path", rel).Str("target", pc.Target).Msg("Path is bound; its content is indexed at the target")
		return idx, nil
	}

	node, err := b.session.Open(filepath.Join(b.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	switch n := node.(type) {
	case *store.FileNode:
		if err := b.addFile(idx, n, rel, pc); err != nil {
			return nil, err
		}
	case *store.DirNode:
		if err := b.walk(idx, n, rel); err != nil {
			return nil, err
		}
	}
	b.logger.Debug().
		Int("records", len(idx.Records)).
		Int("skipped", len(idx.Skipped)).
		Msg("Build finished")
	return idx, nil
}

func (b *Builder) walk(idx *Index, dir *store.DirNode, rel string) error {
	it, err := dir.Iter()
	if err != nil {
		return err
	}
	defer it.Close()

	for entry, err := range it.All() {
		if err != nil {
			return err
		}
		childRel := path.Join(rel, entry.Name())
		pc := b.cfg.Lookup(childRel)
		if pc.Data == repo.DataIgnore {
			b.logger.Debug().Str("path", childRel).Msg("Skipping ignored path")
			continue
		}
		if pc.Data == repo.DataBind {
			b.logger.Debug().Str("path", childRel).Str("target", pc.Target).Msg("Not entering bound path")
			continue
		}

		node, err := entry.Load()
		if err != nil {
			if err := b.skip(idx, childRel, err); err != nil {
				return err
			}
			continue
		}
		switch n := node.(type) {
		case *store.FileNode:
			if err := b.addFile(idx, n, childRel, pc); err != nil {
				if err := b.skip(idx, childRel, err); err != nil {
					return err
				}
			}
		case *store.DirNode:
			if err := b.walk(idx, n, childRel); err != nil {
				return err
			}
		}
	}
	return nil
}

// skip decides whether a failed entry aborts the build
func (b *Builder) skip(idx *Index, rel string, err error) error {
	tolerated := errors.Is(err, store.ErrSymlinkLoop) || errors.Is(err, store.ErrUnsupportedEntryType)
	if !tolerated && !b.opts.SkipErrors {
		return err
	}
	b.logger.Warn().Err(err).Str("path", rel).Msg("Skipping entry")
	idx.Skipped = append(idx.Skipped, Skipped{Path: rel, Err: err})
	return nil
}

func (b *Builder) addFile(idx *Index, n *store.FileNode, rel string, pc repo.PathConfig) error {
	attr := n.Attr()
	size := int64(attr.Size)
	mtime := time.Unix(int64(attr.Mtime), int64(attr.Mtimensec))

	rec := Record{Path: rel}
	if pc.SaveSize {
		rec.Size = util.Pointer(size)
	}
	if pc.SaveMtime {
		rec.Mtime = util.Pointer(mtime.In(pc.Location))
	}
	if pc.SaveMtimeNS {
		rec.MtimeNS = util.Pointer(mtime.UnixNano())
	}
	if attr.Nlink > 1 {
		b.logger.Debug().
			Str("path", rel).
			Uint64("ino", attr.Ino).
			Uint32("nlink", attr.Nlink).
			Msg("File has other hard links")
	}

	if names := pc.EnabledChecksums(); len(names) > 0 {
		algos, err := b.reg.Lookup(names...)
		if err != nil {
			return err
		}
		sums, err := b.digest(n, size, algos)
		if err != nil {
			return err
		}
		rec.Checksums = sums
	}

	b.logger.Trace().Str("path", rel).Int64("size", size).Msg("Recorded file")
	idx.Records = append(idx.Records, rec)
	return nil
}

func (b *Builder) digest(n *store.FileNode, size int64, algos []checksum.Algorithm) (map[string]string, error) {
	rc, err := n.Read()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	read, sums, err := checksum.Digest(rc, algos, b.opts.ChunkSize)
	if err != nil {
		return nil, err
	}
	if read != size {
		b.logger.Warn().
			Str("path", n.Path()).
			Int64("stat", size).
			Int64("read", read).
			Msg("File changed while indexing")
	}
	return sums, nil
}
