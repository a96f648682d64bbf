package store

import (
	"io"
	"iter"

	"github.com/rindex/rindex"
)

// EntryIterator is a forward-only, non-restartable listing of one
// directory. Entries come in the order the host reports them.
type EntryIterator struct {
	dir     string
	lister  rindex.DirLister
	session *Session
	done    bool
}

// Next returns the next entry, or io.EOF once the listing is exhausted.
// A listing error is returned as-is; the iterator is closed afterwards and
// further calls return io.EOF.
func (it *EntryIterator) Next() (*Entry, error) {
	if it.done {
		return nil, io.EOF
	}
	s := it.session
	if !s.acquire() {
		return nil, errBusy("next", it.dir)
	}
	defer s.release()

	de, err := it.lister.Next()
	if err != nil {
		if err != io.EOF {
			s.logger.Debug().Err(err).Str("dir", it.dir).Msg("Listing failed")
		}
		it.close()
		return nil, err
	}
	return &Entry{dir: it.dir, raw: de, session: s}, nil
}

// All adapts the iterator for range loops. Iteration stops after the first
// error is yielded.
func (it *EntryIterator) All() iter.Seq2[*Entry, error] {
	return func(yield func(*Entry, error) bool) {
		defer it.Close()
		for {
			e, err := it.Next()
			if err == io.EOF {
				return
			}
			if !yield(e, err) || err != nil {
				return
			}
		}
	}
}

// Close releases the listing handle. It is safe to call more than once.
func (it *EntryIterator) Close() error {
	return it.close()
}

func (it *EntryIterator) close() error {
	if it.done {
		return nil
	}
	it.done = true
	return it.lister.Close()
}
