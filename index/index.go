// Package index walks a storage session and collects the per-file records
// of a repository index.
package index

import (
	"fmt"
	"io"
	"maps"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rindex/rindex/repo"
)

// Record holds the indexed metadata of one regular file. Optional fields
// are nil when the path's configuration disables them.
type Record struct {
	// Path is repository-relative and slash-separated
	Path      string
	Size      *int64
	Mtime     *time.Time
	MtimeNS   *int64
	Checksums map[string]string
}

// Fields returns the record as the key/value table written to an index
// document
func (r Record) Fields() map[string]any {
	out := make(map[string]any, 3+len(r.Checksums))
	if r.Size != nil {
		out["size"] = *r.Size
	}
	if r.Mtime != nil {
		out["mtime"] = *r.Mtime
	}
	if r.MtimeNS != nil {
		out["mtime_ns"] = *r.MtimeNS
	}
	for name, sum := range r.Checksums {
		out[name] = sum
	}
	return out
}

// Skipped is an entry that was left out of the index
type Skipped struct {
	Path string
	Err  error
}

// Index is the result of one build
type Index struct {
	Records []Record
	Skipped []Skipped

	cfg *repo.Config
}

// Document is the part of an index written next to one standalone directory
type Document struct {
	// Dir is the repository-relative directory owning the document, "."
	// for the root
	Dir     string
	Records []Record
}

// Documents groups the records under the deepest enclosing directory whose
// effective standalone value is positive. Documents are sorted by Dir and
// their records by Path.
func (idx *Index) Documents() []Document {
	groups := make(map[string][]Record)
	for _, rec := range idx.Records {
		dir := idx.owner(rec.Path)
		groups[dir] = append(groups[dir], rec)
	}
	docs := make([]Document, 0, len(groups))
	for _, dir := range slices.Sorted(maps.Keys(groups)) {
		recs := groups[dir]
		slices.SortFunc(recs, func(a, b Record) int { return strings.Compare(a.Path, b.Path) })
		docs = append(docs, Document{Dir: dir, Records: recs})
	}
	return docs
}

// owner returns the deepest standalone ancestor directory of a file path
func (idx *Index) owner(file string) string {
	dir := path.Dir(file)
	for dir != "." {
		if idx.cfg.Lookup(dir).Standalone > 0 {
			return dir
		}
		dir = path.Dir(dir)
	}
	return "."
}

// Table returns the document as a TOML-ready table keyed by file path
func (d Document) Table() map[string]map[string]any {
	out := make(map[string]map[string]any, len(d.Records))
	for _, rec := range d.Records {
		out[rec.Path] = rec.Fields()
	}
	return out
}

// Encode writes every document to w as TOML, each preceded by a comment
// naming its directory
func (idx *Index) Encode(w io.Writer) error {
	for i, doc := range idx.Documents() {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "# %s\n", doc.Dir); err != nil {
			return err
		}
		if err := toml.NewEncoder(w).Encode(doc.Table()); err != nil {
			return fmt.Errorf("failed to encode index of %s: %w", doc.Dir, err)
		}
	}
	return nil
}
