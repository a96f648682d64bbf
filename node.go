// Package rindex contains the core contracts shared by the rindex packages:
// the host filesystem primitives and the kinds of resolved nodes.
package rindex

// NodeKind tags the variant of a resolved node
type NodeKind uint8

const (
	FileKind NodeKind = iota + 1
	DirKind
)

func (k NodeKind) String() string {
	switch k {
	case FileKind:
		return "file"
	case DirKind:
		return "dir"
	default:
		return "unknown"
	}
}

// NodeInfo provides read-only access to a resolved node
type NodeInfo interface {
	// Name returns the last path component
	Name() string

	// Path returns the path the node was resolved from. Symlinks are not
	// expanded in it.
	Path() string

	// Kind reports whether the node is a file or a directory
	Kind() NodeKind
}
