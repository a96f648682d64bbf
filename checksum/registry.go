// Package checksum provides the named checksum algorithms that can be
// recorded in an index, and streams file content through them.
package checksum

import (
	"fmt"
	"hash"
	"slices"
	"sync"
)

// Algorithm describes one named checksum
type Algorithm struct {
	Name string
	// New returns a fresh hasher
	New func() hash.Hash
	// Encode renders a finished sum for the index
	Encode func(sum []byte) string
}

// Registry maps algorithm names to their implementations. It is safe for
// concurrent use.
type Registry struct {
	mu    sync.RWMutex
	algos map[string]Algorithm
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{algos: make(map[string]Algorithm)}
}

// Register adds an algorithm. The first registration of a name wins.
func (r *Registry) Register(a Algorithm) error {
	if a.Name == "" || a.New == nil || a.Encode == nil {
		return fmt.Errorf("incomplete checksum algorithm %q", a.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.algos[a.Name]; !exists {
		r.algos[a.Name] = a
	}
	return nil
}

// Get returns the algorithm registered under name
func (r *Registry) Get(name string) (Algorithm, error) {
	r.mu.RLock()
	a, ok := r.algos[name]
	r.mu.RUnlock()
	if !ok {
		return Algorithm{}, fmt.Errorf("unknown checksum algorithm: %s", name)
	}
	return a, nil
}

// Lookup resolves several names at once, failing on the first unknown one
func (r *Registry) Lookup(names ...string) ([]Algorithm, error) {
	out := make([]Algorithm, 0, len(names))
	for _, n := range names {
		a, err := r.Get(n)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Names returns the registered names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.algos))
	for n := range r.algos {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

var defaultRegistry = NewBuiltinRegistry()

// Default returns the process-wide registry holding all built-ins
func Default() *Registry {
	return defaultRegistry
}
