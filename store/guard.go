package store

import (
	"slices"

	"github.com/puzpuzpuz/xsync/v4"
)

// cycleGuard records the canonical symlink targets entered during one
// session. A target is inserted at most once.
type cycleGuard struct {
	seen *xsync.Map[string, struct{}]
}

func newCycleGuard() *cycleGuard {
	return &cycleGuard{seen: xsync.NewMap[string, struct{}]()}
}

// enter registers target and reports whether it was new. false means the
// target was entered before, i.e. a loop.
func (g *cycleGuard) enter(target string) bool {
	_, loaded := g.seen.LoadOrStore(target, struct{}{})
	return !loaded
}

// snapshot returns the entered targets in sorted order
func (g *cycleGuard) snapshot() []string {
	out := make([]string, 0, g.seen.Size())
	g.seen.Range(func(k string, _ struct{}) bool {
		out = append(out, k)
		return true
	})
	slices.Sort(out)
	return out
}
