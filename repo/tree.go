package repo

// configTree holds a PathConfig at every explicitly configured path
type configTree struct {
	children map[string]*configTree
	val      *PathConfig
}

func newConfigTree() *configTree {
	return &configTree{children: make(map[string]*configTree)}
}

// at returns the node for parts, creating missing nodes along the way
func (t *configTree) at(parts []string) *configTree {
	cur := t
	for _, p := range parts {
		next, ok := cur.children[p]
		if !ok {
			next = newConfigTree()
			cur.children[p] = next
		}
		cur = next
	}
	return cur
}

// nearest returns the deepest configured node along parts and how many
// components of parts lead to it. The root is assumed to be configured.
func (t *configTree) nearest(parts []string) (int, *configTree) {
	depth, found := 0, t
	cur := t
	for i, p := range parts {
		next, ok := cur.children[p]
		if !ok {
			break
		}
		cur = next
		if cur.val != nil {
			depth, found = i+1, cur
		}
	}
	return depth, found
}
