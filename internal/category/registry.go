package category

import (
	"fmt"
	"slices"
	"strings"
)

// Registry interns categories so that each distinct path has exactly one
// live *Category. It never evicts. A Registry is not safe for concurrent use.
type Registry struct {
	root  *Category
	nodes map[string]*Category
}

// NewRegistry creates a registry holding only the root category.
func NewRegistry() *Registry {
	root := &Category{path: []string{}, key: pathKey(nil)}
	return &Registry{
		root:  root,
		nodes: map[string]*Category{root.key: root},
	}
}

// Root returns the category with the empty path.
func (r *Registry) Root() *Category { return r.root }

// Child returns the canonical category for parent's path plus segment.
// A nil parent means segment is a root-level category.
func (r *Registry) Child(parent *Category, segment string) (*Category, error) {
	if parent == nil {
		parent = r.root
	}
	return r.Get(append(parent.Path(), segment)...)
}

// Get returns the canonical category for path, creating missing nodes.
// An empty path yields the root. Nothing is created if any segment is blank
// or contains Separator.
func (r *Registry) Get(path ...string) (*Category, error) {
	norm := make([]string, len(path))
	for i, seg := range path {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			return nil, fmt.Errorf("%w at position %d of %q", ErrBlankSegment, i, strings.Join(path, Separator))
		}
		if strings.Contains(seg, Separator) || strings.Contains(seg, keySep) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSegment, seg)
		}
		norm[i] = seg
	}

	node := r.root
	for i := range norm {
		node = r.intern(node, norm[:i+1])
	}
	return node, nil
}

// Lookup returns the interned category for path without creating it.
func (r *Registry) Lookup(path ...string) (*Category, bool) {
	for _, seg := range path {
		if strings.Contains(seg, keySep) {
			return nil, false
		}
	}
	c, ok := r.nodes[pathKey(path)]
	return c, ok
}

// Parse resolves the display form "Income:Sales". The empty string is the root.
func (r *Registry) Parse(s string) (*Category, error) {
	if strings.TrimSpace(s) == "" {
		return r.root, nil
	}
	return r.Get(strings.Split(s, Separator)...)
}

// MustGet is Get for fixed, known-valid paths; it panics on a blank segment.
func (r *Registry) MustGet(path ...string) *Category {
	c, err := r.Get(path...)
	if err != nil {
		panic(err)
	}
	return c
}

func (r *Registry) intern(parent *Category, path []string) *Category {
	key := pathKey(path)
	if c, ok := r.nodes[key]; ok {
		return c
	}
	c := &Category{
		path:   slices.Clone(path),
		parent: parent,
		key:    key,
	}
	r.nodes[key] = c
	return c
}

// Existing returns every interned category, root included, in Compare order.
func (r *Registry) Existing() []*Category {
	out := make([]*Category, 0, len(r.nodes))
	for _, c := range r.nodes {
		out = append(out, c)
	}
	slices.SortFunc(out, Compare)
	return out
}

// Len returns the number of interned categories, root included.
func (r *Registry) Len() int { return len(r.nodes) }

// GreatestCommonParent returns the deepest category that is an ancestor (or
// self) of both a and b. Categories that share no segment yield the root.
func (r *Registry) GreatestCommonParent(a, b *Category) *Category {
	if a == nil || b == nil {
		return r.root
	}
	if a == b {
		return a
	}

	n := 0
	for n < len(a.path) && n < len(b.path) && a.path[n] == b.path[n] {
		n++
	}

	node := a
	for node != nil && len(node.path) > n {
		node = node.parent
	}
	if node == nil {
		return r.root
	}
	// a may come from another registry; hand back our own instance.
	if own, ok := r.nodes[node.key]; ok {
		return own
	}
	return r.MustGet(node.path...)
}
