// Package category maintains the canonical tree of hierarchical categories.
package category

import (
	"errors"
	"strings"
)

var (
	// ErrBlankSegment is returned when a category path contains an empty segment.
	ErrBlankSegment = errors.New("category: blank path segment")
	// ErrInvalidSegment is returned for a segment containing a separator.
	ErrInvalidSegment = errors.New("category: separator in path segment")
)

// Separator joins path segments in the display form ("Income:Sales").
const Separator = ":"

// keySep joins segments in the canonical key. Segments containing it are
// rejected, so keys are unambiguous.
const keySep = "\x1f"

// Category is a node in the category tree, identified by its full path.
// Categories are only created by a Registry, which keeps at most one
// *Category per distinct path; pointer equality is path equality.
type Category struct {
	path   []string
	parent *Category
	key    string
}

// Path returns a copy of the category's segments. The root has an empty path.
func (c *Category) Path() []string {
	out := make([]string, len(c.path))
	copy(out, c.path)
	return out
}

// Parent returns the parent category, or nil for the root.
func (c *Category) Parent() *Category { return c.parent }

// Name returns the last path segment ("" for the root).
func (c *Category) Name() string {
	if len(c.path) == 0 {
		return ""
	}
	return c.path[len(c.path)-1]
}

// Depth returns the number of path segments.
func (c *Category) Depth() int { return len(c.path) }

// IsRoot reports whether c is the root category.
func (c *Category) IsRoot() bool { return len(c.path) == 0 }

// Key returns the canonical key of the path.
func (c *Category) Key() string { return c.key }

// String returns the display form, e.g. "Income:Sales".
func (c *Category) String() string { return strings.Join(c.path, Separator) }

// Contains reports whether other is c or one of its descendants.
func (c *Category) Contains(other *Category) bool {
	if other == nil || len(other.path) < len(c.path) {
		return false
	}
	for i, seg := range c.path {
		if other.path[i] != seg {
			return false
		}
	}
	return true
}

// Ancestors returns c followed by each parent up to and including the root.
func (c *Category) Ancestors() []*Category {
	out := make([]*Category, 0, len(c.path)+1)
	for n := c; n != nil; n = n.parent {
		out = append(out, n)
	}
	return out
}

// Compare orders categories lexicographically segment by segment; a path
// that is a prefix of another sorts first.
func Compare(a, b *Category) int {
	n := min(len(a.path), len(b.path))
	for i := 0; i < n; i++ {
		if c := strings.Compare(a.path[i], b.path[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a.path) < len(b.path):
		return -1
	case len(a.path) > len(b.path):
		return 1
	}
	return 0
}

func pathKey(path []string) string {
	return strings.Join(path, keySep)
}
