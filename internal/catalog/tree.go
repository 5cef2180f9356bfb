package catalog

import (
	"chizhikfront/internal/api/chizhik/responses"
)

type Category = responses.Category

// DisplayDepth is the backend-assigned depth of top-level browsable tiles.
const DisplayDepth = 2

// Flatten returns a pre-order traversal of the tree: every node before its
// children, children in original order. Duplicate ids in separate branches
// are kept; a node whose id is already on the ancestor path is not descended
// into, so malformed self-nested input stays finite.
func Flatten(tree []Category) []Category {
	out := make([]Category, 0, 256)
	path := make(map[int64]struct{})

	var walk func(nodes []Category)
	walk = func(nodes []Category) {
		for _, n := range nodes {
			if _, ok := path[n.ID]; ok {
				continue
			}
			out = append(out, n)
			if len(n.Children) > 0 {
				path[n.ID] = struct{}{}
				walk(n.Children)
				delete(path, n.ID)
			}
		}
	}
	walk(tree)
	return out
}

// DisplayOptions exists because storefront variants disagree on whether
// adults/inout nodes belong on the main tile grid; both exclusions are on
// in the most complete variant.
type DisplayOptions struct {
	Depth      int // 0 => DisplayDepth
	KeepAdults bool
	KeepInout  bool
}

// DisplayCategories picks the nodes shown as top-level tiles: the display
// depth, minus adults/inout nodes, deduplicated by id in first-occurrence
// order.
func DisplayCategories(tree []Category, opts DisplayOptions) []Category {
	depth := opts.Depth
	if depth == 0 {
		depth = DisplayDepth
	}

	out := make([]Category, 0, 32)
	seen := make(map[int64]struct{})

	for _, c := range Flatten(tree) {
		if c.Depth != depth {
			continue
		}
		if c.IsAdults && !opts.KeepAdults {
			continue
		}
		if c.IsInout && !opts.KeepInout {
			continue
		}
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

// FindByID locates a node anywhere in the tree.
func FindByID(tree []Category, id int64) (Category, bool) {
	for _, c := range Flatten(tree) {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
