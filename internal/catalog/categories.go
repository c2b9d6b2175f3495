package catalog

import (
	"sort"

	"github.com/merchke/storefront/types"
)

// CategoryNode is a category with its subcategories.
type CategoryNode struct {
	types.Category
	Children []CategoryNode `json:"children,omitempty"`
}

// CategoryTree nests categories under their parents. A category is top
// level when it has no parent or its parent is not in the list. Every
// category appears exactly once; members of a parent cycle become top
// level. Input order is kept among siblings.
func CategoryTree(categories []types.Category) []CategoryNode {
	known := make(map[int]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}

	children := make(map[int][]types.Category)
	var roots []types.Category
	for _, c := range categories {
		if c.ParentID == nil || !known[*c.ParentID] || *c.ParentID == c.ID {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	placed := make(map[int]bool, len(categories))
	var build func(c types.Category) CategoryNode
	build = func(c types.Category) CategoryNode {
		placed[c.ID] = true
		node := CategoryNode{Category: c}
		for _, child := range children[c.ID] {
			if placed[child.ID] {
				continue
			}
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	tree := make([]CategoryNode, 0, len(roots))
	for _, c := range roots {
		if !placed[c.ID] {
			tree = append(tree, build(c))
		}
	}
	for _, c := range categories {
		if !placed[c.ID] {
			tree = append(tree, build(c))
		}
	}
	return tree
}

// ActiveCategories returns the active categories ordered by sort_order.
func ActiveCategories(categories []types.Category) []types.Category {
	out := make([]types.Category, 0, len(categories))
	for _, c := range categories {
		if c.IsActive {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

// ProductCountByCategory counts products per category id.
func ProductCountByCategory(products []types.Product) map[int]int {
	counts := make(map[int]int)
	for _, p := range products {
		counts[p.CategoryID]++
	}
	return counts
}
