// Package catalog derives page state from backend payloads: filtered and
// sorted product listings, cart totals, the category tree, order progress
// and the admin dashboard summary. Nothing here performs I/O.
package catalog

import (
	"regexp"
	"sort"
	"strings"

	"github.com/merchke/storefront/types"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases name, collapses every run of characters outside [a-z0-9]
// into one hyphen and trims leading and trailing hyphens.
func Slug(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// Filter narrows a product listing. Zero values disable a criterion; a Max
// of zero means no upper bound.
type Filter struct {
	Query      string
	CategoryID int
	Min        float64
	Max        float64
}

// FilterProducts returns the active products matching f, keeping order.
// The price band is inclusive on both ends.
func FilterProducts(products []types.Product, f Filter) []types.Product {
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]types.Product, 0, len(products))
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		if f.CategoryID != 0 && p.CategoryID != f.CategoryID {
			continue
		}
		if p.BasePrice < f.Min {
			continue
		}
		if f.Max > 0 && p.BasePrice > f.Max {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SortKey names a product ordering.
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortName      SortKey = "name"
)

// ParseSortKey maps a query value to a SortKey, defaulting to featured.
func ParseSortKey(s string) SortKey {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(s))); key {
	case SortPriceAsc, SortPriceDesc, SortName:
		return key
	default:
		return SortFeatured
	}
}

// SortProducts orders products in place by key. Ties keep their original
// order.
func SortProducts(products []types.Product, key SortKey) {
	var less func(a, b types.Product) bool
	switch key {
	case SortPriceAsc:
		less = func(a, b types.Product) bool { return a.BasePrice < b.BasePrice }
	case SortPriceDesc:
		less = func(a, b types.Product) bool { return a.BasePrice > b.BasePrice }
	case SortName:
		less = func(a, b types.Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	default:
		less = func(a, b types.Product) bool { return a.IsFeatured && !b.IsFeatured }
	}
	sort.SliceStable(products, func(i, j int) bool {
		return less(products[i], products[j])
	})
}

// Featured returns up to limit featured products, falling back to the first
// limit products when none are featured.
func Featured(products []types.Product, limit int) []types.Product {
	var featured []types.Product
	for _, p := range products {
		if p.IsFeatured {
			featured = append(featured, p)
		}
	}
	if len(featured) == 0 {
		featured = products
	}
	if len(featured) > limit {
		featured = featured[:limit]
	}
	return featured
}
