package catalog

import (
	"sort"
	"strings"
)

// Sort enumerates the supported product orderings.
type Sort string

const (
	// SortPriceAsc orders by effective price, cheapest first.
	SortPriceAsc Sort = "price_asc"
	// SortPriceDesc orders by effective price, most expensive first.
	SortPriceDesc Sort = "price_desc"
	// SortNewest orders by reversed insertion order.
	SortNewest Sort = "newest"
)

// ListFilter narrows and orders a product listing. Zero values mean "no
// filtering" for that dimension; an unknown Sort leaves insertion order.
type ListFilter struct {
	CategoryID string
	Search     string
	Sort       Sort
}

// Filter applies f to products and returns the result. The input slice is not
// modified. Matching is deterministic: category is an exact match, search is a
// case-insensitive substring match against name or description, and ties keep
// their relative insertion order (sorting is stable).
func Filter(products []Product, f ListFilter) []Product {
	out := make([]Product, 0, len(products))
	search := strings.ToLower(f.Search)
	for _, p := range products {
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].EffectivePrice().LessThan(out[j].EffectivePrice())
		})
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[j].EffectivePrice().LessThan(out[i].EffectivePrice())
		})
	case SortNewest:
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// matchesSearch expects search to be lowercase already.
func matchesSearch(p Product, search string) bool {
	return strings.Contains(strings.ToLower(p.Name), search) ||
		strings.Contains(strings.ToLower(p.Description), search)
}
