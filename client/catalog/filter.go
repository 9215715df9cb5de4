// Package catalog provides pure client-side projections over the fetched
// product list. The server returns the full catalog; every filter and sort
// here operates on a copy and never mutates the input.
package catalog

import (
	"sort"
	"strings"

	"github.com/angelmondragon/storefront/client"
)

// FilterCategory keeps products whose category matches exactly
// (case-insensitive).
func FilterCategory(items []client.Product, category string) []client.Product {
	category = strings.TrimSpace(category)
	if category == "" {
		return clone(items)
	}
	out := make([]client.Product, 0, len(items))
	for _, p := range items {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// FilterPriceRange keeps products with minCents <= price <= maxCents. A
// negative bound disables that side of the range.
func FilterPriceRange(items []client.Product, minCents, maxCents int) []client.Product {
	out := make([]client.Product, 0, len(items))
	for _, p := range items {
		if minCents >= 0 && p.PriceCents < minCents {
			continue
		}
		if maxCents >= 0 && p.PriceCents > maxCents {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SortPriceAsc orders cheapest first. Ties break on title so the projection
// is deterministic.
func SortPriceAsc(items []client.Product) []client.Product {
	out := clone(items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PriceCents != out[j].PriceCents {
			return out[i].PriceCents < out[j].PriceCents
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// SortPriceDesc orders most expensive first.
func SortPriceDesc(items []client.Product) []client.Product {
	out := clone(items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PriceCents != out[j].PriceCents {
			return out[i].PriceCents > out[j].PriceCents
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// SortNewest orders by creation time, newest first.
func SortNewest(items []client.Product) []client.Product {
	out := clone(items)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// SortRating orders by average rating, highest first. Ties break on the
// rating count, then title.
func SortRating(items []client.Product) []client.Product {
	out := clone(items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rating.Rate != out[j].Rating.Rate {
			return out[i].Rating.Rate > out[j].Rating.Rate
		}
		if out[i].Rating.Count != out[j].Rating.Count {
			return out[i].Rating.Count > out[j].Rating.Count
		}
		return out[i].Title < out[j].Title
	})
	return out
}

func clone(items []client.Product) []client.Product {
	out := make([]client.Product, len(items))
	copy(out, items)
	return out
}
