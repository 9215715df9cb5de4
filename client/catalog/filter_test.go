package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront/client"
	"github.com/angelmondragon/storefront/pkg/types"
)

func fixtureProducts() []client.Product {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return []client.Product{
		{Title: "WD 2TB Elements", PriceCents: 6400, Category: "electronics", Rating: types.Rating{Rate: 3.3, Count: 203}, CreatedAt: base},
		{Title: "Naga Bracelet", PriceCents: 69500, Category: "jewelery", Rating: types.Rating{Rate: 4.6, Count: 400}, CreatedAt: base.Add(24 * time.Hour)},
		{Title: "Cotton Jacket", PriceCents: 5599, Category: "men's clothing", Rating: types.Rating{Rate: 4.7, Count: 500}, CreatedAt: base.Add(48 * time.Hour)},
		{Title: "Micropave Ring", PriceCents: 16800, Category: "jewelery", Rating: types.Rating{Rate: 3.9, Count: 70}, CreatedAt: base.Add(12 * time.Hour)},
	}
}

func TestFilterCategory(t *testing.T) {
	items := fixtureProducts()

	jewelery := FilterCategory(items, "Jewelery")
	require.Len(t, jewelery, 2)
	for _, p := range jewelery {
		require.Equal(t, "jewelery", p.Category)
	}

	// Blank category is a pass-through.
	require.Len(t, FilterCategory(items, ""), len(items))
}

func TestFilterPriceRange(t *testing.T) {
	items := fixtureProducts()

	mid := FilterPriceRange(items, 6000, 20000)
	require.Len(t, mid, 2)
	for _, p := range mid {
		require.GreaterOrEqual(t, p.PriceCents, 6000)
		require.LessOrEqual(t, p.PriceCents, 20000)
	}

	// Negative bounds disable that side.
	require.Len(t, FilterPriceRange(items, -1, -1), len(items))
	require.Len(t, FilterPriceRange(items, 10000, -1), 2)
}

func TestSortPrice(t *testing.T) {
	items := fixtureProducts()

	asc := SortPriceAsc(items)
	for i := 1; i < len(asc); i++ {
		require.LessOrEqual(t, asc[i-1].PriceCents, asc[i].PriceCents)
	}

	desc := SortPriceDesc(items)
	require.Equal(t, 69500, desc[0].PriceCents)

	// The input order is untouched.
	require.Equal(t, "WD 2TB Elements", items[0].Title)
}

func TestSortNewest(t *testing.T) {
	newest := SortNewest(fixtureProducts())
	require.Equal(t, "Cotton Jacket", newest[0].Title)
	for i := 1; i < len(newest); i++ {
		require.False(t, newest[i].CreatedAt.After(newest[i-1].CreatedAt))
	}
}

func TestSortRating(t *testing.T) {
	rated := SortRating(fixtureProducts())
	require.Equal(t, "Cotton Jacket", rated[0].Title)
	require.Equal(t, "Naga Bracelet", rated[1].Title)
}

func TestProjectionsAreDeterministic(t *testing.T) {
	items := fixtureProducts()
	// Equal prices must tie-break stably.
	items = append(items, client.Product{Title: "AAA Same Price", PriceCents: 6400, Category: "electronics"})

	first := SortPriceAsc(items)
	second := SortPriceAsc(items)
	require.Equal(t, first, second)
	require.Equal(t, "AAA Same Price", first[1].Title)
}
