package search

import (
	"math"
	"sort"
	"strconv"

	"github.com/hyperjump/atsume/internal/models"
)

// priceBand is a half-open price interval [Min, Max).
type priceBand struct {
	Label string
	Min   float64
	Max   float64
}

// PriceBands are the fixed, non-overlapping price facet buckets.
var PriceBands = []priceBand{
	{"<$50", 0, 50},
	{"$50-$200", 50, 200},
	{"$200-$500", 200, 500},
	{"$500-$1000", 500, 1000},
	{">$1000", 1000, math.Inf(1)},
}

// priceBandIndex returns the band holding price. Negative prices go to the first band.
func priceBandIndex(price float64) int {
	for i := len(PriceBands) - 1; i > 0; i-- {
		if price >= PriceBands[i].Min {
			return i
		}
	}
	return 0
}

// GenerateFacets counts categories, price bands, rating floors, and locations over
// results in a single pass. Each facet is sorted by count descending, then by its
// natural key.
func GenerateFacets(results []models.SearchResult) models.Facets {
	categories := make(map[string]int)
	locations := make(map[string]int)
	ratings := make(map[int]int)
	bands := make([]int, len(PriceBands))

	for i := range results {
		r := &results[i]
		if r.Category != "" {
			categories[r.Category]++
		}
		if price, ok := r.Price(); ok {
			bands[priceBandIndex(price)]++
		}
		if rating, ok := r.Rating(); ok {
			ratings[int(math.Floor(rating))]++
		}
		if loc, ok := r.Location(); ok {
			locations[loc]++
		}
	}

	return models.Facets{
		Categories:  stringFacet(categories),
		PriceRanges: priceFacet(bands),
		Ratings:     ratingFacet(ratings),
		Locations:   stringFacet(locations),
	}
}

func stringFacet(counts map[string]int) []models.FacetCount {
	out := make([]models.FacetCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, models.FacetCount{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func priceFacet(bands []int) []models.FacetCount {
	out := make([]models.FacetCount, 0, len(bands))
	for i, n := range bands {
		if n > 0 {
			out = append(out, models.FacetCount{Key: PriceBands[i].Label, Count: n})
		}
	}
	// out is already in band order, so a stable sort keeps it for equal counts.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func ratingFacet(counts map[int]int) []models.FacetCount {
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] > keys[j]
	})
	out := make([]models.FacetCount, len(keys))
	for i, k := range keys {
		out[i] = models.FacetCount{Key: strconv.Itoa(k), Count: counts[k]}
	}
	return out
}
