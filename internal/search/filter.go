package search

import (
	"math"
	"sort"
	"strings"

	"github.com/hyperjump/atsume/internal/models"
	"github.com/hyperjump/atsume/internal/ranking"
)

// FilterAndSort applies the structured filters and returns a new slice ordered by
// filters.SortBy. The input slice is not modified. Sorting is stable, so ties keep
// their input order.
func FilterAndSort(results []models.SearchResult, filters *models.SearchFilters, query string, scorer *ranking.Scorer) []models.SearchResult {
	if filters == nil {
		filters = &models.SearchFilters{}
	}
	if scorer == nil {
		scorer = ranking.NewScorer(nil)
	}
	out := make([]models.SearchResult, 0, len(results))
	for i := range results {
		if keep(&results[i], filters) {
			out = append(out, results[i])
		}
	}
	sortResults(out, filters, query, scorer)
	return out
}

func keep(r *models.SearchResult, f *models.SearchFilters) bool {
	if f.Category != "" && !strings.EqualFold(r.Category, f.Category) {
		return false
	}
	if f.PriceMin.Valid || f.PriceMax.Valid {
		price, ok := r.Price()
		if !ok {
			return false
		}
		lo, hi := 0.0, math.Inf(1)
		if f.PriceMin.Valid {
			lo = f.PriceMin.Value
		}
		if f.PriceMax.Valid {
			hi = f.PriceMax.Value
		}
		if price < lo || price > hi {
			return false
		}
	}
	if f.Rating.Valid {
		rating, ok := r.Rating()
		if !ok || rating < f.Rating.Value {
			return false
		}
	}
	if f.Location != "" {
		loc, ok := r.Location()
		if !ok || !strings.Contains(strings.ToLower(loc), strings.ToLower(f.Location)) {
			return false
		}
	}
	return true
}

func sortResults(results []models.SearchResult, f *models.SearchFilters, query string, scorer *ranking.Scorer) {
	dir := -1.0
	if f.SortOrder == models.SortAsc {
		dir = 1.0
	}

	if f.SortBy == models.SortAlphabetical {
		sort.SliceStable(results, func(i, j int) bool {
			c := strings.Compare(strings.ToLower(results[i].Title), strings.ToLower(results[j].Title))
			return float64(c)*dir < 0
		})
		return
	}

	keys := make([]float64, len(results))
	for i := range results {
		keys[i] = sortKey(&results[i], f.SortBy, query, scorer)
	}
	idx := make([]int, len(results))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return (keys[idx[a]]-keys[idx[b]])*dir < 0
	})
	sorted := make([]models.SearchResult, len(results))
	for i, k := range idx {
		sorted[i] = results[k]
	}
	copy(results, sorted)
}

// sortKey returns the numeric sort key; absent attributes count as 0.
func sortKey(r *models.SearchResult, by models.SortBy, query string, scorer *ranking.Scorer) float64 {
	switch by {
	case models.SortDate:
		if ts, ok := r.Timestamp(); ok {
			return float64(ts.UnixMilli())
		}
		return 0
	case models.SortRating:
		v, _ := r.Rating()
		return v
	case models.SortPrice:
		v, _ := r.Price()
		return v
	case models.SortPopularity:
		return float64(r.Views())
	default:
		return scorer.Score(r, query)
	}
}

// matchesQuery reports whether the title, description, category, or any tag
// contains query, case-insensitively. An empty query matches everything.
func matchesQuery(r *models.SearchResult, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(r.Title), q) ||
		strings.Contains(strings.ToLower(r.Description), q) ||
		strings.Contains(strings.ToLower(r.Category), q) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// filterByType keeps results of type t. An empty t keeps everything.
func filterByType(results []models.SearchResult, t models.EntityType) []models.SearchResult {
	if t == "" {
		return results
	}
	out := results[:0:0]
	for _, r := range results {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}
