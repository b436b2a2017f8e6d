package search

import (
	"testing"
	"time"

	"github.com/hyperjump/atsume/internal/models"
	"github.com/hyperjump/atsume/internal/ranking"
)

func rated(v float64) *float64 { return &v }

func filterFixture() []models.SearchResult {
	return []models.SearchResult{
		{ID: "a", Type: models.TypeProduct, Title: "Banana stand", Category: "Food", Attrs: models.ProductAttrs{Price: models.Float(50), Rating: rated(4.2), Location: "Newport Beach, CA"}},
		{ID: "b", Type: models.TypeProduct, Title: "apple crate", Category: "food", Attrs: models.ProductAttrs{Price: models.Float(100), Rating: rated(3.9), Location: "Seattle, WA"}},
		{ID: "c", Type: models.TypeService, Title: "Cherry picking", Category: "Gardening", Attrs: models.ServiceAttrs{Price: models.Float(150)}},
		{ID: "d", Type: models.TypePost, Title: "Date night ideas", Category: "Food", Stats: &models.Stats{Views: 900}, Attrs: models.PostAttrs{PostedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}},
		{ID: "e", Type: models.TypeUser, Title: "Elder Berry", Attrs: models.UserAttrs{Location: "Seattle, WA", Rating: rated(5)}},
	}
}

func ids(results []models.SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilterAndSort_Filters(t *testing.T) {
	tests := []struct {
		name    string
		filters models.SearchFilters
		want    []string
	}{
		{"category is case-insensitive", models.SearchFilters{Category: "FOOD", SortBy: models.SortAlphabetical, SortOrder: models.SortAsc}, []string{"b", "a", "d"}},
		{"price bounds inclusive", models.SearchFilters{PriceMin: models.Some(50), PriceMax: models.Some(100), SortBy: models.SortPrice, SortOrder: models.SortAsc}, []string{"a", "b"}},
		{"price min only excludes unpriced", models.SearchFilters{PriceMin: models.Some(0), SortBy: models.SortPrice, SortOrder: models.SortAsc}, []string{"a", "b", "c"}},
		{"rating threshold excludes unrated", models.SearchFilters{Rating: models.Some(4), SortBy: models.SortRating}, []string{"e", "a"}},
		{"location substring", models.SearchFilters{Location: "seattle", SortBy: models.SortAlphabetical, SortOrder: models.SortAsc}, []string{"b", "e"}},
		{"combined", models.SearchFilters{Category: "food", Location: "wa"}, []string{"b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.filters
			got := ids(FilterAndSort(filterFixture(), &f, "", ranking.NewScorer(nil)))
			if !equalIDs(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterAndSort_SortModes(t *testing.T) {
	tests := []struct {
		by    models.SortBy
		order models.SortOrder
		want  []string
	}{
		{models.SortPrice, "", []string{"c", "b", "a", "d", "e"}},
		{models.SortPrice, models.SortAsc, []string{"d", "e", "a", "b", "c"}},
		{models.SortPopularity, models.SortDesc, []string{"d", "a", "b", "c", "e"}},
		{models.SortDate, "", []string{"d", "a", "b", "c", "e"}},
		{models.SortAlphabetical, "", []string{"e", "d", "c", "a", "b"}},
		{models.SortAlphabetical, "ASC", []string{"e", "d", "c", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.by)+"/"+string(tt.order), func(t *testing.T) {
			got := ids(FilterAndSort(filterFixture(), &models.SearchFilters{SortBy: tt.by, SortOrder: tt.order}, "", nil))
			if !equalIDs(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterAndSort_RelevanceDefault(t *testing.T) {
	results := []models.SearchResult{
		{ID: "contains", Type: models.TypePost, Title: "Learn design fast"},
		{ID: "exact", Type: models.TypePost, Title: "Design"},
		{ID: "none", Type: models.TypePost, Title: "Cooking"},
		{ID: "prefix", Type: models.TypePost, Title: "Design systems"},
	}
	got := ids(FilterAndSort(results, nil, "design", ranking.NewScorer(nil)))
	want := []string{"exact", "prefix", "contains", "none"}
	if !equalIDs(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFilterAndSort_DoesNotModifyInput(t *testing.T) {
	in := filterFixture()
	_ = FilterAndSort(in, &models.SearchFilters{SortBy: models.SortPrice, Category: "food"}, "", nil)
	if !equalIDs(ids(in), []string{"a", "b", "c", "d", "e"}) {
		t.Errorf("input reordered: %v", ids(in))
	}
}

func TestMatchesQuery(t *testing.T) {
	r := &models.SearchResult{Title: "Logo", Description: "Brand work", Category: "Design", Tags: []string{"Illustrator"}}
	for _, q := range []string{"", "logo", "BRAND", "desi", "illus"} {
		if !matchesQuery(r, q) {
			t.Errorf("matchesQuery(%q) = false", q)
		}
	}
	if matchesQuery(r, "video") {
		t.Error(`matchesQuery("video") = true`)
	}
}
