package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/hyperjump/atsume/internal/fixtures"
	"github.com/hyperjump/atsume/internal/models"
	"github.com/hyperjump/atsume/internal/ranking"
)

func benchResults(n int) []models.SearchResult {
	cats := []string{"Electronics", "Photography", "Home", "Design"}
	out := make([]models.SearchResult, n)
	for i := range out {
		out[i] = models.SearchResult{
			ID:          fmt.Sprintf("b%d", i),
			Type:        models.TypeProduct,
			Title:       fmt.Sprintf("Wireless item %d", i),
			Description: "benchmark product with a longer description for matching",
			Category:    cats[i%len(cats)],
			Tags:        []string{"wireless", "bench"},
			Attrs:       models.ProductAttrs{Price: models.Float(float64(i % 1200)), Rating: models.Float(float64(i%50) / 10)},
		}
	}
	return out
}

func BenchmarkAggregator_Search(b *testing.B) {
	src := &fakeSource{name: "bench", types: []models.EntityType{models.TypeProduct}, results: benchResults(1000)}
	a := newTestAggregator(nil, src, &fakeSource{name: "empty", types: []models.EntityType{models.TypeProduct}})
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = a.Search(ctx, &models.SearchParams{
			Query:   "wireless",
			Filters: &models.SearchFilters{PriceMin: models.Some(100), SortBy: models.SortRelevance},
		})
	}
}

func BenchmarkAggregator_FixtureFallback(b *testing.B) {
	a := newTestAggregator(fixtures.Default())
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = a.Search(ctx, &models.SearchParams{Query: "design"})
	}
}

func BenchmarkFilterAndSort(b *testing.B) {
	results := benchResults(1000)
	scorer := ranking.NewScorer(nil)
	filters := &models.SearchFilters{Rating: models.Some(2), SortBy: models.SortRelevance}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = FilterAndSort(results, filters, "wireless item", scorer)
	}
}

func BenchmarkGenerateFacets(b *testing.B) {
	results := benchResults(1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GenerateFacets(results)
	}
}
