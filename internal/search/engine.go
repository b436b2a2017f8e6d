// Package search aggregates results from many entity sources into one ranked,
// filtered, paginated, and faceted response.
package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/atsume/internal/config"
	"github.com/hyperjump/atsume/internal/fixtures"
	"github.com/hyperjump/atsume/internal/models"
	"github.com/hyperjump/atsume/internal/ranking"
	"github.com/hyperjump/atsume/internal/source"
)

// Aggregator runs searches across live sources with a fixture fallback.
type Aggregator struct {
	sources  []source.Source
	fixtures fixtures.Provider
	scorer   *ranking.Scorer
	config   *config.SearchConfig
	logger   *zap.Logger
}

// NewAggregator creates an aggregator. Sources are queried in the given order and
// their results concatenated in that order before sorting.
func NewAggregator(
	sources []source.Source,
	fx fixtures.Provider,
	scorer *ranking.Scorer,
	cfg *config.SearchConfig,
	logger *zap.Logger,
) *Aggregator {
	if scorer == nil {
		scorer = ranking.NewScorer(&cfg.Relevance)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		sources:  sources,
		fixtures: fx,
		scorer:   scorer,
		config:   cfg,
		logger:   logger,
	}
}

// Search returns one page of results for params. Source failures are logged and
// skipped; when live sources yield nothing for the requested type the fixture set
// is searched instead. The only error returned is the context's.
func (a *Aggregator) Search(ctx context.Context, params *models.SearchParams) (*models.SearchResponse, error) {
	startTime := time.Now()
	params = params.Normalize(a.config.DefaultLimit, a.config.MaxLimit)
	entityType := params.EntityType()

	outcomes := a.fetchAll(ctx, a.sourcesFor(entityType), params.Query)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	candidates := filterByType(a.mergeOutcomes(outcomes, params.Query), entityType)
	origin := models.SourceLive

	if len(candidates) == 0 {
		candidates = a.searchFixtures(params.Query, entityType)
		origin = models.SourceFixtures
		a.logger.Debug("live sources empty, using fixtures",
			zap.String("query", params.Query),
			zap.Int("fixture_matches", len(candidates)))
	}

	filtered := FilterAndSort(candidates, params.Filters, params.Query, a.scorer)
	page := paginate(filtered, params.Page, params.Limit)

	response := &models.SearchResponse{
		Results:         page,
		TotalCount:      len(filtered),
		CurrentPage:     params.Page,
		TotalPages:      totalPages(len(filtered), params.Limit),
		Suggestions:     Suggestions(params.Query),
		RelatedSearches: RelatedSearches(params.Query),
		Facets:          GenerateFacets(filtered),
		Source:          origin,
		QueryTime:       time.Since(startTime).Milliseconds(),
	}
	a.logger.Debug("search done",
		zap.String("query", params.Query),
		zap.String("type", string(entityType)),
		zap.String("origin", string(origin)),
		zap.Int("total", response.TotalCount),
		zap.Int("page", response.CurrentPage))
	return response, nil
}

// Suggestions returns query completions for a partial query.
func (a *Aggregator) Suggestions(query string) []string {
	return Suggestions(query)
}

// PopularSearches returns frequently searched phrases.
func (a *Aggregator) PopularSearches() []string {
	return PopularSearches()
}

// TrendingTopics returns currently trending topics.
func (a *Aggregator) TrendingTopics() []string {
	return TrendingTopics()
}

// SourceNames lists the configured sources in query order.
func (a *Aggregator) SourceNames() []string {
	names := make([]string, len(a.sources))
	for i, s := range a.sources {
		names[i] = s.Name()
	}
	return names
}

// FixtureCount returns the size of the current fixture set.
func (a *Aggregator) FixtureCount() int {
	if a.fixtures == nil {
		return 0
	}
	return a.fixtures.Current().Len()
}

func (a *Aggregator) sourcesFor(t models.EntityType) []source.Source {
	if t == "" {
		return a.sources
	}
	var out []source.Source
	for _, s := range a.sources {
		if source.Serves(s, t) {
			out = append(out, s)
		}
	}
	return out
}

func (a *Aggregator) searchFixtures(query string, t models.EntityType) []models.SearchResult {
	if a.fixtures == nil {
		return nil
	}
	all := a.fixtures.Current().Results()
	matched := make([]models.SearchResult, 0, len(all))
	for i := range all {
		if matchesQuery(&all[i], query) {
			matched = append(matched, all[i])
		}
	}
	return filterByType(matched, t)
}

// paginate returns the 1-based page of results. Pages past the last one are
// empty; the bound is checked before multiplying so huge pages cannot overflow.
func paginate(results []models.SearchResult, page, limit int) []models.SearchResult {
	if page < 1 || limit <= 0 || page-1 >= totalPages(len(results), limit) {
		return []models.SearchResult{}
	}
	start := (page - 1) * limit
	end := start + limit
	if end > len(results) {
		end = len(results)
	}
	return results[start:end]
}

func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}
