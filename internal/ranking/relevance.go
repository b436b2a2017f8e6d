// Package ranking scores search results against a query.
package ranking

import (
	"math"
	"strings"

	"github.com/hyperjump/atsume/internal/models"
)

// ScoreBreakdown lists each additive component of a relevance score.
type ScoreBreakdown struct {
	Title       float64
	Description float64
	Tags        float64
	Category    float64
	Popularity  float64
	Rating      float64
}

// Total returns the sum of all components.
func (b ScoreBreakdown) Total() float64 {
	return b.Title + b.Description + b.Tags + b.Category + b.Popularity + b.Rating
}

// Scorer computes the additive relevance heuristic. All text tests are
// case-insensitive substring checks; there is no tokenization or stemming.
type Scorer struct {
	w weights
}

// NewScorer creates a scorer. A nil config uses DefaultRelevanceConfig; unset
// weights take their defaults. config is not modified.
func NewScorer(config *RelevanceConfig) *Scorer {
	if config == nil {
		config = DefaultRelevanceConfig()
	}
	return &Scorer{w: config.resolve()}
}

// Score returns the relevance of r for query.
func (s *Scorer) Score(r *models.SearchResult, query string) float64 {
	return s.Breakdown(r, query).Total()
}

// Breakdown returns the per-component relevance of r for query.
func (s *Scorer) Breakdown(r *models.SearchResult, query string) ScoreBreakdown {
	q := strings.ToLower(query)
	title := strings.ToLower(r.Title)
	var b ScoreBreakdown

	switch {
	case title == q:
		b.Title = s.w.exactTitle
	case strings.HasPrefix(title, q):
		b.Title = s.w.titlePrefix
	case strings.Contains(title, q):
		b.Title = s.w.titleContains
	}

	if strings.Contains(strings.ToLower(r.Description), q) {
		b.Description = s.w.description
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			b.Tags += s.w.tag
		}
	}
	if r.Category != "" && strings.Contains(strings.ToLower(r.Category), q) {
		b.Category = s.w.category
	}

	if views := r.Views(); views > 0 {
		b.Popularity = math.Log(float64(views)) * s.w.popularity
	}
	if rating, ok := r.Rating(); ok {
		b.Rating = rating * s.w.rating
	}
	return b
}
