// Package keyword provides full-text indexing and search for local catalog entries.
package keyword

import (
	"context"

	"github.com/hyperjump/atsume/internal/models"
)

// SearchOptions optional parameters for keyword search. Nil means use defaults.
type SearchOptions struct {
	// TitleBoost multiplies the score contribution of title matches (e.g. 3.0).
	// Values <= 1 search all fields uniformly.
	TitleBoost float64
	// FuzzyEnabled matches terms within Fuzziness edits for typo tolerance.
	FuzzyEnabled bool
	// Fuzziness is the maximum Levenshtein edit distance (1 or 2). Default 1.
	Fuzziness int
	// Type restricts hits to one entity type. Empty means all types.
	Type models.EntityType
}

// KeywordIndex defines keyword search operations over search results.
type KeywordIndex interface {
	Index(ctx context.Context, id string, doc *models.SearchResult) error
	// Search returns up to limit hits ordered by score. An empty query matches
	// every document.
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error)
	// DocCount returns the total number of documents in the index.
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single keyword search hit.
type KeywordResult struct {
	ID    string
	Score float64
}
