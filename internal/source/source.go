// Package source provides the per-entity data sources the aggregator fans out to.
package source

import (
	"context"

	"github.com/hyperjump/atsume/internal/models"
)

// Source searches one upstream for one or more entity types.
type Source interface {
	// Name identifies the source in logs and status output.
	Name() string
	// Types lists the entity types this source can return.
	Types() []models.EntityType
	// Search returns normalized results for query. An empty query is allowed.
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

// Serves reports whether s returns entities of type t.
func Serves(s Source, t models.EntityType) bool {
	for _, st := range s.Types() {
		if st == t {
			return true
		}
	}
	return false
}
