// Package storage defines the persistence interface for analytics events.
package storage

import (
	"context"
	"time"

	"github.com/hyperjump/atsume/internal/models"
)

// Storage defines search and click event persistence.
type Storage interface {
	// Event writes
	RecordSearch(ctx context.Context, ev *models.SearchEvent) error
	RecordClick(ctx context.Context, ev *models.ClickEvent) error
	BatchRecord(ctx context.Context, searches []*models.SearchEvent, clicks []*models.ClickEvent) error

	// Aggregates over events created at or after since
	TopQueries(ctx context.Context, since time.Time, limit int) ([]models.QueryCount, error)
	CountSearches(ctx context.Context, since time.Time) (int64, error)
	CountZeroResultSearches(ctx context.Context, since time.Time) (int64, error)
	CountClicks(ctx context.Context, since time.Time) (int64, error)

	Close() error
}
