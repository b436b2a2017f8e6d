package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/hyperjump/atsume/internal/models"
	"github.com/hyperjump/atsume/internal/storage"
)

const summaryCacheSize = 32

// Metrics computes analytics summaries, caching each window's result for a TTL.
type Metrics struct {
	store      storage.Storage
	cache      *expirable.LRU[time.Duration, *models.AnalyticsSummary]
	topQueries int
	now        func() time.Time
}

// NewMetrics creates a Metrics over store. ttl <= 0 disables caching.
func NewMetrics(store storage.Storage, ttl time.Duration, topQueries int) *Metrics {
	m := &Metrics{store: store, topQueries: topQueries, now: time.Now}
	if m.topQueries <= 0 {
		m.topQueries = 10
	}
	if ttl > 0 {
		m.cache = expirable.NewLRU[time.Duration, *models.AnalyticsSummary](summaryCacheSize, nil, ttl)
	}
	return m
}

// Summary returns totals, click-through rate, and top queries for the last window.
// A window <= 0 covers all recorded events.
func (m *Metrics) Summary(ctx context.Context, window time.Duration) (*models.AnalyticsSummary, error) {
	if window < 0 {
		window = 0
	}
	if m.cache != nil {
		if s, ok := m.cache.Get(window); ok {
			return s, nil
		}
	}

	now := m.now()
	var since time.Time
	if window > 0 {
		since = now.Add(-window)
	}

	searches, err := m.store.CountSearches(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("count searches: %w", err)
	}
	zero, err := m.store.CountZeroResultSearches(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("count zero-result searches: %w", err)
	}
	clicks, err := m.store.CountClicks(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("count clicks: %w", err)
	}
	top, err := m.store.TopQueries(ctx, since, m.topQueries)
	if err != nil {
		return nil, fmt.Errorf("top queries: %w", err)
	}

	s := &models.AnalyticsSummary{
		Since:              since,
		TotalSearches:      searches,
		ZeroResultSearches: zero,
		TotalClicks:        clicks,
		TopQueries:         top,
		GeneratedAt:        now,
	}
	if searches > 0 {
		s.ClickThroughRate = float64(clicks) / float64(searches)
	}
	if m.cache != nil {
		m.cache.Add(window, s)
	}
	return s, nil
}

// Invalidate drops all cached summaries.
func (m *Metrics) Invalidate() {
	if m.cache != nil {
		m.cache.Purge()
	}
}
