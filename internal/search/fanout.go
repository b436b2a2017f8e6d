package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/atsume/internal/models"
	"github.com/hyperjump/atsume/internal/source"
)

// fetchOutcome is what one source produced: results or an error, never both.
type fetchOutcome struct {
	Source   string
	Results  []models.SearchResult
	Err      error
	Duration time.Duration
}

// fetchAll queries every source concurrently and waits for all of them. Each
// goroutine writes only its own slot, and a failing source never cancels its
// siblings: errors are recorded in the outcome instead of returned to the group.
func (a *Aggregator) fetchAll(ctx context.Context, sources []source.Source, query string) []fetchOutcome {
	outcomes := make([]fetchOutcome, len(sources))
	var g errgroup.Group
	if a.config.MaxConcurrentSources > 0 {
		g.SetLimit(a.config.MaxConcurrentSources)
	}
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			outcomes[i] = fetchOne(ctx, src, query)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func fetchOne(ctx context.Context, src source.Source, query string) (out fetchOutcome) {
	start := time.Now()
	out.Source = src.Name()
	defer func() {
		if p := recover(); p != nil {
			out.Results = nil
			out.Err = fmt.Errorf("source panicked: %v", p)
		}
		out.Duration = time.Since(start)
	}()
	results, err := src.Search(ctx, query)
	if err != nil {
		out.Err = err
		return out
	}
	out.Results = results
	return out
}

// mergeOutcomes concatenates successful outcomes in source order and logs failures.
func (a *Aggregator) mergeOutcomes(outcomes []fetchOutcome, query string) []models.SearchResult {
	total := 0
	for _, o := range outcomes {
		total += len(o.Results)
	}
	merged := make([]models.SearchResult, 0, total)
	for _, o := range outcomes {
		if o.Err != nil {
			a.logger.Warn("source search failed",
				zap.String("source", o.Source),
				zap.String("query", query),
				zap.Duration("duration", o.Duration),
				zap.Error(o.Err))
			continue
		}
		a.logger.Debug("source search done",
			zap.String("source", o.Source),
			zap.Int("results", len(o.Results)),
			zap.Duration("duration", o.Duration))
		merged = append(merged, o.Results...)
	}
	return merged
}
