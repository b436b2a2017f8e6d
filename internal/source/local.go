package source

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/atsume/internal/keyword"
	"github.com/hyperjump/atsume/internal/models"
)

// LocalSource serves a catalog of results held in an in-memory Bleve index.
type LocalSource struct {
	name   string
	opts   keyword.SearchOptions
	logger *zap.Logger

	mu      sync.RWMutex
	index   keyword.KeywordIndex
	entries map[string]models.SearchResult
	types   []models.EntityType
}

// NewLocalSource indexes entries and returns a source named name. opts controls
// fuzzy matching and title boost; nil uses exact matching.
func NewLocalSource(name string, entries []models.SearchResult, opts *keyword.SearchOptions, logger *zap.Logger) (*LocalSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &LocalSource{name: name, logger: logger}
	if opts != nil {
		s.opts = *opts
	}
	if err := s.Replace(context.Background(), entries); err != nil {
		return nil, err
	}
	return s, nil
}

// Name implements Source.
func (s *LocalSource) Name() string { return s.name }

// Types implements Source. It reports the types present in the current catalog.
func (s *LocalSource) Types() []models.EntityType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.EntityType(nil), s.types...)
}

// Search implements Source. An empty query returns the whole catalog.
func (s *LocalSource) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return nil, nil
	}
	opts := s.opts
	hits, err := s.index.Search(ctx, query, len(s.entries), &opts)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}
	out := make([]models.SearchResult, 0, len(hits))
	for _, hit := range hits {
		if r, ok := s.entries[hit.ID]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Replace rebuilds the index from entries and swaps it in. Entries without an ID
// or with an unknown type are skipped; a later duplicate wins.
func (s *LocalSource) Replace(ctx context.Context, entries []models.SearchResult) error {
	idx, err := keyword.NewBleveIndex("")
	if err != nil {
		return err
	}
	byID := make(map[string]models.SearchResult, len(entries))
	seen := make(map[models.EntityType]bool)
	var types []models.EntityType
	for i := range entries {
		e := entries[i]
		if e.ID == "" || !e.Type.Known() {
			s.logger.Warn("skipping catalog entry", zap.String("id", e.ID), zap.String("type", string(e.Type)))
			continue
		}
		docID := catalogID(&e)
		if err := idx.Index(ctx, docID, &e); err != nil {
			_ = idx.Close()
			return fmt.Errorf("index catalog entry %s: %w", docID, err)
		}
		byID[docID] = e
		if !seen[e.Type] {
			seen[e.Type] = true
			types = append(types, e.Type)
		}
	}

	s.mu.Lock()
	old := s.index
	s.index, s.entries, s.types = idx, byID, types
	s.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	s.logger.Info("catalog indexed", zap.String("source", s.name), zap.Int("entries", len(byID)))
	return nil
}

// DocCount reports how many catalog entries are indexed.
func (s *LocalSource) DocCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return 0, nil
	}
	return s.index.DocCount()
}

// Close releases the index.
func (s *LocalSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil
	}
	err := s.index.Close()
	s.index = nil
	s.entries = nil
	return err
}

func catalogID(r *models.SearchResult) string {
	return string(r.Type) + ":" + r.ID
}
