package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/atsume/internal/analytics"
	"github.com/hyperjump/atsume/internal/config"
	"github.com/hyperjump/atsume/internal/fixtures"
	"github.com/hyperjump/atsume/internal/keyword"
	"github.com/hyperjump/atsume/internal/search"
	"github.com/hyperjump/atsume/internal/source"
	"github.com/hyperjump/atsume/internal/storage"
	"github.com/hyperjump/atsume/internal/watcher"
)

// Components holds initialized services.
type Components struct {
	Sources    []source.Source
	Catalog    *source.LocalSource
	Fixtures   fixtures.Provider
	Reloader   *fixtures.Reloader
	Storage    storage.Storage
	Tracker    *analytics.Tracker
	Metrics    *analytics.Metrics
	Aggregator *search.Aggregator
	Watcher    *watcher.Watcher

	catalogPath string
	logger      *zap.Logger
}

// componentOptions selects the optional parts initializeComponents builds.
type componentOptions struct {
	analytics bool
	watch     bool
}

// Close stops the watcher, drains analytics, and closes storage and the catalog.
func (c *Components) Close() {
	if c.Watcher != nil {
		c.Watcher.Stop()
	}
	if c.Tracker != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := c.Tracker.Close(ctx); err != nil {
			c.logger.Warn("analytics drain incomplete", zap.Error(err))
		}
		cancel()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Catalog != nil {
		_ = c.Catalog.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, opts componentOptions) (*Components, error) {
	c := &Components{logger: logger}

	sources, err := buildHTTPSources(&cfg.Sources, logger)
	if err != nil {
		return nil, err
	}
	c.Sources = sources

	if cfg.Sources.CatalogPath != "" {
		catalog, err := loadCatalog(&cfg.Sources, logger)
		if err != nil {
			return nil, err
		}
		c.Catalog = catalog
		c.catalogPath = absPath(cfg.Sources.CatalogPath)
		c.Sources = append(c.Sources, catalog)
	}

	if cfg.Fixtures.Path != "" {
		reloader, err := fixtures.NewReloader(cfg.Fixtures.Path, logger)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to load fixtures: %w", err)
		}
		c.Reloader = reloader
		c.Fixtures = reloader
	} else {
		c.Fixtures = fixtures.NewStatic(fixtures.Default())
	}

	if opts.analytics && cfg.Analytics.EnabledOrDefault() {
		store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		c.Storage = store
		c.Metrics = analytics.NewMetrics(store, cfg.Analytics.SummaryTTL, cfg.Analytics.TopQueries)
		c.Tracker = analytics.NewTracker(store, cfg.Analytics.QueueSize, logger,
			analytics.WithFlushHook(c.Metrics.Invalidate))
	}

	c.Aggregator = search.NewAggregator(c.Sources, c.Fixtures, nil, &cfg.Search, logger)

	if opts.watch && cfg.Fixtures.Watch {
		if err := c.startWatcher(); err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to start watcher: %w", err)
		}
	}
	return c, nil
}

func buildHTTPSources(cfg *config.SourcesConfig, logger *zap.Logger) ([]source.Source, error) {
	if cfg.Disabled {
		return nil, nil
	}
	clientOpts := []source.ClientOption{source.WithUserAgent("atsume/" + version)}
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, source.WithAPIKey(cfg.APIKey))
	}
	if cfg.RateLimit > 0 {
		clientOpts = append(clientOpts, source.WithRateLimit(cfg.RateLimit, cfg.RateBurst))
	}
	client := source.NewClient(cfg.BaseURL, cfg.Timeout, clientOpts...)
	names := cfg.Enabled
	if len(names) == 0 {
		names = source.DefaultHTTPSources
	}
	sources, err := source.NewHTTPSources(client, names, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sources: %w", err)
	}
	return sources, nil
}

func loadCatalog(cfg *config.SourcesConfig, logger *zap.Logger) (*source.LocalSource, error) {
	d, err := fixtures.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	opts := &keyword.SearchOptions{
		TitleBoost:   cfg.CatalogTitleBoost,
		FuzzyEnabled: cfg.CatalogFuzzy,
	}
	catalog, err := source.NewLocalSource("catalog", d.Results(), opts, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to index catalog: %w", err)
	}
	return catalog, nil
}

// startWatcher reloads the fixture file and the catalog when they change on disk.
func (c *Components) startWatcher() error {
	var files []string
	if c.Reloader != nil {
		files = append(files, c.Reloader.Path())
	}
	if c.catalogPath != "" {
		files = append(files, c.catalogPath)
	}
	if len(files) == 0 {
		return nil
	}
	c.Watcher = watcher.NewWatcher(files, c.handleFileChange, c.handleFileRemove, watcher.WithLogger(c.logger))
	return c.Watcher.Start(context.Background())
}

func (c *Components) handleFileChange(path string) {
	if c.Reloader != nil && path == absPath(c.Reloader.Path()) {
		_ = c.Reloader.Reload()
	}
	if c.Catalog != nil && path == c.catalogPath {
		d, err := fixtures.Load(path)
		if err != nil {
			c.logger.Warn("catalog reload failed, keeping previous", zap.String("path", path), zap.Error(err))
			return
		}
		if err := c.Catalog.Replace(context.Background(), d.Results()); err != nil {
			c.logger.Warn("catalog reindex failed", zap.String("path", path), zap.Error(err))
		}
	}
}

func (c *Components) handleFileRemove(path string) {
	c.logger.Warn("watched file removed, keeping current data", zap.String("path", path))
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return filepath.Clean(abs)
	}
	return p
}
