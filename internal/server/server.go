// Package server provides the HTTP API for atsume.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hyperjump/atsume/internal/config"
	"github.com/hyperjump/atsume/internal/fixtures"
	"github.com/hyperjump/atsume/internal/models"
	"github.com/hyperjump/atsume/internal/search"
)

// EventTracker records search and click events.
type EventTracker interface {
	TrackSearch(ev models.SearchEvent) error
	TrackResultClick(ev models.ClickEvent) error
	Stats() (written, dropped int64)
}

// SummaryProvider serves aggregated analytics.
type SummaryProvider interface {
	Summary(ctx context.Context, window time.Duration) (*models.AnalyticsSummary, error)
}

// DocCounter reports the size of an indexed catalog.
type DocCounter interface {
	DocCount() (uint64, error)
}

// Options carries the optional collaborators of a Server. Nil fields disable the
// endpoints that need them.
type Options struct {
	Tracker  EventTracker
	Metrics  SummaryProvider
	Fixtures fixtures.Provider
	Catalog  DocCounter
	// DatabasePath is reported by the status endpoint along with its size.
	DatabasePath string
	Version      string
}

// Server is the HTTP server for the atsume API.
type Server struct {
	aggregator *search.Aggregator
	opts       Options
	config     *config.ServerConfig
	logger     *zap.Logger
	server     *http.Server
	startedAt  time.Time
}

// NewServer creates a server with the given dependencies.
func NewServer(
	aggregator *search.Aggregator,
	cfg *config.ServerConfig,
	logger *zap.Logger,
	opts Options,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		aggregator: aggregator,
		opts:       opts,
		config:     cfg,
		logger:     logger,
		startedAt:  time.Now(),
	}
}

// Router builds the HTTP handler with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	timeout := s.config.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5))
	if s.config.RateLimit > 0 {
		limiter := NewIPRateLimiter(rate.Limit(s.config.RateLimit), s.config.RateBurst, s.logger)
		r.Use(limiter.RateLimit)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/search", s.handleSearchGet)
		r.Get("/search/suggestions", s.handleSuggestions)
		r.Get("/search/popular", s.handlePopular)
		r.Get("/search/trending", s.handleTrending)
		r.Post("/analytics/clicks", s.handleClick)
		r.Get("/analytics/summary", s.handleSummary)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
