package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/atsume/internal/models"
	"github.com/hyperjump/atsume/internal/storage"
)

const defaultSummaryWindow = 24 * time.Hour

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var params models.SearchParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.search(w, r, &params)
}

func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	params, err := paramsFromQuery(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.search(w, r, params)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, params *models.SearchParams) {
	s.logger.Debug("search request",
		zap.String("query", params.Query),
		zap.String("type", params.Type),
		zap.Int("page", params.Page),
		zap.Int("limit", params.Limit))
	response, err := s.aggregator.Search(r.Context(), params)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if s.opts.Tracker != nil {
		ev := models.SearchEvent{
			Query:       params.Query,
			Type:        params.EntityType(),
			ResultCount: response.TotalCount,
			Source:      response.Source,
			DurationMs:  response.QueryTime,
		}
		if err := s.opts.Tracker.TrackSearch(ev); err != nil {
			s.logger.Debug("search event not tracked", zap.Error(err))
		}
	}
	s.respondJSON(w, http.StatusOK, response)
}

// paramsFromQuery builds search params from URL query values such as
// ?q=camera&type=products&category=Electronics&priceMin=100&sortBy=price&page=2.
func paramsFromQuery(r *http.Request) (*models.SearchParams, error) {
	q := r.URL.Query()
	params := &models.SearchParams{
		Query: q.Get("q"),
		Type:  q.Get("type"),
		Filters: &models.SearchFilters{
			Category:  q.Get("category"),
			Location:  q.Get("location"),
			SortBy:    models.SortBy(q.Get("sortBy")),
			SortOrder: models.SortOrder(q.Get("sortOrder")),
		},
	}
	if params.Query == "" {
		params.Query = q.Get("query")
	}
	for name, dst := range map[string]*int{"page": &params.Page, "limit": &params.Limit} {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, errors.New("invalid " + name)
			}
			*dst = n
		}
	}
	floats := []struct {
		name string
		dst  *models.OptionalFloat
	}{
		{"priceMin", &params.Filters.PriceMin},
		{"priceMax", &params.Filters.PriceMax},
		{"rating", &params.Filters.Rating},
	}
	for _, f := range floats {
		if err := f.dst.Set(q.Get(f.name)); err != nil {
			return nil, errors.New("invalid " + f.name)
		}
	}
	return params, nil
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"query":       query,
		"suggestions": s.aggregator.Suggestions(query),
	})
}

func (s *Server) handlePopular(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"searches": s.aggregator.PopularSearches()})
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"topics": s.aggregator.TrendingTopics()})
}

type clickRequest struct {
	ResultID   string `json:"resultId"`
	ResultType string `json:"resultType"`
	Position   int    `json:"position"`
	Query      string `json:"query,omitempty"`
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	if s.opts.Tracker == nil {
		s.respondError(w, http.StatusNotImplemented, "analytics not enabled")
		return
	}
	var req clickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ResultID) == "" {
		s.respondError(w, http.StatusBadRequest, "resultId is required")
		return
	}
	resultType := models.NormalizeEntityType(req.ResultType)
	if !resultType.Known() {
		s.respondError(w, http.StatusBadRequest, "unknown resultType")
		return
	}
	if req.Position < 0 {
		s.respondError(w, http.StatusBadRequest, "position must not be negative")
		return
	}
	err := s.opts.Tracker.TrackResultClick(models.ClickEvent{
		ResultID:   req.ResultID,
		ResultType: resultType,
		Position:   req.Position,
		Query:      req.Query,
	})
	if err != nil {
		s.logger.Warn("click not tracked", zap.Error(err))
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if s.opts.Metrics == nil {
		s.respondError(w, http.StatusNotImplemented, "analytics not enabled")
		return
	}
	window, err := parseWindow(r.URL.Query().Get("window"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid window")
		return
	}
	summary, err := s.opts.Metrics.Summary(r.Context(), window)
	if err != nil {
		s.logger.Error("analytics summary failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, summary)
}

// parseWindow reads a Go duration; empty means 24h and "all" means no lower bound.
func parseWindow(v string) (time.Duration, error) {
	switch v {
	case "":
		return defaultSummaryWindow, nil
	case "all":
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, errors.New("invalid window")
	}
	return d, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"version":        s.opts.Version,
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
		"sources":        s.aggregator.SourceNames(),
		"fixtures":       s.aggregator.FixtureCount(),
	}
	if s.opts.Fixtures != nil {
		if d := s.opts.Fixtures.Current(); d != nil {
			resp["fixtures_origin"] = d.Origin()
			resp["fixtures_loaded_at"] = d.LoadedAt()
		}
	}
	if s.opts.Catalog != nil {
		if n, err := s.opts.Catalog.DocCount(); err == nil {
			resp["catalog_documents"] = n
		} else {
			s.logger.Warn("catalog count failed", zap.Error(err))
		}
	}
	if s.opts.Tracker != nil {
		written, dropped := s.opts.Tracker.Stats()
		resp["analytics"] = map[string]int64{"written": written, "dropped": dropped}
	}
	if s.opts.DatabasePath != "" {
		resp["database_path"] = s.opts.DatabasePath
		if size, err := storage.DatabaseSize(s.opts.DatabasePath); err == nil {
			resp["database_size_bytes"] = size
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
