package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/atsume/internal/config"
	"github.com/hyperjump/atsume/internal/models"
	"github.com/hyperjump/atsume/internal/server"
)

// newPlatformAPI fakes the upstream platform: products and crypto answer, the
// rest of the routes fail.
func newPlatformAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/products/search":
			_, _ = w.Write([]byte(`{"products":[
				{"id":1,"name":"Studio Headphones","price":"249.00","rating":4.8,"category":"Electronics","location":"Austin, TX"},
				{"id":2,"name":"Budget Earbuds","price":19.99,"rating":3.9,"category":"Electronics"},
				{"id":3,"name":"Oak Desk","price":420,"category":"Furniture"}
			]}`))
		case "/crypto/search":
			_, _ = w.Write([]byte(`{"assets":[{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":43000}]}`))
		default:
			http.Error(w, `{"error":"unavailable"}`, http.StatusServiceUnavailable)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestE2E_SearchThroughServer(t *testing.T) {
	api := newPlatformAPI(t)
	enabled := true
	cfg := &config.Config{
		Sources: config.SourcesConfig{
			BaseURL: api.URL,
			Timeout: 2 * time.Second,
			Enabled: []string{"products", "crypto", "videos"},
		},
		Storage:   config.StorageConfig{DatabasePath: filepath.Join(t.TempDir(), "analytics.db")},
		Analytics: config.AnalyticsConfig{Enabled: &enabled},
	}
	config.ApplyDefaults(cfg)

	components, err := initializeComponents(cfg, zap.NewNop(), componentOptions{analytics: true})
	if err != nil {
		t.Fatal(err)
	}
	defer components.Close()
	srv := httptest.NewServer(server.NewServer(components.Aggregator, &cfg.Server, zap.NewNop(), serverOptions(components, cfg)).Router())
	defer srv.Close()

	resp, err := searchViaHTTP(srv.URL, &models.SearchParams{
		Query: "headphones",
		Type:  "products",
		Filters: &models.SearchFilters{
			Category:  "electronics",
			PriceMin:  models.Some(100),
			SortBy:    models.SortPrice,
			SortOrder: models.SortAsc,
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Source != models.SourceLive || resp.TotalCount != 1 || resp.Results[0].Title != "Studio Headphones" {
		t.Fatalf("unexpected response: source %s total %d", resp.Source, resp.TotalCount)
	}

	// videos fails upstream, so the fixture set answers.
	resp, err = searchViaHTTP(srv.URL, &models.SearchParams{Query: "react", Type: "videos"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Source != models.SourceFixtures || resp.TotalCount == 0 {
		t.Errorf("expected fixture fallback, got source %s total %d", resp.Source, resp.TotalCount)
	}

	// All types: products and crypto merge; the failing videos source is skipped.
	resp, err = searchViaHTTP(srv.URL, &models.SearchParams{Query: "", Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if resp.TotalCount != 4 || resp.TotalPages != 2 || len(resp.Results) != 2 {
		t.Errorf("merged: total %d pages %d page size %d", resp.TotalCount, resp.TotalPages, len(resp.Results))
	}

	click, err := http.Post(srv.URL+"/api/v1/analytics/clicks", "application/json",
		bytes.NewBufferString(`{"resultId":"1","resultType":"product","position":0,"query":"headphones"}`))
	if err != nil {
		t.Fatal(err)
	}
	click.Body.Close()
	if click.StatusCode != http.StatusAccepted {
		t.Fatalf("click status = %d", click.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := components.Tracker.Close(ctx); err != nil {
		t.Fatal(err)
	}
	searches, err := components.Storage.CountSearches(ctx, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	clicks, err := components.Storage.CountClicks(ctx, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if searches != 3 || clicks != 1 {
		t.Errorf("stored %d searches and %d clicks, want 3 and 1", searches, clicks)
	}

	summary, err := components.Metrics.Summary(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if summary.TotalSearches != 3 || summary.ZeroResultSearches != 0 {
		t.Errorf("summary = %+v", summary)
	}

	status, err := statusViaHTTP(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if len(status.Sources) != 3 || status.Analytics == nil || status.Analytics.Written != 4 {
		t.Errorf("status = %+v analytics %+v", status, status.Analytics)
	}
}
