package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/atsume/internal/models"
)

func TestSearchArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after query are moved first",
			args:     []string{"wireless headphones", "-limit", "5"},
			expected: []string{"-limit", "5", "wireless headphones"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-type", "products", "wireless headphones"},
			expected: []string{"-type", "products", "wireless headphones"},
		},
		{
			name:     "query only returns unchanged",
			args:     []string{"wireless headphones"},
			expected: []string{"wireless headphones"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"logo", "design", "-min-price", "50"},
			expected: []string{"-min-price", "50", "logo", "design"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchArgsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("searchArgsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"camera"}, "camera"},
		{"multiple words", []string{"logo", "design"}, "logo design"},
		{"single quoted phrase", []string{"logo design"}, "logo design"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSearchQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildSearchQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestSearchConfigPathFromArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		defaultPath string
		want        string
	}{
		{"no config flag", []string{"-limit", "5", "query"}, "/default.yaml", "/default.yaml"},
		{"-config present", []string{"-config", "/custom.yaml", "query"}, "/default.yaml", "/custom.yaml"},
		{"--config present", []string{"--config", "/other.yaml"}, "/default.yaml", "/other.yaml"},
		{"config at end", []string{"query", "-config", "/end.yaml"}, "/default.yaml", "/end.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchConfigPathFromArgs(tt.args, tt.defaultPath)
			if got != tt.want {
				t.Errorf("searchConfigPathFromArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearchLimitDefaultFromConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
search:
  default_limit: 7
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	if got := searchLimitDefaultFromConfig(configPath); got != 7 {
		t.Errorf("searchLimitDefaultFromConfig() = %d, want 7", got)
	}
	if got := searchLimitDefaultFromConfig(filepath.Join(dir, "nonexistent.yaml")); got != 20 {
		t.Errorf("searchLimitDefaultFromConfig(nonexistent) = %d, want 20", got)
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
storage:
  database_path: "test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s (canon %s), want %s (canon %s)", resolved, resolvedCanon, configPath, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
sources:
  enabled: [products, crypto]
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if !reflect.DeepEqual(cfg.Sources.Enabled, []string{"products", "crypto"}) {
		t.Errorf("enabled sources = %v", cfg.Sources.Enabled)
	}
}

func TestLoadConfig_missingExplicitPath(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestHasSearchCriteria(t *testing.T) {
	tests := []struct {
		name   string
		params models.SearchParams
		want   bool
	}{
		{"nothing", models.SearchParams{Filters: &models.SearchFilters{}}, false},
		{"sort only", models.SearchParams{Filters: &models.SearchFilters{SortBy: models.SortPrice}}, false},
		{"query", models.SearchParams{Query: "camera"}, true},
		{"type", models.SearchParams{Type: "crypto"}, true},
		{"price", models.SearchParams{Filters: &models.SearchFilters{PriceMin: models.Some(0)}}, true},
		{"category", models.SearchParams{Filters: &models.SearchFilters{Category: "Design"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasSearchCriteria(&tt.params); got != tt.want {
				t.Errorf("hasSearchCriteria() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchViaHTTP(t *testing.T) {
	var got models.SearchParams
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/search" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"results":[{"id":"p1","type":"product","title":"Headphones","price":199.99}],"totalCount":1,"currentPage":1,"totalPages":1,"source":"live"}`))
	}))
	defer srv.Close()

	params := &models.SearchParams{
		Query:   "headphones",
		Type:    "products",
		Filters: &models.SearchFilters{PriceMax: models.Some(300)},
		Limit:   5,
	}
	resp, err := searchViaHTTP(srv.URL, params)
	if err != nil {
		t.Fatal(err)
	}
	if got.Query != "headphones" || got.Type != "products" || got.Limit != 5 {
		t.Errorf("server received %+v", got)
	}
	if got.Filters == nil || !got.Filters.PriceMax.Valid || got.Filters.PriceMax.Value != 300 {
		t.Errorf("filters not sent: %+v", got.Filters)
	}
	if resp.TotalCount != 1 || resp.Results[0].ID != "p1" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if p, ok := resp.Results[0].Price(); !ok || p != 199.99 {
		t.Errorf("price = %v %v", p, ok)
	}
}

func TestSearchViaHTTP_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
	}))
	defer srv.Close()
	_, err := searchViaHTTP(srv.URL, &models.SearchParams{Query: "x"})
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Errorf("expected 400 error, got %v", err)
	}
}

func TestQueryAidsViaHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/search/suggestions":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"query": r.URL.Query().Get("q"), "suggestions": []string{r.URL.Query().Get("q") + " tips"}})
		case "/api/v1/search/popular":
			_, _ = w.Write([]byte(`{"searches":["iphone"]}`))
		case "/api/v1/search/trending":
			_, _ = w.Write([]byte(`{"topics":["ai tools"]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	aids, err := queryAidsViaHTTP(srv.URL, "logo design")
	if err != nil {
		t.Fatal(err)
	}
	want := queryAids{
		Query:       "logo design",
		Suggestions: []string{"logo design tips"},
		Popular:     []string{"iphone"},
		Trending:    []string{"ai tools"},
	}
	if !reflect.DeepEqual(aids, want) {
		t.Errorf("got %+v, want %+v", aids, want)
	}
}

func TestStatusViaHTTPAndText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"version":"1.0.0","uptime_seconds":90,"sources":["users","products"],"fixtures":20,
			"fixtures_origin":"builtin","catalog_documents":12,"analytics":{"written":5,"dropped":0},
			"database_path":"/tmp/a.db","database_size_bytes":4096}`))
	}))
	defer srv.Close()

	status, err := statusViaHTTP(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if status.Fixtures != 20 || len(status.Sources) != 2 || status.Analytics == nil || status.Analytics.Written != 5 {
		t.Errorf("unexpected status: %+v", status)
	}
	if status.DatabaseSizeBytes == nil || *status.DatabaseSizeBytes != 4096 {
		t.Errorf("database size = %v", status.DatabaseSizeBytes)
	}

	var buf bytes.Buffer
	writeStatusText(&buf, status)
	out := buf.String()
	for _, sub := range []string{"version:            1.0.0", "uptime:             1m30s", "users, products", "(builtin)", "catalog_documents:  12", "events_written:     5", "4096"} {
		if !strings.Contains(out, sub) {
			t.Errorf("status text missing %q:\n%s", sub, out)
		}
	}
}
