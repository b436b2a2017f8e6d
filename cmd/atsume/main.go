// Package main is the atsume CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/atsume/internal/cli"
	"github.com/hyperjump/atsume/internal/config"
	"github.com/hyperjump/atsume/internal/models"
	"github.com/hyperjump/atsume/internal/search"
	"github.com/hyperjump/atsume/internal/server"
	"github.com/hyperjump/atsume/pkg/utils"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/atsume/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "atsume server" from the project dir uses the project's config (including debug).
// A missing default config falls back to built-in defaults.
// Returns the config and the path that was actually loaded ("" for built-in defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "suggest":
		runSuggest()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("atsume version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (source fan-out, fixture fallback, reloads)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, componentOptions{analytics: true, watch: true})
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	logger.Info("sources ready",
		zap.Strings("sources", components.Aggregator.SourceNames()),
		zap.Int("fixtures", components.Aggregator.FixtureCount()),
		zap.Bool("analytics", components.Tracker != nil),
	)

	srv := server.NewServer(components.Aggregator, &cfg.Server, logger, serverOptions(components, cfg))
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// serverOptions exposes analytics endpoints only when a tracker was built.
func serverOptions(c *Components, cfg *config.Config) server.Options {
	opts := server.Options{
		Fixtures: c.Fixtures,
		Version:  version,
	}
	if c.Catalog != nil {
		opts.Catalog = c.Catalog
	}
	if c.Tracker != nil {
		opts.Tracker = c.Tracker
		opts.Metrics = c.Metrics
		opts.DatabasePath = cfg.Storage.DatabasePath
	}
	return opts
}

// printSearchUsage prints search subcommand usage and filter hints.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: atsume search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n")
	fmt.Fprintf(fs.Output(), "An empty query is allowed when --type or a filter is given.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Results from every source are merged, filtered, sorted and paginated.
  • Use --type to search one entity type (users, products, services, jobs, posts, videos, crypto).
  • Use --min-price / --max-price / --rating / --category / --location to narrow results.
  • Use --sort (relevance, date, rating, price, popularity, alphabetical) and --order (asc, desc).

Examples:
  atsume search wireless headphones
  atsume search "wireless headphones"                        # same as above
  atsume search --type products --category Electronics --min-price 100 --max-price 300
  atsume search --sort price --order asc --limit 5 camera
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting (e.g. "logo design" vs logo design).
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchConfigPathFromArgs returns the value of -config/--config from args if present, else defaultPath.
func searchConfigPathFromArgs(args []string, defaultPath string) string {
	for i, a := range args {
		if (a == "-config" || a == "--config") && i+1 < len(args) {
			return args[i+1]
		}
	}
	return defaultPath
}

// searchLimitDefaultFromConfig loads config at path and returns its default page size.
// On load failure, returns 20.
func searchLimitDefaultFromConfig(path string) int {
	cfg, _, err := loadConfig(path)
	if err != nil || cfg == nil || cfg.Search.DefaultLimit <= 0 {
		return 20
	}
	return cfg.Search.DefaultLimit
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "atsume search camera -limit 5"
// would otherwise leave -limit unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// hasSearchCriteria reports whether params narrow the result set at all.
func hasSearchCriteria(p *models.SearchParams) bool {
	if p.Query != "" || p.Type != "" {
		return true
	}
	f := p.Filters
	return f != nil && (f.Category != "" || f.Location != "" || f.PriceMin.Valid || f.PriceMax.Valid || f.Rating.Valid)
}

func runSearch() {
	searchArgs := searchArgsReorder(os.Args[2:])
	configPath := searchConfigPathFromArgs(searchArgs, defaultConfigPath)
	defaultLimit := searchLimitDefaultFromConfig(configPath)

	filters := &models.SearchFilters{}
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = query sources directly)")
	entityType := fs.String("type", "", "entity type to search (empty = all)")
	page := fs.Int("page", 1, "result page")
	limit := fs.Int("limit", defaultLimit, "results per page")
	fs.StringVar(&filters.Category, "category", "", "category (case-insensitive exact match)")
	fs.StringVar(&filters.Location, "location", "", "location substring")
	fs.Var(&filters.PriceMin, "min-price", "minimum price")
	fs.Var(&filters.PriceMax, "max-price", "maximum price")
	fs.Var(&filters.Rating, "rating", "minimum rating")
	sortBy := fs.String("sort", string(models.SortRelevance), "sort by: relevance, date, rating, price, popularity, alphabetical")
	sortOrder := fs.String("order", string(models.SortDesc), "sort order: asc or desc")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one result per line), or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgs)

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	filters.SortBy = models.SortBy(*sortBy)
	filters.SortOrder = models.SortOrder(*sortOrder)
	params := &models.SearchParams{
		Query:   buildSearchQuery(fs.Args()),
		Type:    *entityType,
		Filters: filters,
		Page:    *page,
		Limit:   *limit,
	}
	if !hasSearchCriteria(params) {
		printSearchUsage(fs)
		os.Exit(1)
	}

	var response *models.SearchResponse
	if *serverURL != "" {
		response, err = searchViaHTTP(*serverURL, params)
	} else {
		response, err = searchDirect(*configPathFlag, params)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// searchDirect builds the sources in-process (no analytics, no watcher) and searches once.
func searchDirect(configPath string, params *models.SearchParams) (*models.SearchResponse, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, componentOptions{})
	if err != nil {
		return nil, err
	}
	defer components.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.RequestTimeout)
	defer cancel()
	return components.Aggregator.Search(ctx, params)
}

func searchViaHTTP(serverURL string, params *models.SearchParams) (*models.SearchResponse, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runSuggest() {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = compute locally)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))
	query := buildSearchQuery(fs.Args())

	var aids queryAids
	if *serverURL != "" {
		var err error
		aids, err = queryAidsViaHTTP(*serverURL, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Suggest failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		aids = queryAids{
			Query:       query,
			Suggestions: search.Suggestions(query),
			Popular:     search.PopularSearches(),
			Trending:    search.TrendingTopics(),
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(aids); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		if query != "" {
			cli.WriteStrings(os.Stdout, fmt.Sprintf("Suggestions for %q", query), aids.Suggestions)
		}
		cli.WriteStrings(os.Stdout, "Popular searches", aids.Popular)
		cli.WriteStrings(os.Stdout, "Trending topics", aids.Trending)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

// queryAids is the suggest command's output.
type queryAids struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
	Popular     []string `json:"popular"`
	Trending    []string `json:"trending"`
}

func queryAidsViaHTTP(serverURL, query string) (queryAids, error) {
	aids := queryAids{Query: query}
	var sug struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := getJSON(serverURL+"/api/v1/search/suggestions?q="+url.QueryEscape(query), &sug); err != nil {
		return aids, err
	}
	var popular struct {
		Searches []string `json:"searches"`
	}
	if err := getJSON(serverURL+"/api/v1/search/popular", &popular); err != nil {
		return aids, err
	}
	var trending struct {
		Topics []string `json:"topics"`
	}
	if err := getJSON(serverURL+"/api/v1/search/trending", &trending); err != nil {
		return aids, err
	}
	aids.Suggestions, aids.Popular, aids.Trending = sug.Suggestions, popular.Searches, trending.Topics
	return aids, nil
}

func getJSON(u string, out interface{}) error {
	resp, err := http.Get(u)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// analyticsStats is the analytics block of the status response.
type analyticsStats struct {
	Written int64 `json:"written"`
	Dropped int64 `json:"dropped"`
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Version           string          `json:"version"`
	UptimeSeconds     int64           `json:"uptime_seconds"`
	Sources           []string        `json:"sources"`
	Fixtures          int             `json:"fixtures"`
	FixturesOrigin    string          `json:"fixtures_origin,omitempty"`
	CatalogDocuments  *uint64         `json:"catalog_documents,omitempty"`
	Analytics         *analyticsStats `json:"analytics,omitempty"`
	DatabasePath      string          `json:"database_path,omitempty"`
	DatabaseSizeBytes *int64          `json:"database_size_bytes,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = inspect config locally)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		res, err := statusDirect(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		writeStatusText(os.Stdout, &status)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func writeStatusText(w io.Writer, status *statusResponse) {
	fmt.Fprintf(w, "version:            %s\n", status.Version)
	if status.UptimeSeconds > 0 {
		fmt.Fprintf(w, "uptime:             %s\n", time.Duration(status.UptimeSeconds)*time.Second)
	}
	fmt.Fprintf(w, "sources:            %s\n", strings.Join(status.Sources, ", "))
	fmt.Fprintf(w, "fixtures:           %d   # fallback results", status.Fixtures)
	if status.FixturesOrigin != "" {
		fmt.Fprintf(w, " (%s)", status.FixturesOrigin)
	}
	fmt.Fprintln(w)
	if status.CatalogDocuments != nil {
		fmt.Fprintf(w, "catalog_documents:  %d\n", *status.CatalogDocuments)
	}
	if status.Analytics != nil {
		fmt.Fprintf(w, "events_written:     %d\n", status.Analytics.Written)
		fmt.Fprintf(w, "events_dropped:     %d\n", status.Analytics.Dropped)
	}
	if status.DatabasePath != "" {
		fmt.Fprintf(w, "database_path:      %s\n", status.DatabasePath)
	}
	if status.DatabaseSizeBytes != nil {
		fmt.Fprintf(w, "database_size:      %d   # bytes on disk incl. WAL\n", *status.DatabaseSizeBytes)
	}
}

// statusDirect reports what the server would run with, without starting it.
func statusDirect(configPath string) (*statusResponse, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	components, err := initializeComponents(cfg, zap.NewNop(), componentOptions{})
	if err != nil {
		return nil, err
	}
	defer components.Close()

	status := &statusResponse{
		Version:  version,
		Sources:  components.Aggregator.SourceNames(),
		Fixtures: components.Aggregator.FixtureCount(),
	}
	if d := components.Fixtures.Current(); d != nil {
		status.FixturesOrigin = d.Origin()
	}
	if components.Catalog != nil {
		if n, err := components.Catalog.DocCount(); err == nil {
			status.CatalogDocuments = &n
		}
	}
	if cfg.Analytics.EnabledOrDefault() {
		status.DatabasePath = cfg.Storage.DatabasePath
	}
	return status, nil
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	var s statusResponse
	if err := getJSON(serverURL+"/api/v1/status", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func printUsage() {
	fmt.Println(`atsume - Multi-source search aggregator

Usage:
  atsume server [flags]            Start the HTTP server
  atsume search [flags] <query>    Search every source
  atsume suggest [flags] [query]   Show suggestions, popular searches and trending topics
  atsume status [flags]            Show sources, fixtures and analytics status
  atsume version                   Show version
  atsume help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/atsume/config.yaml)
  --debug            Enable debug logging

Search Flags:
  --config string    Config file path (for direct mode; also used for the default --limit)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to query sources directly.
  --type string      Entity type: users, products, services, jobs, posts, videos, crypto
  --category string  Category filter
  --location string  Location filter (substring)
  --min-price float  Minimum price
  --max-price float  Maximum price
  --rating float     Minimum rating
  --sort string      relevance, date, rating, price, popularity, alphabetical (default: relevance)
  --order string     asc or desc (default: desc)
  --page int         Page number (default: 1)
  --limit int        Results per page (default from config, or 20)
  --output string    text, compact or json (default: text)

Suggest Flags:
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to compute locally.
  --output string    text or json (default: text)

Status Flags:
  --config string    Config file path (for direct mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to inspect the config.
  --output string    text or json (default: text)

Examples:
  atsume server
  atsume search "wireless headphones"
  atsume search --type products --category Electronics --min-price 100 --max-price 300
  atsume search --output json "react developer"   # structured JSON for other apps
  atsume suggest design
  atsume status --output json`)
}
