// Package config provides configuration loading and structs for the atsume server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/atsume/internal/ranking"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Sources   SourcesConfig   `yaml:"sources"`
	Search    SearchConfig    `yaml:"search"`
	Storage   StorageConfig   `yaml:"storage"`
	Fixtures  FixturesConfig  `yaml:"fixtures"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// RateLimit is the per-client request rate in requests per second. 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// SourcesConfig holds upstream platform API settings.
type SourcesConfig struct {
	BaseURL   string        `yaml:"base_url"`
	APIKey    string        `yaml:"api_key"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"`
	RateBurst int           `yaml:"rate_burst"`
	// Enabled lists the HTTP sources to fan out to, in order. Empty means all.
	Enabled []string `yaml:"enabled,omitempty"`
	// Disabled turns off every HTTP source, leaving the catalog and fixtures.
	Disabled bool `yaml:"disabled"`
	// CatalogPath is an optional YAML catalog served by the local Bleve-backed source.
	CatalogPath string `yaml:"catalog_path"`
	// CatalogFuzzy enables typo-tolerant matching in the local catalog.
	CatalogFuzzy bool `yaml:"catalog_fuzzy"`
	// CatalogTitleBoost weights title matches in the local catalog.
	CatalogTitleBoost float64 `yaml:"catalog_title_boost"`
}

// SearchConfig holds aggregation settings.
type SearchConfig struct {
	DefaultLimit         int                     `yaml:"default_limit"`
	MaxLimit             int                     `yaml:"max_limit"`
	MaxConcurrentSources int                     `yaml:"max_concurrent_sources"`
	Relevance            ranking.RelevanceConfig `yaml:"relevance"`
}

// StorageConfig holds the analytics database path.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// FixturesConfig holds the fallback dataset settings. An empty Path uses the
// built-in dataset.
type FixturesConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// AnalyticsConfig holds search/click tracking settings.
type AnalyticsConfig struct {
	Enabled    *bool         `yaml:"enabled"`
	QueueSize  int           `yaml:"queue_size"`
	SummaryTTL time.Duration `yaml:"summary_ttl"`
	TopQueries int           `yaml:"top_queries"`
}

// EnabledOrDefault returns whether analytics is on; defaults to true when unset.
func (a *AnalyticsConfig) EnabledOrDefault() bool {
	if a.Enabled != nil {
		return *a.Enabled
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	if cfg.Fixtures.Path != "" {
		cfg.Fixtures.Path = expandPath(cfg.Fixtures.Path, configDir)
	}
	if cfg.Sources.CatalogPath != "" {
		cfg.Sources.CatalogPath = expandPath(cfg.Sources.CatalogPath, configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
