package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 30 * time.Second
	}
	if cfg.Server.RateLimit > 0 && cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = int(cfg.Server.RateLimit) * 2
	}
	if cfg.Sources.BaseURL == "" {
		cfg.Sources.BaseURL = "http://localhost:3001/api"
	}
	if cfg.Sources.Timeout == 0 {
		cfg.Sources.Timeout = 5 * time.Second
	}
	if cfg.Sources.RateLimit > 0 && cfg.Sources.RateBurst == 0 {
		cfg.Sources.RateBurst = 1
	}
	if cfg.Sources.CatalogTitleBoost == 0 {
		cfg.Sources.CatalogTitleBoost = 3.0
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 20
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Search.MaxConcurrentSources == 0 {
		cfg.Search.MaxConcurrentSources = 8
	}
	cfg.Search.Relevance.ApplyDefaults()
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/atsume/data/analytics.db"
	}
	if cfg.Analytics.QueueSize == 0 {
		cfg.Analytics.QueueSize = 1024
	}
	if cfg.Analytics.SummaryTTL == 0 {
		cfg.Analytics.SummaryTTL = 5 * time.Minute
	}
	if cfg.Analytics.TopQueries == 0 {
		cfg.Analytics.TopQueries = 10
	}
}
