package models

import "time"

// SearchEvent records one executed search.
type SearchEvent struct {
	ID          string
	Query       string
	Type        EntityType
	ResultCount int
	Source      ResultSource
	DurationMs  int64
	CreatedAt   time.Time
}

// ClickEvent records a click on a search result.
type ClickEvent struct {
	ID         string     `json:"id,omitempty"`
	ResultID   string     `json:"resultId"`
	ResultType EntityType `json:"resultType"`
	Position   int        `json:"position"`
	Query      string     `json:"query,omitempty"`
	CreatedAt  time.Time  `json:"createdAt,omitempty"`
}

// QueryCount is a query and how often it was searched.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// AnalyticsSummary aggregates search and click activity over a window.
type AnalyticsSummary struct {
	Since              time.Time    `json:"since"`
	TotalSearches      int64        `json:"totalSearches"`
	ZeroResultSearches int64        `json:"zeroResultSearches"`
	TotalClicks        int64        `json:"totalClicks"`
	ClickThroughRate   float64      `json:"clickThroughRate"`
	TopQueries         []QueryCount `json:"topQueries"`
	GeneratedAt        time.Time    `json:"generatedAt"`
}
