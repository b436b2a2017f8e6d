package models

// FacetCount is one bucket of a facet.
type FacetCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Facets holds per-attribute bucket counts over the filtered (unpaginated) results.
type Facets struct {
	Categories  []FacetCount `json:"categories"`
	PriceRanges []FacetCount `json:"priceRanges"`
	Ratings     []FacetCount `json:"ratings"`
	Locations   []FacetCount `json:"locations"`
}

// ResultSource tells whether a response came from live sources or the fixture set.
type ResultSource string

const (
	SourceLive     ResultSource = "live"
	SourceFixtures ResultSource = "fixtures"
)

// SearchResponse is one page of ranked results plus query aids and facets.
type SearchResponse struct {
	Results         []SearchResult `json:"results"`
	TotalCount      int            `json:"totalCount"`
	CurrentPage     int            `json:"currentPage"`
	TotalPages      int            `json:"totalPages"`
	Suggestions     []string       `json:"suggestions"`
	RelatedSearches []string       `json:"relatedSearches"`
	Facets          Facets         `json:"facets"`
	Source          ResultSource   `json:"source"`
	QueryTime       int64          `json:"queryTimeMs"`
}
