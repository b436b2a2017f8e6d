package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SortBy selects the ordering applied after filtering.
type SortBy string

const (
	SortRelevance    SortBy = "relevance"
	SortDate         SortBy = "date"
	SortRating       SortBy = "rating"
	SortPrice        SortBy = "price"
	SortPopularity   SortBy = "popularity"
	SortAlphabetical SortBy = "alphabetical"
)

// SortOrder is "asc" or "desc". Anything other than "asc" sorts descending.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// OptionalFloat is a number that may be absent. It decodes from a JSON number,
// a numeric string such as "100", null, or an empty string (absent).
type OptionalFloat struct {
	Value float64
	Valid bool
}

// Some returns a present OptionalFloat holding v.
func Some(v float64) OptionalFloat {
	return OptionalFloat{Value: v, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *OptionalFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = OptionalFloat{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return f.Set(s)
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid number %s: %w", data, err)
	}
	*f = Some(v)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f OptionalFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Set parses s; an empty string clears the value. Used for flags and query strings.
func (f *OptionalFloat) Set(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*f = OptionalFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, err)
	}
	*f = Some(v)
	return nil
}

// String implements flag.Value.
func (f *OptionalFloat) String() string {
	if f == nil || !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}

// DateRange is accepted on input but does not affect filtering or scoring yet.
type DateRange struct {
	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`
}

// SearchFilters narrows and orders results. Zero-valued fields disable their filter.
type SearchFilters struct {
	Category  string        `json:"category,omitempty"`
	PriceMin  OptionalFloat `json:"priceMin"`
	PriceMax  OptionalFloat `json:"priceMax"`
	Rating    OptionalFloat `json:"rating"`
	DateRange *DateRange    `json:"dateRange,omitempty"`
	Location  string        `json:"location,omitempty"`
	SortBy    SortBy        `json:"sortBy,omitempty"`
	SortOrder SortOrder     `json:"sortOrder,omitempty"`
}

// SearchParams is a search request.
type SearchParams struct {
	Query   string         `json:"query"`
	Type    string         `json:"type,omitempty"`
	Filters *SearchFilters `json:"filters,omitempty"`
	Page    int            `json:"page,omitempty"`
	Limit   int            `json:"limit,omitempty"`
}

// Normalize returns a copy of p with defaults filled: page 1, limit defaultLimit,
// limit capped at maxLimit (when maxLimit > 0), and an empty filter set. p and its
// filters are left untouched.
func (p *SearchParams) Normalize(defaultLimit, maxLimit int) *SearchParams {
	out := *p
	if out.Filters != nil {
		f := *out.Filters
		out.Filters = &f
	}
	p = &out
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Filters == nil {
		p.Filters = &SearchFilters{}
	}
	return p
}

// EntityType returns the normalized type filter, or "" for all types.
func (p *SearchParams) EntityType() EntityType {
	return NormalizeEntityType(p.Type)
}
