// Package cli provides CLI output helpers for atsume.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hyperjump/atsume/internal/models"
	"github.com/hyperjump/atsume/pkg/utils"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputCompact prints one tab-separated line per result.
	OutputCompact SearchOutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// ParseOutputFormat maps a flag value to a format. Unknown values are an error.
func ParseOutputFormat(s string) (SearchOutputFormat, error) {
	switch f := SearchOutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", OutputText:
		return OutputText, nil
	case OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
	}
}

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		for i := range response.Results {
			writeCompact(w, &response.Results[i])
		}
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\nFound %d results in %dms (page %d of %d, %s)\n\n",
		response.TotalCount, response.QueryTime, response.CurrentPage, response.TotalPages, response.Source)
	for i := range response.Results {
		writeOneResult(w, &response.Results[i])
	}
	if len(response.Suggestions) > 0 {
		fmt.Fprintf(w, "Suggestions: %s\n", strings.Join(response.Suggestions, ", "))
	}
	if len(response.RelatedSearches) > 0 {
		fmt.Fprintf(w, "Related: %s\n", strings.Join(response.RelatedSearches, ", "))
	}
	if cats := response.Facets.Categories; len(cats) > 0 {
		parts := make([]string, len(cats))
		for i, c := range cats {
			parts[i] = fmt.Sprintf("%s (%d)", c.Key, c.Count)
		}
		fmt.Fprintf(w, "Categories: %s\n", strings.Join(parts, ", "))
	}
}

func writeOneResult(w io.Writer, r *models.SearchResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "[%s] %s\n", r.Type, r.Title)
	fmt.Fprintf(w, "ID: %s\n", r.ID)
	if details := detailLine(r); details != "" {
		fmt.Fprintln(w, details)
	}
	if r.Author != nil && r.Author.Name != "" {
		fmt.Fprintf(w, "By: %s\n", r.Author.Name)
	}
	if r.Description != "" {
		fmt.Fprintf(w, "\n%s\n", utils.Truncate(r.Description, 200))
	}
	fmt.Fprintln(w)
}

// detailLine joins the attributes that are present, e.g. "Price: 19.99 | Rating: 4.5".
func detailLine(r *models.SearchResult) string {
	var parts []string
	if r.Category != "" {
		parts = append(parts, "Category: "+r.Category)
	}
	if p, ok := r.Price(); ok {
		parts = append(parts, "Price: "+formatNumber(p))
	}
	if v, ok := r.Rating(); ok {
		parts = append(parts, "Rating: "+formatNumber(v))
	}
	if loc, ok := r.Location(); ok && loc != "" {
		parts = append(parts, "Location: "+loc)
	}
	return strings.Join(parts, " | ")
}

func writeCompact(w io.Writer, r *models.SearchResult) {
	price := "-"
	if p, ok := r.Price(); ok {
		price = formatNumber(p)
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Type, r.ID, price, utils.Truncate(r.Title, 60))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteStrings prints a titled, numbered list, or "(none)" when empty.
func WriteStrings(w io.Writer, title string, items []string) {
	fmt.Fprintf(w, "%s:\n", title)
	if len(items) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for i, item := range items {
		fmt.Fprintf(w, "  %d. %s\n", i+1, item)
	}
}
