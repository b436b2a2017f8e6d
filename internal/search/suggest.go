package search

import "strings"

const (
	maxSuggestions     = 5
	maxRelatedSearches = 4
)

var suggestionVocabulary = []string{
	"react developer",
	"react native app",
	"web design",
	"logo design",
	"ui ux design",
	"mobile app development",
	"web development",
	"freelance writer",
	"freelance photographer",
	"bitcoin price",
	"ethereum staking",
	"crypto trading",
	"wireless headphones",
	"smart watch",
	"digital marketing",
	"data analysis",
	"video editing",
	"javascript tutorial",
}

type relatedEntry struct {
	keyword string
	terms   []string
}

// Order matters: the first keyword contained in the query wins.
var relatedTable = []relatedEntry{
	{"react", []string{"react hooks", "react native", "next.js", "redux"}},
	{"design", []string{"ui design", "graphic design", "figma", "branding"}},
	{"crypto", []string{"bitcoin", "ethereum", "defi", "nft marketplace"}},
	{"development", []string{"web development", "mobile development", "full stack", "api development"}},
	{"freelance", []string{"remote jobs", "freelance projects", "contract work", "top freelancers"}},
}

var relatedFallback = []string{"trending products", "top freelancers", "popular posts", "crypto market"}

var popularSearches = []string{
	"react developer",
	"logo design",
	"wireless headphones",
	"bitcoin",
	"web development",
	"photography",
	"freelance writer",
	"smart watch",
}

var trendingTopics = []string{
	"AI tools",
	"remote work",
	"ethereum",
	"sustainable fashion",
	"home office setup",
	"short-form video",
}

// Suggestions returns up to five phrases from a fixed vocabulary that either
// contain the query or whose first word the query contains. It does not look at
// search results.
func Suggestions(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]string, 0, maxSuggestions)
	for _, phrase := range suggestionVocabulary {
		if len(out) == maxSuggestions {
			break
		}
		first := phrase
		if i := strings.IndexByte(phrase, ' '); i >= 0 {
			first = phrase[:i]
		}
		if strings.Contains(phrase, q) || strings.Contains(q, first) {
			out = append(out, phrase)
		}
	}
	return out
}

// RelatedSearches returns up to four terms related to the first known keyword the
// query contains, or a generic fallback list.
func RelatedSearches(query string) []string {
	q := strings.ToLower(query)
	for _, e := range relatedTable {
		if strings.Contains(q, e.keyword) {
			return capped(e.terms, maxRelatedSearches)
		}
	}
	return capped(relatedFallback, maxRelatedSearches)
}

// PopularSearches returns the fixed list of popular queries.
func PopularSearches() []string {
	return append([]string(nil), popularSearches...)
}

// TrendingTopics returns the fixed list of trending topics.
func TrendingTopics() []string {
	return append([]string(nil), trendingTopics...)
}

func capped(terms []string, n int) []string {
	if len(terms) > n {
		terms = terms[:n]
	}
	return append([]string(nil), terms...)
}
