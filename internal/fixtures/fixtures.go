// Package fixtures holds the static fallback dataset searched when no live source
// returns results.
package fixtures

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/atsume/internal/models"
)

//go:embed default.yaml
var defaultYAML []byte

// BuiltinOrigin is the Origin of the embedded default dataset.
const BuiltinOrigin = "builtin"

// Dataset is an immutable set of results. The slice it was built from is copied
// on construction and every read returns a fresh copy.
type Dataset struct {
	results  []models.SearchResult
	origin   string
	loadedAt time.Time
}

// New returns a dataset holding a copy of results.
func New(results []models.SearchResult, origin string) *Dataset {
	return &Dataset{
		results:  append([]models.SearchResult(nil), results...),
		origin:   origin,
		loadedAt: time.Now(),
	}
}

// Results returns a copy of the dataset's results in file order.
func (d *Dataset) Results() []models.SearchResult {
	if d == nil {
		return nil
	}
	return append([]models.SearchResult(nil), d.results...)
}

// Len returns the number of results.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.results)
}

// Origin is the file path the dataset was read from, or BuiltinOrigin.
func (d *Dataset) Origin() string {
	if d == nil {
		return ""
	}
	return d.origin
}

// LoadedAt returns when the dataset was built.
func (d *Dataset) LoadedAt() time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.loadedAt
}

// Provider supplies the current dataset. Implementations must be safe for
// concurrent use.
type Provider interface {
	Current() *Dataset
}

// Static is a Provider that always returns the same dataset.
type Static struct {
	dataset *Dataset
}

// NewStatic wraps d in a Provider.
func NewStatic(d *Dataset) *Static {
	return &Static{dataset: d}
}

// Current implements Provider.
func (s *Static) Current() *Dataset { return s.dataset }

var (
	defaultOnce    sync.Once
	defaultDataset *Dataset
)

// Default returns the embedded dataset.
func Default() *Dataset {
	defaultOnce.Do(func() {
		d, err := Parse(defaultYAML, BuiltinOrigin)
		if err != nil {
			panic(fmt.Sprintf("fixtures: invalid embedded dataset: %v", err))
		}
		defaultDataset = d
	})
	return defaultDataset
}

// file is the on-disk shape of a fixture or catalog file.
type file struct {
	Records []models.Record `yaml:"records"`
}

// Load reads a YAML dataset from path.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes a YAML dataset. Every record needs an id, a title and a known
// type, and ids must be unique per type.
func Parse(data []byte, origin string) (*Dataset, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	results := make([]models.SearchResult, 0, len(f.Records))
	seen := make(map[string]bool, len(f.Records))
	for i := range f.Records {
		rec := &f.Records[i]
		rec.Type = models.NormalizeEntityType(string(rec.Type))
		switch {
		case strings.TrimSpace(rec.ID) == "":
			return nil, fmt.Errorf("record %d: missing id", i)
		case strings.TrimSpace(rec.Title) == "":
			return nil, fmt.Errorf("record %d (%s): missing title", i, rec.ID)
		case !rec.Type.Known():
			return nil, fmt.Errorf("record %d (%s): unknown type %q", i, rec.ID, rec.Type)
		}
		key := string(rec.Type) + ":" + rec.ID
		if seen[key] {
			return nil, fmt.Errorf("record %d: duplicate id %s", i, key)
		}
		seen[key] = true
		results = append(results, rec.Result())
	}
	return New(results, origin), nil
}
