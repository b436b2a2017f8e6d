package fixtures

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/atsume/internal/models"
)

func TestDefault(t *testing.T) {
	d := Default()
	if d.Len() < 15 {
		t.Fatalf("default dataset has %d records", d.Len())
	}
	if d.Origin() != BuiltinOrigin {
		t.Errorf("Origin = %q", d.Origin())
	}
	seen := make(map[models.EntityType]bool)
	for _, r := range d.Results() {
		seen[r.Type] = true
	}
	for _, typ := range models.AllEntityTypes {
		if !seen[typ] {
			t.Errorf("default dataset has no %s records", typ)
		}
	}
}

func TestDefault_ElectronicsPrices(t *testing.T) {
	var prices []float64
	for _, r := range Default().Results() {
		if strings.EqualFold(r.Category, "Electronics") {
			p, ok := r.Price()
			if !ok {
				t.Fatalf("electronics item %s has no price", r.ID)
			}
			prices = append(prices, p)
		}
	}
	if len(prices) != 2 || prices[0] != 199.99 || prices[1] != 299.99 {
		t.Errorf("electronics prices = %v", prices)
	}
}

func TestDataset_ResultsIsACopy(t *testing.T) {
	d := New([]models.SearchResult{{ID: "1", Type: models.TypePost, Title: "a"}}, "test")
	got := d.Results()
	got[0].Title = "changed"
	if d.Results()[0].Title != "a" {
		t.Error("mutating Results() changed the dataset")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing id", "records:\n  - {type: post, title: x}\n", "missing id"},
		{"missing title", "records:\n  - {id: a, type: post}\n", "missing title"},
		{"unknown type", "records:\n  - {id: a, type: weather, title: x}\n", "unknown type"},
		{"duplicate", "records:\n  - {id: a, type: post, title: x}\n  - {id: a, type: posts, title: y}\n", "duplicate"},
		{"bad yaml", "records: [", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml), "test")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestParse_PluralTypeAndAttributes(t *testing.T) {
	data := `
records:
  - id: j1
    type: Jobs
    title: Go developer
    price: 900
    location: Remote
    remote: true
    timestamp: 2024-01-02T03:04:05Z
`
	d, err := Parse([]byte(data), "test")
	if err != nil {
		t.Fatal(err)
	}
	r := d.Results()[0]
	if r.Type != models.TypeJob {
		t.Errorf("Type = %q", r.Type)
	}
	if p, ok := r.Price(); !ok || p != 900 {
		t.Errorf("budget = %v, %v", p, ok)
	}
	if ts, ok := r.Timestamp(); !ok || ts.Year() != 2024 {
		t.Errorf("Timestamp = %v, %v", ts, ok)
	}
}

func TestParse_UnpricedProduct(t *testing.T) {
	data := `
records:
  - id: p1
    type: product
    title: Handmade vase
    category: Home
`
	d, err := Parse([]byte(data), "test")
	if err != nil {
		t.Fatal(err)
	}
	r := d.Results()[0]
	if p, ok := r.Price(); ok {
		t.Errorf("Price = %v, want absent", p)
	}
	if rec := models.RecordOf(&r); rec.Price != nil {
		t.Errorf("RecordOf wrote price %v", *rec.Price)
	}
}

func writeFixtures(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestReloader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	writeFixtures(t, path, "records:\n  - {id: a, type: post, title: first}\n")

	r, err := NewReloader(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Current().Len() != 1 || r.Current().Origin() != path {
		t.Fatalf("initial dataset: %d from %s", r.Current().Len(), r.Current().Origin())
	}

	writeFixtures(t, path, "records:\n  - {id: a, type: post, title: first}\n  - {id: b, type: video, title: second}\n")
	if err := r.Reload(); err != nil {
		t.Fatal(err)
	}
	if r.Current().Len() != 2 {
		t.Errorf("after reload: %d records", r.Current().Len())
	}

	writeFixtures(t, path, "records: [")
	if err := r.Reload(); err == nil {
		t.Error("expected reload error for broken file")
	}
	if r.Current().Len() != 2 {
		t.Errorf("broken file replaced dataset: %d records", r.Current().Len())
	}
}

func TestNewReloader_MissingFile(t *testing.T) {
	if _, err := NewReloader(filepath.Join(t.TempDir(), "none.yaml"), nil); err == nil {
		t.Error("expected error")
	}
}
