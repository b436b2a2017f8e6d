package keyword

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/atsume/internal/models"
)

func newTestIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex("")
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	ctx := context.Background()
	docs := []models.SearchResult{
		{ID: "p1", Type: models.TypeProduct, Title: "Wireless Headphones", Description: "Noise cancelling over-ear headphones", Category: "Electronics", Tags: []string{"audio", "bluetooth"}},
		{ID: "s1", Type: models.TypeService, Title: "Logo Design", Description: "Custom brand identity", Category: "Design", Tags: []string{"branding"}},
		{ID: "v1", Type: models.TypeVideo, Title: "React Hooks Explained", Description: "A tutorial on hooks", Category: "Education", Tags: []string{"react", "javascript"}},
	}
	for i := range docs {
		if err := idx.Index(ctx, string(docs[i].Type)+":"+docs[i].ID, &docs[i]); err != nil {
			t.Fatalf("Index: %v", err)
		}
	}
	return idx
}

func TestBleveIndex_SearchFindsTitleAndTags(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	results, err := idx.Search(ctx, "headphones", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 || results[0].ID != "product:p1" {
		t.Fatalf("expected product:p1 first, got %+v", results)
	}

	results, err = idx.Search(ctx, "branding", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "service:s1" {
		t.Errorf("tag search: got %+v", results)
	}
}

func TestBleveIndex_EmptyQueryMatchesAll(t *testing.T) {
	idx := newTestIndex(t)
	results, err := idx.Search(context.Background(), "", 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Errorf("got %d results, want 3", len(results))
	}
}

func TestBleveIndex_TypeRestriction(t *testing.T) {
	idx := newTestIndex(t)
	results, err := idx.Search(context.Background(), "", 10, &SearchOptions{Type: models.TypeVideo})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "video:v1" {
		t.Errorf("got %+v", results)
	}
}

func TestBleveIndex_Fuzzy(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	exact, err := idx.Search(ctx, "headphnes", 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(exact) != 0 {
		t.Errorf("misspelled query should not match without fuzzy, got %+v", exact)
	}
	fuzzy, err := idx.Search(ctx, "headphnes", 10, &SearchOptions{FuzzyEnabled: true, Fuzziness: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(fuzzy) == 0 || fuzzy[0].ID != "product:p1" {
		t.Errorf("fuzzy search: got %+v", fuzzy)
	}
}

func TestBleveIndex_DocCount(t *testing.T) {
	idx := newTestIndex(t)
	if n, err := idx.DocCount(); err != nil || n != 3 {
		t.Fatalf("DocCount = %d, %v; want 3", n, err)
	}
	doc := &models.SearchResult{ID: "p1", Type: models.TypeProduct, Title: "Wired Headphones"}
	if err := idx.Index(context.Background(), "product:p1", doc); err != nil {
		t.Fatal(err)
	}
	if n, _ := idx.DocCount(); n != 3 {
		t.Errorf("re-indexing an id should replace it, DocCount = %d", n)
	}
}

func TestNewBleveIndex_OnDiskReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bleve")
	idx, err := NewBleveIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	doc := &models.SearchResult{ID: "u1", Type: models.TypeUser, Title: "Ada Lovelace"}
	if err := idx.Index(context.Background(), "user:u1", doc); err != nil {
		t.Fatal(err)
	}
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}
	reopened, err := NewBleveIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if n, _ := reopened.DocCount(); n != 1 {
		t.Errorf("DocCount after reopen = %d, want 1", n)
	}
}
