package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDatabaseSize(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "analytics.db")

	got, err := DatabaseSize(db)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("missing database: got %d bytes, want 0", got)
	}

	if err := os.WriteFile(db, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(db+"-wal", []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err = DatabaseSize(db)
	if err != nil {
		t.Fatal(err)
	}
	if got != 8 {
		t.Errorf("db+wal: got %d bytes, want 8", got)
	}

	// Unrelated files in the same directory are not counted.
	if err := os.WriteFile(filepath.Join(dir, "other.db"), []byte("xxxx"), 0644); err != nil {
		t.Fatal(err)
	}
	got, _ = DatabaseSize(db)
	if got != 8 {
		t.Errorf("with sibling file: got %d bytes, want 8", got)
	}

	if got, _ := DatabaseSize(""); got != 0 {
		t.Errorf("empty path: got %d", got)
	}
}
