// Package storage provides SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/atsume/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS search_events (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		normalized_query TEXT NOT NULL,
		entity_type TEXT,
		result_count INTEGER NOT NULL,
		source TEXT,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_search_events_created_at ON search_events(created_at);
	CREATE INDEX IF NOT EXISTS idx_search_events_query ON search_events(normalized_query);

	CREATE TABLE IF NOT EXISTS click_events (
		id TEXT PRIMARY KEY,
		result_id TEXT NOT NULL,
		result_type TEXT NOT NULL,
		position INTEGER NOT NULL,
		query TEXT,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_click_events_created_at ON click_events(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string { return s.path }

const (
	insertSearch = `INSERT INTO search_events (id, query, normalized_query, entity_type, result_count, source, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	insertClick = `INSERT INTO click_events (id, result_id, result_type, position, query, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func prepareSearch(ev *models.SearchEvent) {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
}

func prepareClick(ev *models.ClickEvent) {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
}

func execSearch(ctx context.Context, db execer, ev *models.SearchEvent) error {
	prepareSearch(ev)
	_, err := db.ExecContext(ctx, insertSearch,
		ev.ID, ev.Query, normalizeQuery(ev.Query), string(ev.Type), ev.ResultCount, string(ev.Source), ev.DurationMs, ev.CreatedAt.UnixMilli(),
	)
	return err
}

func execClick(ctx context.Context, db execer, ev *models.ClickEvent) error {
	prepareClick(ev)
	_, err := db.ExecContext(ctx, insertClick,
		ev.ID, ev.ResultID, string(ev.ResultType), ev.Position, ev.Query, ev.CreatedAt.UnixMilli(),
	)
	return err
}

// RecordSearch inserts a search event. Empty ID and CreatedAt are filled in.
func (s *SQLiteStorage) RecordSearch(ctx context.Context, ev *models.SearchEvent) error {
	return execSearch(ctx, s.db, ev)
}

// RecordClick inserts a click event. Empty ID and CreatedAt are filled in.
func (s *SQLiteStorage) RecordClick(ctx context.Context, ev *models.ClickEvent) error {
	return execClick(ctx, s.db, ev)
}

// BatchRecord inserts searches and clicks in a single transaction.
func (s *SQLiteStorage) BatchRecord(ctx context.Context, searches []*models.SearchEvent, clicks []*models.ClickEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, ev := range searches {
		if err := execSearch(ctx, tx, ev); err != nil {
			return fmt.Errorf("insert search event: %w", err)
		}
	}
	for _, ev := range clicks {
		if err := execClick(ctx, tx, ev); err != nil {
			return fmt.Errorf("insert click event: %w", err)
		}
	}
	return tx.Commit()
}

// TopQueries returns the most frequent non-empty queries since the given time,
// grouped case-insensitively. Ties are ordered by query.
func (s *SQLiteStorage) TopQueries(ctx context.Context, since time.Time, limit int) ([]models.QueryCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT normalized_query, COUNT(*) AS n
		 FROM search_events
		 WHERE created_at >= ? AND normalized_query != ''
		 GROUP BY normalized_query
		 ORDER BY n DESC, normalized_query ASC
		 LIMIT ?`,
		since.UnixMilli(), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.QueryCount{}
	for rows.Next() {
		var qc models.QueryCount
		if err := rows.Scan(&qc.Query, &qc.Count); err != nil {
			return nil, err
		}
		out = append(out, qc)
	}
	return out, rows.Err()
}

// CountSearches returns the number of searches since the given time.
func (s *SQLiteStorage) CountSearches(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_events WHERE created_at >= ?`, since.UnixMilli()).Scan(&count)
	return count, err
}

// CountZeroResultSearches returns the number of searches that found nothing.
func (s *SQLiteStorage) CountZeroResultSearches(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM search_events WHERE created_at >= ? AND result_count = 0`, since.UnixMilli(),
	).Scan(&count)
	return count, err
}

// CountClicks returns the number of result clicks since the given time.
func (s *SQLiteStorage) CountClicks(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM click_events WHERE created_at >= ?`, since.UnixMilli()).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
