// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paperwatch/pkg/types"
)

// SQLiteStore persists records in a local SQLite database. The paper URL is
// the primary key, so Persist is an upsert and re-persisting an existing
// record never raises.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and its schema.
func NewSQLiteStore(cfg types.SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite store: missing database path")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite store: creating directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("sqlite store: opening database: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS papers (
		paper_url TEXT PRIMARY KEY,
		title TEXT,
		repository_url TEXT,
		published TEXT,
		keywords TEXT
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite store: creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Name returns the backend identifier.
func (s *SQLiteStore) Name() string { return "sqlite" }

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Persist upserts one record keyed by paper URL.
func (s *SQLiteStore) Persist(ctx context.Context, view types.StoredView) error {
	const stmt = `INSERT INTO papers (paper_url, title, repository_url, published, keywords)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(paper_url) DO UPDATE SET
			title = excluded.title,
			repository_url = excluded.repository_url,
			published = excluded.published,
			keywords = excluded.keywords`
	_, err := s.db.ExecContext(ctx, stmt,
		view.PaperURL, view.Title, view.RepositoryURL, view.PublishedDate, view.KeywordsJoined())
	if err != nil {
		return fmt.Errorf("upserting %s: %w", view.PaperURL, err)
	}
	return nil
}

// ExistingPaperURLs scans the paper_url column.
func (s *SQLiteStore) ExistingPaperURLs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT paper_url FROM papers`)
	if err != nil {
		return nil, fmt.Errorf("querying paper URLs: %w", err)
	}
	defer rows.Close()

	urls := make(map[string]struct{})
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scanning paper URL: %w", err)
		}
		urls[u] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating paper URLs: %w", err)
	}
	return urls, nil
}

// AllViews returns every persisted record ordered by published date then
// paper URL. The export command uses it to rewrite a CSV snapshot.
func (s *SQLiteStore) AllViews(ctx context.Context) ([]types.StoredView, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT paper_url, title, repository_url, published, keywords
		 FROM papers ORDER BY published, paper_url`)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var views []types.StoredView
	for rows.Next() {
		var v types.StoredView
		var keywords string
		if err := rows.Scan(&v.PaperURL, &v.Title, &v.RepositoryURL, &v.PublishedDate, &keywords); err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		if keywords != "" {
			v.Keywords = strings.Split(keywords, ", ")
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating papers: %w", err)
	}
	return views, nil
}
