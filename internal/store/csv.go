// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/paperwatch/pkg/types"
)

// csvHeader is the fixed column order of the flat file.
var csvHeader = []string{"title", "paper_url", "github_url", "published", "keywords"}

// CSVStore persists records as rows of a UTF-8 tabular file. Append mode
// serves incremental runs; overwrite mode truncates the file at construction
// for one-shot exports.
type CSVStore struct {
	path string
}

// NewCSVStore prepares the flat file. In overwrite mode any existing file is
// replaced with a fresh header immediately, so a subsequent
// ExistingPaperURLs sees an empty set. In append mode the file is left
// untouched; the header is written lazily on first persist.
func NewCSVStore(cfg types.CSVConfig) (*CSVStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("csv store: missing file path")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("csv store: creating directory %s: %w", dir, err)
		}
	}

	s := &CSVStore{path: cfg.Path}
	if cfg.Overwrite {
		if err := s.writeHeader(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Name returns the backend identifier.
func (s *CSVStore) Name() string { return "csv" }

func (s *CSVStore) writeHeader() error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("csv store: creating %s: %w", s.path, err)
	}
	w := csv.NewWriter(f)
	w.Write(csvHeader)
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("csv store: writing header: %w", err)
	}
	return f.Close()
}

// Persist appends one row, creating the file with a header first when it
// does not exist yet.
func (s *CSVStore) Persist(_ context.Context, view types.StoredView) error {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		if err := s.writeHeader(); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", s.path, err)
	}

	w := csv.NewWriter(f)
	w.Write([]string{
		view.Title,
		view.PaperURL,
		view.RepositoryURL,
		view.PublishedDate,
		view.KeywordsJoined(),
	})
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("writing row: %w", err)
	}
	return f.Close()
}

// ExistingPaperURLs reads the whole file and collects the paper_url column.
// A missing file yields an empty set, not a failure; a malformed file is an
// error because silently dropping dedup keys would create duplicates.
func (s *CSVStore) ExistingPaperURLs(_ context.Context) (map[string]struct{}, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("opening %s: %w", s.path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	urls := make(map[string]struct{})
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if row[1] != "" {
			urls[row[1]] = struct{}{}
		}
	}
	return urls, nil
}
