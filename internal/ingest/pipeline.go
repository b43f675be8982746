// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest orchestrates one batch run: fetch, dedupe against the
// store, enrich with a repository link, and persist record by record.
package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/paperwatch/internal/store"
	"github.com/pdiddy/paperwatch/pkg/types"
)

// Source fetches filtered paper records for the batch.
type Source interface {
	Fetch(ctx context.Context) ([]types.PaperRecord, error)
}

// Extractor finds a repository link for one record, or "" when none exists.
type Extractor interface {
	Extract(ctx context.Context, paperURL, abstract string, w io.Writer) string
}

// BatchResult holds the outcome of one batch run.
type BatchResult struct {
	Attempted       int
	Persisted       int
	SkippedExisting int
	Failed          int
}

// HasFailures reports whether any record failed to persist.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Run executes one batch. A fetch failure or an incomplete dedup snapshot is
// fatal; everything after that is per-record. Records are processed strictly
// in fetch order, the existing-URL snapshot is taken once for the whole
// batch, and a persist failure for one record never stops the ones behind
// it. Successfully persisted records stay persisted regardless of later
// failures; there is no rollback.
func Run(ctx context.Context, src Source, ex Extractor, st store.Store, w io.Writer) (BatchResult, error) {
	var result BatchResult

	records, err := src.Fetch(ctx)
	if err != nil {
		return result, fmt.Errorf("fetching papers: %w", err)
	}
	fmt.Fprintf(w, "Found %d paper(s) matching the criteria\n", len(records))

	existing, err := st.ExistingPaperURLs(ctx)
	if err != nil {
		return result, fmt.Errorf("reading existing papers from %s store: %w", st.Name(), err)
	}

	for _, record := range records {
		result.Attempted++

		if _, ok := existing[record.PaperURL]; ok {
			fmt.Fprintf(w, "skipped: %s (already recorded)\n", record.Title)
			result.SkippedExisting++
			continue
		}

		record.RepositoryURL = ex.Extract(ctx, record.PaperURL, record.Abstract, w)

		if err := st.Persist(ctx, record.View()); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", record.Title, err)
			result.Failed++
			continue
		}

		if record.RepositoryURL != "" {
			fmt.Fprintf(w, "added:   %s (repo: %s)\n", record.Title, record.RepositoryURL)
		} else {
			fmt.Fprintf(w, "added:   %s\n", record.Title)
		}
		result.Persisted++
	}

	fmt.Fprintf(w, "\nBatch summary: %d added, %d skipped, %d failed (attempted: %d)\n",
		result.Persisted, result.SkippedExisting, result.Failed, result.Attempted)
	return result, nil
}
