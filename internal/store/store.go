// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists paper records. Every backend presents the same two
// capabilities so the pipeline stays storage-agnostic: a complete snapshot
// of already-persisted paper URLs, and a single-record persist that never
// fails the batch on its own.
package store

import (
	"context"

	"github.com/pdiddy/paperwatch/pkg/types"
)

// Store is the persistence capability set. Dedup is the caller's
// responsibility: Persist must not fail for "already exists".
type Store interface {
	// Name returns the backend identifier for status output.
	Name() string

	// ExistingPaperURLs returns every paper URL already persisted. It must
	// be complete (paginating through all existing records where the
	// backend pages) before any dedup decision in a batch.
	ExistingPaperURLs(ctx context.Context) (map[string]struct{}, error)

	// Persist writes one record. A failure is scoped to that record.
	Persist(ctx context.Context, view types.StoredView) error
}
