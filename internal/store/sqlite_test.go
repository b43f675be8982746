// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pdiddy/paperwatch/pkg/types"
)

func testSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(types.SQLiteConfig{Path: filepath.Join(t.TempDir(), "papers.db")})
	if err != nil {
		t.Fatalf("NewSQLiteStore() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := testSQLiteStore(t)
	ctx := context.Background()

	for _, u := range []string{"http://arxiv.org/pdf/1", "http://arxiv.org/pdf/2"} {
		if err := s.Persist(ctx, sampleView(u)); err != nil {
			t.Fatalf("Persist(%s) error: %v", u, err)
		}
	}

	got, err := s.ExistingPaperURLs(ctx)
	if err != nil {
		t.Fatalf("ExistingPaperURLs() error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestSQLitePersistIsUpsert(t *testing.T) {
	s := testSQLiteStore(t)
	ctx := context.Background()

	v := sampleView("http://arxiv.org/pdf/1")
	if err := s.Persist(ctx, v); err != nil {
		t.Fatalf("Persist() error: %v", err)
	}

	// Re-persisting the same paper URL must not raise; it updates in place.
	v.Title = "Updated Title"
	if err := s.Persist(ctx, v); err != nil {
		t.Fatalf("second Persist() error: %v", err)
	}

	views, err := s.AllViews(ctx)
	if err != nil {
		t.Fatalf("AllViews() error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("len(views) = %d, want 1", len(views))
	}
	if views[0].Title != "Updated Title" {
		t.Errorf("Title = %q, want updated value", views[0].Title)
	}
}

func TestSQLiteAllViews(t *testing.T) {
	s := testSQLiteStore(t)
	ctx := context.Background()

	early := sampleView("http://arxiv.org/pdf/2")
	early.PublishedDate = "2024-01-14"
	late := sampleView("http://arxiv.org/pdf/1")
	late.PublishedDate = "2024-01-15"

	if err := s.Persist(ctx, late); err != nil {
		t.Fatalf("Persist() error: %v", err)
	}
	if err := s.Persist(ctx, early); err != nil {
		t.Fatalf("Persist() error: %v", err)
	}

	views, err := s.AllViews(ctx)
	if err != nil {
		t.Fatalf("AllViews() error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("len(views) = %d, want 2", len(views))
	}
	if views[0].PublishedDate != "2024-01-14" {
		t.Errorf("views not ordered by published date: %+v", views)
	}
	if len(views[0].Keywords) != 2 || views[0].Keywords[0] != "diffusion" {
		t.Errorf("Keywords = %v, want split back from joined string", views[0].Keywords)
	}
}

func TestSQLiteRequiresPath(t *testing.T) {
	if _, err := NewSQLiteStore(types.SQLiteConfig{}); err == nil {
		t.Error("NewSQLiteStore() should fail without a path")
	}
}
