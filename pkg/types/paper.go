// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paperwatch pipeline.
package types

import (
	"strings"
	"time"
)

// PaperRecord represents one preprint returned by the feed query after
// keyword and date filtering. Records are immutable once filtered except
// for RepositoryURL, which the enrichment stage fills in before the record
// reaches a store.
type PaperRecord struct {
	// Title is the paper title as returned by the feed.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in feed order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the full paper abstract as returned by the feed.
	Abstract string `json:"abstract" yaml:"abstract"`

	// PaperURL is the canonical link to the paper's PDF. It is stable and
	// unique per paper version, and serves as the dedup key across all
	// storage backends.
	PaperURL string `json:"paper_url" yaml:"paper_url"`

	// EntryID is the feed's entry identifier (e.g. the arXiv abs URL).
	EntryID string `json:"entry_id" yaml:"entry_id"`

	// PublishedAt is the submission timestamp reported by the feed.
	PublishedAt time.Time `json:"published_at" yaml:"published_at"`

	// UpdatedAt is the last-updated timestamp reported by the feed.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`

	// Categories lists the feed categories the paper was filed under.
	Categories []string `json:"categories" yaml:"categories"`

	// MatchedKeywords holds the keyword list the record was filtered
	// against, in the order the user supplied it.
	MatchedKeywords []string `json:"matched_keywords" yaml:"matched_keywords"`

	// RepositoryURL is the code-repository link found by the enrichment
	// stage, or empty when none was found. Absence is an expected outcome.
	RepositoryURL string `json:"repository_url,omitempty" yaml:"repository_url,omitempty"`
}

// StoredView is the projection of a PaperRecord that stores persist.
// One PaperRecord maps to exactly one StoredView per store.
type StoredView struct {
	Title         string   `json:"title" yaml:"title"`
	PaperURL      string   `json:"paper_url" yaml:"paper_url"`
	RepositoryURL string   `json:"repository_url,omitempty" yaml:"repository_url,omitempty"`
	PublishedDate string   `json:"published" yaml:"published"`
	Keywords      []string `json:"keywords" yaml:"keywords"`
}

// StoredDateFormat is the date-only layout used for StoredView.PublishedDate.
const StoredDateFormat = "2006-01-02"

// View projects the record into its persisted form. The published date is
// rendered as a UTC calendar date.
func (p PaperRecord) View() StoredView {
	return StoredView{
		Title:         p.Title,
		PaperURL:      p.PaperURL,
		RepositoryURL: p.RepositoryURL,
		PublishedDate: p.PublishedAt.UTC().Format(StoredDateFormat),
		Keywords:      p.MatchedKeywords,
	}
}

// KeywordsJoined renders the keyword list as the human-readable
// comma-space-delimited string used by the flat-file store.
func (v StoredView) KeywordsJoined() string {
	return strings.Join(v.Keywords, ", ")
}
