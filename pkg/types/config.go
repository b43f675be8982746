// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paperwatch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FeedConfig holds settings for the feed query stage.
type FeedConfig struct {
	HTTPConfig `yaml:",inline"`

	// Category is the feed category the query is scoped to (e.g. "cs.LG").
	Category string `json:"category" yaml:"category"`

	// MaxResults caps the number of candidates requested from the feed.
	// It bounds candidates considered, not records returned: the feed may
	// truncate before the date window is exhausted.
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ExtractConfig holds settings for the repository-link extraction stage.
type ExtractConfig struct {
	HTTPConfig `yaml:",inline"`
}

// NotionConfig holds settings for the Notion-backed store.
type NotionConfig struct {
	HTTPConfig `yaml:",inline"`

	// Token is the Notion integration token.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// DatabaseID identifies the database pages are created under.
	DatabaseID string `json:"database_id" yaml:"database_id"`
}

// CSVConfig holds settings for the flat-file store.
type CSVConfig struct {
	// Path is the CSV file location.
	Path string `json:"path" yaml:"path"`

	// Overwrite selects full-overwrite mode (one-shot exports) instead of
	// the default append mode (incremental runs).
	Overwrite bool `json:"overwrite" yaml:"overwrite"`
}

// SQLiteConfig holds settings for the SQLite-backed store.
type SQLiteConfig struct {
	// Path is the database file location.
	Path string `json:"path" yaml:"path"`
}
