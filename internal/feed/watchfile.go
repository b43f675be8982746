// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feed

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

// WatchFile is the on-disk representation of a recurring watch: the query
// parameters, the store selection, and the history of past runs. A cron job
// can point the CLI at one file and keep an auditable record per run.
type WatchFile struct {
	Watch WatchParams `yaml:"watch"`
	Store StoreParams `yaml:"store"`
	Runs  []RunRecord `yaml:"runs,omitempty"`
}

// WatchParams stores the query parameters in a serializable form.
type WatchParams struct {
	Keywords   []string `yaml:"keywords"`
	Category   string   `yaml:"category"`
	MaxResults int      `yaml:"max_results,omitempty"`
}

// StoreParams stores the destination selection. Credentials never go in the
// watch file; the Notion token comes from secrets or flags at run time.
type StoreParams struct {
	Backend          string `yaml:"backend"`
	CSVPath          string `yaml:"csv_path,omitempty"`
	SQLitePath       string `yaml:"sqlite_path,omitempty"`
	NotionDatabaseID string `yaml:"notion_database_id,omitempty"`
}

// RunRecord stores one batch outcome with a timestamp.
type RunRecord struct {
	Date            string    `yaml:"date"`
	Attempted       int       `yaml:"attempted"`
	Persisted       int       `yaml:"persisted"`
	SkippedExisting int       `yaml:"skipped_existing"`
	Failed          int       `yaml:"failed"`
	Timestamp       time.Time `yaml:"timestamp"`
}

// ReadWatchFile loads a watch file from disk.
func ReadWatchFile(path string) (*WatchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading watch file: %w", err)
	}
	var wf WatchFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parsing watch file: %w", err)
	}
	return &wf, nil
}

// WriteWatchFile saves the watch file back to disk.
func WriteWatchFile(path string, wf *WatchFile) error {
	data, err := yaml.Marshal(wf)
	if err != nil {
		return fmt.Errorf("marshaling watch file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// AppendRun records one batch outcome in the run history.
func (wf *WatchFile) AppendRun(rec RunRecord) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	wf.Runs = append(wf.Runs, rec)
}
