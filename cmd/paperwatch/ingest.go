// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperwatch/internal/feed"
	"github.com/pdiddy/paperwatch/internal/ingest"
	"github.com/pdiddy/paperwatch/internal/repolink"
	"github.com/pdiddy/paperwatch/internal/store"
	"github.com/pdiddy/paperwatch/pkg/types"
)

const (
	defaultTimeout    = 60 * time.Second
	defaultCategory   = "cs.LG"
	defaultMaxResults = 1000
	defaultUserAgent  = "paperwatch/0.1"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch, filter, enrich, and record papers for one day",
	Long: `Ingest queries arXiv for papers submitted on the target date in the given
category, keeps the ones whose abstract contains at least one keyword,
attaches a code-repository link where one can be found, and records each new
paper in the selected store. Already-recorded papers are skipped; a failed
record is reported and counted without stopping the batch.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("keywords", "", "comma-separated keywords to match in abstracts")
	ingestCmd.Flags().String("date", "", "target submission date, UTC (YYYY-MM-DD, default: yesterday)")
	ingestCmd.Flags().String("category", "", "arXiv category to watch (default cs.LG)")
	ingestCmd.Flags().Int("max-results", 0, "maximum candidates requested from the feed (default 1000)")
	ingestCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	ingestCmd.Flags().String("store", "", "destination: notion, csv, or sqlite (default csv)")
	ingestCmd.Flags().String("csv-path", "papers.csv", "CSV file path for the csv store")
	ingestCmd.Flags().String("db-path", "papers.db", "database file path for the sqlite store")
	ingestCmd.Flags().String("notion-token", "", "Notion integration token (default: .secrets/notion-token)")
	ingestCmd.Flags().String("notion-database-id", "", "Notion database ID (default: .secrets/notion-database-id)")
	ingestCmd.Flags().String("watch-file", "", "YAML watch file supplying keywords, category, and store; run outcomes are appended to it")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	keywordsFlag, _ := cmd.Flags().GetString("keywords")
	dateFlag, _ := cmd.Flags().GetString("date")
	category, _ := cmd.Flags().GetString("category")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	backend, _ := cmd.Flags().GetString("store")
	csvPath, _ := cmd.Flags().GetString("csv-path")
	dbPath, _ := cmd.Flags().GetString("db-path")
	notionToken, _ := cmd.Flags().GetString("notion-token")
	notionDatabaseID, _ := cmd.Flags().GetString("notion-database-id")
	watchPath, _ := cmd.Flags().GetString("watch-file")

	var keywords []string
	if keywordsFlag != "" {
		keywords = splitKeywords(keywordsFlag)
	}

	// A watch file supplies whatever the flags left unset.
	var watch *feed.WatchFile
	if watchPath != "" {
		wf, err := feed.ReadWatchFile(watchPath)
		if err != nil {
			return err
		}
		watch = wf
		if len(keywords) == 0 {
			keywords = wf.Watch.Keywords
		}
		if category == "" {
			category = wf.Watch.Category
		}
		if maxResults == 0 {
			maxResults = wf.Watch.MaxResults
		}
		if backend == "" {
			backend = wf.Store.Backend
		}
		if wf.Store.CSVPath != "" {
			csvPath = wf.Store.CSVPath
		}
		if wf.Store.SQLitePath != "" {
			dbPath = wf.Store.SQLitePath
		}
		if notionDatabaseID == "" {
			notionDatabaseID = wf.Store.NotionDatabaseID
		}
	}

	if len(keywords) == 0 {
		return fmt.Errorf("provide keywords via --keywords or a watch file")
	}
	if category == "" {
		category = defaultCategory
	}
	if maxResults == 0 {
		maxResults = defaultMaxResults
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}
	if backend == "" {
		backend = "csv"
	}

	target, err := targetDate(dateFlag)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: timeout}

	// Store construction validates credentials and paths before any fetch.
	st, closeStore, err := buildStore(backend, csvPath, dbPath, notionToken, notionDatabaseID, client, timeout)
	if err != nil {
		return err
	}
	defer closeStore()

	src := &feed.Source{
		Client:   client,
		Keywords: keywords,
		Target:   target,
		Config: types.FeedConfig{
			HTTPConfig: types.HTTPConfig{Timeout: timeout, UserAgent: defaultUserAgent},
			Category:   category,
			MaxResults: maxResults,
		},
	}
	ex := &repolink.Extractor{
		Client: client,
		Config: types.ExtractConfig{
			HTTPConfig: types.HTTPConfig{Timeout: timeout, UserAgent: defaultUserAgent},
		},
	}

	fmt.Fprintf(os.Stdout, "Watching %s for %s, keywords: %s, store: %s\n",
		category, target.Format(types.StoredDateFormat), strings.Join(keywords, ", "), st.Name())

	result, err := ingest.Run(cmd.Context(), src, ex, st, os.Stdout)
	if err != nil {
		return err
	}

	if watch != nil {
		watch.AppendRun(feed.RunRecord{
			Date:            target.Format(types.StoredDateFormat),
			Attempted:       result.Attempted,
			Persisted:       result.Persisted,
			SkippedExisting: result.SkippedExisting,
			Failed:          result.Failed,
		})
		if err := feed.WriteWatchFile(watchPath, watch); err != nil {
			return err
		}
	}

	if result.HasFailures() {
		return fmt.Errorf("%d paper(s) failed to persist", result.Failed)
	}
	return nil
}

// buildStore assembles the selected backend. The returned close function is
// a no-op for backends without connections to release.
func buildStore(backend, csvPath, dbPath, notionToken, notionDatabaseID string, client *http.Client, timeout time.Duration) (store.Store, func(), error) {
	switch backend {
	case "notion":
		cfg := types.NotionConfig{
			HTTPConfig: types.HTTPConfig{Timeout: timeout, UserAgent: defaultUserAgent},
			Token:      secretDefault("notion-token", notionToken),
			DatabaseID: secretDefault("notion-database-id", notionDatabaseID),
		}
		s, err := store.NewNotionStore(cfg, client)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case "csv":
		s, err := store.NewCSVStore(types.CSVConfig{Path: csvPath})
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case "sqlite":
		s, err := store.NewSQLiteStore(types.SQLiteConfig{Path: dbPath})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q: use notion, csv, or sqlite", backend)
	}
}

// targetDate parses the --date flag, defaulting to yesterday in UTC.
func targetDate(flag string) (time.Time, error) {
	if flag == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1), nil
	}
	t, err := time.Parse(types.StoredDateFormat, flag)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: use YYYY-MM-DD", flag)
	}
	return t, nil
}

func splitKeywords(s string) []string {
	var keywords []string
	for _, k := range strings.Split(s, ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}
