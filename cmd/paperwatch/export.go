// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperwatch/internal/store"
	"github.com/pdiddy/paperwatch/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the sqlite store to a CSV snapshot",
	Long: `Export reads every recorded paper from the sqlite store and rewrites the
CSV file from scratch. Unlike ingest, which appends, export replaces the
file, so it produces a clean one-shot snapshot.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("db-path", "papers.db", "database file path for the sqlite store")
	exportCmd.Flags().String("csv-path", "papers.csv", "CSV file to (re)write")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("db-path")
	csvPath, _ := cmd.Flags().GetString("csv-path")

	src, err := store.NewSQLiteStore(types.SQLiteConfig{Path: dbPath})
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := store.NewCSVStore(types.CSVConfig{Path: csvPath, Overwrite: true})
	if err != nil {
		return err
	}

	views, err := src.AllViews(cmd.Context())
	if err != nil {
		return err
	}

	failed := 0
	for _, v := range views {
		if err := dst.Persist(cmd.Context(), v); err != nil {
			fmt.Fprintf(os.Stdout, "failed:  %s (%v)\n", v.Title, err)
			failed++
		}
	}

	fmt.Fprintf(os.Stdout, "Exported %d paper(s) to %s\n", len(views)-failed, csvPath)
	if failed > 0 {
		return fmt.Errorf("%d paper(s) failed to export", failed)
	}
	return nil
}
