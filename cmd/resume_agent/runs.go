package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-optimizer/internal/observability"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded optimization runs",
	Long:  "Lists runs recorded by optimize from PostgreSQL (--db-url) or a local SQLite database (--sqlite).",
	RunE:  runRuns,
}

var (
	runsDatabaseURL string
	runsSQLitePath  string
	runsLimit       int
	runsJSON        bool
)

func init() {
	runsCmd.Flags().StringVar(&runsDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	runsCmd.Flags().StringVar(&runsSQLitePath, "sqlite", "", "Path to SQLite run history (optional, defaults to RESUME_AGENT_SQLITE env var)")
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Maximum runs to list")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "Print JSON instead of a summary box")

	rootCmd.AddCommand(runsCmd)
}

func runRuns(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	databaseURL := runsDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	sqlitePath := runsSQLitePath
	if sqlitePath == "" {
		sqlitePath = os.Getenv("RESUME_AGENT_SQLITE")
	}
	if runsLimit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}

	store, closer, err := openRunStore(ctx, databaseURL, sqlitePath)
	if err != nil {
		return fmt.Errorf("failed to open metrics store: %w", err)
	}
	if store == nil {
		return fmt.Errorf("either --db-url or --sqlite must be provided")
	}
	defer func() { _ = closer.Close() }()

	runs, err := store.List(ctx, runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if runsJSON {
		return writeJSON("", runs)
	}
	observability.NewPrinter(os.Stdout).PrintRuns(runs)
	return nil
}
