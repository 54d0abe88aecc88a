package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/lppminer/internal/database"
	"github.com/dbsmedya/lppminer/internal/logger"
	"github.com/dbsmedya/lppminer/internal/report"
	"github.com/dbsmedya/lppminer/internal/store"
)

var (
	runsJob   string
	runsLimit int
	showRunID string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs of a job",
	Long: `Runs lists the most recent runs of a job recorded in the destination
database, newest first.

Example:
  lppminer runs --config lppminer.yaml --job weekly_items --limit 5`,
	RunE: runRuns,
}

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Show a stored run and its patterns",
	Long: `Patterns prints a run recorded in the destination database together
with the patterns it accepted, in acceptance order.

Example:
  lppminer patterns --config lppminer.yaml --run 3b1f5a52-8c1e-4d7a-9f0b-2a6c1d9e4f11`,
	RunE: runPatterns,
}

func init() {
	runsCmd.Flags().StringVarP(&runsJob, "job", "j", "",
		"Job name from configuration file (required)")
	runsCmd.MarkFlagRequired("job")
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 10,
		"Maximum number of runs to show")

	patternsCmd.Flags().StringVar(&showRunID, "run", "",
		"Run ID (required)")
	patternsCmd.MarkFlagRequired("run")

	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(patternsCmd)
}

// openResultStore connects to the destination and returns its result store.
func openResultStore(ctx context.Context) (*store.ResultStore, *database.Manager, error) {
	cfg, err := loadConfig(GetCLIOverrides())
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	dbManager := database.NewManager(cfg)
	if err := dbManager.ConnectDestination(ctx); err != nil {
		return nil, nil, err
	}

	results, err := store.NewResultStore(dbManager.Destination, log)
	if err != nil {
		_ = dbManager.Close()
		return nil, nil, err
	}
	return results, dbManager, nil
}

func runRuns(cmd *cobra.Command, args []string) error {
	if runsLimit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}
	ctx := context.Background()

	results, dbManager, err := openResultStore(ctx)
	if err != nil {
		return err
	}
	defer dbManager.Close()

	runs, err := results.ListRuns(ctx, runsJob, runsLimit)
	if err != nil {
		return err
	}

	report.NewPrinter(cmd.OutOrStdout(), !GetCLIOverrides().NoColor).Runs(runsJob, runs)
	return nil
}

func runPatterns(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	results, dbManager, err := openResultStore(ctx)
	if err != nil {
		return err
	}
	defer dbManager.Close()

	run, err := results.GetRun(ctx, showRunID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("run %s not found", showRunID)
		}
		return err
	}

	patterns, err := results.LoadPatterns(ctx, run.RunID)
	if err != nil {
		return err
	}

	report.NewPrinter(cmd.OutOrStdout(), !GetCLIOverrides().NoColor).StoredRun(run, patterns)
	return nil
}
