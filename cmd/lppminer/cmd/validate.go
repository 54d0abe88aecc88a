package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/lppminer/internal/config"
	"github.com/dbsmedya/lppminer/internal/database"
	"github.com/dbsmedya/lppminer/internal/logger"
	"github.com/dbsmedya/lppminer/internal/miner"
	"github.com/dbsmedya/lppminer/internal/mining"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and run preflight checks",
	Long: `Validate checks the configuration file and runs preflight checks
against every job's input to ensure mining can start.

Checks performed:
  - Configuration syntax, required fields and mining thresholds
  - Database connectivity (source, destination) for jobs that need it
  - Table existence for MySQL inputs
  - Key, item and date column existence and date column type
  - CSV input file presence

Example:
  lppminer validate --config lppminer.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(GetCLIOverrides())
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n=== Configuration Validation ===\n")
	fmt.Fprintf(out, "Config file: %s\n", configFile)
	fmt.Fprintf(out, "Jobs found: %d\n\n", len(cfg.Jobs))

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return fmt.Errorf("configuration is invalid")
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log.Info("Starting validation checks...")

	ctx := context.Background()

	dbManager := database.NewManager(cfg)
	if err := dbManager.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to databases: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.Ping(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	jobNames := cfg.ListJobs()
	sort.Strings(jobNames)

	hasErrors := false
	for _, jobName := range jobNames {
		jobCfg, _ := cfg.GetJob(jobName)
		input := jobCfg.Input.WithDefaults()

		fmt.Fprintf(out, "--- Job: %s ---\n", jobName)
		fmt.Fprintf(out, "Engine: %s\n", jobCfg.EngineName())

		fmt.Fprintf(out, "Input: %s\n", describeInput(input))

		if err := validateJob(ctx, cfg, jobName, jobCfg, dbManager, log); err != nil {
			fmt.Fprintf(out, "❌ %v\n\n", err)
			hasErrors = true
			continue
		}

		fmt.Fprintf(out, "✅ All checks passed\n\n")
	}

	if hasErrors {
		return fmt.Errorf("validation failed for one or more jobs")
	}

	fmt.Fprintln(out, "=== Validation Complete ===")
	fmt.Fprintln(out, "✅ All jobs validated successfully")
	return nil
}

// validateJob builds the job's engine and checks that its input is readable.
func validateJob(ctx context.Context, cfg *config.Config, jobName string, jobCfg *config.JobConfig, dbManager *database.Manager, log *logger.Logger) error {
	kind, err := mining.ParseEngineKind(jobCfg.Engine)
	if err != nil {
		return err
	}
	if err := miner.Thresholds(cfg.GetJobMining(jobName)).Validate(kind); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}

	input := jobCfg.Input.WithDefaults()
	switch input.Kind {
	case config.InputCSV:
		info, err := os.Stat(input.Path)
		if err != nil {
			return fmt.Errorf("csv input: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("csv input %s is a directory", input.Path)
		}
		return nil
	default:
		checker, err := miner.NewPreflightChecker(dbManager.Source, cfg.Source.Database, input, log.WithJob(jobName))
		if err != nil {
			return fmt.Errorf("failed to create preflight checker: %w", err)
		}
		if err := checker.RunAllChecks(ctx); err != nil {
			return fmt.Errorf("preflight checks failed: %w", err)
		}
		return nil
	}
}

func describeInput(in config.InputConfig) string {
	if in.Kind == config.InputCSV {
		return fmt.Sprintf("csv %s (item=%s, date=%s)", in.Path, in.ItemColumn, in.DateColumn)
	}
	return fmt.Sprintf("mysql %s (id=%s, item=%s, date=%s)", in.Table, in.IDColumn, in.ItemColumn, in.DateColumn)
}
