package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/lppminer/internal/config"
	"github.com/dbsmedya/lppminer/internal/database"
	"github.com/dbsmedya/lppminer/internal/lock"
	"github.com/dbsmedya/lppminer/internal/logger"
	"github.com/dbsmedya/lppminer/internal/miner"
)

var (
	mineJob   string
	mineForce bool
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine periodic patterns for a job",
	Long: `Mine loads the job's transactions, mines periodic patterns with the
configured engine and, when the job has store enabled, records the run and
its patterns in the destination database.

The mine process follows these steps:
  1. Load observations (MySQL keyset pages or a CSV export)
  2. Group them into day baskets and keep the frequent items
  3. Grow patterns with the flat or depth engine
  4. Persist the run (store: true) and print the result

Example:
  lppminer mine --config lppminer.yaml --job weekly_items`,
	RunE: runMine,
}

func init() {
	mineCmd.Flags().StringVarP(&mineJob, "job", "j", "",
		"Job name from configuration file (required)")
	mineCmd.MarkFlagRequired("job")

	mineCmd.Flags().BoolVar(&mineForce, "force", false,
		"Force execution even if job lock cannot be acquired (use with caution)")

	rootCmd.AddCommand(mineCmd)
}

func runMine(cmd *cobra.Command, args []string) error {
	return runJob(cmd, mineJob, false, mineForce)
}

// runJob mines one job. Dry runs never write results and never take the
// job lock.
func runJob(cmd *cobra.Command, jobName string, dryRun, force bool) error {
	overrides := GetCLIOverrides()
	if err := checkOutputFormat(overrides.Output); err != nil {
		return err
	}

	cfg, err := loadConfig(overrides)
	if err != nil {
		return err
	}

	jobCfg, err := cfg.GetJob(jobName)
	if err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Infow("Starting mining operation",
		"job", jobName,
		"config", GetConfigFile(),
		"dry_run", dryRun,
	)

	ctx, cancel := database.SetupSignalHandler(func(sig os.Signal) {
		log.Warnw("Received shutdown signal - stopping mining", "signal", sig.String())
	})
	defer cancel()

	dbManager := database.NewManager(cfg)
	if err := connectForJob(ctx, dbManager, jobCfg, !dryRun); err != nil {
		return err
	}
	defer dbManager.Close()

	if !dryRun {
		release, err := acquireJobLock(ctx, dbManager, jobName, force, log)
		if err != nil {
			return err
		}
		defer release()
	}

	orch, err := miner.NewOrchestrator(cfg, jobName, jobCfg, dbManager)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	orch.SetLogger(log)
	orch.SetMiningConfig(cfg.ApplyJobOverrides(jobName,
		overrides.MinSupport, overrides.MinPeriod, overrides.MaxDepth, overrides.Workers))

	if err := orch.Initialize(); err != nil {
		return fmt.Errorf("orchestrator initialization failed: %w", err)
	}

	var result *miner.MiningResult
	if dryRun {
		result, err = orch.DryRun(ctx)
	} else {
		result, err = orch.Execute(ctx)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Mining operation cancelled by user")
			return nil
		}
		return fmt.Errorf("mining failed: %w", err)
	}

	return renderResult(cmd.OutOrStdout(), result, overrides)
}

// connectForJob opens only the connections jobCfg needs: the source for
// MySQL input, the destination when results are stored.
func connectForJob(ctx context.Context, dbManager *database.Manager, jobCfg *config.JobConfig, withDestination bool) error {
	if jobCfg.Input.WithDefaults().Kind == config.InputMySQL {
		if err := dbManager.ConnectSource(ctx); err != nil {
			return err
		}
	}
	if withDestination && jobCfg.Store {
		if err := dbManager.ConnectDestination(ctx); err != nil {
			_ = dbManager.Close()
			return err
		}
	}

	if err := dbManager.Ping(ctx); err != nil {
		_ = dbManager.Close()
		return fmt.Errorf("database connection failed: %w", err)
	}
	return nil
}

// lockDB picks the server that holds the job lock: the source when the job
// reads MySQL, otherwise the destination. CSV jobs without store have none.
func lockDB(dbManager *database.Manager) *sql.DB {
	if dbManager.Source != nil {
		return dbManager.Source
	}
	return dbManager.Destination
}

// acquireJobLock takes the job's advisory lock and returns its release func.
func acquireJobLock(ctx context.Context, dbManager *database.Manager, jobName string, force bool, log *logger.Logger) (func(), error) {
	noop := func() {}

	if force {
		log.Warnw("Skipping advisory lock acquisition (--force flag used)", "job", jobName)
		return noop, nil
	}

	db := lockDB(dbManager)
	if db == nil {
		log.Debugw("No database connection; running without job lock", "job", jobName)
		return noop, nil
	}

	jobLock := lock.NewJobLock(db, jobName)
	if err := jobLock.AcquireOrFail(ctx); err != nil {
		if errors.Is(err, lock.ErrLockTimeout) {
			return nil, fmt.Errorf("job '%s' is already running on another instance (use --force to override)", jobName)
		}
		return nil, fmt.Errorf("failed to acquire job lock: %w", err)
	}
	log.Infow("Acquired advisory lock for job", "job", jobName, "lock", jobLock.LockName())

	return func() {
		if _, err := jobLock.ReleaseLock(context.Background()); err != nil {
			log.Warnw("Failed to release job lock", "job", jobName, "error", err)
		}
	}, nil
}
