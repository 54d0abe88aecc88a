package miner

import (
	"context"
	"fmt"
	"time"

	"github.com/dbsmedya/lppminer/internal/config"
	"github.com/dbsmedya/lppminer/internal/database"
	"github.com/dbsmedya/lppminer/internal/ingest"
	"github.com/dbsmedya/lppminer/internal/logger"
	"github.com/dbsmedya/lppminer/internal/mining"
	"github.com/dbsmedya/lppminer/internal/store"
	"github.com/dbsmedya/lppminer/internal/types"
)

// MiningResult contains the outcome and statistics of one job run.
type MiningResult struct {
	JobName     string
	RunID       string // Empty unless the result was stored
	Engine      mining.EngineKind
	Thresholds  mining.Thresholds
	Load        types.LoadStats
	Result      *mining.Result
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Stored      bool
}

// Orchestrator coordinates one mining job: load observations, mine them and,
// for jobs with store enabled, record the run in the destination database.
type Orchestrator struct {
	config      *config.Config
	jobConfig   *config.JobConfig
	jobName     string
	dbManager   *database.Manager
	logger      *logger.Logger
	miningCfg   config.MiningConfig  // Effective mining config (job-specific or global)
	loadingCfg  config.LoadingConfig // Effective loading config (job-specific or global)
	input       config.InputConfig
	engine      mining.Engine
	initialized bool
}

// NewOrchestrator creates an orchestrator for jobName. It must be
// initialized with Initialize() before use.
func NewOrchestrator(cfg *config.Config, jobName string, jobCfg *config.JobConfig, dbManager *database.Manager) (*Orchestrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if jobCfg == nil {
		return nil, fmt.Errorf("job config is nil")
	}
	if dbManager == nil {
		return nil, fmt.Errorf("database manager is nil")
	}

	return &Orchestrator{
		config:     cfg,
		jobName:    jobName,
		jobConfig:  jobCfg,
		dbManager:  dbManager,
		logger:     logger.NewDefault().WithJob(jobName),
		miningCfg:  jobCfg.GetJobMining(cfg.Mining),
		loadingCfg: jobCfg.GetJobLoading(cfg.Loading),
		input:      jobCfg.Input.WithDefaults(),
	}, nil
}

// SetLogger replaces the default logger.
func (o *Orchestrator) SetLogger(log *logger.Logger) {
	o.logger = log.WithJob(o.jobName)
}

// SetMiningConfig replaces the effective mining config, e.g. with CLI
// overrides applied. It has no effect after Initialize.
func (o *Orchestrator) SetMiningConfig(m config.MiningConfig) {
	if !o.initialized {
		o.miningCfg = m
	}
}

// Initialize builds the engine and checks that the connections the job
// needs are open.
func (o *Orchestrator) Initialize() error {
	if o.initialized {
		return nil
	}

	kind, err := mining.ParseEngineKind(o.jobConfig.Engine)
	if err != nil {
		return fmt.Errorf("job %q: %w", o.jobName, err)
	}

	o.logger.Infow("Initializing mining orchestrator",
		"engine", kind,
		"input", o.input.Kind,
	)

	engine, err := mining.NewEngine(kind, Thresholds(o.miningCfg), o.logger.WithEngine(string(kind)))
	if err != nil {
		return fmt.Errorf("job %q: %w", o.jobName, err)
	}

	switch o.input.Kind {
	case config.InputMySQL:
		if o.dbManager.Source == nil {
			return fmt.Errorf("job %q reads mysql input but the source database is not connected", o.jobName)
		}
	case config.InputCSV:
		if o.input.Path == "" {
			return fmt.Errorf("job %q has no csv path", o.jobName)
		}
	default:
		return fmt.Errorf("job %q: unknown input kind %q", o.jobName, o.input.Kind)
	}

	o.engine = engine
	o.initialized = true

	th := engine.Thresholds()
	o.logger.Infow("Orchestrator initialized successfully",
		"min_support", th.MinSupport,
		"min_gap_count", th.MinGapCount,
		"min_period", th.MinPeriod,
		"max_depth", th.MaxDepth,
		"workers", th.Workers,
	)
	return nil
}

// IsInitialized returns true if the orchestrator has been initialized.
func (o *Orchestrator) IsInitialized() bool {
	return o.initialized
}

// Engine returns the configured engine, or nil before Initialize.
func (o *Orchestrator) Engine() mining.Engine {
	return o.engine
}

// Execute runs the job and, when the job has store enabled, records the run
// and its patterns. A failed run is marked failed before the error returns.
func (o *Orchestrator) Execute(ctx context.Context) (*MiningResult, error) {
	return o.run(ctx, o.jobConfig.Store)
}

// DryRun mines the job without writing anything to the destination.
func (o *Orchestrator) DryRun(ctx context.Context) (*MiningResult, error) {
	return o.run(ctx, false)
}

func (o *Orchestrator) run(ctx context.Context, persist bool) (*MiningResult, error) {
	if !o.initialized {
		return nil, fmt.Errorf("orchestrator not initialized")
	}
	if ctx == nil {
		return nil, fmt.Errorf("context is nil")
	}

	result := &MiningResult{
		JobName:    o.jobName,
		Engine:     o.engine.Kind(),
		Thresholds: o.engine.Thresholds(),
		StartedAt:  time.Now(),
	}
	log := o.logger

	var results *store.ResultStore
	if persist {
		if o.dbManager.Destination == nil {
			return nil, fmt.Errorf("job %q stores results but the destination database is not connected", o.jobName)
		}
		var err error
		results, err = store.NewResultStore(o.dbManager.Destination, o.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create result store: %w", err)
		}
		if err := results.InitializeTables(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize result tables: %w", err)
		}
		runID, err := results.BeginRun(ctx, o.jobName, result.Engine, result.Thresholds)
		if err != nil {
			return nil, err
		}
		result.RunID = runID
		log = log.WithRun(runID)
	}

	fail := func(err error) (*MiningResult, error) {
		if results != nil {
			// ctx may be the reason we are failing; record on a fresh deadline.
			failCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if ferr := results.FailRun(failCtx, result.RunID, err.Error()); ferr != nil {
				log.Warnw("Failed to mark run failed", "error", ferr)
			}
		}
		return nil, err
	}

	log.Infow("Starting mining execution",
		"engine", result.Engine,
		"persist", persist,
	)

	observations, loadStats, err := o.loadObservations(ctx)
	if err != nil {
		return fail(fmt.Errorf("failed to load observations: %w", err))
	}
	result.Load = loadStats

	mined, err := mining.Mine(ctx, observations, o.engine)
	if err != nil {
		return fail(err)
	}
	result.Result = mined

	if persist {
		if err := results.SavePatterns(ctx, result.RunID, mined.Patterns.Patterns()); err != nil {
			return fail(err)
		}
		if err := results.CompleteRun(ctx, result.RunID, mined.Stats); err != nil {
			return fail(err)
		}
		result.Stored = true
	}

	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)

	log.Infow("Mining execution completed",
		"duration", result.Duration,
		"observations", mined.Stats.Observations,
		"days", mined.Stats.Days,
		"frequent_items", mined.Stats.FrequentItems,
		"patterns", mined.Stats.Patterns,
		"nodes_visited", mined.Stats.NodesVisited,
		"stored", result.Stored,
	)
	return result, nil
}

func (o *Orchestrator) loadObservations(ctx context.Context) ([]mining.Observation, types.LoadStats, error) {
	switch o.input.Kind {
	case config.InputCSV:
		csvResult, err := ingest.LoadCSVFile(o.input.Path, ingest.CSVOptions{
			ItemColumn: o.input.ItemColumn,
			DateColumn: o.input.DateColumn,
		})
		if err != nil {
			return nil, types.LoadStats{}, err
		}
		if csvResult.Stats.DroppedRows > 0 {
			o.logger.Warnw("Dropped unreadable csv rows",
				"dropped_rows", csvResult.Stats.DroppedRows,
				"first", csvResult.Errors[0].Error(),
			)
		}
		return csvResult.Observations, csvResult.Stats, nil

	default:
		fetcher := ingest.NewObservationFetcher(
			o.dbManager.Source,
			o.input.Table,
			o.input.IDColumn,
			o.input.ItemColumn,
			o.input.DateColumn,
			o.input.Where,
			o.loadingCfg.BatchSize,
			nil,
		)
		loader := ingest.NewLoader(o.loadingCfg, o.logger, o.jobName)
		observations, err := loader.Run(ctx, fetcher)
		if err != nil {
			return nil, loader.Stats(), err
		}
		return observations, loader.Stats(), nil
	}
}
