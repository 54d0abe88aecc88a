// Package store persists mining runs and their patterns in the destination database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dbsmedya/lppminer/internal/logger"
	"github.com/dbsmedya/lppminer/internal/mining"
	"github.com/dbsmedya/lppminer/internal/sqlutil"
)

// RunStatus is the lifecycle state of a mining run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// insertChunk bounds the rows per multi-row INSERT.
const insertChunk = 500

const createRunTableSQL = `
CREATE TABLE IF NOT EXISTS lpp_run (
	run_id CHAR(36) PRIMARY KEY,
	job_name VARCHAR(255) NOT NULL,
	engine VARCHAR(16) NOT NULL,
	min_support INT NOT NULL,
	min_gap_count INT NOT NULL,
	min_period INT NOT NULL,
	max_depth INT NOT NULL,
	run_status VARCHAR(20) NOT NULL DEFAULT 'running',
	observations BIGINT NOT NULL DEFAULT 0,
	days INT NOT NULL DEFAULT 0,
	frequent_items INT NOT NULL DEFAULT 0,
	pattern_count INT NOT NULL DEFAULT 0,
	nodes_visited BIGINT NOT NULL DEFAULT 0,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	error_message TEXT,
	started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	finished_at TIMESTAMP NULL,
	INDEX idx_job_started (job_name, started_at),
	INDEX idx_status (run_status)
) ENGINE=InnoDB;
`

// One row per item of a pattern; (seq, position) restores acceptance order
// and item order.
const createPatternTableSQL = `
CREATE TABLE IF NOT EXISTS lpp_pattern (
	run_id CHAR(36) NOT NULL,
	seq INT NOT NULL,
	position SMALLINT NOT NULL,
	item VARCHAR(255) NOT NULL,
	PRIMARY KEY (run_id, seq, position),
	INDEX idx_item (item),
	FOREIGN KEY (run_id) REFERENCES lpp_run(run_id) ON DELETE CASCADE
) ENGINE=InnoDB;
`

// Run is a stored mining run.
type Run struct {
	RunID         string
	JobName       string
	Engine        mining.EngineKind
	MinSupport    int
	MinGapCount   int
	MinPeriod     int
	MaxDepth      int
	Status        RunStatus
	Observations  int64
	Days          int
	FrequentItems int
	Patterns      int
	NodesVisited  int64
	Duration      time.Duration
	ErrorMessage  string
	StartedAt     time.Time
	FinishedAt    *time.Time
}

// ResultStore records mining runs and their accepted patterns.
type ResultStore struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewResultStore creates a ResultStore on the destination connection.
func NewResultStore(db *sql.DB, log *logger.Logger) (*ResultStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &ResultStore{db: db, logger: log}, nil
}

// InitializeTables creates lpp_run and lpp_pattern if they don't exist.
func (s *ResultStore) InitializeTables(ctx context.Context) error {
	s.logger.Debug("Initializing result tables")

	if _, err := s.db.ExecContext(ctx, createRunTableSQL); err != nil {
		return fmt.Errorf("failed to create lpp_run table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, createPatternTableSQL); err != nil {
		return fmt.Errorf("failed to create lpp_pattern table: %w", err)
	}

	s.logger.Info("Result tables initialized")
	return nil
}

// BeginRun inserts a running row for job and returns its run ID.
func (s *ResultStore) BeginRun(ctx context.Context, jobName string, engine mining.EngineKind, th mining.Thresholds) (string, error) {
	runID := uuid.NewString()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO lpp_run (run_id, job_name, engine, min_support, min_gap_count, min_period, max_depth, run_status) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		runID, jobName, string(engine), th.MinSupport, th.MinGapCount, th.MinPeriod, th.MaxDepth, RunStatusRunning,
	)
	if err != nil {
		return "", fmt.Errorf("failed to begin run for job %q: %w", jobName, err)
	}

	s.logger.Debugw("Run started", "run_id", runID, "job", jobName, "engine", engine)
	return runID, nil
}

// SavePatterns writes all patterns of a run in one transaction.
func (s *ResultStore) SavePatterns(ctx context.Context, runID string, patterns []mining.Pattern) error {
	type itemRow struct {
		seq, position int
		item          string
	}
	var rows []itemRow
	for seq, p := range patterns {
		for pos, item := range p {
			rows = append(rows, itemRow{seq: seq, position: pos, item: item})
		}
	}
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for start := 0; start < len(rows); start += insertChunk {
		end := min(start+insertChunk, len(rows))
		chunk := rows[start:end]

		args := make([]interface{}, 0, len(chunk)*4)
		for _, r := range chunk {
			args = append(args, runID, r.seq, r.position, r.item)
		}
		query := "INSERT INTO lpp_pattern (run_id, seq, position, item) VALUES " + sqlutil.ValuesRows(len(chunk), 4)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert patterns for run %s: %w", runID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit patterns for run %s: %w", runID, err)
	}

	s.logger.Debugw("Patterns saved", "run_id", runID, "patterns", len(patterns), "rows", len(rows))
	return nil
}

// CompleteRun marks a run completed and records its statistics.
func (s *ResultStore) CompleteRun(ctx context.Context, runID string, stats mining.Stats) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE lpp_run SET run_status = ?, observations = ?, days = ?, frequent_items = ?, pattern_count = ?, nodes_visited = ?, duration_ms = ?, finished_at = CURRENT_TIMESTAMP WHERE run_id = ?",
		RunStatusCompleted, stats.Observations, stats.Days, stats.FrequentItems, stats.Patterns, stats.NodesVisited, stats.Duration.Milliseconds(), runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run %s: %w", runID, err)
	}
	return nil
}

// FailRun marks a run failed with msg.
func (s *ResultStore) FailRun(ctx context.Context, runID, msg string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE lpp_run SET run_status = ?, error_message = ?, finished_at = CURRENT_TIMESTAMP WHERE run_id = ?",
		RunStatusFailed, msg, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark run %s failed: %w", runID, err)
	}

	s.logger.Warnf("Run %s marked failed: %s", runID, msg)
	return nil
}

// GetRun loads one run. It returns sql.ErrNoRows, wrapped, for an unknown ID.
func (s *ResultStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	var (
		r          Run
		engine     string
		status     string
		durationMS int64
		errMsg     sql.NullString
		finished   sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT run_id, job_name, engine, min_support, min_gap_count, min_period, max_depth, run_status, observations, days, frequent_items, pattern_count, nodes_visited, duration_ms, error_message, started_at, finished_at FROM lpp_run WHERE run_id = ?",
		runID,
	).Scan(&r.RunID, &r.JobName, &engine, &r.MinSupport, &r.MinGapCount, &r.MinPeriod, &r.MaxDepth, &status,
		&r.Observations, &r.Days, &r.FrequentItems, &r.Patterns, &r.NodesVisited, &durationMS, &errMsg, &r.StartedAt, &finished)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}

	r.Engine = mining.EngineKind(engine)
	r.Status = RunStatus(status)
	r.Duration = time.Duration(durationMS) * time.Millisecond
	r.ErrorMessage = errMsg.String
	if finished.Valid {
		r.FinishedAt = &finished.Time
	}
	return &r, nil
}

// LoadPatterns returns a run's patterns in their stored order.
func (s *ResultStore) LoadPatterns(ctx context.Context, runID string) ([]mining.Pattern, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT seq, item FROM lpp_pattern WHERE run_id = ? ORDER BY seq ASC, position ASC",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns for run %s: %w", runID, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Warnf("Failed to close rows: %v", err)
		}
	}()

	var (
		patterns []mining.Pattern
		lastSeq  = -1
	)
	for rows.Next() {
		var (
			seq  int
			item string
		)
		if err := rows.Scan(&seq, &item); err != nil {
			return nil, fmt.Errorf("failed to scan pattern row: %w", err)
		}
		if seq != lastSeq {
			patterns = append(patterns, mining.Pattern{})
			lastSeq = seq
		}
		patterns[len(patterns)-1] = append(patterns[len(patterns)-1], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating patterns for run %s: %w", runID, err)
	}
	return patterns, nil
}

// ListRuns returns the most recent runs of a job, newest first.
func (s *ResultStore) ListRuns(ctx context.Context, jobName string, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, engine, run_status, pattern_count, started_at FROM lpp_run WHERE job_name = ? ORDER BY started_at DESC LIMIT ?",
		jobName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs for job %q: %w", jobName, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Warnf("Failed to close rows: %v", err)
		}
	}()

	var runs []Run
	for rows.Next() {
		var (
			r      Run
			engine string
			status string
		)
		if err := rows.Scan(&r.RunID, &engine, &status, &r.Patterns, &r.StartedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.JobName = jobName
		r.Engine = mining.EngineKind(engine)
		r.Status = RunStatus(status)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
