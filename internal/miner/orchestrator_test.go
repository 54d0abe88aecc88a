package miner

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/lppminer/internal/config"
	"github.com/dbsmedya/lppminer/internal/database"
	"github.com/dbsmedya/lppminer/internal/logger"
	"github.com/dbsmedya/lppminer/internal/mining"
)

// A on three days a month apart, B twice four days apart, plus one row
// with an unreadable date.
const scenarioCSV = `InvoiceNo,StockCode,InvoiceDate
1,A,2011-01-01 09:00
2,B,2011-01-01 09:05
3,B,2011-01-05 10:00
4,C,yesterday
5,A,2011-02-01 11:00
6,A,2011-03-01 12:00
`

const sourceFirstPageQuery = "SELECT `id`, `stock_code`, `invoice_date` FROM `invoice_lines` WHERE \\(1=1\\) ORDER BY `id` ASC LIMIT \\?"

const sourcePageQuery = "SELECT `id`, `stock_code`, `invoice_date` FROM `invoice_lines` WHERE \\(1=1\\) AND `id` > \\? ORDER BY `id` ASC LIMIT \\?"

func writeScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "retail.csv")
	require.NoError(t, os.WriteFile(path, []byte(scenarioCSV), 0644))
	return path
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Mining = config.MiningConfig{MinSupport: 2, MinPeriod: 20, MaxDepth: 2, Workers: 1}
	return cfg
}

func newTestOrchestrator(t *testing.T, job *config.JobConfig, mgr *database.Manager) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(testConfig(), "weekly", job, mgr)
	require.NoError(t, err)
	o.SetLogger(logger.NewNop())
	return o
}

func csvJob(t *testing.T, engine string, store bool) *config.JobConfig {
	return &config.JobConfig{
		Engine: engine,
		Store:  store,
		Input:  config.InputConfig{Kind: config.InputCSV, Path: writeScenario(t)},
	}
}

func mockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestNewOrchestrator_NilArguments(t *testing.T) {
	cfg := testConfig()
	job := &config.JobConfig{}
	mgr := &database.Manager{}

	_, err := NewOrchestrator(nil, "weekly", job, mgr)
	assert.EqualError(t, err, "config is nil")
	_, err = NewOrchestrator(cfg, "weekly", nil, mgr)
	assert.EqualError(t, err, "job config is nil")
	_, err = NewOrchestrator(cfg, "weekly", job, nil)
	assert.EqualError(t, err, "database manager is nil")
}

func TestNewOrchestrator_MergesJobSettings(t *testing.T) {
	job := &config.JobConfig{
		Input:   config.InputConfig{Table: "invoice_lines"},
		Mining:  &config.MiningConfig{MinPeriod: 30},
		Loading: &config.LoadingConfig{BatchSize: 50},
	}
	o, err := NewOrchestrator(testConfig(), "weekly", job, &database.Manager{})
	require.NoError(t, err)

	assert.Equal(t, 30, o.miningCfg.MinPeriod)
	assert.Equal(t, 2, o.miningCfg.MinSupport)
	assert.Equal(t, 50, o.loadingCfg.BatchSize)
	assert.Equal(t, config.InputMySQL, o.input.Kind)
	assert.Equal(t, "id", o.input.IDColumn)
}

func TestInitialize(t *testing.T) {
	o := newTestOrchestrator(t, csvJob(t, "depth", false), &database.Manager{})
	assert.False(t, o.IsInitialized())
	assert.Nil(t, o.Engine())

	require.NoError(t, o.Initialize())
	assert.True(t, o.IsInitialized())
	require.NotNil(t, o.Engine())
	assert.Equal(t, mining.EngineDepth, o.Engine().Kind())
	assert.Equal(t, 2, o.Engine().Thresholds().MinGapCount)

	// Idempotent
	require.NoError(t, o.Initialize())
}

func TestInitialize_Errors(t *testing.T) {
	db, _ := mockDB(t)

	tests := []struct {
		name string
		job  *config.JobConfig
		mgr  *database.Manager
		want string
	}{
		{
			name: "unknown engine",
			job:  &config.JobConfig{Engine: "breadth", Input: config.InputConfig{Kind: config.InputCSV, Path: "x.csv"}},
			mgr:  &database.Manager{},
			want: "unknown engine",
		},
		{
			name: "mysql input without source",
			job:  &config.JobConfig{Input: config.InputConfig{Table: "invoice_lines"}},
			mgr:  &database.Manager{Destination: db},
			want: "source database is not connected",
		},
		{
			name: "csv without path",
			job:  &config.JobConfig{Input: config.InputConfig{Kind: config.InputCSV}},
			mgr:  &database.Manager{},
			want: "no csv path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOrchestrator(t, tt.job, tt.mgr)
			err := o.Initialize()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.False(t, o.IsInitialized())
		})
	}
}

func TestInitialize_InvalidThresholds(t *testing.T) {
	o := newTestOrchestrator(t, csvJob(t, "depth", false), &database.Manager{})
	o.SetMiningConfig(config.MiningConfig{MinSupport: 2, MinPeriod: 20, MaxDepth: 0})

	err := o.Initialize()
	require.Error(t, err)
	assert.ErrorIs(t, err, mining.ErrInvalidConfig)
}

func TestSetMiningConfigIgnoredAfterInitialize(t *testing.T) {
	o := newTestOrchestrator(t, csvJob(t, "flat", false), &database.Manager{})
	require.NoError(t, o.Initialize())

	o.SetMiningConfig(config.MiningConfig{MinSupport: 99})
	assert.Equal(t, 2, o.miningCfg.MinSupport)
}

func TestExecute_NotInitialized(t *testing.T) {
	o := newTestOrchestrator(t, csvJob(t, "flat", false), &database.Manager{})

	_, err := o.Execute(context.Background())
	assert.EqualError(t, err, "orchestrator not initialized")
}

func TestExecute_NilContext(t *testing.T) {
	o := newTestOrchestrator(t, csvJob(t, "flat", false), &database.Manager{})
	require.NoError(t, o.Initialize())

	//nolint:staticcheck // nil context is the case under test
	_, err := o.Execute(nil)
	assert.EqualError(t, err, "context is nil")
}

func TestExecute_CSVFlat(t *testing.T) {
	o := newTestOrchestrator(t, csvJob(t, "flat", false), &database.Manager{})
	require.NoError(t, o.Initialize())

	result, err := o.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "weekly", result.JobName)
	assert.Equal(t, mining.EngineFlat, result.Engine)
	assert.Empty(t, result.RunID)
	assert.False(t, result.Stored)

	assert.Equal(t, int64(6), result.Load.Rows)
	assert.Equal(t, int64(5), result.Load.Observations)
	assert.Equal(t, int64(1), result.Load.DroppedRows)

	require.NotNil(t, result.Result)
	assert.Equal(t, []mining.Pattern{{"A"}}, result.Result.Patterns.Patterns())
	assert.Equal(t, 4, result.Result.Stats.Days)
	assert.False(t, result.CompletedAt.Before(result.StartedAt))
}

func TestExecute_CSVDepth(t *testing.T) {
	o := newTestOrchestrator(t, csvJob(t, "depth", false), &database.Manager{})
	require.NoError(t, o.Initialize())

	result, err := o.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []mining.Pattern{{"A"}, {"B", "A"}}, result.Result.Patterns.Patterns())
	assert.Equal(t, int64(4), result.Result.Stats.NodesVisited)
}

func TestExecute_MissingCSV(t *testing.T) {
	job := &config.JobConfig{Input: config.InputConfig{Kind: config.InputCSV, Path: filepath.Join(t.TempDir(), "absent.csv")}}
	o := newTestOrchestrator(t, job, &database.Manager{})
	require.NoError(t, o.Initialize())

	_, err := o.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load observations")
}

func TestExecute_MySQLSource(t *testing.T) {
	db, mock := mockDB(t)
	day := func(m int) time.Time { return time.Date(2011, time.Month(m), 1, 9, 0, 0, 0, time.UTC) }

	mock.ExpectQuery(sourceFirstPageQuery).
		WithArgs(1000).
		WillReturnRows(sqlmock.NewRows([]string{"id", "stock_code", "invoice_date"}).
			AddRow(1, []byte("A"), day(1)).
			AddRow(2, []byte("A"), day(2)).
			AddRow(3, []byte("A"), day(3)).
			AddRow(4, nil, day(3)))
	mock.ExpectQuery(sourcePageQuery).
		WithArgs(int64(4), 1000).
		WillReturnRows(sqlmock.NewRows([]string{"id", "stock_code", "invoice_date"}))

	job := &config.JobConfig{Input: config.InputConfig{Table: "invoice_lines"}}
	o := newTestOrchestrator(t, job, &database.Manager{Source: db})
	require.NoError(t, o.Initialize())

	result, err := o.DryRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Load.Pages)
	assert.Equal(t, int64(1), result.Load.DroppedRows)
	assert.Equal(t, []mining.Pattern{{"A"}}, result.Result.Patterns.Patterns())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_StoresRun(t *testing.T) {
	db, mock := mockDB(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS lpp_run").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS lpp_pattern").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO lpp_run").
		WithArgs(sqlmock.AnyArg(), "weekly", "depth", 2, 2, 20, 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO lpp_pattern").
		WithArgs(
			sqlmock.AnyArg(), 0, 0, "A",
			sqlmock.AnyArg(), 1, 0, "B",
			sqlmock.AnyArg(), 1, 1, "A",
		).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()
	mock.ExpectExec("UPDATE lpp_run SET run_status = \\?, observations").
		WillReturnResult(sqlmock.NewResult(0, 1))

	o := newTestOrchestrator(t, csvJob(t, "depth", true), &database.Manager{Destination: db})
	require.NoError(t, o.Initialize())

	result, err := o.Execute(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Stored)
	assert.Len(t, result.RunID, 36)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_StoreWithoutDestination(t *testing.T) {
	o := newTestOrchestrator(t, csvJob(t, "flat", true), &database.Manager{})
	require.NoError(t, o.Initialize())

	_, err := o.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "destination database is not connected")

	// Dry runs never touch the destination.
	result, err := o.DryRun(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Stored)
}

func TestDryRun_DoesNotStore(t *testing.T) {
	db, mock := mockDB(t)

	o := newTestOrchestrator(t, csvJob(t, "depth", true), &database.Manager{Destination: db})
	require.NoError(t, o.Initialize())

	result, err := o.DryRun(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Stored)
	assert.Equal(t, 2, result.Result.Patterns.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_FailedRunIsMarked(t *testing.T) {
	db, mock := mockDB(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS lpp_run").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS lpp_pattern").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO lpp_run").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE lpp_run SET run_status = \\?, error_message").
		WithArgs("failed", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	job := csvJob(t, "depth", true)
	job.Mining = &config.MiningConfig{MaxNodes: 1}
	o := newTestOrchestrator(t, job, &database.Manager{Destination: db})
	require.NoError(t, o.Initialize())

	_, err := o.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, mining.ErrSearchBudgetExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_SavePatternsFailure(t *testing.T) {
	db, mock := mockDB(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS lpp_run").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS lpp_pattern").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO lpp_run").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO lpp_pattern").WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()
	mock.ExpectExec("UPDATE lpp_run SET run_status = \\?, error_message").
		WillReturnResult(sqlmock.NewResult(0, 1))

	o := newTestOrchestrator(t, csvJob(t, "flat", true), &database.Manager{Destination: db})
	require.NoError(t, o.Initialize())

	_, err := o.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_BeginRunFailure(t *testing.T) {
	db, mock := mockDB(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS lpp_run").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS lpp_pattern").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO lpp_run").WillReturnError(fmt.Errorf("read only"))

	o := newTestOrchestrator(t, csvJob(t, "flat", true), &database.Manager{Destination: db})
	require.NoError(t, o.Initialize())

	_, err := o.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read only")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_Cancelled(t *testing.T) {
	db, _ := mockDB(t)

	job := &config.JobConfig{Input: config.InputConfig{Table: "invoice_lines"}}
	o := newTestOrchestrator(t, job, &database.Manager{Source: db})
	require.NoError(t, o.Initialize())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Execute(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
