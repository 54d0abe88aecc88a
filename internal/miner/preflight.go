package miner

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dbsmedya/lppminer/internal/config"
	"github.com/dbsmedya/lppminer/internal/logger"
	"github.com/dbsmedya/lppminer/internal/sqlutil"
)

// PreflightError represents a preflight check failure.
type PreflightError struct {
	Check   string
	Message string
	Columns []string
}

func (e *PreflightError) Error() string {
	if len(e.Columns) > 0 {
		return fmt.Sprintf("%s: %s (columns: %v)", e.Check, e.Message, e.Columns)
	}
	return fmt.Sprintf("%s: %s", e.Check, e.Message)
}

// dateTypes are column types the loader can turn into a day.
var dateTypes = map[string]bool{
	"date": true, "datetime": true, "timestamp": true,
	"char": true, "varchar": true, "text": true,
}

// PreflightChecker verifies that a job's source table can be paged and read
// before any mining starts.
type PreflightChecker struct {
	db     *sql.DB
	schema string
	input  config.InputConfig
	logger *logger.Logger
}

// NewPreflightChecker creates a checker for input in the source schema.
func NewPreflightChecker(db *sql.DB, schema string, input config.InputConfig, log *logger.Logger) (*PreflightChecker, error) {
	if db == nil {
		return nil, fmt.Errorf("database is nil")
	}
	if schema == "" {
		return nil, fmt.Errorf("source database name is required")
	}
	input = input.WithDefaults()
	if input.Kind != config.InputMySQL {
		return nil, fmt.Errorf("preflight checks apply to mysql input, got %q", input.Kind)
	}
	if log == nil {
		log = logger.NewDefault()
	}

	return &PreflightChecker{
		db:     db,
		schema: schema,
		input:  input,
		logger: log,
	}, nil
}

// RunAllChecks runs all preflight checks, stopping at the first failure.
func (p *PreflightChecker) RunAllChecks(ctx context.Context) error {
	p.logger.Info("Running preflight checks...")

	if err := p.ValidateIdentifiers(); err != nil {
		return err
	}
	if err := p.ValidateTableExists(ctx); err != nil {
		return err
	}
	if err := p.ValidateColumns(ctx); err != nil {
		return err
	}
	if err := p.WarnUnindexedKey(ctx); err != nil {
		return err
	}

	p.logger.Info("All preflight checks PASSED")
	return nil
}

// ValidateIdentifiers rejects table and column names that cannot be safely quoted.
func (p *PreflightChecker) ValidateIdentifiers() error {
	var bad []string
	for _, name := range []string{p.input.Table, p.input.IDColumn, p.input.ItemColumn, p.input.DateColumn} {
		if _, err := sqlutil.QuoteIdentifierSafe(name); err != nil {
			bad = append(bad, name)
		}
	}
	if len(bad) > 0 {
		return &PreflightError{
			Check:   "IDENTIFIER_CHECK",
			Message: "Names must contain only letters, digits and underscores",
			Columns: bad,
		}
	}
	return nil
}

// ValidateTableExists checks that the input table is in the source schema.
func (p *PreflightChecker) ValidateTableExists(ctx context.Context) error {
	p.logger.Debug("Checking table existence...")

	var count int
	err := p.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?",
		p.schema, p.input.Table,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to query tables: %w", err)
	}

	if count == 0 {
		return &PreflightError{
			Check:   "TABLE_EXISTENCE_CHECK",
			Message: fmt.Sprintf("Table %s not found in source database %s", p.input.Table, p.schema),
		}
	}
	return nil
}

// ValidateColumns checks that the key, item and date columns exist and that
// the date column has a type the loader understands.
func (p *PreflightChecker) ValidateColumns(ctx context.Context) error {
	p.logger.Debug("Checking columns...")

	wanted := []string{p.input.IDColumn, p.input.ItemColumn, p.input.DateColumn}
	args := []interface{}{p.schema, p.input.Table}
	for _, c := range wanted {
		args = append(args, c)
	}

	query := "SELECT COLUMN_NAME, DATA_TYPE FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? AND COLUMN_NAME IN (" +
		sqlutil.Placeholders(len(wanted)) + ")"

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	found := make(map[string]string, len(wanted))
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return err
		}
		found[name] = strings.ToLower(dataType)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var missing []string
	for _, c := range wanted {
		if _, ok := found[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &PreflightError{
			Check:   "COLUMN_EXISTENCE_CHECK",
			Message: fmt.Sprintf("Columns not found in %s", p.input.Table),
			Columns: missing,
		}
	}

	if dt := found[p.input.DateColumn]; !dateTypes[dt] {
		return &PreflightError{
			Check:   "DATE_COLUMN_TYPE_CHECK",
			Message: fmt.Sprintf("Column type %s cannot be read as a date", dt),
			Columns: []string{p.input.DateColumn},
		}
	}

	p.logger.Debugf("Column check PASSED (%d columns)", len(wanted))
	return nil
}

// WarnUnindexedKey logs a warning when the key column does not lead any
// index, since every page would then scan the table.
func (p *PreflightChecker) WarnUnindexedKey(ctx context.Context) error {
	var count int
	err := p.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM information_schema.STATISTICS WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? AND COLUMN_NAME = ? AND SEQ_IN_INDEX = 1",
		p.schema, p.input.Table, p.input.IDColumn,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to query indexes: %w", err)
	}

	if count == 0 {
		p.logger.Warnw("Key column is not indexed; keyset paging will scan the table",
			"table", p.input.Table,
			"column", p.input.IDColumn,
		)
	}
	return nil
}
