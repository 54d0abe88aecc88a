// Package ingest reads transaction observations from the MySQL source table
// or from a CSV export and turns them into mining observations.
package ingest

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dbsmedya/lppminer/internal/sqlutil"
)

// Row is one raw source row as returned by the driver.
type Row struct {
	ID   interface{}
	Item interface{}
	Date interface{}
}

// RowFetcher returns successive pages of source rows.
type RowFetcher interface {
	FetchNextBatch(ctx context.Context) ([]Row, error)
	UpdateCheckpoint(lastID interface{})
	GetCheckpoint() interface{}
}

// ObservationFetcher pages through a transaction table by its key column.
// It supports checkpoint-based resumption and respects configurable batch sizes.
type ObservationFetcher struct {
	db         *sql.DB
	table      string
	idColumn   string
	itemColumn string
	dateColumn string
	where      string
	batchSize  int
	checkpoint interface{} // Last fetched key value (int64, string, etc.)
}

// NewObservationFetcher creates an ObservationFetcher for the given table.
//
// Parameters:
//   - db: Source database connection
//   - table: Transaction table to read
//   - idColumn: Monotonic key column used for keyset paging
//   - itemColumn, dateColumn: Columns holding the item identifier and transaction date
//   - where: Extra WHERE criteria (can be empty for "all rows")
//   - batchSize: Number of rows to fetch per page
//   - checkpoint: Last fetched key for resumption (nil to start from the beginning)
func NewObservationFetcher(db *sql.DB, table, idColumn, itemColumn, dateColumn, where string, batchSize int, checkpoint interface{}) *ObservationFetcher {
	return &ObservationFetcher{
		db:         db,
		table:      table,
		idColumn:   idColumn,
		itemColumn: itemColumn,
		dateColumn: dateColumn,
		where:      where,
		batchSize:  batchSize,
		checkpoint: checkpoint,
	}
}

// FetchNextBatch retrieves the next page of rows after the checkpoint.
// An empty slice means the table is exhausted. The first page has no key
// predicate: a literal lower bound would compare text keys as numbers.
func (f *ObservationFetcher) FetchNextBatch(ctx context.Context) ([]Row, error) {
	whereClause := f.where
	if whereClause == "" {
		whereClause = "1=1"
	}

	id := sqlutil.QuoteIdentifier(f.idColumn)
	args := make([]interface{}, 0, 2)
	keyset := ""
	if f.checkpoint != nil {
		keyset = fmt.Sprintf(" AND %s > ?", id)
		args = append(args, f.checkpoint)
	}
	args = append(args, f.batchSize)

	query := fmt.Sprintf(
		"SELECT %s, %s, %s FROM %s WHERE (%s)%s ORDER BY %s ASC LIMIT ?",
		id,
		sqlutil.QuoteIdentifier(f.itemColumn),
		sqlutil.QuoteIdentifier(f.dateColumn),
		sqlutil.QuoteIdentifier(f.table),
		whereClause,
		keyset,
		id,
	)

	rows, err := f.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch observations from %s: %w", f.table, err)
	}
	defer rows.Close()

	var page []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.Item, &r.Date); err != nil {
			return nil, fmt.Errorf("failed to scan observation from %s: %w", f.table, err)
		}
		// String keys come back as []byte; the checkpoint must compare as text.
		if b, ok := r.ID.([]byte); ok {
			r.ID = string(b)
		}
		page = append(page, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating observations from %s: %w", f.table, err)
	}

	return page, nil
}

// UpdateCheckpoint records the last fetched key.
func (f *ObservationFetcher) UpdateCheckpoint(lastID interface{}) {
	f.checkpoint = lastID
}

// GetCheckpoint returns the current checkpoint value.
func (f *ObservationFetcher) GetCheckpoint() interface{} {
	return f.checkpoint
}
