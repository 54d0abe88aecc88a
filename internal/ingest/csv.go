package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dbsmedya/lppminer/internal/mining"
	"github.com/dbsmedya/lppminer/internal/types"
)

// maxParseErrors bounds how many dropped rows are kept for reporting.
const maxParseErrors = 20

// CSVOptions selects the columns of a transaction export.
type CSVOptions struct {
	ItemColumn string
	DateColumn string
	Comma      rune // Defaults to ','
}

// ParseError describes a dropped CSV row.
type ParseError struct {
	Line   int
	Reason string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// CSVResult is the outcome of ReadCSV.
type CSVResult struct {
	Observations []mining.Observation
	Stats        types.LoadStats
	// Errors holds the first dropped rows; Stats.DroppedRows has the full count.
	Errors []ParseError
}

func (r *CSVResult) drop(line int, reason string) {
	r.Stats.Dropped()
	if len(r.Errors) < maxParseErrors {
		r.Errors = append(r.Errors, ParseError{Line: line, Reason: reason})
	}
}

// ReadCSV reads a headered transaction CSV. Rows with the wrong field count,
// a blank item or a date in no known layout are dropped and counted. A
// missing header column is an error.
func ReadCSV(r io.Reader, opts CSVOptions) (*CSVResult, error) {
	start := time.Now()

	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.ReuseRecord = true
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	itemIdx, dateIdx := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch name {
		case opts.ItemColumn:
			itemIdx = i
		case opts.DateColumn:
			dateIdx = i
		}
	}
	if itemIdx < 0 {
		return nil, fmt.Errorf("csv header has no %q column", opts.ItemColumn)
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("csv header has no %q column", opts.DateColumn)
	}

	result := &CSVResult{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				result.drop(perr.StartLine, perr.Err.Error())
				continue
			}
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)

		item, ok := types.ToItemID(record[itemIdx])
		if !ok {
			result.drop(line, "blank item")
			continue
		}
		t, err := types.ParseDate(record[dateIdx])
		if err != nil {
			result.drop(line, err.Error())
			continue
		}

		result.Stats.Kept()
		result.Observations = append(result.Observations, mining.Observation{Item: item, Day: mining.DayOf(t)})
	}

	result.Stats.Duration = time.Since(start)
	return result, nil
}

// LoadCSVFile opens path and reads it with ReadCSV.
func LoadCSVFile(path string, opts CSVOptions) (*CSVResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	result, err := ReadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return result, nil
}
