// Package format implements the per-format readers and writers the entity
// runner drives: CSV, Parquet, NDJSON, and JSON-array input; Parquet/Delta
// accepted output and CSV rejected output.
package format

import (
	"context"

	"github.com/floe-data/floe/types"
)

// Row is one input record with every cell rendered as its original string
// form. Reading every format into Row first is what lets the validator run
// the same cast logic regardless of source format (spec.md §4.3-4.4).
type Row map[string]string

// Probe is the result of a cheap header/schema read used for file
// prechecks, before any row is materialized.
type Probe struct {
	// Columns lists the column names the file itself declares: the CSV
	// header row and the Parquet footer schema fields in file order, and
	// the keys of the first NDJSON/JSON-array object sorted lexicographically.
	Columns []string
}

// Reader reads one input file's rows as a sequence of Row, after an
// initial cheap Probe.
type Reader interface {
	// Probe inspects the file's declared columns without materializing
	// every row.
	Probe(ctx context.Context) (Probe, error)
	// Rows returns an iterator over the file's records in on-disk order.
	Rows(ctx context.Context) (RowIterator, error)
}

// RowIterator yields Rows one at a time. Next returns ok=false with a nil
// error once exhausted.
type RowIterator interface {
	Next(ctx context.Context) (row Row, rowIndex int, ok bool, err error)
	Close() error
}

// AcceptedRow is a validated row ready for columnar output: Values holds
// one entry per ColumnPlan column, already cast to its logical type (or
// nil for a null).
type AcceptedRow struct {
	Values []any
}

// AcceptedWriter materializes an entity's accepted dataset. The Parquet
// writer rolls to a new part file once the current one reaches its size
// limit; the Delta writer wraps those parts in one log commit. Close returns
// the names of the part files written.
type AcceptedWriter interface {
	Write(ctx context.Context, plan types.ColumnPlan, rows []AcceptedRow) error
	// Close finalizes the output and returns the written part identifiers.
	Close(ctx context.Context) (parts []string, err error)
}

// RejectedWriter materializes an entity's rejected companion. Normal
// rejected rows carry the original string cells plus two appended columns;
// abort mode instead byte-copies the source and emits a sibling errors
// file (spec.md §6.5).
type RejectedWriter interface {
	WriteRow(ctx context.Context, row Row, rowIndex int, errs []types.RowError) error
	Close(ctx context.Context) error
}

// NewReader constructs the Reader for one input file, dispatching on its
// configured format.
func NewReader(formatName string, localPath string, opts map[string]any) (Reader, []string, error) {
	switch formatName {
	case "csv":
		return newCSVReader(localPath, opts)
	case "parquet":
		return newParquetReader(localPath, opts)
	case "ndjson":
		return newNDJSONReader(localPath, opts)
	case "json":
		return newJSONArrayReader(localPath, opts)
	default:
		return nil, nil, &UnsupportedFormatError{Format: formatName}
	}
}

// UnsupportedFormatError reports a source/sink format outside the closed
// set this package implements.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return "format: unsupported format " + e.Format
}
