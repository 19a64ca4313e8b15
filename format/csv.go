package format

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/floe-data/floe/types"
)

var rejectedJSON = jsoniter.ConfigCompatibleWithStandardLibrary

type csvReader struct {
	path       string
	separator  rune
	hasHeader  bool
	nullValues map[string]bool
}

func newCSVReader(path string, opts map[string]any) (Reader, []string, error) {
	r := &csvReader{path: path, separator: ';', hasHeader: true}
	var ignored []string
	for k, v := range opts {
		switch k {
		case "separator":
			if s, ok := v.(string); ok && len(s) == 1 {
				r.separator = rune(s[0])
			}
		case "header":
			if b, ok := v.(bool); ok {
				r.hasHeader = b
			}
		case "null_values":
			r.nullValues = toStringSet(v)
		case "encoding", "recursive", "glob":
			// recognized, handled elsewhere or not yet meaningful beyond UTF-8.
		default:
			ignored = append(ignored, k)
		}
	}
	return r, ignored, nil
}

func toStringSet(v any) map[string]bool {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	set := make(map[string]bool, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			set[s] = true
		}
	}
	return set
}

func (r *csvReader) open() (*os.File, *csv.Reader, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, nil, err
	}
	cr := csv.NewReader(f)
	cr.Comma = r.separator
	cr.FieldsPerRecord = -1
	return f, cr, nil
}

func (r *csvReader) Probe(context.Context) (Probe, error) {
	f, cr, err := r.open()
	if err != nil {
		return Probe{}, err
	}
	defer f.Close()

	if !r.hasHeader {
		record, err := cr.Read()
		if err == io.EOF {
			return Probe{}, nil
		}
		if err != nil {
			return Probe{}, err
		}
		cols := make([]string, len(record))
		for i := range record {
			cols[i] = fmt.Sprintf("col_%d", i)
		}
		return Probe{Columns: cols}, nil
	}

	header, err := cr.Read()
	if err == io.EOF {
		return Probe{}, nil
	}
	if err != nil {
		return Probe{}, err
	}
	return Probe{Columns: header}, nil
}

func (r *csvReader) Rows(context.Context) (RowIterator, error) {
	f, cr, err := r.open()
	if err != nil {
		return nil, err
	}

	var header []string
	if r.hasHeader {
		header, err = cr.Read()
		if err == io.EOF {
			header = nil
		} else if err != nil {
			f.Close()
			return nil, err
		}
	}

	return &csvIterator{f: f, cr: cr, header: header, hasHeader: r.hasHeader, nullValues: r.nullValues}, nil
}

type csvIterator struct {
	f          *os.File
	cr         *csv.Reader
	header     []string
	hasHeader  bool
	nullValues map[string]bool
	index      int
}

func (it *csvIterator) Next(context.Context) (Row, int, bool, error) {
	record, err := it.cr.Read()
	if err == io.EOF {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}

	header := it.header
	if !it.hasHeader {
		header = make([]string, len(record))
		for i := range record {
			header[i] = fmt.Sprintf("col_%d", i)
		}
	}

	row := make(Row, len(header))
	for i, col := range header {
		if i < len(record) {
			cell := record[i]
			if it.nullValues[cell] {
				cell = ""
			}
			row[col] = cell
		} else {
			row[col] = ""
		}
	}
	idx := it.index
	it.index++
	return row, idx, true, nil
}

func (it *csvIterator) Close() error { return it.f.Close() }

// csvRejectedWriter implements RejectedWriter, writing original columns
// plus __floe_row_index and __floe_errors (spec.md §6.5). Abort mode's
// byte-copy of the source file and sibling errors JSON is written by
// CopyAbortRejected, not by this writer.
type csvRejectedWriter struct {
	w       *csv.Writer
	f       *os.File
	header  []string
	wrote   bool
}

// NewCSVRejectedWriter opens a rejected-dataset CSV at localPath, deriving
// its header from plan column names plus the two appended metadata
// columns.
func NewCSVRejectedWriter(localPath string, columns []string) (RejectedWriter, error) {
	f, err := os.Create(localPath)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	header := append(append([]string{}, columns...), "__floe_row_index", "__floe_errors")
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	return &csvRejectedWriter{w: w, f: f, header: columns}, nil
}

// rejectedError is the shape one __floe_errors array entry takes (spec.md
// §6.5: "JSON array string of {rule,column,message} objects; column absent
// when not applicable") — row_index is already its own sibling column, so
// it isn't repeated inside each error entry.
type rejectedError struct {
	Rule    types.Rule `json:"rule"`
	Column  string     `json:"column,omitempty"`
	Message string     `json:"message"`
}

func (w *csvRejectedWriter) WriteRow(_ context.Context, row Row, rowIndex int, errs []types.RowError) error {
	record := make([]string, 0, len(w.header)+2)
	for _, col := range w.header {
		record = append(record, row[col])
	}
	entries := make([]rejectedError, len(errs))
	for i, e := range errs {
		entries[i] = rejectedError{Rule: e.Rule, Column: e.Column, Message: e.Message}
	}
	errJSON, err := rejectedJSON.Marshal(entries)
	if err != nil {
		return err
	}
	record = append(record, fmt.Sprintf("%d", rowIndex), string(errJSON))
	w.wrote = true
	return w.w.Write(record)
}

func (w *csvRejectedWriter) Close(context.Context) error {
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// CopyAbortRejected byte-copies sourcePath to rejectedPath and writes the
// sibling <source_stem>_reject_errors.json alongside it, per the abort-mode
// rejected format (spec.md §6.5).
func CopyAbortRejected(sourcePath, rejectedPath, errorsPath string, errs []types.RowError) error {
	src, err := os.Open(sourcePath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(rejectedPath)
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return err
	}

	payload, err := rejectedJSON.MarshalIndent(errs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(errorsPath, payload, 0o644)
}
