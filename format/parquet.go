package format

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/floe-data/floe/types"
)

// defaultMaxSizePerFile is the Parquet sink roll threshold (spec.md §4.3:
// "max_size_per_file (bytes; default 256 MiB)").
const defaultMaxSizePerFile = 256 << 20

// parquetCompressionOption maps the sink's `compression` option (spec.md
// §4.3: "snappy,gzip,zstd,uncompressed") onto a parquet-go writer option.
// Unrecognized or absent values default to snappy.
func parquetCompressionOption(name string) parquet.WriterOption {
	switch name {
	case "gzip":
		return parquet.Compression(&parquet.Gzip)
	case "zstd":
		return parquet.Compression(&parquet.Zstd)
	case "uncompressed":
		return parquet.Compression(&parquet.Uncompressed)
	default:
		return parquet.Compression(&parquet.Snappy)
	}
}

// parquetReader reads a local Parquet file (spec.md §4.1: Parquet input
// must come from local storage since random access is required).
type parquetReader struct {
	path string
}

func newParquetReader(path string, opts map[string]any) (Reader, []string, error) {
	var ignored []string
	for k := range opts {
		ignored = append(ignored, k)
	}
	return &parquetReader{path: path}, ignored, nil
}

func (r *parquetReader) open() (*os.File, *parquet.Reader, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, parquet.NewReader(pf), nil
}

func (r *parquetReader) Probe(context.Context) (Probe, error) {
	f, pr, err := r.open()
	if err != nil {
		return Probe{}, err
	}
	defer f.Close()

	cols := make([]string, 0)
	for _, field := range pr.Schema().Fields() {
		cols = append(cols, field.Name())
	}
	return Probe{Columns: cols}, nil
}

func (r *parquetReader) Rows(context.Context) (RowIterator, error) {
	f, pr, err := r.open()
	if err != nil {
		return nil, err
	}
	return &parquetIterator{f: f, pr: pr}, nil
}

type parquetIterator struct {
	f     *os.File
	pr    *parquet.Reader
	index int
}

func (it *parquetIterator) Next(context.Context) (Row, int, bool, error) {
	rec := make(map[string]any)
	if err := it.pr.Read(&rec); err != nil {
		if err == io.EOF {
			return nil, 0, false, nil
		}
		return nil, 0, false, err
	}
	row := make(Row, len(rec))
	for k, v := range rec {
		s, _, err := stringifyScalar(v)
		if err != nil {
			return nil, 0, false, err
		}
		row[k] = s
	}
	idx := it.index
	it.index++
	return row, idx, true, nil
}

func (it *parquetIterator) Close() error { return it.f.Close() }

// parquetSchema builds the on-disk Parquet schema for an entity's accepted
// dataset from its typed column plan.
func parquetSchema(plan types.ColumnPlan) *parquet.Schema {
	group := make(parquet.Group, len(plan.Columns))
	for _, col := range plan.Columns {
		node := parquetNode(col.Type)
		if col.Nullable {
			node = parquet.Optional(node)
		}
		group[col.Name] = node
	}
	return parquet.NewSchema("floe_accepted", group)
}

func parquetNode(t types.LogicalType) parquet.Node {
	switch t {
	case types.TypeString:
		return parquet.String()
	case types.TypeBoolean:
		return parquet.Leaf(parquet.BooleanType)
	case types.TypeInt8:
		return parquet.Int(8)
	case types.TypeInt16:
		return parquet.Int(16)
	case types.TypeInt32:
		return parquet.Int(32)
	case types.TypeInt64:
		return parquet.Int(64)
	case types.TypeUint8:
		return parquet.Uint(8)
	case types.TypeUint16:
		return parquet.Uint(16)
	case types.TypeUint32:
		return parquet.Uint(32)
	case types.TypeUint64:
		return parquet.Uint(64)
	case types.TypeFloat32:
		return parquet.Leaf(parquet.FloatType)
	case types.TypeFloat64:
		return parquet.Leaf(parquet.DoubleType)
	case types.TypeDate:
		return parquet.Date()
	case types.TypeDatetime:
		return parquet.Timestamp(parquet.Millisecond)
	case types.TypeTime:
		return parquet.Leaf(parquet.Int64Type)
	default:
		return parquet.String()
	}
}

// parquetAcceptedWriter writes the accepted dataset as one or more
// zero-padded part files (`part-00000.parquet`, `part-00001.parquet`, ...)
// under dir, rolling to a new part once maxSizePerFile is exceeded
// (spec.md §4.5).
type parquetAcceptedWriter struct {
	dir             string
	plan            types.ColumnPlan
	compression     parquet.WriterOption
	rowGroupSize    int
	maxSizePerFile  int64
	f               *os.File
	w               *parquet.GenericWriter[map[string]any]
	partIndex       int
	parts           []string
}

// NewParquetAcceptedWriter opens a Parquet writer rooted at dir for the
// given column plan. Recognized opts: compression, row_group_size,
// max_size_per_file (spec.md §4.3).
func NewParquetAcceptedWriter(dir string, plan types.ColumnPlan, opts map[string]any) (AcceptedWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	w := &parquetAcceptedWriter{
		dir:            dir,
		plan:           plan,
		compression:    parquetCompressionOption(stringOpt(opts, "compression")),
		rowGroupSize:   intOpt(opts, "row_group_size"),
		maxSizePerFile: int64Opt(opts, "max_size_per_file", defaultMaxSizePerFile),
	}
	if err := w.openPart(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *parquetAcceptedWriter) openPart() error {
	name := fmt.Sprintf("part-%05d.parquet", w.partIndex)
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	schema := parquetSchema(w.plan)
	w.f = f
	w.w = parquet.NewGenericWriter[map[string]any](f, schema, w.compression)
	w.parts = append(w.parts, name)
	return nil
}

func (w *parquetAcceptedWriter) rollIfNeeded() error {
	stat, err := w.f.Stat()
	if err != nil {
		return err
	}
	if stat.Size() < w.maxSizePerFile {
		return nil
	}
	if err := w.closePart(); err != nil {
		return err
	}
	w.partIndex++
	return w.openPart()
}

func (w *parquetAcceptedWriter) closePart() error {
	if err := w.w.Close(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

func (w *parquetAcceptedWriter) Write(_ context.Context, plan types.ColumnPlan, rows []AcceptedRow) error {
	records := make([]map[string]any, len(rows))
	for i, row := range rows {
		rec := make(map[string]any, len(plan.Columns))
		for j, col := range plan.Columns {
			if j < len(row.Values) {
				rec[col.Name] = row.Values[j]
			}
		}
		records[i] = rec
	}
	if _, err := w.w.Write(records); err != nil {
		return err
	}
	return w.rollIfNeeded()
}

func (w *parquetAcceptedWriter) Close(context.Context) (parts []string, err error) {
	if err := w.closePart(); err != nil {
		return nil, err
	}
	return w.parts, nil
}

func stringOpt(opts map[string]any, key string) string {
	if v, ok := opts[key].(string); ok {
		return v
	}
	return ""
}

func intOpt(opts map[string]any, key string) int {
	switch v := opts[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func int64Opt(opts map[string]any, key string, def int64) int64 {
	switch v := opts[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return def
}
