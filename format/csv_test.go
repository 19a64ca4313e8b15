package format

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/floe-data/floe/types"
)

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCSVReader_ProbeReturnsHeader(t *testing.T) {
	path := writeTempCSV(t, "in.csv", "id;name\n1;alice\n")
	r, ignored, err := newCSVReader(path, nil)
	if err != nil {
		t.Fatalf("newCSVReader: %v", err)
	}
	if len(ignored) != 0 {
		t.Errorf("got ignored %v, want none", ignored)
	}
	probe, err := r.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if len(probe.Columns) != 2 || probe.Columns[0] != "id" || probe.Columns[1] != "name" {
		t.Errorf("got columns %v", probe.Columns)
	}
}

func TestCSVReader_NoHeaderSynthesizesColumnNames(t *testing.T) {
	path := writeTempCSV(t, "in.csv", "1;alice\n2;bob\n")
	r, _, err := newCSVReader(path, map[string]any{"header": false})
	if err != nil {
		t.Fatalf("newCSVReader: %v", err)
	}
	it, err := r.Rows(context.Background())
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	defer it.Close()

	row, idx, ok, err := it.Next(context.Background())
	if err != nil || !ok {
		t.Fatalf("Next: row=%v idx=%d ok=%v err=%v", row, idx, ok, err)
	}
	if row["col_0"] != "1" || row["col_1"] != "alice" {
		t.Errorf("got row %+v, want synthesized col_0/col_1", row)
	}
	if idx != 0 {
		t.Errorf("got index %d, want 0", idx)
	}
}

func TestCSVReader_CustomSeparatorAndNullValues(t *testing.T) {
	path := writeTempCSV(t, "in.csv", "id,v\n1,NA\n2,x\n")
	r, _, err := newCSVReader(path, map[string]any{
		"separator":   ",",
		"null_values": []any{"NA"},
	})
	if err != nil {
		t.Fatalf("newCSVReader: %v", err)
	}
	it, err := r.Rows(context.Background())
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	defer it.Close()

	row, _, ok, err := it.Next(context.Background())
	if err != nil || !ok {
		t.Fatalf("Next: %v %v", ok, err)
	}
	if row["v"] != "" {
		t.Errorf("got v=%q, want empty string for NA null value", row["v"])
	}

	row2, _, ok, err := it.Next(context.Background())
	if err != nil || !ok {
		t.Fatalf("Next (row2): %v %v", ok, err)
	}
	if row2["v"] != "x" {
		t.Errorf("got v=%q, want x", row2["v"])
	}
}

func TestCSVReader_ShortRowFillsMissingCellsEmpty(t *testing.T) {
	path := writeTempCSV(t, "in.csv", "a;b;c\n1;2\n")
	r, _, err := newCSVReader(path, nil)
	if err != nil {
		t.Fatalf("newCSVReader: %v", err)
	}
	it, err := r.Rows(context.Background())
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	defer it.Close()
	row, _, ok, err := it.Next(context.Background())
	if err != nil || !ok {
		t.Fatalf("Next: %v %v", ok, err)
	}
	if row["c"] != "" {
		t.Errorf("got c=%q, want empty for short row", row["c"])
	}
}

func TestCSVRejectedWriter_AppendsIndexAndErrorsColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rejected.csv")
	w, err := NewCSVRejectedWriter(path, []string{"id", "v"})
	if err != nil {
		t.Fatalf("NewCSVRejectedWriter: %v", err)
	}
	err = w.WriteRow(context.Background(), Row{"id": "1", "v": "bad"}, 3,
		[]types.RowError{types.NewRowError(types.RuleCastError, "v", 3)})
	if err != nil {
		t.Fatalf("WriteRow: %v", err)
	}
	if err := w.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "__floe_row_index") || !strings.Contains(content, "__floe_errors") {
		t.Errorf("got header %q, want metadata columns", strings.SplitN(content, "\n", 2)[0])
	}
	if !strings.Contains(content, "cast_error") {
		t.Errorf("got content %q, want serialized cast_error rule", content)
	}
}

func TestCopyAbortRejected_ByteCopiesSourceAndWritesErrorsJSON(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "source.csv")
	if err := os.WriteFile(src, []byte("id;v\n1;bad\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "rejected.csv")
	errsPath := filepath.Join(dir, "rejected_errors.json")

	errs := []types.RowError{types.NewRowError(types.RuleSchemaMismatch, "", 0)}
	if err := CopyAbortRejected(src, dst, errsPath, errs); err != nil {
		t.Fatalf("CopyAbortRejected: %v", err)
	}

	copied, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("ReadFile(dst): %v", err)
	}
	if string(copied) != "id;v\n1;bad\n" {
		t.Errorf("got copy %q, want byte-identical source", copied)
	}

	errsData, err := os.ReadFile(errsPath)
	if err != nil {
		t.Fatalf("ReadFile(errsPath): %v", err)
	}
	if !strings.Contains(string(errsData), "schema_mismatch") {
		t.Errorf("got errors json %q, want schema_mismatch", errsData)
	}
}
