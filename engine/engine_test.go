package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/floe-data/floe/cli/config"
	flog "github.com/floe-data/floe/log"
	"github.com/floe-data/floe/storage"
	"github.com/floe-data/floe/types"
)

func newTestRegistry(root string) *storage.Registry {
	defs := map[string]config.StorageConfig{
		"local": {Type: "local", Prefix: root},
	}
	return storage.NewRegistry(defs, nil)
}

func writeCSV(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func basicEntity(storageName string) config.EntityConfig {
	return config.EntityConfig{
		Name: "people",
		Source: config.SourceConfig{
			Format:  "csv",
			Path:    "in",
			Storage: storageName,
		},
		Sink: config.SinkConfig{
			Accepted: config.SinkTarget{Format: "parquet", Path: "out/people", Storage: storageName},
		},
		Schema: config.SchemaConfig{
			Columns: []config.ColumnConfig{
				{Name: "id", Type: "int64"},
				{Name: "name", Type: "string"},
			},
		},
	}
}

func TestRun_RejectPolicySplitsBadRowsAndKeepsGoodOnes(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, filepath.Join(dir, "in"), "people.csv", "id;name\n1;alice\nnot-a-number;bob\n")

	entity := basicEntity("local")
	entity.Policy = config.PolicyConfig{Severity: "reject"}
	entity.Sink.Rejected = &config.SinkTarget{Format: "csv", Path: "out/rejected", Storage: "local"}

	registry := newTestRegistry(dir)
	r := New(entity, map[string]config.StorageConfig{"local": {Type: "local", Prefix: dir}}, registry, flog.New("test-run"))

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected technical error: %v", err)
	}
	if result.Status != types.RunRejected {
		t.Fatalf("got status %q, want %q", result.Status, types.RunRejected)
	}
	if result.Accepted != 1 || result.Rejected != 1 {
		t.Fatalf("got accepted=%d rejected=%d, want 1/1", result.Accepted, result.Rejected)
	}
	if len(result.Files) != 1 {
		t.Fatalf("got %d file outcomes, want 1", len(result.Files))
	}
	fo := result.Files[0]
	if len(fo.ValidationSummary.Rules) != 1 || fo.ValidationSummary.Rules[0].Rule != types.RuleCastError {
		t.Fatalf("got rules %+v, want a single cast_error aggregate", fo.ValidationSummary.Rules)
	}
}

func TestRun_WarnPolicyKeepsEveryRow(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, filepath.Join(dir, "in"), "people.csv", "id;name\n1;alice\nnot-a-number;bob\n")

	entity := basicEntity("local")
	entity.Policy = config.PolicyConfig{Severity: "warn"}

	registry := newTestRegistry(dir)
	r := New(entity, map[string]config.StorageConfig{"local": {Type: "local", Prefix: dir}}, registry, flog.New("test-run"))

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected technical error: %v", err)
	}
	if result.Status != types.RunSuccessWithWarnings {
		t.Fatalf("got status %q, want %q", result.Status, types.RunSuccessWithWarnings)
	}
	if result.Accepted != 2 || result.Rejected != 0 {
		t.Fatalf("got accepted=%d rejected=%d, want 2/0 (warn keeps everything)", result.Accepted, result.Rejected)
	}
	if result.Warnings != 1 {
		t.Fatalf("got warnings=%d, want 1", result.Warnings)
	}
}

func TestRun_AbortPolicyAbortsOnFirstOffendingRow(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, filepath.Join(dir, "in"), "people.csv", "id;name\nnot-a-number;alice\n2;bob\n")

	entity := basicEntity("local")
	entity.Policy = config.PolicyConfig{Severity: "abort"}

	registry := newTestRegistry(dir)
	r := New(entity, map[string]config.StorageConfig{"local": {Type: "local", Prefix: dir}}, registry, flog.New("test-run"))

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected technical error: %v", err)
	}
	if result.Status != types.RunAborted {
		t.Fatalf("got status %q, want %q", result.Status, types.RunAborted)
	}
	if result.Accepted != 0 {
		t.Fatalf("got accepted=%d, want 0 (abort must not write the second, valid row)", result.Accepted)
	}
}

func TestRun_UndeclaredStorageFailsFast(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, filepath.Join(dir, "in"), "people.csv", "id;name\n1;alice\n")

	entity := basicEntity("nope")
	registry := newTestRegistry(dir)
	r := New(entity, map[string]config.StorageConfig{"local": {Type: "local", Prefix: dir}}, registry, flog.New("test-run"))

	if _, err := r.Run(context.Background()); err == nil {
		t.Fatal("expected an error for an undeclared storage name")
	}
}

func TestDeriveEntityStatus(t *testing.T) {
	tests := []struct {
		name   string
		result types.EntityResult
		want   types.RunStatus
	}{
		{"clean run", types.EntityResult{}, types.RunSuccess},
		{"warnings only", types.EntityResult{Warnings: 3}, types.RunSuccessWithWarnings},
		{"rejected rows take precedence", types.EntityResult{Warnings: 3, Rejected: 1}, types.RunRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveEntityStatus(tt.result); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSuffixesFor(t *testing.T) {
	tests := map[string][]string{
		"csv":     {".csv"},
		"parquet": {".parquet"},
		"ndjson":  {".ndjson", ".jsonl"},
		"json":    {".json"},
		"unknown": nil,
	}
	for format, want := range tests {
		got := suffixesFor(format)
		if len(got) != len(want) {
			t.Errorf("suffixesFor(%q) = %v, want %v", format, got, want)
			continue
		}
		for i := range got {
			if got[i] != want[i] {
				t.Errorf("suffixesFor(%q) = %v, want %v", format, got, want)
			}
		}
	}
}
