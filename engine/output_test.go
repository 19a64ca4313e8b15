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

func archiveEntity(sourceStorage, archiveStorage string) config.EntityConfig {
	return config.EntityConfig{
		Name: "people",
		Source: config.SourceConfig{
			Format:  "csv",
			Path:    "in",
			Storage: sourceStorage,
		},
		Sink: config.SinkConfig{
			Accepted: config.SinkTarget{Format: "parquet", Path: "out", Storage: sourceStorage},
			Archive:  &config.ArchiveConfig{Path: "archive", Storage: archiveStorage},
		},
		Schema: config.SchemaConfig{
			Columns: []config.ColumnConfig{
				{Name: "id", Type: "int64"},
				{Name: "name", Type: "string"},
			},
		},
	}
}

func TestArchive_SameStorageUsesMove(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, filepath.Join(dir, "in"), "people.csv", "id;name\n1;alice\n")

	storages := map[string]config.StorageConfig{"local": {Type: "local", Prefix: dir}}
	registry := storage.NewRegistry(storages, nil)
	r := New(archiveEntity("local", "local"), storages, registry, flog.New("test-run"))

	inputs := types.ResolvedInputs{{
		Storage: "local",
		Kind:    types.StorageLocal,
		URI:     "file://" + filepath.Join(dir, "in", "people.csv"),
	}}

	if err := r.archive(context.Background(), inputs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "in", "people.csv")); !os.IsNotExist(err) {
		t.Fatalf("expected source file to be moved away, stat err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "archive", "people.csv")); err != nil {
		t.Fatalf("expected archived file at destination: %v", err)
	}
}

func TestArchive_CrossStorageUsesGetPutDeleteInsteadOfMove(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	writeCSV(t, filepath.Join(srcDir, "in"), "people.csv", "id;name\n1;alice\n")

	storages := map[string]config.StorageConfig{
		"raw":  {Type: "local", Prefix: srcDir},
		"cold": {Type: "local", Prefix: dstDir},
	}
	registry := storage.NewRegistry(storages, nil)
	r := New(archiveEntity("raw", "cold"), storages, registry, flog.New("test-run"))

	inputs := types.ResolvedInputs{{
		Storage: "raw",
		Kind:    types.StorageLocal,
		URI:     "file://" + filepath.Join(srcDir, "in", "people.csv"),
	}}

	if err := r.archive(context.Background(), inputs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(srcDir, "in", "people.csv")); !os.IsNotExist(err) {
		t.Fatalf("expected source file to be removed after cross-store archive, stat err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(dstDir, "archive", "people.csv")); err != nil {
		t.Fatalf("expected archived file under the destination storage: %v", err)
	}
}
