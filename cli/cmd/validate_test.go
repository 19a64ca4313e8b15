package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/floe-data/floe/cli/config"
)

func writeTempContract(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "floe.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write contract: %v", err)
	}
	return path
}

const validContract = `version: "1"
report:
  path: ./reports
storage:
  local:
    type: local
entities:
  - name: people
    source:
      format: csv
      path: in
      storage: local
    sink:
      accepted:
        format: parquet
        path: out/people
        storage: local
    policy:
      severity: reject
    schema:
      columns:
        - name: id
          type: int64
`

func runApp(t *testing.T, args ...string) error {
	t.Helper()
	app := &cli.App{
		Name:     "floe",
		Commands: []*cli.Command{ValidateCommand()},
	}
	return app.Run(append([]string{"floe"}, args...))
}

func TestValidateCommand_ValidContractExitsClean(t *testing.T) {
	path := writeTempContract(t, validContract)
	if err := runApp(t, "validate", "--config", path); err != nil {
		t.Fatalf("expected nil error for a valid contract, got %v", err)
	}
}

func TestValidateCommand_MissingFileFails(t *testing.T) {
	err := runApp(t, "validate", "--config", "/nonexistent/floe.yaml")
	var exitCoder cli.ExitCoder
	if !errors.As(err, &exitCoder) {
		t.Fatalf("expected an ExitCoder error, got %v", err)
	}
	if exitCoder.ExitCode() != exitValidateFail {
		t.Errorf("got exit code %d, want %d", exitCoder.ExitCode(), exitValidateFail)
	}
}

func TestValidateCommand_UnknownEntityFilterFails(t *testing.T) {
	path := writeTempContract(t, validContract)
	err := runApp(t, "validate", "--config", path, "--entities", "ghost")
	var exitCoder cli.ExitCoder
	if !errors.As(err, &exitCoder) {
		t.Fatalf("expected an ExitCoder error, got %v", err)
	}
	if exitCoder.ExitCode() != exitValidateFail {
		t.Errorf("got exit code %d, want %d", exitCoder.ExitCode(), exitValidateFail)
	}
}

func TestMissingEntities(t *testing.T) {
	path := writeTempContract(t, validContract)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := missingEntities(cfg, []string{"people", "ghost"})
	if len(got) != 1 || got[0] != "ghost" {
		t.Errorf("got %v, want [ghost]", got)
	}
}
