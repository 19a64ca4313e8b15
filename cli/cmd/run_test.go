package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/floe-data/floe/rundriver"
)

func runAppWithRun(t *testing.T, args ...string) error {
	t.Helper()
	app := &cli.App{
		Name:     "floe",
		Commands: []*cli.Command{RunCommand()},
	}
	return app.Run(append([]string{"floe"}, args...))
}

func TestRunCommand_LocalEndToEnd(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "in"), 0o755); err != nil {
		t.Fatal(err)
	}
	csv := "id;name\n1;alice\n2;bob\n"
	if err := os.WriteFile(filepath.Join(dir, "in", "people.csv"), []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	contract := `version: "1"
report:
  path: ` + filepath.Join(dir, "reports") + `
storage:
  local:
    type: local
    prefix: ` + dir + `
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
        - name: name
          type: string
`
	path := writeTempContract(t, contract)

	err := runAppWithRun(t, "run", "--config", path, "--run-id", "cli-test-run", "--no-color")
	if err == nil {
		t.Fatal("expected an ExitCoder(0) error from cli.Exit, got nil")
	}
	var code cli.ExitCoder
	if !errors.As(err, &code) || code.ExitCode() != rundriver.ExitSuccess {
		t.Fatalf("got %v, want ExitCoder(0)", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "reports", "run_cli-test-run", "run.summary.json")); err != nil {
		t.Errorf("expected run summary written: %v", err)
	}
}
