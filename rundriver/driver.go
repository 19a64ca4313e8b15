// Package rundriver implements the run driver (spec.md C7): it allocates
// a run_id, iterates an entity subset in declared order through the
// entity runner, and writes the run's report artifacts.
package rundriver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/floe-data/floe/cli/config"
	"github.com/floe-data/floe/engine"
	flog "github.com/floe-data/floe/log"
	"github.com/floe-data/floe/report"
	"github.com/floe-data/floe/storage"
	"github.com/floe-data/floe/types"
)

// Exit codes per spec.md §8.
const (
	ExitSuccess = 0
	ExitFailed  = 1
	ExitAborted = 2
)

// Options configures one invocation of Run.
type Options struct {
	// RunID overrides the allocated run_id (--run-id).
	RunID string
	// Entities restricts the run to a subset, in the order given by the
	// contract (--entities). Empty means every declared entity.
	Entities []string
	// OnFile, if set, is invoked once per completed file so the caller can
	// render a status line as soon as it's known.
	OnFile func(entity string, outcome types.FileOutcome)
}

// Result is what a CLI command needs to decide its own exit code and print
// a final summary.
type Result struct {
	RunID   string
	Summary report.RunSummary
}

// AllocateRunID formats t as the run_id spec.md §4.7 describes: UTC
// RFC3339-ish with colons replaced by dashes so the id is filesystem- and
// URI-safe (e.g. "2026-07-29T14-03-11Z").
func AllocateRunID(t time.Time) string {
	s := t.UTC().Format("2006-01-02T15:04:05Z")
	return strings.ReplaceAll(s, ":", "-")
}

// ExitCode maps an overall run status to the process exit code spec.md §8
// documents: 0 for success/success_with_warnings/rejected, 1 for failed,
// 2 for aborted.
func ExitCode(status types.RunStatus) int {
	switch status {
	case types.RunFailed:
		return ExitFailed
	case types.RunAborted:
		return ExitAborted
	default:
		return ExitSuccess
	}
}

// Run executes every selected entity in declared order and writes the
// run's report artifacts (spec.md §4.7, §6.2-6.4). logger may be nil, in
// which case a run-scoped logger is created.
func Run(ctx context.Context, cfg *config.Config, opts Options, logger *flog.Logger) (Result, error) {
	runID := opts.RunID
	if runID == "" {
		// Collisions are only possible for auto-allocated ids (two runs
		// started within the same second); an explicit --run-id is taken
		// as given and never disambiguated.
		runID = disambiguateRunID(cfg, AllocateRunID(time.Now()))
	}
	if logger == nil {
		logger = flog.New(runID)
	}

	entities := selectEntities(cfg.Entities, opts.Entities)

	registry := storage.NewRegistry(cfg.Storage, warnAdapter{logger})
	defer registry.Close()

	var results []types.EntityResult
	var entityReports []report.EntityReport

	for _, e := range entities {
		select {
		case <-ctx.Done():
			results = append(results, types.EntityResult{Entity: e.Name, Status: types.RunAborted})
			logger.Warn("run canceled before entity started", map[string]any{"entity": e.Name})
			continue
		default:
		}

		runner := engine.New(e, cfg.Storage, registry, logger)
		if opts.OnFile != nil {
			entityName := e.Name
			runner.OnFile = func(outcome types.FileOutcome) { opts.OnFile(entityName, outcome) }
		}

		result, err := runner.Run(ctx)
		if err != nil {
			logger.Error("entity run failed", map[string]any{"entity": e.Name, "error": err.Error()})
			if result.Status == "" {
				result.Status = types.RunFailed
			}
		}
		if result.Entity == "" {
			result.Entity = e.Name
		}
		results = append(results, result)

		resolvedInputs := make([]string, len(result.Files))
		for i, f := range result.Files {
			resolvedInputs[i] = f.FileURI
		}
		entityReports = append(entityReports, report.BuildEntityReport(e, resolvedInputs, result))
	}

	summary := report.BuildRunSummary(runID, results)

	if err := writeReports(ctx, cfg, registry, runID, entityReports, summary); err != nil {
		return Result{RunID: runID, Summary: summary}, fmt.Errorf("rundriver: write reports: %w", err)
	}

	return Result{RunID: runID, Summary: summary}, nil
}

// disambiguateRunID appends a short uuid suffix to runID if a report
// directory for it already exists locally — two runs started within the
// same second would otherwise collide and overwrite each other's reports.
// The suffix is never part of the canonical timestamp; it only exists to
// break this specific tie.
func disambiguateRunID(cfg *config.Config, runID string) string {
	if cfg.Report.Storage != "" {
		// Collision detection is a local-filesystem convenience; remote
		// report backends are left to their own overwrite semantics.
		return runID
	}
	base := strings.TrimRight(cfg.Report.Path, "/") + "/run_" + runID
	if _, err := os.Stat(base); err == nil {
		return runID + "-" + uuid.New().String()[:8]
	}
	return runID
}

func selectEntities(all []config.EntityConfig, names []string) []config.EntityConfig {
	if len(names) == 0 {
		return all
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []config.EntityConfig
	for _, e := range all {
		if want[e.Name] {
			out = append(out, e)
		}
	}
	return out
}

func writeReports(ctx context.Context, cfg *config.Config, registry *storage.Registry, runID string, entityReports []report.EntityReport, summary report.RunSummary) error {
	base := strings.TrimRight(cfg.Report.Path, "/") + "/run_" + runID

	summaryBytes, err := report.Marshal(summary)
	if err != nil {
		return err
	}
	if err := putReportFile(ctx, cfg, registry, base+"/run.summary.json", summaryBytes); err != nil {
		return err
	}

	for _, er := range entityReports {
		data, err := report.Marshal(er)
		if err != nil {
			return err
		}
		if err := putReportFile(ctx, cfg, registry, base+"/"+er.Entity+"/run.json", data); err != nil {
			return err
		}
	}
	return nil
}

// putReportFile writes a report artifact either directly to the local
// filesystem (the convenience default when report.storage is unset) or
// through the named storage client otherwise.
func putReportFile(ctx context.Context, cfg *config.Config, registry *storage.Registry, relPath string, data []byte) error {
	if cfg.Report.Storage == "" {
		if err := os.MkdirAll(filepath.Dir(relPath), 0o755); err != nil {
			return err
		}
		return os.WriteFile(relPath, data, 0o644)
	}

	def, ok := cfg.Storage[cfg.Report.Storage]
	if !ok {
		return fmt.Errorf("rundriver: undefined report storage %q", cfg.Report.Storage)
	}
	uri, _, err := storage.CanonicalURI(def, relPath)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "floe-report-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	client, err := registry.Get(ctx, cfg.Report.Storage)
	if err != nil {
		return err
	}
	return client.Put(ctx, tmp.Name(), uri)
}

// warnAdapter bridges storage.Warner to the structured logger.
type warnAdapter struct{ logger *flog.Logger }

func (w warnAdapter) Warn(message string) { w.logger.Warn(message, nil) }
