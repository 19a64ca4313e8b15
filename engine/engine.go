// Package engine implements the entity runner (spec.md C5): for one
// [ENTITY] block it resolves inputs, prechecks and validates every file,
// enforces entity-level uniqueness, writes the accepted/rejected datasets,
// and returns the aggregate result the report builder consumes.
package engine

import (
	"context"

	"github.com/floe-data/floe/cli/config"
	flog "github.com/floe-data/floe/log"
	"github.com/floe-data/floe/severity"
	"github.com/floe-data/floe/storage"
	"github.com/floe-data/floe/target"
	"github.com/floe-data/floe/types"
	"github.com/floe-data/floe/validate"
)

// Runner executes one entity against its contract block.
type Runner struct {
	entity   config.EntityConfig
	storages map[string]config.StorageConfig
	registry *storage.Registry
	resolver *target.Resolver
	logger   *flog.Logger
	// OnFile, if set, is invoked synchronously once per completed file so
	// the caller can render its status line as soon as it's known.
	OnFile func(types.FileOutcome)
}

// New builds a Runner for one entity.
func New(entity config.EntityConfig, storages map[string]config.StorageConfig, registry *storage.Registry, logger *flog.Logger) *Runner {
	return &Runner{
		entity:   entity,
		storages: storages,
		registry: registry,
		resolver: target.NewResolver(registry, storages),
		logger:   logger.WithEntity(entity.Name),
	}
}

// Run executes the entity end-to-end and returns its aggregate result.
// A non-nil error is reserved for technical failures the caller must treat
// as the whole run failing (spec.md §7 RunError); per-file/per-row problems
// are represented inside the returned EntityResult instead.
func (r *Runner) Run(ctx context.Context) (types.EntityResult, error) {
	plan, err := r.entity.ColumnPlan()
	if err != nil {
		return types.EntityResult{}, err
	}

	inputs, err := r.resolver.ResolveSource(ctx, r.entity.Source, suffixesFor(r.entity.Source.Format))
	if err != nil {
		return types.EntityResult{}, err
	}

	pol := severity.New(r.entity.Policy.ResolvedSeverity())
	uniq := validate.NewUniqueTracker(plan)

	result := types.EntityResult{Entity: r.entity.Name}
	var acceptedRows []acceptedRowRef

	for fileIndex, in := range inputs {
		select {
		case <-ctx.Done():
			result.Status = types.RunAborted
			return result, ctx.Err()
		default:
		}

		outcome, rows, err := r.runFile(ctx, fileIndex, in, plan, pol, uniq)
		if err != nil {
			r.logger.Error("file failed", map[string]any{"file": in.URI, "error": err.Error()})
			outcome.Status = types.FileFailed
		}
		result.Files = append(result.Files, outcome)
		result.RowsTotal += outcome.RowsTotal
		result.Accepted += outcome.Accepted
		result.Rejected += outcome.Rejected
		result.Warnings += outcome.Warnings
		result.Errors += outcome.Errors
		acceptedRows = append(acceptedRows, rows...)

		if r.OnFile != nil {
			r.OnFile(outcome)
		}

		if outcome.Status == types.FileAborted {
			result.Status = types.RunAborted
			return result, nil
		}
		if outcome.Status == types.FileFailed {
			result.Status = types.RunFailed
			return result, nil
		}
	}

	parts, err := r.writeAccepted(ctx, plan, acceptedRows)
	if err != nil {
		result.Status = types.RunFailed
		return result, err
	}
	result.AcceptedParts = parts

	result.Status = deriveEntityStatus(result)

	if err := r.archive(ctx, inputs); err != nil {
		r.logger.Warn("archive step failed (best effort)", map[string]any{"error": err.Error()})
	}

	return result, nil
}

// deriveEntityStatus mirrors the run-level status derivation (spec.md
// §6.4) at entity scope: any rejected row or rejected file yields rejected;
// otherwise warnings present yields success_with_warnings; otherwise plain
// success. Aborted and failed files already short-circuited Run before this
// is reached; rejected files do not.
func deriveEntityStatus(result types.EntityResult) types.RunStatus {
	if result.Rejected > 0 {
		return types.RunRejected
	}
	for _, f := range result.Files {
		if f.Status == types.FileRejected {
			return types.RunRejected
		}
	}
	if result.Warnings > 0 {
		return types.RunSuccessWithWarnings
	}
	return types.RunSuccess
}

func suffixesFor(format string) []string {
	switch format {
	case "csv":
		return []string{".csv"}
	case "parquet":
		return []string{".parquet"}
	case "ndjson":
		return []string{".ndjson", ".jsonl"}
	case "json":
		return []string{".json"}
	default:
		return nil
	}
}

