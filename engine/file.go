package engine

import (
	"context"
	"fmt"

	"github.com/floe-data/floe/cli/config"
	"github.com/floe-data/floe/format"
	"github.com/floe-data/floe/severity"
	"github.com/floe-data/floe/types"
	"github.com/floe-data/floe/validate"
)

// defaultExamplesCap bounds how many row-level examples a file's
// ValidationSummary keeps per rule (spec.md §4.6: "bounded by a
// configurable per-rule cap"); not yet exposed as a contract option.
const defaultExamplesCap = 20

// acceptedRowRef pairs an accepted row with its originating file index, so
// entity-level writes can still be attributed if needed later.
type acceptedRowRef struct {
	fileIndex int
	row       format.AcceptedRow
}

// runFile prechecks, validates, and disposes of one input file's rows. It
// never returns a technical error for row-level problems; those are folded
// into the returned FileOutcome per spec.md §7.
func (r *Runner) runFile(ctx context.Context, fileIndex int, in types.Target, plan types.ColumnPlan, pol severity.Policy, uniq *validate.UniqueTracker) (types.FileOutcome, []acceptedRowRef, error) {
	outcome := types.FileOutcome{FileURI: in.URI}
	flog := r.logger.WithFile(in.URI)

	client, err := r.registry.Get(ctx, in.Storage)
	if err != nil {
		return outcome, nil, err
	}

	if r.entity.Source.Format == "parquet" && in.Kind != types.StorageLocal {
		return outcome, nil, storageConfigError(in.Storage, "parquet input must be read from local storage")
	}

	localPath, cleanup, err := client.Get(ctx, in.URI)
	if err != nil {
		return outcome, nil, err
	}
	defer cleanup()

	reader, ignoredOptions, err := format.NewReader(r.entity.Source.Format, localPath, r.entity.Source.Options)
	if err != nil {
		return outcome, nil, err
	}
	for _, opt := range ignoredOptions {
		outcome.Warnings++
		flog.Warn("source option ignored for format", map[string]any{"option": opt, "format": r.entity.Source.Format})
	}

	probe, err := reader.Probe(ctx)
	if err != nil {
		return outcome, nil, err
	}

	mismatch, mismatchCols := precheckSchema(probe.Columns, plan)
	sev := r.entity.Policy.ResolvedSeverity()

	if mismatch == types.MismatchMissing {
		outcome.Mismatch = mismatch
		flog.Warn("schema mismatch at precheck", map[string]any{"mismatch": string(mismatch), "columns": mismatchCols})
		return dispositionForMismatch(sev, outcome, localPath, r.rejectedStagingPath(in), mismatchCols), nil, nil
	}

	rowIter, err := reader.Rows(ctx)
	if err != nil {
		return outcome, nil, err
	}
	defer rowIter.Close()

	var rejectedWriter format.RejectedWriter
	if r.entity.Sink.Rejected != nil {
		rejectedWriter, err = format.NewCSVRejectedWriter(r.rejectedStagingPath(in), plan.ColumnNames())
		if err != nil {
			return outcome, nil, err
		}
	}

	agg := validate.NewAggregator(sev, defaultExamplesCap)
	var accepted []acceptedRowRef
	for {
		raw, rowIndex, ok, err := rowIter.Next(ctx)
		if err != nil {
			return outcome, nil, err
		}
		if !ok {
			break
		}
		outcome.RowsTotal++

		res := validate.Row(raw, rowIndex, plan, r.entity.Source.ResolvedCastMode())
		errs := res.Errors

		if dupErrs := uniq.Observe(validate.RowRef{FileIndex: fileIndex, RowIndex: rowIndex, Values: res.Row.Values}, plan); len(dupErrs) > 0 {
			errs = append(errs, dupErrs...)
		}

		disp := pol.Evaluate(errs)
		if len(errs) > 0 {
			agg.Add(errs)
		}
		switch disp {
		case severity.Keep:
			outcome.Accepted++
			if sev == types.SeverityWarn {
				outcome.Warnings += len(errs)
			}
			accepted = append(accepted, acceptedRowRef{fileIndex: fileIndex, row: res.Row})
		case severity.Split:
			outcome.Rejected++
			outcome.Errors += len(errs)
			if rejectedWriter != nil {
				if err := rejectedWriter.WriteRow(ctx, raw, rowIndex, errs); err != nil {
					return outcome, nil, err
				}
			}
		case severity.AbortFile:
			outcome.Status = types.FileAborted
			outcome.Errors += len(errs)
			outcome.ValidationSummary = agg.Summary(outcome.Errors, outcome.Warnings)
			if rejectedWriter != nil {
				_ = rejectedWriter.Close(ctx)
			}
			if err := r.writeAbortArtifacts(localPath, in, errs); err != nil {
				flog.Warn("failed writing abort artifacts", map[string]any{"error": err.Error()})
			}
			return outcome, nil, nil
		}
	}

	if rejectedWriter != nil {
		if err := rejectedWriter.Close(ctx); err != nil {
			return outcome, nil, err
		}
		if outcome.Rejected > 0 {
			if err := r.uploadRejected(ctx, in); err != nil {
				return outcome, nil, err
			}
		}
	}

	outcome.Status = types.FileSuccess
	if outcome.Rejected > 0 {
		outcome.Status = types.FileRejected
	}
	outcome.ValidationSummary = agg.Summary(outcome.Errors, outcome.Warnings)
	return outcome, accepted, nil
}

// precheckSchema compares a file's declared columns against plan under
// strict schema enforcement (spec.md §4.4: "Missing columns under strict
// schema: default action reject_file"). Column-name normalization, when
// configured, is applied to both the incoming header and the schema names
// before comparison (spec.md §4.4), so e.g. a `UserId` header reconciles
// against a declared `user_id` column under snake_case normalization.
func precheckSchema(fileColumns []string, plan types.ColumnPlan) (types.MismatchKind, []string) {
	strategy := plan.NormalizeStrategy

	declared := make(map[string]bool, len(fileColumns))
	for _, c := range fileColumns {
		declared[config.NormalizeName(c, strategy)] = true
	}

	var missing []string
	for _, col := range plan.Columns {
		if !declared[config.NormalizeName(col.Name, strategy)] {
			missing = append(missing, col.Name)
		}
	}
	if len(missing) > 0 {
		return types.MismatchMissing, missing
	}

	expected := make(map[string]bool, len(plan.Columns))
	for _, col := range plan.Columns {
		expected[config.NormalizeName(col.Name, strategy)] = true
	}
	var extra []string
	for _, c := range fileColumns {
		if !expected[config.NormalizeName(c, strategy)] {
			extra = append(extra, c)
		}
	}
	if len(extra) > 0 {
		return types.MismatchExtra, extra
	}
	return "", nil
}

// dispositionForMismatch applies severity to a file whose precheck failed
// (spec.md §4.4): warn records and treats it as an empty accepted file;
// reject marks the file rejected; abort marks it aborted and emits the
// abort artifacts.
func dispositionForMismatch(sev types.Severity, outcome types.FileOutcome, sourcePath, rejectedPath string, missingCols []string) types.FileOutcome {
	errs := make([]types.RowError, len(missingCols))
	for i, col := range missingCols {
		errs[i] = types.NewRowErrorf(types.RuleSchemaMismatch, col, -1, "missing column %q", col)
	}

	agg := validate.NewAggregator(sev, defaultExamplesCap)
	agg.Add(errs)

	switch sev {
	case types.SeverityWarn:
		outcome.Status = types.FileSuccess
		outcome.Warnings += len(errs)
	case types.SeverityAbort:
		outcome.Status = types.FileAborted
		outcome.Errors += len(errs)
		_ = format.CopyAbortRejected(sourcePath, rejectedPath, rejectedPath+"_reject_errors.json", errs)
	default:
		outcome.Status = types.FileRejected
		outcome.Errors += len(errs)
	}
	outcome.ValidationSummary = agg.Summary(outcome.Errors, outcome.Warnings)
	return outcome
}

func storageConfigError(storageName, reason string) error {
	return fmt.Errorf("entity configuration error: storage %q: %s", storageName, reason)
}

func (r *Runner) rejectedStagingPath(in types.Target) string {
	return "/tmp/floe-rejected-" + sanitizeURI(in.URI) + ".csv"
}

func sanitizeURI(uri string) string {
	b := []byte(uri)
	for i, c := range b {
		if c == '/' || c == ':' {
			b[i] = '_'
		}
	}
	return string(b)
}
