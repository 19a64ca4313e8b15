// Package report assembles and writes the deterministic JSON artifacts a
// run produces: one run.json per entity plus one run.summary.json per run
// (spec.md §6.2-6.4).
package report

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/floe-data/floe/cli/config"
	"github.com/floe-data/floe/types"
)

var reportJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// SourceReport mirrors the source block of an entity's run.json.
type SourceReport struct {
	Format         string   `json:"format"`
	Path           string   `json:"path"`
	Options        map[string]any `json:"options,omitempty"`
	CastMode       string   `json:"cast_mode"`
	ReadPlan       string   `json:"read_plan"`
	ResolvedInputs []string `json:"resolved_inputs"`
}

// SinkReport mirrors the sink block of an entity's run.json.
type SinkReport struct {
	Accepted string `json:"accepted"`
	Rejected string `json:"rejected,omitempty"`
	Archive  string `json:"archive,omitempty"`
}

// PolicyReport mirrors the policy block of an entity's run.json.
type PolicyReport struct {
	Severity types.Severity `json:"severity"`
}

// ResultsReport mirrors the results block of an entity's run.json.
type ResultsReport struct {
	Files    int `json:"files"`
	Rows     int `json:"rows"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// EntityReport is the full shape of one entity's run.json (spec.md §6.3).
type EntityReport struct {
	SpecVersion string             `json:"spec_version"`
	Entity      string             `json:"entity"`
	Source      SourceReport       `json:"source"`
	Sink        SinkReport         `json:"sink"`
	Policy      PolicyReport       `json:"policy"`
	Results     ResultsReport      `json:"results"`
	Files       []types.FileOutcome `json:"files"`
	Status      types.RunStatus    `json:"status"`
}

// BuildEntityReport assembles one entity's run.json from its accumulated
// result and the contract it ran under.
func BuildEntityReport(entity config.EntityConfig, resolvedInputs []string, result types.EntityResult) EntityReport {
	sink := SinkReport{Accepted: entity.Sink.Accepted.Path}
	if entity.Sink.Rejected != nil {
		sink.Rejected = entity.Sink.Rejected.Path
	}
	if entity.Sink.Archive != nil {
		sink.Archive = entity.Sink.Archive.Path
	}

	return EntityReport{
		SpecVersion: types.SpecVersion,
		Entity:      entity.Name,
		Source: SourceReport{
			Format:         entity.Source.Format,
			Path:           entity.Source.Path,
			Options:        entity.Source.Options,
			CastMode:       string(entity.Source.ResolvedCastMode()),
			ReadPlan:       readPlanDescription(entity.Source.Format),
			ResolvedInputs: resolvedInputs,
		},
		Sink:   sink,
		Policy: PolicyReport{Severity: entity.Policy.ResolvedSeverity()},
		Results: ResultsReport{
			Files:    len(result.Files),
			Rows:     result.RowsTotal,
			Accepted: result.Accepted,
			Rejected: result.Rejected,
			Warnings: result.Warnings,
			Errors:   result.Errors,
		},
		Files:  result.Files,
		Status: result.Status,
	}
}

func readPlanDescription(format string) string {
	switch format {
	case "parquet":
		return "typed columnar read, local storage only"
	default:
		return "dual-read: raw string pass plus typed cast pass"
	}
}

// SummaryEntity is one entity's row in run.summary.json.
type SummaryEntity struct {
	Entity   string          `json:"entity"`
	Status   types.RunStatus `json:"status"`
	Files    int             `json:"files"`
	Rows     int             `json:"rows"`
	Accepted int             `json:"accepted"`
	Rejected int             `json:"rejected"`
	Warnings int             `json:"warnings"`
	Errors   int             `json:"errors"`
}

// RunSummary is the top-level run.summary.json shape.
type RunSummary struct {
	SpecVersion string          `json:"spec_version"`
	RunID       string          `json:"run_id"`
	Status      types.RunStatus `json:"status"`
	Entities    []SummaryEntity `json:"entities"`
}

// BuildRunSummary aggregates every entity result into the run-level
// summary, deriving the overall status per spec.md §6.4.
func BuildRunSummary(runID string, results []types.EntityResult) RunSummary {
	summary := RunSummary{SpecVersion: types.SpecVersion, RunID: runID}
	for _, r := range results {
		summary.Entities = append(summary.Entities, SummaryEntity{
			Entity:   r.Entity,
			Status:   r.Status,
			Files:    len(r.Files),
			Rows:     r.RowsTotal,
			Accepted: r.Accepted,
			Rejected: r.Rejected,
			Warnings: r.Warnings,
			Errors:   r.Errors,
		})
	}
	summary.Status = overallStatus(results)
	return summary
}

// overallStatus derives the run-level status from every entity's status,
// per spec.md §6.4: failed/aborted dominate, then rejected, then
// success_with_warnings, then success.
func overallStatus(results []types.EntityResult) types.RunStatus {
	sawFailed, sawAborted, sawRejected, sawWarnings := false, false, false, false
	for _, r := range results {
		switch r.Status {
		case types.RunFailed:
			sawFailed = true
		case types.RunAborted:
			sawAborted = true
		case types.RunRejected:
			sawRejected = true
		case types.RunSuccessWithWarnings:
			sawWarnings = true
		}
	}
	switch {
	case sawFailed:
		return types.RunFailed
	case sawAborted:
		return types.RunAborted
	case sawRejected:
		return types.RunRejected
	case sawWarnings:
		return types.RunSuccessWithWarnings
	default:
		return types.RunSuccess
	}
}

// Marshal renders v as deterministic, byte-stable indented JSON.
func Marshal(v any) ([]byte, error) {
	data, err := reportJSON.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
