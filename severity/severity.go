// Package severity implements the three row/file disposition policies a
// policy.severity setting selects between: warn, reject, abort.
package severity

import (
	"sync"

	"github.com/floe-data/floe/types"
)

// Disposition is the outcome a Policy assigns to one row once its errors
// are known.
type Disposition int

const (
	// Keep means the row belongs in the accepted output.
	Keep Disposition = iota
	// Split means the row moves to the rejected output.
	Split
	// AbortFile means the row's errors are severe enough that the whole
	// file containing it must be aborted.
	AbortFile
)

// Policy evaluates per-row errors under one severity and accumulates
// aggregate counters for report assembly.
type Policy interface {
	// Evaluate decides a row's disposition from its accumulated errors.
	// An empty errs always yields Keep.
	Evaluate(errs []types.RowError) Disposition
	// Severity reports which severity this Policy implements.
	Severity() types.Severity
	// Stats returns an atomic snapshot of accumulated rule/column counters.
	Stats() Stats
}

// Stats aggregates rule and column violation counts across every row a
// Policy has evaluated. The report's rule-aggregation table is built from
// validate.Aggregator, not from these counters.
type Stats struct {
	RowsEvaluated int64
	RowsKept      int64
	RowsSplit     int64
	ByRule        map[types.Rule]int64
	ByColumn      map[string]int64
}

func newStats() Stats {
	return Stats{ByRule: make(map[types.Rule]int64), ByColumn: make(map[string]int64)}
}

// recorder is the thread-safe counter bookkeeping shared by every Policy
// implementation.
type recorder struct {
	mu    sync.Mutex
	stats Stats
}

func newRecorder() *recorder {
	return &recorder{stats: newStats()}
}

func (r *recorder) record(errs []types.RowError, disp Disposition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.RowsEvaluated++
	switch disp {
	case Keep:
		r.stats.RowsKept++
	case Split, AbortFile:
		r.stats.RowsSplit++
	}
	for _, e := range errs {
		r.stats.ByRule[e.Rule]++
		r.stats.ByColumn[e.Column]++
	}
}

func (r *recorder) snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := newStats()
	out.RowsEvaluated = r.stats.RowsEvaluated
	out.RowsKept = r.stats.RowsKept
	out.RowsSplit = r.stats.RowsSplit
	for k, v := range r.stats.ByRule {
		out.ByRule[k] = v
	}
	for k, v := range r.stats.ByColumn {
		out.ByColumn[k] = v
	}
	return out
}

// New builds the Policy for the given severity. Unrecognized severities
// default to reject, matching config.PolicyConfig.ResolvedSeverity.
func New(sev types.Severity) Policy {
	switch sev {
	case types.SeverityWarn:
		return &warnPolicy{rec: newRecorder()}
	case types.SeverityAbort:
		return &abortPolicy{rec: newRecorder()}
	default:
		return &rejectPolicy{rec: newRecorder()}
	}
}

// warnPolicy keeps every row regardless of errors; violations are only
// counted (spec.md §4.4: "In warn, all rows are accepted but errors are
// counted and listed").
type warnPolicy struct{ rec *recorder }

func (p *warnPolicy) Evaluate(errs []types.RowError) Disposition {
	p.rec.record(errs, Keep)
	return Keep
}
func (p *warnPolicy) Severity() types.Severity { return types.SeverityWarn }
func (p *warnPolicy) Stats() Stats             { return p.rec.snapshot() }

// rejectPolicy splits offending rows into the rejected output; sibling
// rows and files are unaffected.
type rejectPolicy struct{ rec *recorder }

func (p *rejectPolicy) Evaluate(errs []types.RowError) Disposition {
	if len(errs) == 0 {
		p.rec.record(errs, Keep)
		return Keep
	}
	p.rec.record(errs, Split)
	return Split
}
func (p *rejectPolicy) Severity() types.Severity { return types.SeverityReject }
func (p *rejectPolicy) Stats() Stats             { return p.rec.snapshot() }

// abortPolicy marks the entire containing file aborted the first time it
// encounters a row with errors (spec.md §4.4: "the first offending row
// causes the entire file to be aborted").
type abortPolicy struct{ rec *recorder }

func (p *abortPolicy) Evaluate(errs []types.RowError) Disposition {
	if len(errs) == 0 {
		p.rec.record(errs, Keep)
		return Keep
	}
	p.rec.record(errs, AbortFile)
	return AbortFile
}
func (p *abortPolicy) Severity() types.Severity { return types.SeverityAbort }
func (p *abortPolicy) Stats() Stats             { return p.rec.snapshot() }
