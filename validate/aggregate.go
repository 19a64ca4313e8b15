package validate

import "github.com/floe-data/floe/types"

// ruleOrder fixes the deterministic rule order reports use throughout
// (spec.md §6.3 aggregation, mirrored from types.ValidationSummary's doc
// comment): not_null, cast_error, unique, schema_mismatch.
var ruleOrder = []types.Rule{
	types.RuleNotNull,
	types.RuleCastError,
	types.RuleUnique,
	types.RuleSchemaMismatch,
}

// Aggregator accumulates per-rule, per-column violation counts and a
// bounded set of row-level examples for one file's validation pass, used
// to populate FileOutcome.ValidationSummary (spec.md §4.6, §6.3).
type Aggregator struct {
	severity   types.Severity
	exampleCap int
	counts     map[types.Rule]map[string]int
	colOrder   map[types.Rule][]string
	examples   map[types.Rule]int
	allExamples []types.RowError
}

// NewAggregator builds an Aggregator for a file validated under sev, capping
// the row-level examples kept per rule at exampleCap (spec.md §4.6:
// "bounded by a configurable per-rule cap").
func NewAggregator(sev types.Severity, exampleCap int) *Aggregator {
	return &Aggregator{
		severity:   sev,
		exampleCap: exampleCap,
		counts:     make(map[types.Rule]map[string]int),
		colOrder:   make(map[types.Rule][]string),
		examples:   make(map[types.Rule]int),
	}
}

// Add records one row's errors against the aggregator.
func (a *Aggregator) Add(errs []types.RowError) {
	for _, e := range errs {
		if _, ok := a.counts[e.Rule]; !ok {
			a.counts[e.Rule] = make(map[string]int)
		}
		if _, seen := a.counts[e.Rule][e.Column]; !seen {
			a.colOrder[e.Rule] = append(a.colOrder[e.Rule], e.Column)
		}
		a.counts[e.Rule][e.Column]++

		if a.exampleCap > 0 && a.examples[e.Rule] < a.exampleCap {
			a.allExamples = append(a.allExamples, e)
			a.examples[e.Rule]++
		}
	}
}

// Summary renders the accumulated counts as the ValidationSummary a
// FileOutcome carries, with errors/warnings split per spec.md §4.4 ("In
// warn, all rows are accepted but errors are counted and listed").
func (a *Aggregator) Summary(errors, warnings int) types.ValidationSummary {
	summary := types.ValidationSummary{Errors: errors, Warnings: warnings}
	for _, rule := range ruleOrder {
		cols, ok := a.counts[rule]
		if !ok {
			continue
		}
		total := 0
		columns := make([]types.ColumnAggregate, 0, len(a.colOrder[rule]))
		for _, col := range a.colOrder[rule] {
			n := cols[col]
			total += n
			columns = append(columns, types.ColumnAggregate{Column: col, Violations: n})
		}
		summary.Rules = append(summary.Rules, types.RuleAggregate{
			Rule:       rule,
			Severity:   a.severity,
			Violations: total,
			Columns:    columns,
		})
	}
	summary.Examples = a.allExamples
	return summary
}
