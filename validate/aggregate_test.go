package validate

import (
	"testing"

	"github.com/floe-data/floe/types"
)

func TestAggregator_GroupsByRuleThenColumnInDeterministicOrder(t *testing.T) {
	agg := NewAggregator(types.SeverityReject, 10)
	agg.Add([]types.RowError{types.NewRowError(types.RuleCastError, "d", 0)})
	agg.Add([]types.RowError{types.NewRowError(types.RuleNotNull, "id", 1)})
	agg.Add([]types.RowError{types.NewRowError(types.RuleNotNull, "id", 2)})
	agg.Add([]types.RowError{types.NewRowError(types.RuleNotNull, "v", 3)})

	summary := agg.Summary(4, 0)
	if len(summary.Rules) != 2 {
		t.Fatalf("got %d rule groups, want 2: %+v", len(summary.Rules), summary.Rules)
	}
	// not_null sorts before cast_error in the fixed rule order.
	if summary.Rules[0].Rule != types.RuleNotNull || summary.Rules[1].Rule != types.RuleCastError {
		t.Fatalf("got rule order %v, want [not_null cast_error]", []types.Rule{summary.Rules[0].Rule, summary.Rules[1].Rule})
	}
	if summary.Rules[0].Violations != 3 {
		t.Errorf("got %d not_null violations, want 3", summary.Rules[0].Violations)
	}
	if len(summary.Rules[0].Columns) != 2 || summary.Rules[0].Columns[0].Column != "id" || summary.Rules[0].Columns[0].Violations != 2 {
		t.Fatalf("got columns %+v, want id=2 then v=1", summary.Rules[0].Columns)
	}
}

func TestAggregator_ExamplesCappedPerRule(t *testing.T) {
	agg := NewAggregator(types.SeverityReject, 2)
	for i := 0; i < 5; i++ {
		agg.Add([]types.RowError{types.NewRowError(types.RuleNotNull, "id", i)})
	}
	summary := agg.Summary(5, 0)
	if len(summary.Examples) != 2 {
		t.Fatalf("got %d examples, want 2 (capped)", len(summary.Examples))
	}
	if summary.Rules[0].Violations != 5 {
		t.Errorf("violation count should reflect all 5 rows, not just the examples kept")
	}
}

func TestAggregator_NoErrorsProducesEmptySummary(t *testing.T) {
	agg := NewAggregator(types.SeverityWarn, 10)
	summary := agg.Summary(0, 0)
	if len(summary.Rules) != 0 || len(summary.Examples) != 0 {
		t.Fatalf("got %+v, want empty summary", summary)
	}
}
