package validate

import (
	"testing"

	"github.com/floe-data/floe/format"
	"github.com/floe-data/floe/types"
)

func plan(cols ...types.Column) types.ColumnPlan {
	return types.ColumnPlan{Columns: cols}
}

func TestRow_NotNullOnMissingRequiredColumn(t *testing.T) {
	p := plan(
		types.Column{Name: "id", Type: types.TypeInt64, Nullable: false},
		types.Column{Name: "v", Type: types.TypeString, Nullable: true},
	)
	raw := format.Row{"id": "", "v": "x"}
	res := Row(raw, 1, p, types.CastStrict)

	if len(res.Errors) != 1 || res.Errors[0].Rule != types.RuleNotNull || res.Errors[0].Column != "id" {
		t.Fatalf("got errors %+v, want single not_null on id", res.Errors)
	}
	if res.Row.Values[0] != nil {
		t.Errorf("got value %v, want nil", res.Row.Values[0])
	}
}

func TestRow_CastErrorStrictMode(t *testing.T) {
	p := plan(
		types.Column{Name: "id", Type: types.TypeInt64, Nullable: true},
		types.Column{Name: "d", Type: types.TypeDatetime, Nullable: true},
	)
	raw := format.Row{"id": "4", "d": "not-a-date"}
	res := Row(raw, 0, p, types.CastStrict)

	if len(res.Errors) != 1 || res.Errors[0].Rule != types.RuleCastError || res.Errors[0].Column != "d" {
		t.Fatalf("got errors %+v, want single cast_error on d", res.Errors)
	}
	if res.Errors[0].Message != "invalid value for target type" {
		t.Errorf("got message %q", res.Errors[0].Message)
	}
}

func TestRow_CoerceModeSuppressesCastError(t *testing.T) {
	p := plan(types.Column{Name: "d", Type: types.TypeDatetime, Nullable: true})
	raw := format.Row{"d": "not-a-date"}
	res := Row(raw, 0, p, types.CastCoerce)

	if len(res.Errors) != 0 {
		t.Fatalf("got errors %+v, want none under coerce", res.Errors)
	}
	if res.Row.Values[0] != nil {
		t.Errorf("got value %v, want nil under coerce", res.Row.Values[0])
	}
}

func TestRow_CoerceModeStillFlagsNotNull(t *testing.T) {
	p := plan(types.Column{Name: "d", Type: types.TypeDatetime, Nullable: false})
	raw := format.Row{"d": "not-a-date"}
	res := Row(raw, 0, p, types.CastCoerce)

	if len(res.Errors) != 1 || res.Errors[0].Rule != types.RuleNotNull {
		t.Fatalf("got errors %+v, want not_null under coerce+nullable=false", res.Errors)
	}
}

func TestRow_NormalizationReconcilesHeaderAgainstSchema(t *testing.T) {
	p := types.ColumnPlan{
		Columns: []types.Column{
			{Name: "user_id", Type: types.TypeInt64, Nullable: false},
		},
		NormalizeStrategy: types.NormalizeSnakeCase,
	}
	raw := format.Row{"UserId": "7"}
	res := Row(raw, 0, p, types.CastStrict)

	if len(res.Errors) != 0 {
		t.Fatalf("got errors %+v, want none (header should reconcile under normalization)", res.Errors)
	}
	if res.Row.Values[0] != int64(7) {
		t.Errorf("got value %v, want int64(7)", res.Row.Values[0])
	}
}

func TestRow_StringColumnOnlyChecksNotNull(t *testing.T) {
	p := plan(types.Column{Name: "v", Type: types.TypeString, Nullable: false})
	res := Row(format.Row{"v": "hello"}, 0, p, types.CastStrict)
	if len(res.Errors) != 0 {
		t.Fatalf("got errors %+v, want none", res.Errors)
	}
	if res.Row.Values[0] != "hello" {
		t.Errorf("got %v, want hello", res.Row.Values[0])
	}
}

func TestRow_NestedJSONValueIsCastError(t *testing.T) {
	p := plan(types.Column{Name: "meta", Type: types.TypeInt64, Nullable: true})
	raw := format.Row{"meta": format.NestedMarker}
	res := Row(raw, 0, p, types.CastStrict)
	if len(res.Errors) != 1 || res.Errors[0].Rule != types.RuleCastError {
		t.Fatalf("got errors %+v, want cast_error for nested value", res.Errors)
	}
}

func TestRow_ErrorsAssembledInColumnDeclarationOrder(t *testing.T) {
	p := plan(
		types.Column{Name: "a", Type: types.TypeInt64, Nullable: false},
		types.Column{Name: "b", Type: types.TypeInt64, Nullable: false},
	)
	res := Row(format.Row{}, 0, p, types.CastStrict)
	if len(res.Errors) != 2 || res.Errors[0].Column != "a" || res.Errors[1].Column != "b" {
		t.Fatalf("got errors %+v, want a then b", res.Errors)
	}
}

func TestUniqueTracker_FirstOccurrenceKeptLaterDuplicatesFlagged(t *testing.T) {
	p := plan(types.Column{Name: "id", Type: types.TypeInt64, Unique: true})
	tr := NewUniqueTracker(p)

	if errs := tr.Observe(RowRef{FileIndex: 0, RowIndex: 0, Values: []any{int64(1)}}, p); len(errs) != 0 {
		t.Errorf("got errs %+v on first occurrence", errs)
	}
	if errs := tr.Observe(RowRef{FileIndex: 0, RowIndex: 1, Values: []any{int64(2)}}, p); len(errs) != 0 {
		t.Errorf("got errs %+v on distinct value", errs)
	}
	errs := tr.Observe(RowRef{FileIndex: 0, RowIndex: 2, Values: []any{int64(1)}}, p)
	if len(errs) != 1 || errs[0].Rule != types.RuleUnique || errs[0].RowIndex != 2 {
		t.Fatalf("got errs %+v, want single unique error at row_index=2", errs)
	}
}

func TestUniqueTracker_NullValuesNeverCollide(t *testing.T) {
	p := plan(types.Column{Name: "id", Type: types.TypeInt64, Unique: true})
	tr := NewUniqueTracker(p)
	for i := 0; i < 3; i++ {
		if errs := tr.Observe(RowRef{RowIndex: i, Values: []any{nil}}, p); len(errs) != 0 {
			t.Errorf("got errs %+v, want none for null values", errs)
		}
	}
}

func TestUniqueTracker_MultiFileOrderDeterminesKeep(t *testing.T) {
	p := plan(types.Column{Name: "id", Type: types.TypeInt64, Unique: true})
	tr := NewUniqueTracker(p)
	if errs := tr.Observe(RowRef{FileIndex: 0, RowIndex: 0, Values: []any{int64(1)}}, p); len(errs) != 0 {
		t.Fatalf("got errs %+v on a.csv's row", errs)
	}
	errs := tr.Observe(RowRef{FileIndex: 1, RowIndex: 0, Values: []any{int64(1)}}, p)
	if len(errs) != 1 {
		t.Fatalf("got errs %+v, want b.csv's row rejected as duplicate", errs)
	}
}

func TestUniqueTracker_NoUniqueColumnsIsNoop(t *testing.T) {
	p := plan(types.Column{Name: "id", Type: types.TypeInt64})
	tr := NewUniqueTracker(p)
	if errs := tr.Observe(RowRef{Values: []any{int64(1)}}, p); errs != nil {
		t.Errorf("got %+v, want nil", errs)
	}
}
