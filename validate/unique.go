package validate

import (
	"github.com/floe-data/floe/types"
)

// RowRef locates one already-validated row within its source file, so
// UniqueTracker can report duplicates back against the right FileOutcome.
type RowRef struct {
	FileIndex int
	RowIndex  int
	Values    []any
}

// UniqueTracker evaluates entity-level uniqueness across files in
// file-order then row-order, keeping the first non-null occurrence and
// flagging later duplicates (spec.md §4.4).
type UniqueTracker struct {
	columns []string
	seen    map[string]map[any]bool
}

// NewUniqueTracker builds a tracker for plan's unique columns.
func NewUniqueTracker(plan types.ColumnPlan) *UniqueTracker {
	t := &UniqueTracker{seen: make(map[string]map[any]bool)}
	for _, col := range plan.UniqueColumns() {
		t.columns = append(t.columns, col.Name)
		t.seen[col.Name] = make(map[any]bool)
	}
	return t
}

// Observe checks ref's unique-column values against everything seen so
// far, in call order (callers must invoke this in file-order/row-order),
// and returns the duplicate RowErrors, if any. Null values never collide.
func (t *UniqueTracker) Observe(ref RowRef, plan types.ColumnPlan) []types.RowError {
	if len(t.columns) == 0 {
		return nil
	}
	var errs []types.RowError
	for _, name := range t.columns {
		idx := columnIndex(plan, name)
		if idx < 0 || idx >= len(ref.Values) {
			continue
		}
		v := ref.Values[idx]
		if v == nil {
			continue
		}
		if t.seen[name][v] {
			errs = append(errs, types.NewRowError(types.RuleUnique, name, ref.RowIndex))
			continue
		}
		t.seen[name][v] = true
	}
	return errs
}

func columnIndex(plan types.ColumnPlan, name string) int {
	for i, col := range plan.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}
