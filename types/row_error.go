package types

import "fmt"

// Rule identifies the kind of row-level violation a RowError carries.
type Rule string

const (
	RuleNotNull        Rule = "not_null"
	RuleCastError      Rule = "cast_error"
	RuleUnique         Rule = "unique"
	RuleSchemaMismatch Rule = "schema_mismatch"
)

// RowError is a single rule violation attributed to one cell (or, for
// schema_mismatch, to a whole file).
type RowError struct {
	Rule     Rule   `json:"rule"`
	Column   string `json:"column,omitempty"`
	RowIndex int    `json:"row_index"`
	Message  string `json:"message"`
}

// messages mirrors the wording spec.md's end-to-end scenarios expect
// (e.g. S2's `"invalid value for target type"`), kept centralized so the
// validator and the rejected-CSV writer never drift apart.
var messages = map[Rule]string{
	RuleNotNull:        "value is required",
	RuleCastError:      "invalid value for target type",
	RuleUnique:         "duplicate value for unique column",
	RuleSchemaMismatch: "schema mismatch",
}

// NewRowError builds a RowError with the rule's canonical message.
func NewRowError(rule Rule, column string, rowIndex int) RowError {
	return RowError{Rule: rule, Column: column, RowIndex: rowIndex, Message: messages[rule]}
}

// NewRowErrorf builds a RowError with a custom message, for cases (schema
// mismatch detail, and so on) where the canonical message isn't specific
// enough.
func NewRowErrorf(rule Rule, column string, rowIndex int, format string, args ...any) RowError {
	return RowError{Rule: rule, Column: column, RowIndex: rowIndex, Message: fmt.Sprintf(format, args...)}
}
