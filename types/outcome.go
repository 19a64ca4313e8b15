package types

// FileStatus is a single input file's terminal state (spec.md §3, §4.5).
type FileStatus string

const (
	FileSuccess  FileStatus = "success"
	FileRejected FileStatus = "rejected"
	FileAborted  FileStatus = "aborted"
	FileFailed   FileStatus = "failed"
)

// RunStatus is a run (or entity)'s terminal state (spec.md §6.4).
type RunStatus string

const (
	RunSuccess               RunStatus = "success"
	RunSuccessWithWarnings   RunStatus = "success_with_warnings"
	RunRejected              RunStatus = "rejected"
	RunAborted               RunStatus = "aborted"
	RunFailed                RunStatus = "failed"
)

// Severity is the policy.severity contract value controlling how row and
// file level violations are disposed of (spec.md glossary).
type Severity string

const (
	SeverityWarn   Severity = "warn"
	SeverityReject Severity = "reject"
	SeverityAbort  Severity = "abort"
)

// CastMode selects strict vs. coerce cell-casting semantics (spec.md §4.4).
type CastMode string

const (
	CastStrict  CastMode = "strict"
	CastCoerce  CastMode = "coerce"
)

// MismatchKind describes a file precheck schema discrepancy.
type MismatchKind string

const (
	MismatchMissing MismatchKind = "missing"
	MismatchExtra   MismatchKind = "extra"
)

// ValidationSummary aggregates row-level rule counts for one file, in the
// deterministic rule order used throughout reporting: not_null, cast_error,
// unique, schema_mismatch.
type ValidationSummary struct {
	Errors   int                `json:"errors"`
	Warnings int                `json:"warnings"`
	Rules    []RuleAggregate    `json:"rules"`
	Examples []RowError         `json:"examples,omitempty"`
}

// RuleAggregate is one rule's violation count, broken down by column, per
// spec.md §6.3.
type RuleAggregate struct {
	Rule       Rule             `json:"rule"`
	Severity   Severity         `json:"severity"`
	Violations int              `json:"violations"`
	Columns    []ColumnAggregate `json:"columns"`
}

// ColumnAggregate is one column's violation count within a RuleAggregate.
type ColumnAggregate struct {
	Column     string `json:"column"`
	Violations int    `json:"violations"`
}

// FileOutcome is the per-file result of running prechecks, validation, and
// (indirectly, via the entity-level pass) uniqueness against one input file.
type FileOutcome struct {
	FileURI          string             `json:"file"`
	Status           FileStatus         `json:"status"`
	RowsTotal        int                `json:"rows"`
	Accepted         int                `json:"accepted"`
	Rejected         int                `json:"rejected"`
	Warnings         int                `json:"warnings"`
	Errors           int                `json:"errors"`
	Mismatch         MismatchKind       `json:"mismatch,omitempty"`
	ValidationSummary ValidationSummary `json:"validation"`
}

// EntityResult aggregates FileOutcomes plus entity-level row counts and a
// description of the accepted dataset written (spec.md §3).
type EntityResult struct {
	Entity   string
	Files    []FileOutcome
	Status   RunStatus
	// AcceptedParts lists the destination URIs of every file uploaded for
	// the accepted dataset (for Delta this includes the _delta_log commit),
	// in upload order.
	AcceptedParts []string

	RowsTotal int
	Accepted  int
	Rejected  int
	Warnings  int
	Errors    int
}
