// Package types defines the domain model shared across Floe's components:
// the logical type system, row-level errors, per-file/per-entity outcomes,
// and resolved storage targets. It is a leaf package with no internal
// dependencies, mirroring how the rest of the engine treats shared vocabulary.
package types

import "strings"

// LogicalType is a schema column's declared type, independent of the
// physical encoding used by any one format adapter.
type LogicalType string

// Supported logical types. Aliases are normalized onto one of these by
// ParseLogicalType.
const (
	TypeString   LogicalType = "string"
	TypeBoolean  LogicalType = "boolean"
	TypeInt8     LogicalType = "int8"
	TypeInt16    LogicalType = "int16"
	TypeInt32    LogicalType = "int32"
	TypeInt64    LogicalType = "int64"
	TypeUint8    LogicalType = "uint8"
	TypeUint16   LogicalType = "uint16"
	TypeUint32   LogicalType = "uint32"
	TypeUint64   LogicalType = "uint64"
	TypeFloat32  LogicalType = "float32"
	TypeFloat64  LogicalType = "float64"
	TypeDate     LogicalType = "date"
	TypeDatetime LogicalType = "datetime"
	TypeTime     LogicalType = "time"
)

// aliases maps normalized (lowercased, -/_ stripped) spellings onto a
// canonical LogicalType, per spec.md's "type names case-insensitive; -/_
// ignored" rule.
var aliases = map[string]LogicalType{
	"string":    TypeString,
	"boolean":   TypeBoolean,
	"bool":      TypeBoolean,
	"int8":      TypeInt8,
	"int16":     TypeInt16,
	"int32":     TypeInt32,
	"int64":     TypeInt64,
	"int":       TypeInt64,
	"uint8":     TypeUint8,
	"uint16":    TypeUint16,
	"uint32":    TypeUint32,
	"uint64":    TypeUint64,
	"uint":      TypeUint64,
	"float32":   TypeFloat32,
	"float64":   TypeFloat64,
	"number":    TypeFloat64,
	"float":     TypeFloat64,
	"double":    TypeFloat64,
	"decimal":   TypeFloat64,
	"date":      TypeDate,
	"datetime":  TypeDatetime,
	"timestamp": TypeDatetime,
	"time":      TypeTime,
}

// ParseLogicalType normalizes a user-supplied type name into a LogicalType.
// Returns false if the name is not recognized.
func ParseLogicalType(name string) (LogicalType, bool) {
	norm := strings.Map(func(r rune) rune {
		if r == '-' || r == '_' {
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
	lt, ok := aliases[norm]
	return lt, ok
}

// IsNumeric reports whether t participates in dual-read cast checking
// (every non-string type does).
func (t LogicalType) IsNumeric() bool {
	return t != TypeString
}
