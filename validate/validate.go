// Package validate implements the dual-read, per-row validation pass: raw
// string cells in declaration order are cast against the entity's typed
// schema, producing an accepted value vector plus a row error list
// (spec.md §4.4).
package validate

import (
	"strconv"
	"strings"
	"time"

	"github.com/floe-data/floe/cli/config"
	"github.com/floe-data/floe/format"
	"github.com/floe-data/floe/types"
)

// Result is one row's validation outcome.
type Result struct {
	Row    format.AcceptedRow
	Errors []types.RowError
}

// Row casts one raw Row against plan in column declaration order, per
// spec.md §4.4 ("Per-row error lists are assembled in column declaration
// order").
func Row(raw format.Row, rowIndex int, plan types.ColumnPlan, castMode types.CastMode) Result {
	values := make([]any, len(plan.Columns))
	var errs []types.RowError

	for i, col := range plan.Columns {
		cell, present := lookupCell(raw, col.Name, plan.NormalizeStrategy)

		if !present || cell == "" {
			if !col.Nullable {
				errs = append(errs, types.NewRowError(types.RuleNotNull, col.Name, rowIndex))
			}
			values[i] = nil
			continue
		}

		if cell == format.NestedMarker {
			errs = append(errs, types.NewRowError(types.RuleCastError, col.Name, rowIndex))
			values[i] = nil
			continue
		}

		v, ok := cast(cell, col.Type)
		if !ok {
			if castMode == types.CastCoerce {
				if !col.Nullable {
					errs = append(errs, types.NewRowError(types.RuleNotNull, col.Name, rowIndex))
				}
				values[i] = nil
				continue
			}
			errs = append(errs, types.NewRowError(types.RuleCastError, col.Name, rowIndex))
			values[i] = nil
			continue
		}
		values[i] = v
	}

	return Result{Row: format.AcceptedRow{Values: values}, Errors: errs}
}

// lookupCell finds col's raw cell in a row keyed by its original file
// header. The exact name is tried first (the common, allocation-free
// case); when that misses and normalization is configured, every raw key
// is normalized and compared against the normalized column name,
// so a header spelled differently than the schema still reconciles
// (spec.md §4.4: normalization "applied to both the schema names and the
// incoming header before validation").
func lookupCell(raw format.Row, name string, strategy types.NormalizeStrategy) (string, bool) {
	if cell, ok := raw[name]; ok {
		return cell, true
	}
	if strategy == types.NormalizeNone || strategy == "" {
		return "", false
	}
	target := config.NormalizeName(name, strategy)
	for k, v := range raw {
		if config.NormalizeName(k, strategy) == target {
			return v, true
		}
	}
	return "", false
}

// cast parses a raw string cell into its logical type. ok is false when the
// string cannot be parsed as t.
func cast(s string, t types.LogicalType) (any, bool) {
	switch t {
	case types.TypeString:
		return s, true
	case types.TypeBoolean:
		switch strings.ToLower(s) {
		case "true", "1", "t", "yes":
			return true, true
		case "false", "0", "f", "no":
			return false, true
		}
		return nil, false
	case types.TypeInt8:
		v, err := strconv.ParseInt(s, 10, 8)
		return int8(v), err == nil
	case types.TypeInt16:
		v, err := strconv.ParseInt(s, 10, 16)
		return int16(v), err == nil
	case types.TypeInt32:
		v, err := strconv.ParseInt(s, 10, 32)
		return int32(v), err == nil
	case types.TypeInt64:
		v, err := strconv.ParseInt(s, 10, 64)
		return v, err == nil
	case types.TypeUint8:
		v, err := strconv.ParseUint(s, 10, 8)
		return uint8(v), err == nil
	case types.TypeUint16:
		v, err := strconv.ParseUint(s, 10, 16)
		return uint16(v), err == nil
	case types.TypeUint32:
		v, err := strconv.ParseUint(s, 10, 32)
		return uint32(v), err == nil
	case types.TypeUint64:
		v, err := strconv.ParseUint(s, 10, 64)
		return v, err == nil
	case types.TypeFloat32:
		v, err := strconv.ParseFloat(s, 32)
		return float32(v), err == nil
	case types.TypeFloat64:
		v, err := strconv.ParseFloat(s, 64)
		return v, err == nil
	case types.TypeDate:
		v, err := time.Parse("2006-01-02", s)
		return v, err == nil
	case types.TypeDatetime:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
			if v, err := time.Parse(layout, s); err == nil {
				return v, true
			}
		}
		return nil, false
	case types.TypeTime:
		v, err := time.Parse("15:04:05", s)
		return v, err == nil
	default:
		return nil, false
	}
}
