package types

// Column declares one field of an entity's schema.
type Column struct {
	// Name is the column's name as declared in the schema; normalization,
	// if enabled, is applied when names are compared.
	Name string
	// Type is the column's logical type.
	Type LogicalType
	// Nullable allows empty/missing values. Defaults to true at config load.
	Nullable bool
	// Unique marks the column for entity-level uniqueness enforcement.
	Unique bool
}

// NormalizeStrategy selects how schema/header column names are normalized
// before comparison, per spec.md §4.4.
type NormalizeStrategy string

const (
	NormalizeNone       NormalizeStrategy = "none"
	NormalizeSnakeCase  NormalizeStrategy = "snake_case"
	NormalizeLower      NormalizeStrategy = "lower"
	NormalizeCamelCase  NormalizeStrategy = "camel_case"
)

// ColumnPlan is the resolved, ordered set of columns an entity validates
// against. Declaration order is preserved; it drives the order row errors
// are assembled in (spec.md §4.4) and the column order of accepted output.
type ColumnPlan struct {
	Columns []Column
	// NormalizeStrategy is the entity's configured column-name
	// normalization strategy, applied to both schema names and the
	// incoming file header before comparison (spec.md §4.4). The zero
	// value behaves as NormalizeNone (no normalization).
	NormalizeStrategy NormalizeStrategy
}

// ByName returns the column whose declared name equals name exactly and
// whether it was found.
func (p ColumnPlan) ByName(name string) (Column, bool) {
	for _, c := range p.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// UniqueColumns returns the subset of columns marked unique, in declaration
// order.
func (p ColumnPlan) UniqueColumns() []Column {
	var out []Column
	for _, c := range p.Columns {
		if c.Unique {
			out = append(out, c)
		}
	}
	return out
}

// ColumnNames returns the plan's column names in declaration order.
func (p ColumnPlan) ColumnNames() []string {
	out := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		out[i] = c.Name
	}
	return out
}
