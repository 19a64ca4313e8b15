package types

import "testing"

func TestParseLogicalType_Aliases(t *testing.T) {
	cases := map[string]LogicalType{
		"string":    TypeString,
		"STRING":    TypeString,
		"bool":      TypeBoolean,
		"Boolean":   TypeBoolean,
		"int":       TypeInt64,
		"int-64":    TypeInt64,
		"int_64":    TypeInt64,
		"uint":      TypeUint64,
		"float":     TypeFloat64,
		"double":    TypeFloat64,
		"decimal":   TypeFloat64,
		"number":    TypeFloat64,
		"timestamp": TypeDatetime,
		" DateTime ": TypeDatetime,
		"time":      TypeTime,
	}
	for in, want := range cases {
		got, ok := ParseLogicalType(in)
		if !ok {
			t.Errorf("ParseLogicalType(%q): not recognized", in)
			continue
		}
		if got != want {
			t.Errorf("ParseLogicalType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseLogicalType_Unrecognized(t *testing.T) {
	if _, ok := ParseLogicalType("enum"); ok {
		t.Error("expected enum to be unrecognized")
	}
	if _, ok := ParseLogicalType(""); ok {
		t.Error("expected empty string to be unrecognized")
	}
}

func TestLogicalType_IsNumeric(t *testing.T) {
	if TypeString.IsNumeric() {
		t.Error("string should not be numeric")
	}
	for _, lt := range []LogicalType{TypeInt64, TypeFloat64, TypeBoolean, TypeDate, TypeDatetime, TypeTime} {
		if !lt.IsNumeric() {
			t.Errorf("%s should be numeric (cast-checked)", lt)
		}
	}
}

func TestColumnPlan_ByName(t *testing.T) {
	p := ColumnPlan{Columns: []Column{
		{Name: "id", Type: TypeInt64},
		{Name: "email", Type: TypeString, Unique: true},
	}}
	if c, ok := p.ByName("email"); !ok || !c.Unique {
		t.Errorf("ByName(email) = %+v, %v", c, ok)
	}
	if _, ok := p.ByName("missing"); ok {
		t.Error("ByName(missing) should not be found")
	}
}

func TestColumnPlan_UniqueColumns(t *testing.T) {
	p := ColumnPlan{Columns: []Column{
		{Name: "id", Type: TypeInt64, Unique: true},
		{Name: "v", Type: TypeString},
		{Name: "email", Type: TypeString, Unique: true},
	}}
	unique := p.UniqueColumns()
	if len(unique) != 2 || unique[0].Name != "id" || unique[1].Name != "email" {
		t.Errorf("got %+v, want [id email] in declaration order", unique)
	}
}

func TestColumnPlan_ColumnNames(t *testing.T) {
	p := ColumnPlan{Columns: []Column{{Name: "a"}, {Name: "b"}, {Name: "c"}}}
	got := p.ColumnNames()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
			break
		}
	}
}
