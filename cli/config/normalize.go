package config

import (
	"strings"
	"unicode"

	"github.com/floe-data/floe/types"
)

// NormalizeName applies one of the four column-name normalization
// strategies spec.md §4.4 names. It is used both on schema column names and
// on the incoming file header, so that two differently-cased spellings of
// the same logical name compare equal.
func NormalizeName(name string, strategy types.NormalizeStrategy) string {
	switch strategy {
	case types.NormalizeLower:
		return strings.ToLower(name)
	case types.NormalizeSnakeCase:
		return toSnakeCase(name)
	case types.NormalizeCamelCase:
		return toCamelCase(name)
	case types.NormalizeNone, "":
		return name
	default:
		return name
	}
}

func toSnakeCase(name string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range name {
		switch {
		case r == ' ' || r == '-':
			b.WriteRune('_')
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	return b.String()
}

func toCamelCase(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	if len(parts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(parts[0]))
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		if len(p) > 1 {
			b.WriteString(strings.ToLower(p[1:]))
		}
	}
	return b.String()
}
