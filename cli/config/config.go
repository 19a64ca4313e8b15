// Package config loads and validates a Floe contract file.
//
// Parsing the YAML shape itself is treated as a thin, external concern per
// spec.md §1 — the interesting behavior (prechecks, validation, uniqueness,
// reporting) lives downstream in the engine. This package's job is limited
// to: unmarshal, apply documented defaults, and reject structurally invalid
// contracts (ConfigError) before any I/O happens.
package config

import (
	"fmt"

	"github.com/floe-data/floe/types"
)

// Config is the top-level shape of a Floe contract (quarry.yaml's
// equivalent: floe.yaml).
type Config struct {
	Version string         `yaml:"version"`
	Project ProjectConfig  `yaml:"project"`
	Report  ReportConfig   `yaml:"report"`
	Storage map[string]StorageConfig `yaml:"storage"`
	Entities []EntityConfig `yaml:"entities"`
}

// ProjectConfig carries optional project-level metadata. Purely descriptive;
// never interpreted by the engine.
type ProjectConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// ReportConfig locates where run reports are written (spec.md §3, §6.2).
type ReportConfig struct {
	Path    string `yaml:"path"`
	Storage string `yaml:"storage"`
}

// StorageConfig is one named entry in the storage registry (spec.md §3).
type StorageConfig struct {
	Type      string `yaml:"type"` // local | s3 | adls | gcs
	Bucket    string `yaml:"bucket"`
	Account   string `yaml:"account"`
	Container string `yaml:"container"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint,omitempty"`
}

// EntityConfig is one [ENTITY] block.
type EntityConfig struct {
	Name     string        `yaml:"name"`
	Source   SourceConfig  `yaml:"source"`
	Sink     SinkConfig    `yaml:"sink"`
	Policy   PolicyConfig  `yaml:"policy"`
	Schema   SchemaConfig  `yaml:"schema"`
}

// SourceConfig describes where an entity reads its input from.
type SourceConfig struct {
	Format    string         `yaml:"format"` // csv | parquet | ndjson | json
	Path      string         `yaml:"path"`
	Storage   string         `yaml:"storage"`
	Options   map[string]any `yaml:"options"`
	CastMode  string         `yaml:"cast_mode"` // strict | coerce
}

// SinkConfig groups an entity's three possible output targets.
type SinkConfig struct {
	Accepted SinkTarget  `yaml:"accepted"`
	Rejected *SinkTarget `yaml:"rejected,omitempty"`
	Archive  *ArchiveConfig `yaml:"archive,omitempty"`
}

// SinkTarget is one materialized output (accepted or rejected dataset).
type SinkTarget struct {
	Format  string         `yaml:"format"`
	Path    string         `yaml:"path"`
	Storage string         `yaml:"storage"`
	Options map[string]any `yaml:"options"`
}

// ArchiveConfig describes the best-effort post-write archive step.
type ArchiveConfig struct {
	Path    string `yaml:"path"`
	Storage string `yaml:"storage"`
}

// PolicyConfig is an entity's severity policy (spec.md glossary).
type PolicyConfig struct {
	Severity string `yaml:"severity"` // warn | reject | abort
}

// SchemaConfig is an entity's typed schema declaration.
type SchemaConfig struct {
	NormalizeColumns *NormalizeConfig `yaml:"normalize_columns,omitempty"`
	Columns          []ColumnConfig   `yaml:"columns"`
}

// NormalizeConfig controls column-name normalization before validation.
type NormalizeConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Strategy string `yaml:"strategy"` // snake_case | lower | camel_case | none
}

// ColumnConfig is one schema column declaration.
type ColumnConfig struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable *bool  `yaml:"nullable,omitempty"`
	Unique   bool   `yaml:"unique"`
}

// ConfigError is a fatal, pre-I/O configuration problem (spec.md §7).
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config error at %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("config error: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ColumnPlan resolves an entity's schema into a types.ColumnPlan,
// applying the `nullable` default (true) per spec.md §3.
func (e EntityConfig) ColumnPlan() (types.ColumnPlan, error) {
	plan := types.ColumnPlan{Columns: make([]types.Column, 0, len(e.Schema.Columns))}
	if cfg := e.Schema.NormalizeColumns; cfg != nil && cfg.Enabled {
		plan.NormalizeStrategy = types.NormalizeStrategy(cfg.Strategy)
	}
	for _, c := range e.Schema.Columns {
		lt, ok := types.ParseLogicalType(c.Type)
		if !ok {
			return types.ColumnPlan{}, &ConfigError{Path: fmt.Sprintf("entities[%s].schema.columns[%s].type", e.Name, c.Name),
				Err: fmt.Errorf("unrecognized type %q", c.Type)}
		}
		nullable := true
		if c.Nullable != nil {
			nullable = *c.Nullable
		}
		plan.Columns = append(plan.Columns, types.Column{
			Name:     c.Name,
			Type:     lt,
			Nullable: nullable,
			Unique:   c.Unique,
		})
	}
	return plan, nil
}

// ResolvedSeverity resolves the policy severity, defaulting to "reject".
func (p PolicyConfig) ResolvedSeverity() types.Severity {
	switch types.Severity(p.Severity) {
	case types.SeverityWarn, types.SeverityAbort:
		return types.Severity(p.Severity)
	default:
		return types.SeverityReject
	}
}

// ResolvedCastMode resolves the source cast mode, defaulting to "strict".
func (s SourceConfig) ResolvedCastMode() types.CastMode {
	if types.CastMode(s.CastMode) == types.CastCoerce {
		return types.CastCoerce
	}
	return types.CastStrict
}
