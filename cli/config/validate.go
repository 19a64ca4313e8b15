package config

import (
	"fmt"

	"github.com/floe-data/floe/types"
)

// Validate performs the structural checks spec.md requires before any I/O:
// unknown types, duplicate entity names, and column-name collisions under
// normalization (spec.md §4.4). Rule-level data-quality problems are never
// checked here — those are runtime concerns handled by the validator.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Entities))
	for _, e := range c.Entities {
		if e.Name == "" {
			return &ConfigError{Err: fmt.Errorf("entity name must not be empty")}
		}
		if seen[e.Name] {
			return &ConfigError{Err: fmt.Errorf("duplicate entity name %q", e.Name)}
		}
		seen[e.Name] = true

		if err := e.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (e EntityConfig) validate() error {
	if e.Source.Format == "" {
		return &ConfigError{Path: fmt.Sprintf("entities[%s].source.format", e.Name), Err: fmt.Errorf("format is required")}
	}
	if e.Sink.Accepted.Format == "iceberg" {
		return &ConfigError{Path: fmt.Sprintf("entities[%s].sink.accepted.format", e.Name),
			Err: fmt.Errorf("iceberg sink is not implemented")}
	}
	if e.Source.Format == "parquet" && e.Source.Storage != "" {
		// Nothing is rejected here: whether the named storage is local is
		// only known once it is resolved, so the local-only Parquet input
		// check (spec.md §4.1) is made per file in engine's runFile.
	}

	plan, err := e.ColumnPlan()
	if err != nil {
		return err
	}
	return checkNormalizeCollision(e.Name, e.Schema.NormalizeColumns, plan)
}

// checkNormalizeCollision fails fast if two schema columns would collide
// under the configured normalization strategy (spec.md §4.4).
func checkNormalizeCollision(entity string, cfg *NormalizeConfig, plan types.ColumnPlan) error {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	seen := make(map[string]string, len(plan.Columns))
	for _, col := range plan.Columns {
		norm := NormalizeName(col.Name, types.NormalizeStrategy(cfg.Strategy))
		if prior, ok := seen[norm]; ok {
			return &ConfigError{Path: fmt.Sprintf("entities[%s].schema", entity),
				Err: fmt.Errorf("columns %q and %q collide under %q normalization", prior, col.Name, cfg.Strategy)}
		}
		seen[norm] = col.Name
	}
	return nil
}
