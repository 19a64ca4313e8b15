package types

// Version is the canonical engine version, reported by `floe version`. Run
// reports carry SpecVersion, not Version, in their spec_version field.
const Version = "0.1.0"

// SpecVersion is the contract version a run report conforms to.
// Bumped only when the run.json/run.summary.json shape changes.
const SpecVersion = "1"
