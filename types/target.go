package types

// StorageKind is the closed set of backends a Target's client may be.
type StorageKind string

const (
	StorageLocal StorageKind = "local"
	StorageS3    StorageKind = "s3"
	StorageADLS  StorageKind = "adls"
	StorageGCS   StorageKind = "gcs"
)

// Target is a resolved, addressable artifact: a canonical URI under a named
// storage, plus an optional local staging path.
//
// Invariants (spec.md §3):
//   - URI is always canonical (file://, s3://, abfs://, gs://).
//   - LocalPath is populated when the client is object-store-backed and the
//     operation needs random access (Parquet input) or isn't Delta.
//   - For Delta writes LocalPath stays empty; the writer speaks directly to
//     the object store.
type Target struct {
	Storage   string
	Kind      StorageKind
	URI       string
	LocalPath string
}

// ResolvedInputs is an ordered, lexicographic-by-URI sequence of source
// Targets. The order is stable across runs and drives deterministic report
// ordering and unique "keep-first" semantics (spec.md §3).
type ResolvedInputs []Target

// URIs returns the target URIs in resolution order.
func (r ResolvedInputs) URIs() []string {
	out := make([]string, len(r))
	for i, t := range r {
		out[i] = t.URI
	}
	return out
}
