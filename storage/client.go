package storage

import (
	"context"

	"github.com/floe-data/floe/types"
)

// ListOptions narrows a List call. Local clients honor Glob/Recursive;
// object-store clients only honor Suffixes (prefix listing + suffix
// filtering, per spec.md §4.1) and record a warning if Glob/Recursive were
// requested anyway.
type ListOptions struct {
	// Glob is an explicit glob pattern (local only).
	Glob string
	// Recursive expands to "**/" (local only).
	Recursive bool
	// Suffixes filters returned keys by file extension (all backends).
	Suffixes []string
}

// Client is the closed, four-variant storage capability set spec.md §4.1
// requires every backend to expose.
type Client interface {
	// List returns object keys/paths under prefix, lexicographically sorted.
	List(ctx context.Context, prefix string, opts ListOptions) ([]string, error)
	// Get stages uri to a local temp file and returns its path plus a
	// cleanup function the caller must invoke once done with it.
	Get(ctx context.Context, uri string) (localPath string, cleanup func(), err error)
	// Put uploads/copies localPath to uri.
	Put(ctx context.Context, localPath, uri string) error
	// Delete removes uri.
	Delete(ctx context.Context, uri string) error
	// Exists reports whether uri currently exists.
	Exists(ctx context.Context, uri string) (bool, error)
	// Mkdirs ensures the directory/prefix for uri exists (no-op for most
	// object stores, which have no real directories).
	Mkdirs(ctx context.Context, uri string) error
	// Move relocates src to dst within this client's own storage. It does
	// not span two storages; a cross-storage move is done by the caller
	// with Get, Put and Delete.
	Move(ctx context.Context, src, dst string) error
	// Kind identifies the backend variant.
	Kind() types.StorageKind
	// Name is the storage definition's configured name.
	Name() string
}

// Warner receives non-fatal advisories — e.g. "recursive ignored" for an
// object-store List call — so the caller can fold them into the run report
// without failing the run.
type Warner interface {
	Warn(message string)
}

// noopWarner discards warnings; used where the caller doesn't care.
type noopWarner struct{}

func (noopWarner) Warn(string) {}

// NoopWarner is a Warner that discards everything.
var NoopWarner Warner = noopWarner{}
