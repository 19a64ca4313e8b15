// Package storage provides a uniform list/get/put/delete/exists/mkdirs/move
// client over local filesystem and object-store backends (spec.md §4.1).
package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/floe-data/floe/types"
)

// Sentinel errors for storage failure classification. Use errors.Is(err,
// ErrXxx) for typed assertions rather than string matching on Error().
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrDiskFull         = errors.New("no space left on device")
	ErrTimeout          = errors.New("operation timed out")
	ErrThrottled        = errors.New("rate limited")
	ErrAuth             = errors.New("authentication failed")
	ErrAccessDenied     = errors.New("access denied")
	ErrNetwork          = errors.New("network error")
	ErrUnclassified     = errors.New("storage error")
)

// Error wraps an underlying error with storage classification, always
// carrying {storage, uri} context per spec.md §4.1.
type Error struct {
	Kind    error
	Op      string
	Storage string
	URI     string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s (storage=%s): %v: %v", e.Op, e.URI, e.Storage, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether the error matches the target sentinel.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// NewError builds a classified storage error.
func NewError(kind error, op, storageName, uri string, err error) *Error {
	return &Error{Kind: kind, Op: op, Storage: storageName, URI: uri, Err: err}
}

// Wrap classifies err (nil-safe) and attaches op/storage/uri context.
func Wrap(err error, op, storageName, uri string) error {
	if err == nil {
		return nil
	}
	return NewError(classify(err), op, storageName, uri, err)
}

// errorPattern pairs a set of message substrings with a sentinel error.
// Order matters: more-specific patterns must appear before general ones.
type errorPattern struct {
	patterns []string
	kind     error
}

// classifierTable is a declarative list of error message patterns, checked
// in order; the first match wins. ErrAccessDenied appears before
// ErrPermissionDenied so "AccessDenied"/"Forbidden"/"403" (object-store
// authorization) isn't shadowed by the generic "permission denied" (local
// filesystem EACCES).
var classifierTable = []errorPattern{
	{[]string{"AccessDenied", "Forbidden", "403"}, ErrAccessDenied},
	{[]string{"permission denied", "EACCES"}, ErrPermissionDenied},
	{[]string{"no such file", "does not exist", "not found", "ENOENT", "404", "NoSuchKey", "NoSuchBucket", "BlobNotFound"}, ErrNotFound},
	{[]string{"no space left", "disk full", "ENOSPC", "quota exceeded"}, ErrDiskFull},
	{[]string{"timeout", "timed out", "deadline exceeded"}, ErrTimeout},
	{[]string{"SlowDown", "rate exceeded", "throttl", "429", "TooManyRequests"}, ErrThrottled},
	{[]string{"NoCredentialProviders", "credentials", "InvalidAccessKeyId",
		"SignatureDoesNotMatch", "ExpiredToken", "401", "Unauthorized"}, ErrAuth},
	{[]string{"connection refused", "no route to host", "network unreachable",
		"DNS", "dial tcp", "i/o timeout"}, ErrNetwork},
}

// classify determines the appropriate sentinel error for err. Typed errors
// are checked first, then the classifier table is walked.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return ErrTimeout
	}

	errStr := err.Error()
	for _, entry := range classifierTable {
		if containsAny(errStr, entry.patterns...) {
			return entry.kind
		}
	}
	return ErrUnclassified
}

func containsAny(s string, substrs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrs {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// ConfigurationError reports a storage-configuration mistake caught before
// any I/O — e.g. requesting Parquet input from a non-local storage, which
// spec.md §4.1 calls out explicitly as a configuration error, not a runtime
// StorageError.
type ConfigurationError struct {
	Storage string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("storage configuration error (storage=%s): %s", e.Storage, e.Reason)
}

// RequireKind returns a ConfigurationError if kind doesn't match want.
func RequireKind(storageName string, kind, want types.StorageKind, reason string) error {
	if kind != want {
		return &ConfigurationError{Storage: storageName, Reason: reason}
	}
	return nil
}
