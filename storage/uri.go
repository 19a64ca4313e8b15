package storage

import (
	"fmt"
	"strings"

	"github.com/floe-data/floe/cli/config"
	"github.com/floe-data/floe/types"
)

// CanonicalURI joins a storage definition's prefix with path, normalizing
// separators and collapsing double slashes, and renders it in the
// canonical form for the definition's kind (spec.md §3):
//
//	file://…
//	s3://bucket/prefix/path
//	abfs://container@account.dfs.core.windows.net/prefix/path
//	gs://bucket/prefix/path
func CanonicalURI(def config.StorageConfig, path string) (string, types.StorageKind, error) {
	kind, err := ParseKind(def.Type)
	if err != nil {
		return "", "", err
	}

	joined := joinLex(def.Prefix, path)

	switch kind {
	case types.StorageLocal:
		return "file://" + ensureLeadingSlash(joined), kind, nil
	case types.StorageS3:
		if def.Bucket == "" {
			return "", "", fmt.Errorf("storage: s3 definition missing bucket")
		}
		return "s3://" + joinLex(def.Bucket, joined), kind, nil
	case types.StorageADLS:
		if def.Container == "" || def.Account == "" {
			return "", "", fmt.Errorf("storage: adls definition missing container/account")
		}
		host := fmt.Sprintf("%s@%s.dfs.core.windows.net", def.Container, def.Account)
		return "abfs://" + joinLex(host, joined), kind, nil
	case types.StorageGCS:
		if def.Bucket == "" {
			return "", "", fmt.Errorf("storage: gcs definition missing bucket")
		}
		return "gs://" + joinLex(def.Bucket, joined), kind, nil
	default:
		return "", "", fmt.Errorf("storage: unknown type %q", def.Type)
	}
}

// ParseKind normalizes a storage type string into a types.StorageKind.
func ParseKind(s string) (types.StorageKind, error) {
	switch strings.ToLower(s) {
	case "local", "":
		return types.StorageLocal, nil
	case "s3":
		return types.StorageS3, nil
	case "adls":
		return types.StorageADLS, nil
	case "gcs":
		return types.StorageGCS, nil
	default:
		return "", fmt.Errorf("storage: unrecognized type %q", s)
	}
}

// joinLex joins two path segments lexicographically, collapsing any
// resulting run of slashes into one, per spec.md §3 ("Prefixes join
// lexicographically; double slashes are collapsed").
func joinLex(a, b string) string {
	a = strings.Trim(a, "/")
	b = strings.Trim(b, "/")
	switch {
	case a == "" && b == "":
		return ""
	case a == "":
		return b
	case b == "":
		return a
	default:
		s := a + "/" + b
		for strings.Contains(s, "//") {
			s = strings.ReplaceAll(s, "//", "/")
		}
		return s
	}
}

func ensureLeadingSlash(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}

// StripScheme returns the path portion of a canonical URI, dropping the
// scheme and (for non-local schemes) the bucket/container host segment.
func StripScheme(uri string) string {
	idx := strings.Index(uri, "://")
	if idx < 0 {
		return uri
	}
	rest := uri[idx+3:]
	switch {
	case strings.HasPrefix(uri, "file://"):
		return rest
	default:
		// bucket/container-qualified schemes: drop the first segment (host).
		if slash := strings.Index(rest, "/"); slash >= 0 {
			return rest[slash+1:]
		}
		return ""
	}
}
