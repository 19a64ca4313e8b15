package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/floe-data/floe/iox"
	"github.com/floe-data/floe/types"
)

// LocalClient implements Client against the host filesystem. Unlike the
// object-store backends it supports genuine directories, explicit globs,
// and recursive expansion (spec.md §4.1).
type LocalClient struct {
	name string
}

// NewLocalClient creates a Client for the local filesystem storage named
// name.
func NewLocalClient(name string) *LocalClient {
	return &LocalClient{name: name}
}

func (c *LocalClient) Kind() types.StorageKind { return types.StorageLocal }
func (c *LocalClient) Name() string            { return c.name }

func (c *LocalClient) List(_ context.Context, prefix string, opts ListOptions) ([]string, error) {
	root := StripScheme(prefix)

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Wrap(err, "list", c.name, prefix)
		}
		return nil, Wrap(err, "list", c.name, prefix)
	}
	if !info.IsDir() {
		return []string{"file://" + root}, nil
	}

	pattern := opts.Glob
	if pattern == "" && opts.Recursive {
		pattern = "**/*"
	}

	var matches []string
	if pattern != "" && strings.Contains(pattern, "**") {
		err = filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() {
				return nil
			}
			if matchesSuffix(path, opts.Suffixes) {
				matches = append(matches, "file://"+path)
			}
			return nil
		})
	} else if pattern != "" {
		globMatches, globErr := filepath.Glob(filepath.Join(root, pattern))
		err = globErr
		for _, m := range globMatches {
			matches = append(matches, "file://"+m)
		}
	} else {
		entries, readErr := os.ReadDir(root)
		err = readErr
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			full := filepath.Join(root, e.Name())
			if matchesSuffix(full, opts.Suffixes) {
				matches = append(matches, "file://"+full)
			}
		}
	}
	if err != nil {
		return nil, Wrap(err, "list", c.name, prefix)
	}

	sort.Strings(matches)
	return matches, nil
}

func matchesSuffix(path string, suffixes []string) bool {
	if len(suffixes) == 0 {
		return true
	}
	lower := strings.ToLower(path)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// Get returns the path directly: local files need no staging copy.
// cleanup is a no-op so callers can treat every backend uniformly.
func (c *LocalClient) Get(_ context.Context, uri string) (string, func(), error) {
	path := StripScheme(uri)
	if _, err := os.Stat(path); err != nil {
		return "", nil, Wrap(err, "get", c.name, uri)
	}
	return path, func() {}, nil
}

func (c *LocalClient) Put(_ context.Context, localPath, uri string) error {
	dst := StripScheme(uri)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Wrap(err, "put", c.name, uri)
	}
	src, err := os.Open(localPath)
	if err != nil {
		return Wrap(err, "put", c.name, uri)
	}
	defer iox.DiscardClose(src)

	out, err := os.Create(dst)
	if err != nil {
		return Wrap(err, "put", c.name, uri)
	}
	defer iox.DiscardClose(out)

	if _, err := io.Copy(out, src); err != nil {
		return Wrap(err, "put", c.name, uri)
	}
	return nil
}

func (c *LocalClient) Delete(_ context.Context, uri string) error {
	if err := os.Remove(StripScheme(uri)); err != nil && !os.IsNotExist(err) {
		return Wrap(err, "delete", c.name, uri)
	}
	return nil
}

func (c *LocalClient) Exists(_ context.Context, uri string) (bool, error) {
	_, err := os.Stat(StripScheme(uri))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, Wrap(err, "exists", c.name, uri)
}

func (c *LocalClient) Mkdirs(_ context.Context, uri string) error {
	if err := os.MkdirAll(StripScheme(uri), 0o755); err != nil {
		return Wrap(err, "mkdirs", c.name, uri)
	}
	return nil
}

func (c *LocalClient) Move(_ context.Context, src, dst string) error {
	srcPath, dstPath := StripScheme(src), StripScheme(dst)
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return Wrap(err, "move", c.name, dst)
	}
	if err := os.Rename(srcPath, dstPath); err != nil {
		return Wrap(err, "move", c.name, fmt.Sprintf("%s -> %s", src, dst))
	}
	return nil
}

var _ Client = (*LocalClient)(nil)
