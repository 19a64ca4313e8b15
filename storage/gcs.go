package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/floe-data/floe/iox"
	"github.com/floe-data/floe/types"
)

// GCSConfig holds the subset of a storage definition GCSClient needs.
type GCSConfig struct {
	Bucket string
	Prefix string
}

// GCSClient implements Client against Google Cloud Storage. Credentials
// come from the client library's application-default-credentials chain
// (spec.md §4.1).
type GCSClient struct {
	name   string
	bucket string
	api    *storage.Client
	warn   Warner
}

// NewGCSClient builds a GCSClient using application default credentials.
func NewGCSClient(ctx context.Context, name string, cfg GCSConfig, warn Warner) (*GCSClient, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage %s: gcs bucket is required", name)
	}
	if warn == nil {
		warn = NoopWarner
	}
	api, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage %s: new gcs client: %w", name, err)
	}
	return &GCSClient{name: name, bucket: cfg.Bucket, api: api, warn: warn}, nil
}

func (c *GCSClient) Kind() types.StorageKind { return types.StorageGCS }
func (c *GCSClient) Name() string            { return c.name }

func (c *GCSClient) object(uri string) *storage.ObjectHandle {
	return c.api.Bucket(c.bucket).Object(StripScheme(uri))
}

func (c *GCSClient) List(ctx context.Context, prefix string, opts ListOptions) ([]string, error) {
	if opts.Glob != "" || opts.Recursive {
		c.warn.Warn(fmt.Sprintf("storage %s: glob/recursive ignored for gcs (prefix listing + suffix filter only)", c.name))
	}

	key := StripScheme(prefix)
	it := c.api.Bucket(c.bucket).Objects(ctx, &storage.Query{Prefix: key})
	var keys []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, Wrap(err, "list", c.name, prefix)
		}
		if matchesSuffix(attrs.Name, opts.Suffixes) {
			keys = append(keys, "gs://"+c.bucket+"/"+attrs.Name)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (c *GCSClient) Get(ctx context.Context, uri string) (string, func(), error) {
	r, err := c.object(uri).NewReader(ctx)
	if err != nil {
		return "", nil, Wrap(err, "get", c.name, uri)
	}
	defer iox.DiscardClose(r)

	tmp, err := os.CreateTemp("", "floe-gcs-get-*")
	if err != nil {
		return "", nil, Wrap(err, "get", c.name, uri)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }
	defer iox.DiscardClose(tmp)

	if _, err := io.Copy(tmp, r); err != nil {
		cleanup()
		return "", nil, Wrap(err, "get", c.name, uri)
	}
	return tmp.Name(), cleanup, nil
}

func (c *GCSClient) Put(ctx context.Context, localPath, uri string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return Wrap(err, "put", c.name, uri)
	}
	defer iox.DiscardClose(f)

	w := c.object(uri).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return Wrap(err, "put", c.name, uri)
	}
	return Wrap(w.Close(), "put", c.name, uri)
}

func (c *GCSClient) Delete(ctx context.Context, uri string) error {
	err := c.object(uri).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return Wrap(err, "delete", c.name, uri)
}

func (c *GCSClient) Exists(ctx context.Context, uri string) (bool, error) {
	_, err := c.object(uri).Attrs(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	return false, Wrap(err, "exists", c.name, uri)
}

// Mkdirs is a no-op: GCS has no real directories.
func (c *GCSClient) Mkdirs(context.Context, string) error { return nil }

func (c *GCSClient) Move(ctx context.Context, src, dst string) error {
	srcObj := c.object(src)
	dstObj := c.object(dst)
	if _, err := dstObj.CopierFrom(srcObj).Run(ctx); err != nil {
		return Wrap(err, "move", c.name, dst)
	}
	return c.Delete(ctx, src)
}

var _ Client = (*GCSClient)(nil)
