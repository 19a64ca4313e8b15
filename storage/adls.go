package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"github.com/floe-data/floe/iox"
	"github.com/floe-data/floe/types"
)

// ADLSConfig holds the subset of a storage definition ADLSClient needs.
type ADLSConfig struct {
	Account   string
	Container string
	Prefix    string
	Credential azcore.TokenCredential
}

// ADLSClient implements Client against Azure Data Lake Storage Gen2,
// addressed through the blob-compatible hierarchical namespace API
// (spec.md §4.1).
type ADLSClient struct {
	name      string
	container string
	client    *container.Client
	warn      Warner
}

// NewADLSClient builds an ADLSClient for the given account/container using
// the supplied token credential (typically from azidentity).
func NewADLSClient(name string, cfg ADLSConfig, warn Warner) (*ADLSClient, error) {
	if cfg.Account == "" || cfg.Container == "" {
		return nil, fmt.Errorf("storage %s: adls account/container are required", name)
	}
	if cfg.Credential == nil {
		return nil, fmt.Errorf("storage %s: adls credential is required", name)
	}
	if warn == nil {
		warn = NoopWarner
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/%s", cfg.Account, cfg.Container)
	c, err := container.NewClient(serviceURL, cfg.Credential, nil)
	if err != nil {
		return nil, fmt.Errorf("storage %s: new adls client: %w", name, err)
	}

	return &ADLSClient{name: name, container: cfg.Container, client: c, warn: warn}, nil
}

func (c *ADLSClient) Kind() types.StorageKind { return types.StorageADLS }
func (c *ADLSClient) Name() string            { return c.name }

func (c *ADLSClient) blobKey(uri string) string { return StripScheme(uri) }

func (c *ADLSClient) List(ctx context.Context, prefix string, opts ListOptions) ([]string, error) {
	if opts.Glob != "" || opts.Recursive {
		c.warn.Warn(fmt.Sprintf("storage %s: glob/recursive ignored for adls (prefix listing + suffix filter only)", c.name))
	}

	key := c.blobKey(prefix)
	var keys []string
	pager := c.client.NewListBlobsFlatPager(&container.ListBlobsFlatOptions{Prefix: &key})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, Wrap(err, "list", c.name, prefix)
		}
		for _, item := range page.Segment.BlobItems {
			name := *item.Name
			if matchesSuffix(name, opts.Suffixes) {
				keys = append(keys, c.toURI(name))
			}
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (c *ADLSClient) toURI(blobKey string) string {
	return "abfs://" + c.container + "@" + c.accountHost() + "/" + blobKey
}

func (c *ADLSClient) accountHost() string {
	u := c.client.URL()
	idx := strings.Index(u, "//")
	if idx < 0 {
		return ""
	}
	rest := u[idx+2:]
	if dot := strings.Index(rest, ".blob.core.windows.net"); dot >= 0 {
		return rest[:dot] + ".dfs.core.windows.net"
	}
	return rest
}

func (c *ADLSClient) Get(ctx context.Context, uri string) (string, func(), error) {
	blob := c.client.NewBlobClient(c.blobKey(uri))
	resp, err := blob.DownloadStream(ctx, nil)
	if err != nil {
		return "", nil, Wrap(err, "get", c.name, uri)
	}
	body := resp.Body
	defer iox.DiscardClose(body)

	tmp, err := os.CreateTemp("", "floe-adls-get-*")
	if err != nil {
		return "", nil, Wrap(err, "get", c.name, uri)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }
	defer iox.DiscardClose(tmp)

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(body); err != nil {
		cleanup()
		return "", nil, Wrap(err, "get", c.name, uri)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		cleanup()
		return "", nil, Wrap(err, "get", c.name, uri)
	}
	return tmp.Name(), cleanup, nil
}

func (c *ADLSClient) Put(ctx context.Context, localPath, uri string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return Wrap(err, "put", c.name, uri)
	}
	defer iox.DiscardClose(f)

	blob := c.client.NewBlockBlobClient(c.blobKey(uri))
	_, err = blob.UploadFile(ctx, f, nil)
	return Wrap(err, "put", c.name, uri)
}

func (c *ADLSClient) Delete(ctx context.Context, uri string) error {
	blob := c.client.NewBlobClient(c.blobKey(uri))
	_, err := blob.Delete(ctx, nil)
	return Wrap(err, "delete", c.name, uri)
}

func (c *ADLSClient) Exists(ctx context.Context, uri string) (bool, error) {
	blob := c.client.NewBlobClient(c.blobKey(uri))
	_, err := blob.GetProperties(ctx, nil)
	if err == nil {
		return true, nil
	}
	wrapped := Wrap(err, "exists", c.name, uri)
	if errors.Is(wrapped, ErrNotFound) {
		return false, nil
	}
	return false, wrapped
}

// Mkdirs is a no-op: blob-mode ADLS access has no real directories.
func (c *ADLSClient) Mkdirs(context.Context, string) error { return nil }

func (c *ADLSClient) Move(ctx context.Context, src, dst string) error {
	srcBlob := c.client.NewBlobClient(c.blobKey(src))
	dstBlob := c.client.NewBlobClient(c.blobKey(dst))
	_, err := dstBlob.StartCopyFromURL(ctx, srcBlob.URL(), nil)
	if err != nil {
		return Wrap(err, "move", c.name, dst)
	}
	return c.Delete(ctx, src)
}

var _ Client = (*ADLSClient)(nil)
