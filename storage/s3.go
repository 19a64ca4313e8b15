package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/floe-data/floe/iox"
	"github.com/floe-data/floe/types"
)

// S3Config holds the subset of a storage definition S3Client needs.
type S3Config struct {
	Bucket       string
	Prefix       string
	Region       string
	Endpoint     string
	UsePathStyle bool
}

// S3Client implements Client against Amazon S3 (or an S3-compatible
// provider via Endpoint/UsePathStyle). Credentials come from the AWS SDK's
// default chain (spec.md §4.1).
type S3Client struct {
	name   string
	bucket string
	api    *s3.Client
	warn   Warner
}

// NewS3Client builds an S3Client using the AWS SDK default credential
// chain, with optional region/endpoint/path-style overrides.
func NewS3Client(ctx context.Context, name string, cfg S3Config, warn Warner) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage %s: s3 bucket is required", name)
	}
	if warn == nil {
		warn = NoopWarner
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage %s: load aws config: %w", name, err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) { o.BaseEndpoint = &endpoint })
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.UsePathStyle = true })
	}

	return &S3Client{
		name:   name,
		bucket: cfg.Bucket,
		api:    s3.NewFromConfig(awsCfg, s3Opts...),
		warn:   warn,
	}, nil
}

func (c *S3Client) Kind() types.StorageKind { return types.StorageS3 }
func (c *S3Client) Name() string            { return c.name }

func (c *S3Client) key(uri string) string { return StripScheme(uri) }

// List performs prefix listing + suffix filtering only; glob and recursion
// flags are ignored with a recorded warning (spec.md §4.1).
func (c *S3Client) List(ctx context.Context, prefix string, opts ListOptions) ([]string, error) {
	if opts.Glob != "" || opts.Recursive {
		c.warn.Warn(fmt.Sprintf("storage %s: glob/recursive ignored for s3 (prefix listing + suffix filter only)", c.name))
	}

	key := c.key(prefix)
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(c.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(key),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, Wrap(err, "list", c.name, prefix)
		}
		for _, obj := range page.Contents {
			k := aws.ToString(obj.Key)
			if matchesSuffix(k, opts.Suffixes) {
				keys = append(keys, "s3://"+c.bucket+"/"+k)
			}
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (c *S3Client) Get(ctx context.Context, uri string) (string, func(), error) {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.key(uri)),
	})
	if err != nil {
		return "", nil, Wrap(err, "get", c.name, uri)
	}
	defer iox.DiscardClose(out.Body)

	tmp, err := os.CreateTemp("", "floe-s3-get-*")
	if err != nil {
		return "", nil, Wrap(err, "get", c.name, uri)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }
	defer iox.DiscardClose(tmp)

	if _, err := io.Copy(tmp, out.Body); err != nil {
		cleanup()
		return "", nil, Wrap(err, "get", c.name, uri)
	}
	return tmp.Name(), cleanup, nil
}

func (c *S3Client) Put(ctx context.Context, localPath, uri string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return Wrap(err, "put", c.name, uri)
	}
	defer iox.DiscardClose(f)

	_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.key(uri)),
		Body:   f,
	})
	return Wrap(err, "put", c.name, uri)
}

func (c *S3Client) Delete(ctx context.Context, uri string) error {
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.key(uri)),
	})
	return Wrap(err, "delete", c.name, uri)
}

func (c *S3Client) Exists(ctx context.Context, uri string) (bool, error) {
	_, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.key(uri)),
	})
	if err == nil {
		return true, nil
	}
	wrapped := Wrap(err, "exists", c.name, uri)
	if errors.Is(wrapped, ErrNotFound) {
		return false, nil
	}
	return false, wrapped
}

// Mkdirs is a no-op: S3 has no real directories.
func (c *S3Client) Mkdirs(context.Context, string) error { return nil }

func (c *S3Client) Move(ctx context.Context, src, dst string) error {
	_, err := c.api.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(c.bucket),
		Key:        aws.String(c.key(dst)),
		CopySource: aws.String(c.bucket + "/" + strings.TrimPrefix(c.key(src), "/")),
	})
	if err != nil {
		return Wrap(err, "move", c.name, dst)
	}
	return c.Delete(ctx, src)
}

var _ Client = (*S3Client)(nil)
