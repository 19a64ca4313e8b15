package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/floe-data/floe/cli/config"
	"github.com/floe-data/floe/types"
)

// Registry lazily constructs and caches one Client per named storage
// definition for the lifetime of a run (spec.md §3 "Lifecycle &
// ownership"): a run never opens two clients for the same storage name,
// and clients for storages a run never touches are never constructed.
type Registry struct {
	defs map[string]config.StorageConfig
	warn Warner

	mu      sync.Mutex
	clients map[string]Client
}

// NewRegistry builds a Registry over the storage definitions in a loaded
// contract.
func NewRegistry(defs map[string]config.StorageConfig, warn Warner) *Registry {
	if warn == nil {
		warn = NoopWarner
	}
	return &Registry{
		defs:    defs,
		warn:    warn,
		clients: make(map[string]Client),
	}
}

// Get returns the Client for the named storage definition, constructing it
// on first use.
func (r *Registry) Get(ctx context.Context, name string) (Client, error) {
	if name == "" {
		name = "local"
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[name]; ok {
		return c, nil
	}

	def, ok := r.defs[name]
	if !ok {
		// An entity may omit `storage` entirely to mean "the plain local
		// filesystem" (spec.md §3: "storage?" is optional); only the
		// conventional "local" name gets this fallback, so a genuine typo
		// in a named object-store storage still fails fast.
		if name == "local" {
			c := NewLocalClient(name)
			r.clients[name] = c
			return c, nil
		}
		return nil, fmt.Errorf("storage: undefined storage %q", name)
	}

	c, err := r.build(ctx, name, def)
	if err != nil {
		return nil, err
	}
	r.clients[name] = c
	return c, nil
}

func (r *Registry) build(ctx context.Context, name string, def config.StorageConfig) (Client, error) {
	kind, err := ParseKind(def.Type)
	if err != nil {
		return nil, err
	}

	switch kind {
	case types.StorageLocal:
		return NewLocalClient(name), nil
	case types.StorageS3:
		return NewS3Client(ctx, name, S3Config{
			Bucket:   def.Bucket,
			Prefix:   def.Prefix,
			Region:   def.Region,
			Endpoint: def.Endpoint,
		}, r.warn)
	case types.StorageADLS:
		cred, credErr := azidentity.NewDefaultAzureCredential(nil)
		if credErr != nil {
			return nil, fmt.Errorf("storage %s: default azure credential: %w", name, credErr)
		}
		return NewADLSClient(name, ADLSConfig{
			Account:    def.Account,
			Container:  def.Container,
			Prefix:     def.Prefix,
			Credential: cred,
		}, r.warn)
	case types.StorageGCS:
		return NewGCSClient(ctx, name, GCSConfig{
			Bucket: def.Bucket,
			Prefix: def.Prefix,
		}, r.warn)
	default:
		return nil, fmt.Errorf("storage %s: unsupported type %q", name, def.Type)
	}
}

// Close releases any resources held by constructed clients. Only the
// object-store SDK clients that implement io.Closer are affected; local
// clients have nothing to release.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if closer, ok := c.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}
}
