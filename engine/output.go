package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/floe-data/floe/format"
	"github.com/floe-data/floe/storage"
	"github.com/floe-data/floe/types"
)

// writeAccepted materializes the entity's accepted dataset from every kept
// row across every file, in the format its sink declares, then uploads the
// result to the sink's storage target.
func (r *Runner) writeAccepted(ctx context.Context, plan types.ColumnPlan, rows []acceptedRowRef) ([]string, error) {
	sinkTarget, err := r.resolver.ResolveSink(r.entity.Sink.Accepted)
	if err != nil {
		return nil, err
	}

	client, err := r.registry.Get(ctx, sinkTarget.Storage)
	if err != nil {
		return nil, err
	}
	if err := r.clearExistingAccepted(ctx, client, sinkTarget); err != nil {
		r.logger.Warn("failed clearing pre-existing accepted artifacts", map[string]any{"error": err.Error()})
	}

	localDir := "/tmp/floe-accepted-" + sanitizeURI(r.entity.Name)
	if err := os.RemoveAll(localDir); err != nil {
		return nil, err
	}

	var writer format.AcceptedWriter
	isDelta := r.entity.Sink.Accepted.Format == "delta"
	if isDelta {
		writer, err = format.NewDeltaAcceptedWriter(localDir, plan)
	} else {
		writer, err = format.NewParquetAcceptedWriter(localDir, plan, r.entity.Sink.Accepted.Options)
	}
	if err != nil {
		return nil, err
	}

	batch := make([]format.AcceptedRow, len(rows))
	for i, ref := range rows {
		batch[i] = ref.row
	}
	if len(batch) > 0 {
		if err := writer.Write(ctx, plan, batch); err != nil {
			return nil, err
		}
	}

	parts, err := writer.Close(ctx)
	if err != nil {
		return nil, err
	}

	var uploaded []string
	if isDelta {
		// Delta's commit log lives alongside the data file(s); upload the
		// whole local table tree so the _delta_log directory travels with
		// it (spec.md §4.3 sink-capability note: the writer itself still
		// speaks Parquet/JSON under the hood, only the transaction shape
		// differs from a bare Parquet sink).
		err = filepath.Walk(localDir, func(p string, info os.FileInfo, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if info.IsDir() {
				return nil
			}
			rel, relErr := filepath.Rel(localDir, p)
			if relErr != nil {
				return relErr
			}
			dst := joinStemPath(sinkTarget.URI, filepath.ToSlash(rel))
			if err := client.Put(ctx, p, dst); err != nil {
				return err
			}
			uploaded = append(uploaded, dst)
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		for _, part := range parts {
			src := filepath.Join(localDir, part)
			dst := joinStemPath(sinkTarget.URI, part)
			if err := client.Put(ctx, src, dst); err != nil {
				return nil, err
			}
			uploaded = append(uploaded, dst)
		}
	}
	return uploaded, nil
}

// uploadRejected uploads the locally staged rejected CSV for input file in
// to the entity's rejected sink target.
func (r *Runner) uploadRejected(ctx context.Context, in types.Target) error {
	if r.entity.Sink.Rejected == nil {
		return nil
	}
	sinkTarget, err := r.resolver.ResolveSink(*r.entity.Sink.Rejected)
	if err != nil {
		return err
	}
	client, err := r.registry.Get(ctx, sinkTarget.Storage)
	if err != nil {
		return err
	}
	dst := joinStemPath(sinkTarget.URI, stem(in.URI)+"_rejected.csv")
	return client.Put(ctx, r.rejectedStagingPath(in), dst)
}

// writeAbortArtifacts byte-copies the source file into the rejected sink
// (if configured) plus the sibling <stem>_reject_errors.json (spec.md §6.5).
func (r *Runner) writeAbortArtifacts(localSourcePath string, in types.Target, errs []types.RowError) error {
	if r.entity.Sink.Rejected == nil {
		return nil
	}
	sinkTarget, err := r.resolver.ResolveSink(*r.entity.Sink.Rejected)
	if err != nil {
		return err
	}
	client, err := r.registry.Get(context.Background(), sinkTarget.Storage)
	if err != nil {
		return err
	}

	localCopy := "/tmp/floe-abort-" + sanitizeURI(in.URI)
	localErrors := localCopy + "_reject_errors.json"
	if err := format.CopyAbortRejected(localSourcePath, localCopy, localErrors, errs); err != nil {
		return err
	}

	ctx := context.Background()
	dstCopy := joinStemPath(sinkTarget.URI, stem(in.URI)+filepath.Ext(in.URI))
	if err := client.Put(ctx, localCopy, dstCopy); err != nil {
		return err
	}
	dstErrors := joinStemPath(sinkTarget.URI, stem(in.URI)+"_reject_errors.json")
	return client.Put(ctx, localErrors, dstErrors)
}

// archive moves every source input to the entity's archive target, best
// effort (spec.md §4.5: "Archive failures are warnings, not run failures").
// When the archive target lives on a different storage than the source
// (spec.md §4.5: "cloud backends may upload-then-delete if cross-store"),
// a single client's Move can't span the two backends, so the file is
// staged locally, uploaded through the destination's client, and only then
// removed from the source.
func (r *Runner) archive(ctx context.Context, inputs types.ResolvedInputs) error {
	if r.entity.Sink.Archive == nil {
		return nil
	}
	for _, in := range inputs {
		dst, err := r.resolver.ResolveArchive(*r.entity.Sink.Archive, in.URI)
		if err != nil {
			return err
		}
		srcClient, err := r.registry.Get(ctx, in.Storage)
		if err != nil {
			return err
		}

		if in.Storage == dst.Storage && in.Kind == dst.Kind {
			if err := srcClient.Move(ctx, in.URI, dst.URI); err != nil {
				return err
			}
			continue
		}

		dstClient, err := r.registry.Get(ctx, dst.Storage)
		if err != nil {
			return err
		}
		localPath, cleanup, err := srcClient.Get(ctx, in.URI)
		if err != nil {
			return err
		}
		putErr := dstClient.Put(ctx, localPath, dst.URI)
		cleanup()
		if putErr != nil {
			return putErr
		}
		if err := srcClient.Delete(ctx, in.URI); err != nil {
			return err
		}
	}
	return nil
}

// clearExistingAccepted removes any pre-existing accepted artifacts under
// sinkTarget before a fresh write, per spec.md §4.5 ("Before writing, any
// pre-existing accepted artifacts under the target URI are removed"). Delta
// sinks are exempt: the writer's own transaction mechanism handles overwrite.
func (r *Runner) clearExistingAccepted(ctx context.Context, client storage.Client, sinkTarget types.Target) error {
	if r.entity.Sink.Accepted.Format == "delta" {
		return nil
	}
	existing, err := client.List(ctx, sinkTarget.URI, storage.ListOptions{Suffixes: []string{".parquet"}})
	if err != nil {
		return err
	}
	for _, key := range existing {
		if err := client.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func stem(uri string) string {
	base := filepath.Base(storage.StripScheme(uri))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func joinStemPath(base, name string) string {
	if strings.HasSuffix(base, "/") {
		return base + name
	}
	return base + "/" + name
}
