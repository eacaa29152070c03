package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dropshare/service/internal/storage"
)

// Download is an open blob plus what a client needs to present it.
// The caller must close Body.
type Download struct {
	DisplayName string
	ContentType string
	SizeBytes   int64
	Body        io.ReadCloser
}

// Info describes a shared file without downloading it.
type Info struct {
	PublicID    string `json:"public_id"`
	DisplayName string `json:"display_name"`
	SizeBytes   int64  `json:"size_bytes"`
	ContentType string `json:"content_type"`
}

// Resolver maps public ids to records and blobs. It requires no identity:
// the public id is the capability.
type Resolver struct {
	meta  MetadataStore
	blobs storage.Storage
	cache *LinkCache
	log   *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(meta MetadataStore, blobs storage.Storage, cache *LinkCache, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		meta:  meta,
		blobs: blobs,
		cache: cache,
		log:   logger.With("component", "link_resolver"),
	}
}

// Fetch opens the blob behind publicID and counts the download.
// The counter is bumped only after the blob was opened, and a download whose
// count could not be recorded is not served.
func (r *Resolver) Fetch(ctx context.Context, publicID string) (*Download, error) {
	rec, err := r.lookup(ctx, publicID)
	if err != nil {
		return nil, err
	}

	obj, err := r.blobs.Get(ctx, rec.StoragePath)
	if err != nil {
		return nil, r.blobErr(rec, err)
	}

	if err := r.meta.IncrementDownloadCount(ctx, rec.ID); err != nil {
		_ = obj.Body.Close()
		if errors.Is(err, ErrNotFound) {
			r.cache.Remove(publicID)
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrMetadataWriteFailed, err)
	}
	downloadsTotal.Inc()

	return &Download{
		DisplayName: rec.DisplayName,
		ContentType: rec.ContentType,
		SizeBytes:   rec.SizeBytes,
		Body:        obj.Body,
	}, nil
}

// Describe returns name, size and type of a live file without counting a download.
func (r *Resolver) Describe(ctx context.Context, publicID string) (*Info, error) {
	rec, err := r.lookup(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if _, err := r.blobs.Stat(ctx, rec.StoragePath); err != nil {
		return nil, r.blobErr(rec, err)
	}
	return &Info{
		PublicID:    rec.PublicID,
		DisplayName: rec.DisplayName,
		SizeBytes:   rec.SizeBytes,
		ContentType: rec.ContentType,
	}, nil
}

func (r *Resolver) lookup(ctx context.Context, publicID string) (*Record, error) {
	if !validPublicID(publicID) {
		return nil, ErrNotFound
	}
	if rec, ok := r.cache.Get(publicID); ok {
		return rec, nil
	}
	rec, err := r.meta.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, lookupErr(err)
	}
	r.cache.Add(rec)
	return rec, nil
}

// blobErr classifies a failed blob read. A missing blob under a live row is
// an orphan-metadata fault; the caller sees plain not found.
func (r *Resolver) blobErr(rec *Record, err error) error {
	if !errors.Is(err, storage.ErrObjectNotFound) {
		return fmt.Errorf("%w: %w", ErrStorageReadFailed, err)
	}
	r.cache.Remove(rec.PublicID)
	integrityFaultsTotal.WithLabelValues(faultOrphanMetadata).Inc()
	r.log.Error("integrity fault: metadata row without blob",
		"fault", faultOrphanMetadata,
		"record_id", rec.ID,
		"public_id", rec.PublicID,
		"storage_path", rec.StoragePath,
	)
	return ErrNotFound
}
