package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dropshare/service/internal/storage"
)

// compensateTimeout bounds the best-effort blob cleanup after a failed upload.
const compensateTimeout = 10 * time.Second

var errSizeMismatch = errors.New("body length differs from declared size")

// UploadInput is one upload request from an authenticated owner.
type UploadInput struct {
	OwnerID     string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult is what the uploader gets back.
type UploadResult struct {
	PublicID    string `json:"public_id"`
	DisplayName string `json:"display_name"`
	SizeBytes   int64  `json:"size_bytes"`
	ContentType string `json:"content_type"`
	Link        string `json:"link"`
}

// Registry owns uploads, owner listings and deletes.
type Registry struct {
	meta     MetadataStore
	blobs    storage.Storage
	cache    *LinkCache
	baseURL  string
	maxBytes int64
	log      *slog.Logger

	newPublicID func() string
}

// NewRegistry creates a Registry. maxBytes <= 0 disables the size limit.
func NewRegistry(meta MetadataStore, blobs storage.Storage, cache *LinkCache, baseURL string, maxBytes int64, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		meta:        meta,
		blobs:       blobs,
		cache:       cache,
		baseURL:     baseURL,
		maxBytes:    maxBytes,
		log:         logger.With("component", "file_registry"),
		newPublicID: NewPublicID,
	}
}

// Link returns the shareable URL for publicID.
func (r *Registry) Link(publicID string) string {
	return Link(r.baseURL, publicID)
}

// Upload writes the blob, then the metadata row, and returns the public link.
// Nothing is retried: on any failure the caller re-uploads from scratch.
func (r *Registry) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if in.OwnerID == "" {
		return nil, ErrUnauthenticated
	}
	name, contentType, err := validateUpload(in.Filename, in.ContentType, in.Size, r.maxBytes)
	if err != nil {
		return nil, err
	}

	publicID := r.newPublicID()
	path := StoragePath(in.OwnerID, publicID, name)

	// Read at most one byte past the declared size so a lying body is caught
	// whether or not the backend enforces the size itself.
	body := &countingReader{r: io.LimitReader(in.Body, in.Size+1)}
	err = r.blobs.Put(ctx, path, body, in.Size, contentType)
	if body.mismatch(in.Size) {
		if err == nil {
			r.compensateOrphanBlob(ctx, publicID, path, errSizeMismatch)
		}
		return nil, fmt.Errorf("%w: body is not %d bytes as declared", ErrInvalidInput, in.Size)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageWriteFailed, err)
	}

	rec, err := r.meta.Insert(ctx, &Record{
		OwnerID:     in.OwnerID,
		PublicID:    publicID,
		DisplayName: name,
		SizeBytes:   body.n,
		ContentType: contentType,
		StoragePath: path,
	})
	if err != nil {
		r.compensateOrphanBlob(ctx, publicID, path, err)
		return nil, fmt.Errorf("%w: %w", ErrMetadataWriteFailed, err)
	}

	uploadsTotal.Inc()
	r.log.Info("file uploaded", "public_id", rec.PublicID, "owner_id", rec.OwnerID, "size_bytes", rec.SizeBytes)

	return &UploadResult{
		PublicID:    rec.PublicID,
		DisplayName: rec.DisplayName,
		SizeBytes:   rec.SizeBytes,
		ContentType: rec.ContentType,
		Link:        r.Link(rec.PublicID),
	}, nil
}

// List returns the owner's records, newest first.
func (r *Registry) List(ctx context.Context, ownerID string) ([]Record, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	records, err := r.meta.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMetadataReadFailed, err)
	}
	return records, nil
}

// Delete removes the owner's record with internal id.
func (r *Registry) Delete(ctx context.Context, ownerID string, id int64) error {
	if ownerID == "" {
		return ErrUnauthenticated
	}
	rec, err := r.meta.GetByID(ctx, id)
	if err != nil {
		return lookupErr(err)
	}
	return r.remove(ctx, ownerID, rec)
}

// DeleteByPublicID removes the owner's record addressed by its public id.
func (r *Registry) DeleteByPublicID(ctx context.Context, ownerID, publicID string) error {
	if ownerID == "" {
		return ErrUnauthenticated
	}
	if !validPublicID(publicID) {
		return ErrNotFound
	}
	rec, err := r.meta.GetByPublicID(ctx, publicID)
	if err != nil {
		return lookupErr(err)
	}
	return r.remove(ctx, ownerID, rec)
}

// remove deletes the blob first and the row second. If the row delete fails
// the leftover row points at nothing and resolves as not found.
func (r *Registry) remove(ctx context.Context, ownerID string, rec *Record) error {
	if rec.OwnerID != ownerID {
		return ErrForbidden
	}

	if err := r.blobs.Delete(ctx, rec.StoragePath); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageDeleteFailed, err)
	}
	r.cache.Remove(rec.PublicID)

	if err := r.meta.DeleteByID(ctx, rec.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			// A concurrent delete of the same record won the race.
			return ErrNotFound
		}
		integrityFaultsTotal.WithLabelValues(faultOrphanMetadata).Inc()
		r.log.Error("integrity fault: metadata row left without blob",
			"fault", faultOrphanMetadata,
			"record_id", rec.ID,
			"public_id", rec.PublicID,
			"storage_path", rec.StoragePath,
			"error", err,
		)
		return fmt.Errorf("%w: %w", ErrMetadataDeleteFailed, err)
	}

	r.log.Info("file deleted", "public_id", rec.PublicID, "owner_id", rec.OwnerID)
	return nil
}

// compensateOrphanBlob tries once to remove a blob that will never get a row.
// The caller's context may already be cancelled, so cleanup runs detached from it.
func (r *Registry) compensateOrphanBlob(ctx context.Context, publicID, path string, cause error) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensateTimeout)
	defer cancel()

	if err := r.blobs.Delete(cctx, path); err != nil {
		integrityFaultsTotal.WithLabelValues(faultOrphanBlob).Inc()
		r.log.Error("integrity fault: blob left without metadata row",
			"fault", faultOrphanBlob,
			"public_id", publicID,
			"storage_path", path,
			"error", cause,
			"cleanup_error", err,
		)
		return
	}
	r.log.Warn("upload aborted, blob removed",
		"public_id", publicID,
		"storage_path", path,
		"error", cause,
	)
}

func lookupErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %w", ErrMetadataReadFailed, err)
}

type countingReader struct {
	r   io.Reader
	n   int64
	eof bool
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	if err == io.EOF {
		c.eof = true
	}
	return n, err
}

// mismatch reports whether the body is known to differ from size. A backend
// that failed before draining the body proves nothing about its length.
func (c *countingReader) mismatch(size int64) bool {
	return c.n > size || (c.eof && c.n != size)
}
