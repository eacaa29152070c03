// Package file implements the file object lifecycle: uploads, owner listings,
// public link resolution and deletion, keeping the blob in the content store
// and its row in the metadata store consistent.
//
// Writes go blob first, then row. Deletes go blob first, then row. A failure
// between the two steps can leave an orphan blob (upload) or an orphan row
// (delete); both are logged as integrity faults and neither makes a deleted
// file downloadable.
package file

import (
	"context"
	"time"
)

// Record is the metadata row describing one uploaded file.
// Only PublicID is ever exposed outside the service.
type Record struct {
	ID            int64     `json:"-"`
	OwnerID       string    `json:"-"`
	PublicID      string    `json:"public_id"`
	DisplayName   string    `json:"display_name"`
	SizeBytes     int64     `json:"size_bytes"`
	ContentType   string    `json:"content_type"`
	StoragePath   string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	DownloadCount int64     `json:"download_count"`
}

// MetadataStore persists file records.
// Lookups return ErrNotFound when no row matches.
type MetadataStore interface {
	Insert(ctx context.Context, rec *Record) (*Record, error)
	GetByID(ctx context.Context, id int64) (*Record, error)
	GetByPublicID(ctx context.Context, publicID string) (*Record, error)
	// ListByOwner returns the owner's records newest first, ties broken by id.
	ListByOwner(ctx context.Context, ownerID string) ([]Record, error)
	// IncrementDownloadCount adds one to the counter in a single store-side update.
	IncrementDownloadCount(ctx context.Context, id int64) error
	DeleteByID(ctx context.Context, id int64) error
}
