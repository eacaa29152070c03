// Package storage defines the content store used to hold uploaded blobs.
// Implementations are selected at startup: MinIO or AWS S3 (both S3-compatible)
// for deployments, and an in-process map for development and tests.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by Get and Stat when no blob exists at the key.
var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo describes a stored blob.
type ObjectInfo struct {
	Size        int64
	ContentType string
}

// Object is an open blob. The caller must close Body.
type Object struct {
	ObjectInfo
	Body io.ReadCloser
}

// Storage is the interface for writing, reading and removing blobs by key.
type Storage interface {
	// Put streams data to the store under the given key. size must be the exact byte count.
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Get opens the blob at key. It returns ErrObjectNotFound when the key holds no blob.
	Get(ctx context.Context, key string) (*Object, error)
	// Stat reports the blob at key without reading it.
	Stat(ctx context.Context, key string) (*ObjectInfo, error)
	// Delete removes the blob at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
