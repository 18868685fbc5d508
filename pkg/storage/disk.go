// Package storage provides the object-storage abstraction behind product
// gallery images. Two drivers are available:
//
//   - "local" — local filesystem (default, dev)
//   - "s3"    — S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// A stored object is addressed by its key; URL(key) yields the public URL the
// catalog serves to clients. The (URL, key) pair is what product documents
// persist per gallery image.
package storage

import "context"

// Disk is the object-storage driver interface.
type Disk interface {
	// Put writes content under key, creating any needed hierarchy.
	Put(ctx context.Context, key string, content []byte) error

	// Get returns the full content stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists reports whether an object exists under key.
	Exists(ctx context.Context, key string) bool

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL for key.
	URL(key string) string
}
