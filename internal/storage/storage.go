// Package storage contains object storage abstractions for S3-compatible backends.
package storage

import (
	"context"
	"io"
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known, or -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo is what the backend reports about a stored object.
type ObjectInfo struct {
	Key  string
	Size int64
	ETag string
}

// Storage is the subset of object storage the article mirror needs.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
}
