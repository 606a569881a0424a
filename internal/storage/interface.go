package storage

import (
	"context"
	"io"
)

// ObjectStorage is the subset of object storage used to move lexicon word
// lists in and out of the service.
type ObjectStorage interface {
	// Upload uploads an object to storage
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download downloads an object from storage
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists checks if an object exists
	Exists(ctx context.Context, key string) (bool, error)

	// EnsureBucket creates the bucket when the provider allows it
	EnsureBucket(ctx context.Context) error
}
