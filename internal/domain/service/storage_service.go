package service

import (
	"context"
	"io"
	"time"
)

// FileStorage is the bucket-scoped blob store for product images and payment
// proofs. Keys are opaque paths owned by the caller.
type FileStorage interface {
	// Upload writes the content under key with the given content type.
	Upload(ctx context.Context, key string, contentType string, content io.Reader) error

	// Delete removes the blob under key. Deleting a missing key is an error.
	Delete(ctx context.Context, key string) error

	// SignedURL returns a time-limited download URL for key.
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
