// Package storage implements the blob store for product images and payment
// proofs on top of gocloud.dev, so local file buckets and GCS share one code
// path selected by the bucket URL.
package storage

import (
	"context"
	"io"
	"log/slog"
	"time"

	"bizhub/config"
	"bizhub/internal/domain/service"
	"bizhub/internal/errors"

	"go.uber.org/fx"
	"gocloud.dev/blob"

	// Bucket drivers registered by URL scheme: file:// for development,
	// gs:// in production.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
)

// blobStorage implements service.FileStorage backed by a gocloud bucket.
type blobStorage struct {
	bucket *blob.Bucket
	logger *slog.Logger
}

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// New opens the configured bucket and returns it as a service.FileStorage.
func New(params Params) (service.FileStorage, error) {
	cfg := params.Config.Storage
	if cfg == nil || cfg.BucketURL == "" {
		return nil, errors.New("storage configuration is missing")
	}

	bucket, err := blob.OpenBucket(params.Ctx, cfg.BucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %s", cfg.BucketURL)
	}

	params.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return bucket.Close()
		},
	})

	return &blobStorage{bucket: bucket, logger: params.Logger}, nil
}

// Upload writes the content under key with the given content type.
func (s *blobStorage) Upload(ctx context.Context, key string, contentType string, content io.Reader) error {
	writer, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{
		ContentType: contentType,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to open writer for %s", key)
	}

	if _, err := io.Copy(writer, content); err != nil {
		_ = writer.Close()

		return errors.Wrapf(err, "failed to write blob %s", key)
	}

	return errors.Wrapf(writer.Close(), "failed to close writer for %s", key)
}

// Delete removes the blob under key.
func (s *blobStorage) Delete(ctx context.Context, key string) error {
	return errors.Wrapf(s.bucket.Delete(ctx, key), "failed to delete blob %s", key)
}

// SignedURL returns a time-limited download URL for key.
func (s *blobStorage) SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	url, err := s.bucket.SignedURL(ctx, key, &blob.SignedURLOptions{
		Expiry: expiry,
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to sign URL for %s", key)
	}

	return url, nil
}
