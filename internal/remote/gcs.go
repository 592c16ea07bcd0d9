package remote

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/ncheta/ncheta/internal/config"
)

type gcsBackend struct {
	client *storage.Client
	bucket string
}

// NewGCSStore returns an ObjectStore over a Google Cloud Storage bucket.
func NewGCSStore(ctx context.Context, cfg config.GCSConfig) (*ObjectStore, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts,
			option.WithEndpoint(cfg.Endpoint),
			option.WithoutAuthentication(),
			storage.WithJSONReads(),
		)
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient() > %w", err)
	}
	return newObjectStore(&gcsBackend{client: client, bucket: cfg.Bucket}, cfg.Prefix), nil
}

func (b *gcsBackend) put(ctx context.Context, key string, data []byte) error {
	writer := b.client.Bucket(b.bucket).Object(key).NewWriter(ctx)
	writer.ContentType = "application/json"
	writer.CacheControl = "no-cache, no-store, must-revalidate"
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("writer.Write(gs://%s/%s) > %w", b.bucket, key, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("writer.Close(gs://%s/%s) > %w", b.bucket, key, err)
	}
	return nil
}

func (b *gcsBackend) get(ctx context.Context, key string) ([]byte, error) {
	reader, err := b.client.Bucket(b.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewReader(gs://%s/%s) > %w", b.bucket, key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll(gs://%s/%s) > %w", b.bucket, key, err)
	}
	return data, nil
}

func (b *gcsBackend) keys(ctx context.Context, prefix string) ([]string, error) {
	it := b.client.Bucket(b.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	var keys []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("it.Next(gs://%s/%s) > %w", b.bucket, prefix, err)
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}

func (b *gcsBackend) close() error {
	return b.client.Close()
}
