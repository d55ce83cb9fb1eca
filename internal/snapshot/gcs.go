package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const gcsScheme = "gs://"

// GCSStore keeps snapshots in a Google Cloud Storage bucket
type GCSStore struct {
	client *storage.Client
	bucket string
}

func NewGCSStore(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSStore, error) {
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write snapshot to gcs: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close gcs writer: %w", err)
	}
	return gcsScheme + s.bucket + "/" + key, nil
}

func (s *GCSStore) Delete(ctx context.Context, path string) error {
	bucket, key, err := parseGCSPath(path)
	if err != nil {
		return err
	}
	err = s.client.Bucket(bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete snapshot from gcs: %w", err)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func parseGCSPath(path string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(path, gcsScheme)
	if !ok {
		return "", "", fmt.Errorf("not a gcs path: %q", path)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed gcs path: %q", path)
	}
	return bucket, key, nil
}
