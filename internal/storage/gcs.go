package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStorage keeps media in a Google Cloud Storage bucket
type GCSStorage struct {
	client     *gcs.Client
	bucketName string
}

// NewGCSStorage creates a GCS client, using credentialsFile when given
func NewGCSStorage(ctx context.Context, bucketName, credentialsFile string) (*GCSStorage, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{client: client, bucketName: bucketName}, nil
}

func (s *GCSStorage) urlPrefix() string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/", s.bucketName)
}

// Save uploads r as object name
func (s *GCSStorage) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	writer := s.client.Bucket(s.bucketName).Object(name).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, r); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("gcs upload failed: %w", err)
	}
	// The object is only committed on Close
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("gcs upload failed: %w", err)
	}
	return s.urlPrefix() + name, nil
}

// Delete removes the object behind url
func (s *GCSStorage) Delete(ctx context.Context, url string) error {
	key, ok := keyFromURL(url, s.urlPrefix())
	if !ok {
		return nil
	}
	err := s.client.Bucket(s.bucketName).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete failed: %w", err)
	}
	return nil
}

// Close releases the GCS client
func (s *GCSStorage) Close() error {
	return s.client.Close()
}
