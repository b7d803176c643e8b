package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/blogicum/blogicum/pkg/config"
)

// ErrUnsupportedType is returned for uploads that are not images
var ErrUnsupportedType = errors.New("unsupported file type")

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// Storage persists uploaded media and returns the URL it is served from
type Storage interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// New creates the storage backend selected by cfg
func New(ctx context.Context, cfg *config.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case "local", "":
		return NewLocalStorage(cfg.LocalDir, cfg.LocalBaseURL)
	case "s3":
		return NewS3Storage(ctx, cfg)
	case "gcs":
		return NewGCSStorage(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

// ObjectName builds a unique object name under dir for an uploaded file,
// keeping its lower-cased extension. Non-image files are rejected.
func ObjectName(dir, filename string) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	if !imageExtensions[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	return path.Join(dir, uuid.NewString()+ext), nil
}

// keyFromURL strips the public prefix off url, leaving the object name
func keyFromURL(url, prefix string) (string, bool) {
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}
