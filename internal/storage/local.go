package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/blogicum/blogicum/pkg/logging"
)

// LocalStorage keeps media on the local filesystem, served under baseURL
type LocalStorage struct {
	basePath string
	baseURL  string
}

// NewLocalStorage creates the media directory if needed
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	if baseURL == "" {
		baseURL = "/media/"
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStorage{basePath: basePath, baseURL: baseURL}, nil
}

// Root returns the directory media is stored in
func (s *LocalStorage) Root() string {
	return s.basePath
}

// Save writes r to name below the media directory
func (s *LocalStorage) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	_, err = io.Copy(dst, r)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	logging.WithComponent("storage").Debug("Stored media file", zap.String("path", fullPath), zap.String("content_type", contentType))
	return s.baseURL + name, nil
}

// Delete removes the file behind url. Unknown URLs and missing files are ignored.
func (s *LocalStorage) Delete(ctx context.Context, url string) error {
	key, ok := keyFromURL(url, s.baseURL)
	if !ok {
		return nil
	}
	if err := os.Remove(filepath.Join(s.basePath, filepath.FromSlash(key))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
