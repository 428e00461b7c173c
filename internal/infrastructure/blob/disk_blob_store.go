package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adcrafted/adspace-service/pkg/monitoring"
)

// DiskBlobStore writes objects to a local directory that is served publicly
// at a configured base URL (by a CDN, reverse proxy, or the static file
// layer in front of this service).
type DiskBlobStore struct {
	dir     string
	baseURL string
}

// NewDiskBlobStore creates a DiskBlobStore rooted at dir, creating it if
// needed.
func NewDiskBlobStore(dir, baseURL string) (*DiskBlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &DiskBlobStore{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Upload stores the object and returns its public URL.
func (s *DiskBlobStore) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	path, err := s.path(key)
	if err != nil {
		monitoring.RecordBlobUpload("disk", err)
		return "", err
	}
	err = os.WriteFile(path, body, 0o644)
	monitoring.RecordBlobUpload("disk", err)
	if err != nil {
		return "", fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	return s.URL(key), nil
}

// Delete removes the object under key. A missing object is not an error.
func (s *DiskBlobStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}

// URL returns the public URL for a key.
func (s *DiskBlobStore) URL(key string) string {
	return s.baseURL + "/" + key
}

// path resolves a key inside the blob directory, rejecting traversal.
func (s *DiskBlobStore) path(key string) (string, error) {
	cleaned := filepath.Clean(key)
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.dir, cleaned), nil
}
