package blob

import (
	"context"
	"strings"
	"sync"

	"github.com/adcrafted/adspace-service/pkg/monitoring"
)

// Object is a stored blob, retained with its metadata for inspection.
type Object struct {
	ContentType string
	Body        []byte
}

// MemoryBlobStore is an in-memory blob store for tests and local runs.
type MemoryBlobStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]Object
	uploads int
}

// NewMemoryBlobStore creates an empty in-memory blob store serving URLs
// under the given base.
func NewMemoryBlobStore(baseURL string) *MemoryBlobStore {
	return &MemoryBlobStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		objects: make(map[string]Object),
	}
}

// Upload stores the object and returns its public URL.
func (s *MemoryBlobStore) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(body))
	copy(buf, body)
	s.objects[key] = Object{ContentType: contentType, Body: buf}
	s.uploads++
	monitoring.RecordBlobUpload("memory", nil)
	return s.url(key), nil
}

// Delete removes the object under key.
func (s *MemoryBlobStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// URL returns the public URL for a key.
func (s *MemoryBlobStore) URL(key string) string {
	return s.url(key)
}

func (s *MemoryBlobStore) url(key string) string {
	return s.baseURL + "/" + key
}

// Object returns a stored object and whether it exists.
func (s *MemoryBlobStore) Object(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// UploadCount returns how many uploads the store has accepted.
func (s *MemoryBlobStore) UploadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uploads
}
