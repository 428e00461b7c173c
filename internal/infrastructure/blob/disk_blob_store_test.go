package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskBlobStore_UploadWritesFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskBlobStore(dir, "http://localhost:8888/blobs")
	require.NoError(t, err)

	url, err := s.Upload(context.Background(), "space1.png", "image/png", []byte("img-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8888/blobs/space1.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "space1.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("img-bytes"), data)
}

func TestDiskBlobStore_DeleteIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskBlobStore(dir, "http://localhost:8888/blobs")
	require.NoError(t, err)

	_, err = s.Upload(context.Background(), "a.png", "image/png", []byte("x"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), "a.png"))
	require.NoError(t, s.Delete(context.Background(), "a.png"))
}

func TestDiskBlobStore_RejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskBlobStore(dir, "http://localhost:8888/blobs")
	require.NoError(t, err)

	_, err = s.Upload(context.Background(), "../escape.png", "image/png", []byte("x"))
	assert.Error(t, err)

	_, err = s.Upload(context.Background(), "/abs.png", "image/png", []byte("x"))
	assert.Error(t, err)
}
