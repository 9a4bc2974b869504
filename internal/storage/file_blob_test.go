package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotspot-service/internal/config"
)

func TestFileBlobStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileBlobStore(dir, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "a.glb", []byte("hello"), "model/gltf-binary"))
	data, err := s.Get(ctx, "a.glb")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	ok, err := s.Exists(ctx, "a.glb")
	require.NoError(t, err)
	assert.True(t, ok)

	stats := s.Stats()
	assert.Equal(t, 1, stats.Objects)
	assert.Equal(t, int64(5), stats.SizeBytes)

	require.NoError(t, s.Put(ctx, "a.glb", []byte("hi"), "model/gltf-binary"))
	assert.Equal(t, int64(2), s.Stats().SizeBytes)

	require.NoError(t, s.Delete(ctx, "a.glb"))
	_, err = s.Get(ctx, "a.glb")
	assert.ErrorIs(t, err, ErrBlobNotFound)
	assert.Zero(t, s.Stats().SizeBytes)
	assert.NoError(t, s.Delete(ctx, "a.glb"))
}

func TestFileBlobStore_PicksUpExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.glb"), make([]byte, 10), 0o644))

	s, err := NewFileBlobStore(dir, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, int64(10), s.Stats().SizeBytes)

	data, err := s.Get(context.Background(), "old.glb")
	require.NoError(t, err)
	assert.Len(t, data, 10)
}

func TestFileBlobStore_RejectsTraversal(t *testing.T) {
	s, err := NewFileBlobStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	assert.Error(t, s.Put(ctx, "../escape.glb", []byte("x"), ""))
	_, err = s.Get(ctx, "..")
	assert.Error(t, err)
}

func TestOpenBlobStore(t *testing.T) {
	ctx := context.Background()

	s, err := OpenBlobStore(ctx, &config.Config{BlobBackend: "memory", MemoryBlobMaxBytes: 1024}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "memory", s.Name())

	s, err = OpenBlobStore(ctx, &config.Config{BlobBackend: "file", FileBlobDir: t.TempDir()}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "file", s.Name())

	_, err = OpenBlobStore(ctx, &config.Config{BlobBackend: "tape"}, zerolog.Nop())
	assert.Error(t, err)
}
