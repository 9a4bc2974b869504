package extraction

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestExtractArchive(t *testing.T) {
	path := writeZip(t, map[string]string{
		"model/duck.glb":      "glb-bytes",
		"model/readme.txt":    "hi",
		"__MACOSX/._duck.glb": "fork",
	})

	files, dir, err := ExtractArchive(context.Background(), path)
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	assert.Len(t, files, 3)
	glb, err := SingleGLB(files)
	require.NoError(t, err)
	assert.Equal(t, "duck.glb", filepath.Base(glb))

	data, err := os.ReadFile(glb)
	require.NoError(t, err)
	assert.Equal(t, "glb-bytes", string(data))
}

func TestSingleGLB(t *testing.T) {
	_, err := SingleGLB([]string{"/x/a.txt", "/x/.hidden.glb"})
	assert.ErrorIs(t, err, ErrNoModel)

	_, err = SingleGLB([]string{"/x/a.glb", "/x/b.GLB"})
	assert.ErrorIs(t, err, ErrMultipleModels)

	got, err := SingleGLB([]string{"/x/Thumbs.db", "/x/Model.GLB"})
	require.NoError(t, err)
	assert.Equal(t, "/x/Model.GLB", got)
}

func TestShouldIgnoreFile(t *testing.T) {
	assert.True(t, ShouldIgnoreFile("._duck.glb"))
	assert.True(t, ShouldIgnoreFile(".DS_Store"))
	assert.True(t, ShouldIgnoreFile("Thumbs.db"))
	assert.True(t, ShouldIgnoreFile(""))
	assert.False(t, ShouldIgnoreFile("duck.glb"))
}
