package image_test

import (
	"bytes"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	compression "github.com/sleuthgo/tsk/compress"
	"github.com/sleuthgo/tsk/image"
)

// TestOpenCompressed_RoundTrip writes a gzip+RLE8-compressed image to a real
// file, the way a forensic examiner would hand tskgo a captured image, and
// confirms OpenCompressed decompresses it back into a queryable Image.
func TestOpenCompressed_RoundTrip(t *testing.T) {
	raw := make([]byte, 4096)
	_, err := rand.Read(raw)
	require.NoError(t, err)

	var compressed bytes.Buffer
	_, err = compression.CompressImage(bytes.NewReader(raw), &compressed)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "image.tsk.gz")
	require.NoError(t, os.WriteFile(path, compressed.Bytes(), 0o600))

	img, err := image.OpenCompressed(path)
	require.NoError(t, err)
	assert.EqualValues(t, len(raw), img.Size())

	got := make([]byte, len(raw))
	n, err := img.ReadAt(got, 0)
	require.NoError(t, err)
	assert.Equal(t, len(raw), n)
	assert.Equal(t, raw, got)
}

func TestOpenCompressed_MissingFile(t *testing.T) {
	_, err := image.OpenCompressed(filepath.Join(t.TempDir(), "does-not-exist.gz"))
	assert.Error(t, err)
}

func TestMemoryImage_ReadAtOutOfRange(t *testing.T) {
	img := image.NewMemoryImage([]byte("hello"), image.LittleEndian)
	buf := make([]byte, 4)
	_, err := img.ReadAt(buf, 100)
	assert.Error(t, err)
}
