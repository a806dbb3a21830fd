package iso9660

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	compression "github.com/sleuthgo/tsk/compress"
	"github.com/sleuthgo/tsk/image/blockcache"
	"github.com/sleuthgo/tsk/testutil"
)

// TestOpen_FromCompressedFixture exercises the same RLE8+gzip round trip a
// real embedded test image goes through: compress the fixture bytes this
// package already builds in memory, then decompress them back with
// testutil.LoadDiskImage exactly as a fixture loaded from disk would be,
// and confirm the driver still opens the result.
func TestOpen_FromCompressedFixture(t *testing.T) {
	raw := buildFixtureImage().data

	var compressed bytes.Buffer
	_, err := compression.CompressImage(bytes.NewReader(raw), &compressed)
	require.NoError(t, err)

	totalSectors := uint(len(raw)) / testBlockSize
	stream := testutil.LoadDiskImage(t, compressed.Bytes(), testBlockSize, totalSectors)

	cache := blockcache.WrapStream(stream, testBlockSize, totalSectors)
	data, err := cache.Data()
	require.NoError(t, err)
	require.Equal(t, raw, data)

	drv, err := Open(&memImage{data: data})
	require.NoError(t, err)

	dir, err := drv.DirOpenMeta(drv.RootInum())
	require.NoError(t, err)
	require.Len(t, dir.Entries, 4)
	assert.Equal(t, "FILE.TXT;1", dir.Entries[2].Name)
}
