package blockcache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sleuthgo/tsk/image/blockcache"
	"github.com/sleuthgo/tsk/testutil"
)

func TestCreateDefaultCacheReadsBackBackingData(t *testing.T) {
	const bytesPerBlock = 64
	const totalBlocks = 8

	backing := testutil.CreateRandomImage(bytesPerBlock, totalBlocks, t)
	cache := testutil.CreateDefaultCache(bytesPerBlock, totalBlocks, false, backing, t)

	got, err := cache.GetSlice(0, totalBlocks)
	require.NoError(t, err)
	assert.Equal(t, backing, got)
}

func TestCreateDefaultCacheRejectsOutOfRangeRead(t *testing.T) {
	const bytesPerBlock = 32
	const totalBlocks = 4

	cache := testutil.CreateDefaultCache(bytesPerBlock, totalBlocks, false, nil, t)

	_, err := cache.GetSlice(blockcache.Block(totalBlocks), 1)
	assert.Error(t, err)
}

func TestCreateRandomImageHasRequestedLength(t *testing.T) {
	const bytesPerBlock = 16
	const totalBlocks = 2

	backing := testutil.CreateRandomImage(bytesPerBlock, totalBlocks, t)
	assert.Len(t, backing, bytesPerBlock*totalBlocks)
}
