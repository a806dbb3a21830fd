package ifind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sleuthgo/tsk"
	"github.com/sleuthgo/tsk/internal/fakefs"
)

func unixFragmentDriver() *fakefs.Driver {
	drv := fakefs.New(fakefs.UFSFeatures, 2, 100, 2)
	drv.AddNode(&fakefs.Node{
		Addr: 42, Type: tsk.TypeRegular, Alloc: tsk.Allocated,
		Blocks: []fakefs.Block{
			{Addr: 100, IsSlack: false},
		},
	})
	return drv
}

func TestFindByBlock_UnixFragment(t *testing.T) {
	// spec.md scenario 6, first half: block allocated to inode 42 as a
	// fragment only; all-owners query reports 42 exactly once.
	drv := unixFragmentDriver()

	result, err := FindByBlock(drv, 100, FlagAll)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.EqualValues(t, 42, result.Matches[0].Addr)
}

func ntfsStreamDriver() *fakefs.Driver {
	drv := fakefs.New(fakefs.NTFSFeatures, 2, 100, 2)
	drv.AddNode(&fakefs.Node{
		Addr: 9, Type: tsk.TypeRegular, Alloc: tsk.Allocated,
		Attrs: []tsk.Attribute{
			{Type: NTFSAttrTypeData, ID: 3, Resident: false},
		},
		Blocks: []fakefs.Block{
			{Addr: 200, AttrType: NTFSAttrTypeData, AttrID: 3},
		},
	})
	return drv
}

func TestFindByBlock_NTFSStream(t *testing.T) {
	// spec.md scenario 6, second half: block allocated to inode 9's $DATA
	// stream id 3 → output shaped 9-128-3.
	drv := ntfsStreamDriver()

	result, err := FindByBlock(drv, 200, FlagAll)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.EqualValues(t, 9, result.Matches[0].Addr)
	assert.EqualValues(t, NTFSAttrTypeData, result.Matches[0].AttrType)
	assert.EqualValues(t, 3, result.Matches[0].AttrID)
}

func TestFindByBlock_SparseNeverMatchesBlockZero(t *testing.T) {
	drv := fakefs.New(fakefs.UFSFeatures, 2, 100, 2)
	drv.AddNode(&fakefs.Node{
		Addr: 5, Type: tsk.TypeRegular, Alloc: tsk.Allocated,
		Blocks: []fakefs.Block{{Addr: 0}},
	})

	result, err := FindByBlock(drv, 0, FlagAll)
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
}

func TestFindByBlock_FallsBackToMetaDataClassification(t *testing.T) {
	drv := fakefs.New(fakefs.UFSFeatures, 2, 100, 2)
	drv.MetaBlks[7] = true

	result, err := FindByBlock(drv, 7, FlagAll)
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
	assert.True(t, result.FallbackMeta)
}

func TestFindByBlock_NotFound(t *testing.T) {
	drv := fakefs.New(fakefs.UFSFeatures, 2, 100, 2)

	result, err := FindByBlock(drv, 999, FlagAll)
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
	assert.False(t, result.FallbackMeta)
}

func TestFindByBlock_StopOnFirst(t *testing.T) {
	drv := fakefs.New(fakefs.UFSFeatures, 2, 100, 2)
	drv.AddNode(&fakefs.Node{
		Addr: 10, Type: tsk.TypeRegular, Alloc: tsk.Allocated,
		Blocks: []fakefs.Block{{Addr: 50}},
	})
	drv.AddNode(&fakefs.Node{
		Addr: 11, Type: tsk.TypeRegular, Alloc: tsk.Allocated,
		Blocks: []fakefs.Block{{Addr: 50}},
	})

	result, err := FindByBlock(drv, 50, 0)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
}

func TestFindByBlock_NilDriver(t *testing.T) {
	_, err := FindByBlock(nil, 0, FlagAll)
	assert.Error(t, err)
}
