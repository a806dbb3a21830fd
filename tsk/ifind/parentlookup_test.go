package ifind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sleuthgo/tsk"
	"github.com/sleuthgo/tsk/internal/fakefs"
)

func TestFindByParent_DataAndIdxRootAttributes(t *testing.T) {
	drv := fakefs.New(fakefs.NTFSFeatures, 2, 100, 2)
	drv.AddNode(&fakefs.Node{
		Addr: 50, Type: tsk.TypeRegular, Alloc: tsk.Unallocated,
		ParentNames: []tsk.ParentNameRecord{{ParentAddr: 5, Name: "deleted.txt"}},
		Attrs: []tsk.Attribute{
			{Type: NTFSAttrTypeData},
			{Type: NTFSAttrTypeIdxRoot},
		},
	})

	matches, err := FindByParent(drv, 5, FlagAll)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.EqualValues(t, 50, matches[0].Addr)
	assert.Equal(t, "deleted.txt", matches[0].Name)
}

func TestFindByParent_NoAttributes(t *testing.T) {
	drv := fakefs.New(fakefs.NTFSFeatures, 2, 100, 2)
	drv.AddNode(&fakefs.Node{
		Addr: 51, Type: tsk.TypeRegular, Alloc: tsk.Unallocated,
		ParentNames: []tsk.ParentNameRecord{{ParentAddr: 5, Name: "orphan"}},
	})

	matches, err := FindByParent(drv, 5, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.False(t, matches[0].HasAttr)
}

func TestFindByParent_SkipsAllocatedEntries(t *testing.T) {
	drv := fakefs.New(fakefs.NTFSFeatures, 2, 100, 2)
	drv.AddNode(&fakefs.Node{
		Addr: 52, Type: tsk.TypeRegular, Alloc: tsk.Allocated,
		ParentNames: []tsk.ParentNameRecord{{ParentAddr: 5, Name: "still-linked"}},
	})

	matches, err := FindByParent(drv, 5, 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindByParent_NoMatchingParent(t *testing.T) {
	drv := fakefs.New(fakefs.NTFSFeatures, 2, 100, 2)
	drv.AddNode(&fakefs.Node{
		Addr: 53, Type: tsk.TypeRegular, Alloc: tsk.Unallocated,
		ParentNames: []tsk.ParentNameRecord{{ParentAddr: 99, Name: "x"}},
	})

	matches, err := FindByParent(drv, 5, 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindByParent_NilDriver(t *testing.T) {
	_, err := FindByParent(nil, 5, 0)
	assert.Error(t, err)
}
