package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sleuthgo/tsk"
	"github.com/sleuthgo/tsk/ifind"
	"github.com/sleuthgo/tsk/image"
	"github.com/sleuthgo/tsk/internal/fakefs"
	"github.com/sleuthgo/tsk/vs"
)

type nullImage struct{ size int64 }

func (n *nullImage) ReadAt(buf []byte, offset int64) (int, error) { return len(buf), nil }
func (n *nullImage) Size() int64                                 { return n.size }
func (n *nullImage) Endian() image.Endianness                    { return image.LittleEndian }

func ufsTreeDriver() *fakefs.Driver {
	drv := fakefs.New(fakefs.UFSFeatures, 1, 3, 1)
	drv.AddNode(&fakefs.Node{
		Addr: 1, Type: tsk.TypeDirectory, Alloc: tsk.Allocated,
		Children: []tsk.DirectoryEntry{
			{Name: "report.txt", Addr: 2, Type: tsk.TypeRegular, Alloc: tsk.Allocated},
		},
	})
	drv.AddNode(&fakefs.Node{
		Addr: 2, Type: tsk.TypeRegular, Alloc: tsk.Allocated, Size: 1,
		Blocks: []fakefs.Block{{Addr: 100}},
	})
	return drv
}

func TestSession_ResolveAndStat(t *testing.T) {
	sess, err := New(&nullImage{size: 4096}, nil, ufsTreeDriver())
	require.NoError(t, err)

	addr, _, err := sess.Resolve("/report.txt")
	require.NoError(t, err)
	assert.EqualValues(t, 2, addr)

	file, err := sess.Stat("/report.txt")
	require.NoError(t, err)
	assert.EqualValues(t, 2, file.Meta.Addr)
}

func TestSession_ReadDir(t *testing.T) {
	sess, err := New(&nullImage{size: 4096}, nil, ufsTreeDriver())
	require.NoError(t, err)

	dir, err := sess.ReadDir("/")
	require.NoError(t, err)
	require.Len(t, dir.Entries, 1)
	assert.Equal(t, "report.txt", dir.Entries[0].Name)
}

func TestSession_FindByBlock(t *testing.T) {
	sess, err := New(&nullImage{size: 4096}, nil, ufsTreeDriver())
	require.NoError(t, err)

	result, err := sess.FindByBlock(100, ifind.FlagAll)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.EqualValues(t, 2, result.Matches[0].Addr)
}

func TestSession_FindByParent(t *testing.T) {
	drv := ufsTreeDriver()
	drv.AddNode(&fakefs.Node{
		Addr: 3, Type: tsk.TypeRegular, Alloc: tsk.Unallocated,
		ParentNames: []tsk.ParentNameRecord{{ParentAddr: 1, Name: "deleted.txt"}},
	})
	sess, err := New(&nullImage{size: 4096}, nil, drv)
	require.NoError(t, err)

	matches, err := sess.FindByParent(1, ifind.FlagAll)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "deleted.txt", matches[0].Name)
}

func TestSession_Partitions(t *testing.T) {
	volumeSystem := &vs.VolumeSystem{
		Type:      vs.DOS,
		BlockSize: 512,
		Partitions: []vs.Partition{
			{StartBlock: 0, Length: 1, Description: "table", Flags: vs.PartitionFlagMeta},
			{StartBlock: 1, Length: 100, Description: "primary", Flags: vs.PartitionFlagAlloc},
		},
	}
	sess, err := New(&nullImage{size: 4096}, volumeSystem, ufsTreeDriver())
	require.NoError(t, err)
	assert.Len(t, sess.Partitions(), 2)
}

func TestSession_Close(t *testing.T) {
	sess, err := New(&nullImage{size: 4096}, nil, ufsTreeDriver())
	require.NoError(t, err)
	assert.NoError(t, sess.Close())
}

func TestNew_NilImage(t *testing.T) {
	_, err := New(nil, nil, ufsTreeDriver())
	assert.Error(t, err)
}

func TestNew_NilDriver(t *testing.T) {
	_, err := New(&nullImage{size: 4096}, nil, nil)
	assert.Error(t, err)
}
