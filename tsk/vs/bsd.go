package vs

import (
	"encoding/binary"

	"github.com/sleuthgo/tsk/errors"
	"github.com/sleuthgo/tsk/image"
)

const (
	// bsdLabelOffset is the conventional byte offset of a BSD disklabel
	// within the first sector on x86 media. The DOS-compatible 0x55AA
	// signature at dosSignatureOffset coexists with it in the same sector,
	// which is exactly the overlap spec.md rule 2 calls out.
	bsdLabelOffset  = 64
	bsdMagic        = 0x82564557
	bsdMaxPartition = 16
	bsdPartEntrySz  = 16
)

// openBSD reads a BSD disklabel. It never looks at the DOS partition table
// region; it only validates its own magic, so a disk carrying both a DOS
// signature and a BSD label is read independently by each opener, and
// dispatch.go's "BSD overrides DOS" rule decides which one wins.
func openBSD(img image.Image, offset int64) (*VolumeSystem, error) {
	sector := make([]byte, dosSectorSize)
	if _, err := img.ReadAt(sector, offset); err != nil {
		return nil, errors.ErrRead.WrapError(err)
	}

	label := sector[bsdLabelOffset:]
	if len(label) < 148+bsdMaxPartition*bsdPartEntrySz {
		return nil, errors.ErrVSUnknownType.WithMessage("disklabel truncated")
	}

	magic := binary.LittleEndian.Uint32(label[0:4])
	magic2 := binary.LittleEndian.Uint32(label[132:136])
	if magic != bsdMagic || magic2 != bsdMagic {
		return nil, errors.ErrVSUnknownType.WithMessage("no BSD disklabel magic")
	}

	blockSize := saneSectorSize(binary.LittleEndian.Uint32(label[40:44]))
	numPartitions := binary.LittleEndian.Uint16(label[138:140])
	if numPartitions > bsdMaxPartition {
		numPartitions = bsdMaxPartition
	}

	partTable := label[148:]
	partitions := make([]Partition, 0, numPartitions)
	for i := 0; i < int(numPartitions); i++ {
		entry := partTable[i*bsdPartEntrySz:]
		size := binary.LittleEndian.Uint32(entry[0:4])
		start := binary.LittleEndian.Uint32(entry[4:8])
		fsType := entry[8]

		if size == 0 || fsType == 0 {
			continue
		}

		partitions = append(partitions, Partition{
			StartBlock:  int64(start),
			Length:      uint64(size),
			Description: "BSD Partition",
			Flags:       PartitionFlagAlloc,
		})
	}

	return &VolumeSystem{
		Type:       BSD,
		BlockSize:  blockSize,
		Offset:     offset,
		Partitions: partitions,
	}, nil
}
