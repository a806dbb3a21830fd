package vs

import (
	"encoding/binary"

	"github.com/sleuthgo/tsk/errors"
	"github.com/sleuthgo/tsk/image"
)

const (
	sunLabelSize     = 512
	sunMagicOffset   = 508
	sunMagic         = 0xDABE
	sunPartCount     = 8
	sunVTOCOffset    = 188
	sunPartTableOff  = 28
	sunPartEntrySize = 8
)

// openSun reads a Sun VTOC disklabel: 8 fixed partition slots, a magic
// number at the end of the 512-byte label, and per-partition (tag, flag,
// start-cylinder, number-of-blocks) entries.
func openSun(img image.Image, offset int64) (*VolumeSystem, error) {
	label := make([]byte, sunLabelSize)
	if _, err := img.ReadAt(label, offset); err != nil {
		return nil, errors.ErrRead.WrapError(err)
	}

	magic := binary.BigEndian.Uint16(label[sunMagicOffset:])
	if magic != sunMagic {
		return nil, errors.ErrVSUnknownType.WithMessage("no Sun VTOC magic")
	}

	sectorsPerCylinder := binary.BigEndian.Uint16(label[436:438])
	if sectorsPerCylinder == 0 {
		sectorsPerCylinder = 1
	}

	partTable := label[sunPartTableOff:]
	partitions := make([]Partition, 0, sunPartCount)
	for i := 0; i < sunPartCount; i++ {
		entry := partTable[i*sunPartEntrySize:]
		tag := binary.BigEndian.Uint16(entry[0:2])
		startCylinder := binary.BigEndian.Uint32(label[sunVTOCOffset+i*4:])
		numBlocks := binary.BigEndian.Uint32(entry[4:8])

		if tag == 0 || numBlocks == 0 {
			continue
		}

		partitions = append(partitions, Partition{
			StartBlock:  int64(startCylinder) * int64(sectorsPerCylinder),
			Length:      uint64(numBlocks),
			Description: "Sun Partition",
			Flags:       PartitionFlagAlloc,
		})
	}

	return &VolumeSystem{
		Type:       Sun,
		BlockSize:  dosSectorSize,
		Offset:     offset,
		Partitions: partitions,
	}, nil
}
