package vs

import (
	"encoding/binary"

	"github.com/sleuthgo/tsk/errors"
	"github.com/sleuthgo/tsk/image"
)

const (
	dosSectorSize      = 512
	dosSignatureOffset = 510
	dosPartTableOffset = 0x1BE
	dosPartEntrySize   = 16
	dosPartCount       = 4
	dosSignature       = 0xAA55

	dosTypeEmpty    = 0x00
	dosTypeExtended = 0x05
	dosTypeExtLBA   = 0x0F
	dosTypeExtLinux = 0x85
)

// openDOS reads a classic MBR partition table. The "tolerant" flag from
// spec.md rule 1 (permitting overlap with BSD boot code) is realized here by
// never failing just because the boot-code region (bytes 0-0x1BD) looks
// like it could also be a BSD disklabel: DOS validation only ever inspects
// the 0x55AA signature and the four partition entries.
func openDOS(img image.Image, offset int64) (*VolumeSystem, error) {
	sector := make([]byte, dosSectorSize)
	if _, err := img.ReadAt(sector, offset); err != nil {
		return nil, errors.ErrRead.WrapError(err)
	}

	sig := binary.LittleEndian.Uint16(sector[dosSignatureOffset:])
	if sig != dosSignature {
		return nil, errors.ErrVSUnknownType.WithMessage("no DOS signature")
	}

	partitions := make([]Partition, 0, dosPartCount)
	for i := 0; i < dosPartCount; i++ {
		entry := sector[dosPartTableOffset+i*dosPartEntrySize:]
		partType := entry[4]
		startLBA := binary.LittleEndian.Uint32(entry[8:12])
		numSectors := binary.LittleEndian.Uint32(entry[12:16])

		if partType == dosTypeEmpty || numSectors == 0 {
			continue
		}

		desc := dosPartitionDescription(partType)
		partitions = append(partitions, Partition{
			StartBlock:  int64(startLBA),
			Length:      uint64(numSectors),
			Description: desc,
			Flags:       PartitionFlagAlloc,
		})
	}

	return &VolumeSystem{
		Type:       DOS,
		BlockSize:  dosSectorSize,
		Offset:     offset,
		Partitions: partitions,
	}, nil
}

func dosPartitionDescription(partType byte) string {
	switch partType {
	case dosTypeExtended, dosTypeExtLBA:
		return "DOS Extended"
	case dosTypeExtLinux:
		return "Linux"
	default:
		return "DOS Partition"
	}
}
