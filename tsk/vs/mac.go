package vs

import (
	"encoding/binary"
	"strings"

	"github.com/sleuthgo/tsk/errors"
	"github.com/sleuthgo/tsk/image"
)

const (
	macBlockSize     = 512
	macPartSignature = 0x504D // "PM"
	macPartNameSize  = 32
	macPartTypeSize  = 32
)

// openMac reads an Apple Partition Map: block 1 (immediately after the
// driver descriptor map in block 0) is itself a partition map entry whose
// pmMapBlkCnt field says how many blocks the map occupies; every block in
// that range is read the same way.
func openMac(img image.Image, offset int64) (*VolumeSystem, error) {
	first := make([]byte, macBlockSize)
	if _, err := img.ReadAt(first, offset+macBlockSize); err != nil {
		return nil, errors.ErrRead.WrapError(err)
	}

	sig := binary.BigEndian.Uint16(first[0:2])
	if sig != macPartSignature {
		return nil, errors.ErrVSUnknownType.WithMessage("no Apple Partition Map signature")
	}

	mapBlockCount := binary.BigEndian.Uint32(first[4:8])
	if mapBlockCount == 0 || mapBlockCount > 4096 {
		return nil, errors.ErrVSUnknownType.WithMessage("implausible Apple Partition Map size")
	}

	partitions := make([]Partition, 0, mapBlockCount)
	for i := uint32(0); i < mapBlockCount; i++ {
		entry := make([]byte, macBlockSize)
		if _, err := img.ReadAt(entry, offset+int64(1+i)*macBlockSize); err != nil {
			return nil, errors.ErrRead.WrapError(err)
		}
		if binary.BigEndian.Uint16(entry[0:2]) != macPartSignature {
			continue
		}

		start := binary.BigEndian.Uint32(entry[8:12])
		length := binary.BigEndian.Uint32(entry[12:16])
		name := cStringFromBytes(entry[16 : 16+macPartNameSize])
		partType := cStringFromBytes(entry[16+macPartNameSize : 16+macPartNameSize+macPartTypeSize])

		if length == 0 {
			continue
		}

		partitions = append(partitions, Partition{
			StartBlock:  int64(start),
			Length:      uint64(length),
			Description: macPartitionDescription(name, partType),
			Flags:       PartitionFlagAlloc,
		})
	}

	return &VolumeSystem{
		Type:       Mac,
		BlockSize:  macBlockSize,
		Offset:     offset,
		Partitions: partitions,
	}, nil
}

func macPartitionDescription(name, partType string) string {
	if name == "" {
		return partType
	}
	if partType == "" {
		return name
	}
	return name + " (" + partType + ")"
}

func cStringFromBytes(b []byte) string {
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
