package vs

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/sleuthgo/tsk/errors"
	"github.com/sleuthgo/tsk/image"
)

const (
	gptHeaderSignature = "EFI PART"
	gptHeaderSize      = 92
)

// openGPT reads the GPT header from LBA 1 (the sector immediately following
// the protective MBR) and the partition entry array it points to. Unlike
// the teacher's vintage single-FS domain, GPT parsing is meaningless
// without partition type/unique GUIDs, so this opener is the one place this
// module reaches past the teacher's go.mod for google/uuid — the library
// the rest of the retrieval pack's GPT-aware repos already depend on.
func openGPT(img image.Image, offset int64) (*VolumeSystem, error) {
	header := make([]byte, dosSectorSize)
	if _, err := img.ReadAt(header, offset+dosSectorSize); err != nil {
		return nil, errors.ErrRead.WrapError(err)
	}

	if string(header[0:8]) != gptHeaderSignature {
		return nil, errors.ErrVSUnknownType.WithMessage("no GPT header signature")
	}

	entryLBA := binary.LittleEndian.Uint64(header[72:80])
	numEntries := binary.LittleEndian.Uint32(header[80:84])
	entrySize := binary.LittleEndian.Uint32(header[84:88])

	if entrySize == 0 || numEntries == 0 {
		return nil, errors.ErrVSUnknownType.WithMessage("empty GPT partition array")
	}

	tableBytes := make([]byte, uint64(numEntries)*uint64(entrySize))
	if _, err := img.ReadAt(tableBytes, offset+int64(entryLBA)*dosSectorSize); err != nil {
		return nil, errors.ErrRead.WrapError(err)
	}

	partitions := make([]Partition, 0, numEntries)
	for i := uint32(0); i < numEntries; i++ {
		entry := tableBytes[uint64(i)*uint64(entrySize):]
		typeGUID, err := uuid.FromBytes(mixedEndianGUIDBytes(entry[0:16]))
		if err != nil {
			continue
		}
		if typeGUID == uuid.Nil {
			continue
		}

		uniqueGUID, _ := uuid.FromBytes(mixedEndianGUIDBytes(entry[16:32]))
		firstLBA := binary.LittleEndian.Uint64(entry[32:40])
		lastLBA := binary.LittleEndian.Uint64(entry[40:48])
		nameUTF16 := entry[56:128]

		partitions = append(partitions, Partition{
			StartBlock:  int64(firstLBA),
			Length:      lastLBA - firstLBA + 1,
			Description: gptPartitionName(nameUTF16, uniqueGUID),
			Flags:       PartitionFlagAlloc,
		})
	}

	return &VolumeSystem{
		Type:       GPT,
		BlockSize:  dosSectorSize,
		Offset:     offset,
		Partitions: partitions,
	}, nil
}

// mixedEndianGUIDBytes converts the on-disk mixed-endian GPT GUID encoding
// (first three fields little-endian, last two big-endian) into the
// big-endian byte order uuid.FromBytes expects.
func mixedEndianGUIDBytes(raw []byte) []byte {
	out := make([]byte, 16)
	out[0], out[1], out[2], out[3] = raw[3], raw[2], raw[1], raw[0]
	out[4], out[5] = raw[5], raw[4]
	out[6], out[7] = raw[7], raw[6]
	copy(out[8:], raw[8:16])
	return out
}

func gptPartitionName(utf16LE []byte, unique uuid.UUID) string {
	name := decodeUTF16LEZeroTerminated(utf16LE)
	if name == "" {
		return "GPT Partition " + unique.String()
	}
	return name
}

// decodeUTF16LEZeroTerminated decodes a little-endian UTF-16 buffer up to
// its first zero code unit. GPT partition names are UCS-2, a subset of
// UTF-16 with no surrogate pairs, so this simple decode is exact.
func decodeUTF16LEZeroTerminated(buf []byte) string {
	runes := make([]rune, 0, len(buf)/2)
	for i := 0; i+1 < len(buf); i += 2 {
		unit := binary.LittleEndian.Uint16(buf[i:])
		if unit == 0 {
			break
		}
		runes = append(runes, rune(unit))
	}
	return string(runes)
}
