package iso9660

import (
	"encoding/binary"

	"github.com/sleuthgo/tsk"
	"github.com/sleuthgo/tsk/errors"
)

// extentLookup resolves a record's extent location to the metadata address
// the driver's master inode list already assigned it, mirroring the
// teacher's linear scan of `in_list` (spec.md Design Note 9: "the
// observable contract is unchanged" even though this module backs it with
// a map instead of a linear scan).
type extentLookup func(extentLoc uint32) (tsk.MetaAddr, bool)

// parseDirectory runs the state machine from SPEC_FULL.md §4.5
// (emit_dot → emit_dotdot → scan ⇄ skip_pad → done) over one directory
// extent's bytes, producing a populated tsk.Directory. addr is the
// metadata address of the directory being opened — "." refers to itself,
// so the synthesized "." entry carries addr unchanged, matching the
// teacher's `fs_name->meta_addr = a_addr`.
func parseDirectory(buf []byte, addr tsk.MetaAddr, lookup extentLookup) (*tsk.Directory, error) {
	entries := make([]tsk.DirectoryEntry, 0, 8)
	remaining := len(buf)
	pos := 0

	// emit_dot
	if remaining < recordHeaderSize {
		return nil, errors.ErrCorrupted.WithMessage("directory extent too short for '.' entry")
	}
	dotLen := int(buf[pos+offsetRecordLen])
	entries = append(entries, tsk.DirectoryEntry{
		Name:  ".",
		Addr:  addr,
		Type:  tsk.TypeDirectory,
		Alloc: tsk.Allocated,
	})
	if dotLen <= 0 {
		return nil, errors.ErrCorrupted.WithMessage("'.' entry has zero length")
	}
	pos += dotLen
	remaining -= dotLen

	// emit_dotdot
	if remaining < recordHeaderSize || pos+recordHeaderSize > len(buf) {
		return nil, errors.ErrCorrupted.WithMessage("directory extent too short for '..' entry")
	}
	dotdotLen := int(buf[pos+offsetRecordLen])
	dotdotExtent := recordExtentLoc(buf[pos:])
	if parentAddr, ok := lookup(dotdotExtent); ok {
		entries = append(entries, tsk.DirectoryEntry{
			Name:  "..",
			Addr:  parentAddr,
			Type:  tsk.TypeDirectory,
			Alloc: tsk.Allocated,
		})
	}
	if dotdotLen <= 0 {
		return nil, errors.ErrCorrupted.WithMessage("'..' entry has zero length")
	}
	pos += dotdotLen
	remaining -= dotdotLen

	// scan / skip_pad, until done (remaining <= recordHeaderSize).
	for remaining > recordHeaderSize {
		if pos >= len(buf) {
			return nil, errors.ErrCorrupted.WithMessage("directory extent truncated mid-record")
		}
		recLen := int(buf[pos+offsetRecordLen])

		if recLen > 0 {
			if pos+recordHeaderSize > len(buf) || pos+recLen > len(buf) {
				return nil, errors.ErrCorrupted.WithMessage("directory record overruns extent")
			}

			extentLoc := recordExtentLoc(buf[pos:])
			entryAddr, ok := lookup(extentLoc)
			if !ok {
				// "the extent references an unknown file" — spec.md §4.5
				// step 3.
				return nil, errors.ErrCorrupted.WithMessage("directory entry references unknown extent")
			}

			nameLen := int(buf[pos+offsetNameLength])
			nameStart := pos + recordHeaderSize
			if nameStart+nameLen > len(buf) {
				return nil, errors.ErrCorrupted.WithMessage("directory entry name overruns extent")
			}
			name := sanitizeName(buf[nameStart : nameStart+nameLen])

			entryType := tsk.TypeRegular
			if buf[pos+offsetFlags]&flagIsDirectory != 0 {
				entryType = tsk.TypeDirectory
			}

			entries = append(entries, tsk.DirectoryEntry{
				Name:  name,
				Addr:  entryAddr,
				Type:  entryType,
				Alloc: tsk.Allocated,
			})

			pos += recLen
			remaining -= recLen
			continue
		}

		// skip_pad: scan forward up to one record-header's worth of bytes
		// for the first non-zero byte. Directories with embedded
		// zero-padding holes are common and recoverable, not corruption
		// (spec.md §4.5).
		windowEnd := pos + recordHeaderSize
		if windowEnd > len(buf) {
			windowEnd = len(buf)
		}

		nonZero := pos
		for nonZero < windowEnd && buf[nonZero] == 0 {
			nonZero++
		}

		if nonZero < windowEnd {
			// Found a non-zero byte before the window ended: rewind so
			// the next iteration starts there.
			consumed := nonZero - pos
			pos = nonZero
			remaining -= consumed
		} else {
			// No non-zero byte in the whole window: advance a full
			// header's worth and retry.
			consumed := windowEnd - pos
			pos = windowEnd
			remaining -= consumed
		}
	}

	return &tsk.Directory{Addr: addr, Entries: entries}, nil
}

// recordExtentLoc reads a record's little-endian extent-location field.
func recordExtentLoc(record []byte) uint32 {
	return binary.LittleEndian.Uint32(record[offsetExtentLoc:])
}

// recordDataLen reads a record's little-endian data-length field.
func recordDataLen(record []byte) int64 {
	return int64(binary.LittleEndian.Uint32(record[offsetDataLen:]))
}

// sanitizeName replaces control bytes with '^', matching the teacher's
// TSK_IS_CNTRL(fs_name->name[i]) cleanup pass.
func sanitizeName(raw []byte) string {
	out := make([]byte, len(raw))
	for i, b := range raw {
		if b < 0x20 || b == 0x7F {
			out[i] = '^'
		} else {
			out[i] = b
		}
	}
	return string(out)
}
