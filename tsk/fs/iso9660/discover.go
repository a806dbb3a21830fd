package iso9660

import (
	"github.com/sleuthgo/tsk/errors"
)

// rawDirEntry is one non-dot/dotdot record discovered while building the
// master inode list at open time (SPEC_FULL.md §4.5's "in_list" build
// pass). Unlike parseDirectory's query-time scan, discovery never fails on
// an unresolved extent lookup — there is nothing to look up against yet.
type rawDirEntry struct {
	ExtentLoc uint32
	Name      string
	IsDir     bool
	DataLen   int64
}

// discoverEntries walks one directory extent's bytes, skipping its "."
// and ".." records, and returns every other record it finds. It shares the
// scan/skip_pad tolerance for zero-padding holes with parseDirectory
// (spec.md §4.5), since the master list must be built by reading exactly
// the same extents the query-time parser will later re-read.
func discoverEntries(buf []byte) ([]rawDirEntry, error) {
	if len(buf) < recordHeaderSize {
		return nil, errors.ErrCorrupted.WithMessage("directory extent too short for '.' entry")
	}
	pos := int(buf[offsetRecordLen])
	if pos <= 0 {
		return nil, errors.ErrCorrupted.WithMessage("'.' entry has zero length")
	}

	if pos+recordHeaderSize > len(buf) {
		return nil, errors.ErrCorrupted.WithMessage("directory extent too short for '..' entry")
	}
	dotdotLen := int(buf[pos+offsetRecordLen])
	if dotdotLen <= 0 {
		return nil, errors.ErrCorrupted.WithMessage("'..' entry has zero length")
	}
	pos += dotdotLen

	var entries []rawDirEntry
	remaining := len(buf) - pos

	for remaining > recordHeaderSize {
		recLen := int(buf[pos+offsetRecordLen])

		if recLen > 0 {
			if pos+recordHeaderSize > len(buf) || pos+recLen > len(buf) {
				return nil, errors.ErrCorrupted.WithMessage("directory record overruns extent")
			}

			nameLen := int(buf[pos+offsetNameLength])
			nameStart := pos + recordHeaderSize
			if nameStart+nameLen > len(buf) {
				return nil, errors.ErrCorrupted.WithMessage("directory entry name overruns extent")
			}

			entries = append(entries, rawDirEntry{
				ExtentLoc: recordExtentLoc(buf[pos:]),
				Name:      sanitizeName(buf[nameStart : nameStart+nameLen]),
				IsDir:     buf[pos+offsetFlags]&flagIsDirectory != 0,
				DataLen:   recordDataLen(buf[pos:]),
			})

			pos += recLen
			remaining -= recLen
			continue
		}

		windowEnd := pos + recordHeaderSize
		if windowEnd > len(buf) {
			windowEnd = len(buf)
		}
		nonZero := pos
		for nonZero < windowEnd && buf[nonZero] == 0 {
			nonZero++
		}
		if nonZero < windowEnd {
			remaining -= nonZero - pos
			pos = nonZero
		} else {
			remaining -= windowEnd - pos
			pos = windowEnd
		}
	}

	return entries, nil
}
