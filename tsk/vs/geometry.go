package vs

import "github.com/sleuthgo/tsk/media"

// saneSectorSize returns candidate unchanged when it looks like a real
// sector size (nonzero, a power of two, no larger than 64 KiB); otherwise
// it substitutes a classic floppy geometry's sector size. mm_open.c and
// original_source/ are silent on what an opener should do when a disklabel's
// declared geometry is corrupted rather than simply absent, so this falls
// back to tsk/media's reference table rather than a bare constant.
func saneSectorSize(candidate uint32) int64 {
	c := int64(candidate)
	if c > 0 && c <= 65536 && c&(c-1) == 0 {
		return c
	}
	return media.FallbackSectorSize()
}
