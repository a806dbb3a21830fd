package tsk

// WalkControl is the result a walk callback hands back to the driver loop,
// modeling the "continue / stop / error" cancellation contract from
// SPEC_FULL.md §5. A non-nil error returned alongside either value always
// means "error" — WalkControl only distinguishes a clean early stop from
// exhausting the range.
type WalkControl int

const (
	WalkContinue WalkControl = iota
	WalkStop
)

// MetaFlag filters which allocation states InodeWalk visits. The zero value
// matches nothing; combine with bitwise OR.
type MetaFlag int

const (
	MetaFlagAlloc MetaFlag = 1 << iota
	MetaFlagUnalloc
)

func (f MetaFlag) Matches(a AllocState) bool {
	if a == Allocated {
		return f&MetaFlagAlloc != 0
	}
	return f&MetaFlagUnalloc != 0
}

// BlockFlag filters which blocks BlockWalk visits.
type BlockFlag int

const (
	BlockFlagAlloc BlockFlag = 1 << iota
	BlockFlagUnalloc
	BlockFlagMeta
	BlockFlagContent
)

// FileWalkFlag controls how FileWalk/FileWalkType materializes data.
type FileWalkFlag int

const (
	// FileWalkAddressOnly requests that no content buffer be materialized;
	// only the disk address and size of each extent is reported. Reverse
	// lookup always sets this, since it never needs the bytes themselves.
	FileWalkAddressOnly FileWalkFlag = 1 << iota

	// FileWalkSlack requests that the slack region of the last block (the
	// bytes between logical EOF and the end of the allocated block) be
	// included in the walk.
	FileWalkSlack
)

// InodeWalkFunc is the callback for Driver.InodeWalk. A non-nil error always
// aborts the walk and propagates, regardless of the returned WalkControl.
type InodeWalkFunc func(file *File) (WalkControl, error)

// BlockWalkFunc is the callback for Driver.BlockWalk.
type BlockWalkFunc func(addr BlockAddr, flags BlockFlag) (WalkControl, error)

// FileWalkFunc is the callback for Driver.FileWalk/FileWalkType. buf is nil
// when FileWalkAddressOnly is set.
type FileWalkFunc func(file *File, fileOffset int64, diskAddr BlockAddr, buf []byte, size int64, flags BlockFlag) (WalkControl, error)
