package tsk

// Driver is the capability surface every filesystem implementation exposes
// (SPEC_FULL.md §4.1). Generic consumers — the path resolver in tsk/resolve
// and the reverse-lookup engine in tsk/ifind — only ever call through this
// interface plus FSFeatures; they never know which concrete filesystem they
// are talking to.
//
// Implementations may assume single-threaded reentrancy against their own
// handle; concurrent use of one Driver from multiple goroutines is the
// caller's responsibility (SPEC_FULL.md §5).
type Driver interface {
	// FirstInum and LastInum bound the valid metadata address range. No
	// Driver method may be called with an address outside [FirstInum,
	// LastInum]; callers get ErrWalkRange instead.
	FirstInum() MetaAddr
	LastInum() MetaAddr

	// RootInum is the metadata address of the filesystem's root directory.
	RootInum() MetaAddr

	// Features reports the filesystem family's path/name semantics.
	Features() FSFeatures

	// InodeWalk visits every metadata entry in [first, last] whose
	// allocation state matches flags, in ascending address order.
	InodeWalk(first, last MetaAddr, flags MetaFlag, cb InodeWalkFunc) error

	// BlockWalk visits every data block in [first, last] whose flags match,
	// in ascending address order.
	BlockWalk(first, last BlockAddr, flags BlockFlag, cb BlockWalkFunc) error

	// DirOpenMeta parses the directory whose metadata address is addr.
	DirOpenMeta(addr MetaAddr) (*Directory, error)

	// FileOpenMeta materializes the metadata entry at addr.
	FileOpenMeta(addr MetaAddr) (*File, error)

	// FileWalk iterates the data blocks of file's default stream.
	FileWalk(file *File, flags FileWalkFlag, cb FileWalkFunc) error

	// FileWalkType iterates the data blocks of one specific attribute/stream
	// of file, identified by attribute type and id.
	FileWalkType(file *File, attrType uint32, attrID uint16, flags FileWalkFlag, cb FileWalkFunc) error

	// Close releases any resources (buffers, cached state) held by the
	// driver. It does not invalidate MetaEntry/Directory values already
	// copied out via FileOpenMeta/DirOpenMeta.
	Close() error
}
