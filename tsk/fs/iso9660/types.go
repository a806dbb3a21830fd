// Package iso9660 is the one fully-implemented filesystem driver
// (SPEC_FULL.md §4.5): a representative tolerant parser over an ISO9660-like
// directory extent format, plus the tsk.Driver plumbing (inode walk, block
// walk, file walk) needed to exercise it through tsk/resolve and tsk/ifind.
//
// The on-disk shapes here are grounded in the structure the teacher's
// original_source/tsk3/fs/iso9660_dent.c parses — a directory extent as a
// sequence of variable-length records, each self-describing its own
// length, an extent location, a directory flag, and a name — but are not a
// byte-for-byte implementation of ECMA-119; §1 scopes "individual
// filesystem drivers beyond ISO9660 as an illustrative case" deliberately
// narrowly, and the interesting engineering this module is grounded on is
// the directory-parsing state machine (§4.5), not CD mastering trivia.
package iso9660

const (
	// recordHeaderSize is the size, in bytes, of a directory record's
	// fixed-layout header: length byte, extended-attribute length, extent
	// location, data length, recording date, flags, file unit size,
	// interleave gap, volume sequence number, and the name-length byte
	// that precedes the variable-length name.
	recordHeaderSize = 33

	offsetRecordLen  = 0
	offsetExtentLoc  = 2
	offsetDataLen    = 10
	offsetFlags      = 25
	offsetNameLength = 32

	flagIsDirectory = 0x02

	// sectorSize is the logical sector size ISO9660 volume descriptors are
	// always read at, independent of the filesystem's own logical block
	// size (which the Primary Volume Descriptor declares separately).
	sectorSize = 2048

	pvdSector       = 16
	pvdSignature    = "CD001"
	pvdRootDirEntry = 156
)

// Features implements tsk.FSFeatures for ISO9660: primary-name-only, exact
// comparison, no short-name aliases, no alternate streams (spec.md §4.3
// table).
type Features struct{}

func (Features) FSTypeName() string            { return "iso9660" }
func (Features) CaseSensitive() bool            { return true }
func (Features) UsesShortNames() bool           { return false }
func (Features) SupportsAlternateStreams() bool { return false }
