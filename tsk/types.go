// Package tsk defines the filesystem-agnostic query layer shared by every
// driver: metadata addresses, attributes, directory entries, walk flags, and
// the Driver interface itself. Concrete drivers (tsk/fs/iso9660) and generic
// consumers (tsk/resolve, tsk/ifind) are built against these types only.
package tsk

import "fmt"

// MetaAddr identifies a metadata entry ("inode") within a single filesystem
// handle. It is meaningless outside of the Driver that produced it.
type MetaAddr uint64

// BlockAddr identifies a single data block on a filesystem's device.
type BlockAddr uint64

// MetaType classifies what a metadata entry represents.
type MetaType int

const (
	TypeUnknown MetaType = iota
	TypeRegular
	TypeDirectory
	TypeSymlink
	TypeSpecial
)

func (t MetaType) String() string {
	switch t {
	case TypeRegular:
		return "regular"
	case TypeDirectory:
		return "directory"
	case TypeSymlink:
		return "symlink"
	case TypeSpecial:
		return "special"
	default:
		return "unknown"
	}
}

// AllocState is whether a metadata entry or block is currently allocated.
type AllocState int

const (
	Allocated AllocState = iota
	Unallocated
)

func (a AllocState) String() string {
	if a == Unallocated {
		return "unallocated"
	}
	return "allocated"
}

// Attribute is one named data fork ("stream") belonging to a metadata entry.
// Most filesystems populate exactly one with an empty Name; NTFS-family
// filesystems may have several.
type Attribute struct {
	Type     uint32
	ID       uint16
	Name     string
	Resident bool
	Size     int64
}

// ParentNameRecord is an NTFS-style ($FILE_NAME) back-reference: a name a
// metadata entry was once linked under, retained even after the entry is
// unlinked. It is what makes parent-directed orphan recovery possible.
type ParentNameRecord struct {
	ParentAddr MetaAddr
	Name       string
}

// FSFeatures exposes the capabilities a driver's filesystem family has,
// rather than a type tag a caller would have to switch on. Path resolution
// and reverse lookup key all of their per-family behavior off of these
// methods (see Design Note 9.1 in SPEC_FULL.md) instead of sniffing an enum.
type FSFeatures interface {
	// FSTypeName is a human-readable tag, used only for diagnostics.
	FSTypeName() string

	// CaseSensitive reports whether name comparison during path resolution
	// must be exact (true) or case-folded (false).
	CaseSensitive() bool

	// UsesShortNames reports whether directory entries carry an 8.3-style
	// alias that must also be tried when a name fails to match.
	UsesShortNames() bool

	// SupportsAlternateStreams reports whether a path segment may carry a
	// ":streamName" suffix that must resolve against one of the matched
	// entry's attributes.
	SupportsAlternateStreams() bool
}

// MetaEntry is the materialized form of a metadata entry, as returned by
// Driver.FileOpenMeta.
type MetaEntry struct {
	Addr        MetaAddr
	Type        MetaType
	Alloc       AllocState
	Size        int64
	Attrs       []Attribute
	ParentNames []ParentNameRecord
}

// File is a handle to a materialized metadata entry, bound to the driver
// that produced it. It is the unit FileWalk/FileWalkType operate on.
type File struct {
	Meta   MetaEntry
	Driver Driver
}

func (f *File) String() string {
	return fmt.Sprintf("File{addr=%d type=%s alloc=%s}", f.Meta.Addr, f.Meta.Type, f.Meta.Alloc)
}

// DirectoryEntry is one named reference to a metadata entry inside a
// directory's extent or cluster chain.
type DirectoryEntry struct {
	Name      string
	ShortName string
	Addr      MetaAddr
	Type      MetaType
	Alloc     AllocState
}

// Directory is an ordered, owned list of DirectoryEntry values produced by
// Driver.DirOpenMeta. It carries a back-reference to the owning driver and
// the address of the metadata entry it represents, per the ownership
// invariants in SPEC_FULL.md §3.
type Directory struct {
	Addr    MetaAddr
	Driver  Driver
	Entries []DirectoryEntry
}

// Get returns the i'th entry. It panics if i is out of range, matching the
// teacher's convention that directory indices are caller-validated via Size.
func (d *Directory) Get(i int) DirectoryEntry {
	return d.Entries[i]
}

// Size returns the number of entries in the directory.
func (d *Directory) Size() int {
	return len(d.Entries)
}
