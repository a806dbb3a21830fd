// Package ifind implements the reverse-lookup engine (SPEC_FULL.md §4.4):
// block-to-owning-metadata-entries lookup, and (for NTFS-shaped drivers)
// parent-to-unallocated-children lookup, both built on tsk.Driver's
// InodeWalk/FileWalk machinery.
package ifind

// Flag controls reverse-lookup behavior, mirroring spec.md §6's
// ifind_all/ifind_par_long.
type Flag int

const (
	// FlagAll reports every owner of a block instead of stopping at the
	// first match.
	FlagAll Flag = 1 << iota
	// FlagParLong requests the long-form output variant for
	// parent-based unallocated-child search.
	FlagParLong
)

func (f Flag) has(bit Flag) bool { return f&bit != 0 }
