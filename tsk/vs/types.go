// Package vs is the volume-system dispatcher (SPEC_FULL.md §4.2): it
// autodetects or explicitly opens a partition scheme (DOS, BSD, GPT, Sun,
// Mac) over a tsk/image.Image and enumerates the partitions it describes.
// Nothing above tsk/vs needs to know which scheme matched; it only reads the
// resulting VolumeSystem.
package vs

// Type names a volume-system scheme. Detect is not a scheme itself; it
// triggers the autodetection algorithm in dispatch.go.
type Type int

const (
	Detect Type = iota
	DOS
	BSD
	GPT
	Sun
	Mac
	Unsupported
)

func (t Type) String() string {
	switch t {
	case DOS:
		return "DOS"
	case BSD:
		return "BSD"
	case GPT:
		return "GPT"
	case Sun:
		return "Sun"
	case Mac:
		return "Mac"
	case Detect:
		return "detect"
	default:
		return "unsupported"
	}
}

// PartitionFlag describes what a partition's slot represents, independent
// of the scheme that produced it.
type PartitionFlag int

const (
	// PartitionFlagAlloc marks a slot that names an actual, in-use
	// partition.
	PartitionFlagAlloc PartitionFlag = 1 << iota
	// PartitionFlagUnalloc marks unused space between or after partitions.
	// The openers in this package do not synthesize such slots; every
	// partition they report carries PartitionFlagAlloc.
	PartitionFlagUnalloc
	// PartitionFlagMeta marks a slot that holds volume-system bookkeeping
	// (a partition table, a protective MBR, a disklabel) rather than
	// partition content.
	PartitionFlagMeta
)

// Partition describes one slot in a volume system's partition list.
type Partition struct {
	StartBlock  int64
	Length      uint64
	Description string
	Flags       PartitionFlag
}

// VolumeSystem is the immutable result of opening a volume system: a tagged
// scheme plus its partition list. It carries no live reference to the image
// beyond what was needed to parse the partition table; it is a snapshot.
type VolumeSystem struct {
	Type       Type
	BlockSize  int64
	Offset     int64
	Partitions []Partition
}
