// Package fakefs is a minimal in-memory tsk.Driver used only by this
// module's own tests. It exists because spec.md §1 explicitly keeps
// individual filesystem drivers (beyond ISO9660) out of scope: tsk/resolve
// and tsk/ifind need FAT/NTFS/UFS-shaped comparison-rule behavior to verify
// against, but building real FAT/NTFS parsers would be implementing scope
// the spec deliberately excludes. fakefs supplies just enough of a Driver
// to drive the generic query layer's family-specific branches.
package fakefs

import (
	"sort"

	"github.com/sleuthgo/tsk"
	"github.com/sleuthgo/tsk/errors"
)

// Features implements tsk.FSFeatures with caller-supplied capability
// values, so one fake driver type can stand in for any filesystem family
// from spec.md §4.3's comparison-rule table.
type Features struct {
	Name              string
	CaseSensitiveFlag bool
	ShortNamesFlag    bool
	AlternateStreams  bool
}

func (f Features) FSTypeName() string             { return f.Name }
func (f Features) CaseSensitive() bool            { return f.CaseSensitiveFlag }
func (f Features) UsesShortNames() bool           { return f.ShortNamesFlag }
func (f Features) SupportsAlternateStreams() bool { return f.AlternateStreams }

// UFSFeatures matches spec.md's UFS/FFS/ext* row: exact, case-sensitive,
// no short names, no streams.
var UFSFeatures = Features{Name: "ufs", CaseSensitiveFlag: true}

// FATFeatures matches the FAT row: case-insensitive, short-name fallback.
var FATFeatures = Features{Name: "fat", ShortNamesFlag: true}

// NTFSFeatures matches the NTFS row: case-insensitive, alternate streams.
var NTFSFeatures = Features{Name: "ntfs", AlternateStreams: true}

// ISO9660Features matches the ISO9660 row: exact, case-sensitive.
var ISO9660Features = Features{Name: "iso9660", CaseSensitiveFlag: true}

// Block is one block owned by a Node, tagged with the attribute it belongs
// to (zero type/id for a family with only a default stream).
type Block struct {
	Addr      tsk.BlockAddr
	AttrType  uint32
	AttrID    uint16
	IsSlack   bool
}

// Node is one metadata entry in the fake tree: a directory or a file, with
// its data blocks and (for NTFS-shaped tests) attribute/parent-name lists.
type Node struct {
	Addr        tsk.MetaAddr
	Type        tsk.MetaType
	Alloc       tsk.AllocState
	Size        int64
	Attrs       []tsk.Attribute
	ParentNames []tsk.ParentNameRecord
	Children    []tsk.DirectoryEntry
	Blocks      []Block
}

// Driver is the in-memory tsk.Driver implementation.
type Driver struct {
	Feat     Features
	First    tsk.MetaAddr
	Last     tsk.MetaAddr
	Root     tsk.MetaAddr
	Nodes    map[tsk.MetaAddr]*Node
	MetaBlks map[tsk.BlockAddr]bool
}

// New creates an empty Driver with the given address range/features. Call
// AddNode to populate it.
func New(feat Features, first, last, root tsk.MetaAddr) *Driver {
	return &Driver{
		Feat:     feat,
		First:    first,
		Last:     last,
		Root:     root,
		Nodes:    make(map[tsk.MetaAddr]*Node),
		MetaBlks: make(map[tsk.BlockAddr]bool),
	}
}

func (d *Driver) AddNode(n *Node) { d.Nodes[n.Addr] = n }

func (d *Driver) FirstInum() tsk.MetaAddr  { return d.First }
func (d *Driver) LastInum() tsk.MetaAddr   { return d.Last }
func (d *Driver) RootInum() tsk.MetaAddr   { return d.Root }
func (d *Driver) Features() tsk.FSFeatures { return d.Feat }

func (d *Driver) InodeWalk(first, last tsk.MetaAddr, flags tsk.MetaFlag, cb tsk.InodeWalkFunc) error {
	if first < d.First || last > d.Last {
		return errors.ErrWalkRange
	}
	addrs := d.sortedAddrs()
	for _, addr := range addrs {
		if addr < first || addr > last {
			continue
		}
		node := d.Nodes[addr]
		if !flags.Matches(node.Alloc) {
			continue
		}
		file, err := d.FileOpenMeta(addr)
		if err != nil {
			return err
		}
		ctrl, err := cb(file)
		if err != nil {
			return err
		}
		if ctrl == tsk.WalkStop {
			return nil
		}
	}
	return nil
}

func (d *Driver) BlockWalk(first, last tsk.BlockAddr, flags tsk.BlockFlag, cb tsk.BlockWalkFunc) error {
	for addr := first; addr <= last; addr++ {
		blockFlags := tsk.BlockFlagUnalloc
		if d.MetaBlks[addr] {
			blockFlags = tsk.BlockFlagMeta
		} else if d.blockIsAllocated(addr) {
			blockFlags = tsk.BlockFlagAlloc | tsk.BlockFlagContent
		}
		if flags&blockFlags == 0 {
			continue
		}
		ctrl, err := cb(addr, blockFlags)
		if err != nil {
			return err
		}
		if ctrl == tsk.WalkStop {
			return nil
		}
	}
	return nil
}

func (d *Driver) blockIsAllocated(addr tsk.BlockAddr) bool {
	for _, n := range d.Nodes {
		for _, b := range n.Blocks {
			if b.Addr == addr {
				return true
			}
		}
	}
	return false
}

func (d *Driver) DirOpenMeta(addr tsk.MetaAddr) (*tsk.Directory, error) {
	node, ok := d.Nodes[addr]
	if !ok {
		return nil, errors.ErrInodeNum
	}
	if node.Type != tsk.TypeDirectory {
		return nil, errors.ErrArg.WithMessage("not a directory")
	}
	entries := make([]tsk.DirectoryEntry, len(node.Children))
	copy(entries, node.Children)
	return &tsk.Directory{Addr: addr, Driver: d, Entries: entries}, nil
}

func (d *Driver) FileOpenMeta(addr tsk.MetaAddr) (*tsk.File, error) {
	node, ok := d.Nodes[addr]
	if !ok {
		return nil, errors.ErrInodeNum
	}
	attrs := make([]tsk.Attribute, len(node.Attrs))
	copy(attrs, node.Attrs)
	parents := make([]tsk.ParentNameRecord, len(node.ParentNames))
	copy(parents, node.ParentNames)

	return &tsk.File{
		Driver: d,
		Meta: tsk.MetaEntry{
			Addr:        node.Addr,
			Type:        node.Type,
			Alloc:       node.Alloc,
			Size:        node.Size,
			Attrs:       attrs,
			ParentNames: parents,
		},
	}, nil
}

func (d *Driver) FileWalk(file *tsk.File, flags tsk.FileWalkFlag, cb tsk.FileWalkFunc) error {
	return d.FileWalkType(file, 0, 0, flags, cb)
}

func (d *Driver) FileWalkType(file *tsk.File, attrType uint32, attrID uint16, flags tsk.FileWalkFlag, cb tsk.FileWalkFunc) error {
	node, ok := d.Nodes[file.Meta.Addr]
	if !ok {
		return errors.ErrInodeNum
	}

	wantSlack := flags&tsk.FileWalkSlack != 0
	offset := int64(0)
	for _, b := range node.Blocks {
		if b.AttrType != attrType || b.AttrID != attrID {
			continue
		}
		if b.IsSlack && !wantSlack {
			continue
		}

		var buf []byte
		if flags&tsk.FileWalkAddressOnly == 0 {
			buf = make([]byte, 1)
		}

		blockFlags := tsk.BlockFlagContent
		if b.IsSlack {
			blockFlags |= tsk.BlockFlagUnalloc
		} else {
			blockFlags |= tsk.BlockFlagAlloc
		}

		ctrl, err := cb(file, offset, b.Addr, buf, 1, blockFlags)
		if err != nil {
			return err
		}
		if ctrl == tsk.WalkStop {
			return nil
		}
		offset++
	}
	return nil
}

func (d *Driver) Close() error { return nil }

func (d *Driver) sortedAddrs() []tsk.MetaAddr {
	addrs := make([]tsk.MetaAddr, 0, len(d.Nodes))
	for a := range d.Nodes {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}
