// Package image is the byte-addressable disk image reader: the one
// collaborator every other package in this module ultimately reads through.
// It is intentionally small — SPEC_FULL.md treats it as out of scope for the
// query layer, but the query layer needs a concrete interface to call.
package image

import "encoding/binary"

// Endianness names which byte order an image's on-disk structures use.
type Endianness int

const (
	LittleEndian Endianness = iota
	BigEndian
)

// ByteOrder returns the encoding/binary.ByteOrder matching e.
func (e Endianness) ByteOrder() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Image is an opaque, read-only byte source with a known size and
// endianness. Every driver reads exclusively through this interface; nothing
// above it needs to know whether the bytes come from a file, a byte slice,
// or a decompressed stream.
type Image interface {
	// ReadAt fills buf with bytes starting at the given byte offset,
	// matching io.ReaderAt semantics: it returns an error if fewer than
	// len(buf) bytes could be read.
	ReadAt(buf []byte, offset int64) (int, error)

	// Size returns the total size of the image, in bytes.
	Size() int64

	// Endian returns the byte order used by the image's on-disk structures.
	// This is a property of the image as a whole (set when opened), not of
	// any particular filesystem found on it.
	Endian() Endianness
}

// Truncator is implemented by backing stores that support resizing. Nothing
// in this module writes, and no package here consumes a Truncator;
// tsk/image/blockcache takes a ResizeCallback instead.
type Truncator interface {
	Truncate(size int64) error
}
