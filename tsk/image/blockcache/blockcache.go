// Package blockcache provides a block-oriented cache that gives a linear
// view of an object scattered across discontiguous blocks in a disk image.
// The ISO9660 driver uses it to pull directory and file extents without
// re-reading the backing image on every access.
//
// All block indices begin at 0.
package blockcache

import (
	"fmt"
	"io"

	"github.com/boljen/go-bitmap"
	"github.com/xaionaro-go/bytesextra"

	"github.com/sleuthgo/tsk/errors"
	"github.com/sleuthgo/tsk/image"
)

// Block identifies a block within the cache's own addressing (not
// necessarily the same numbering the backing image uses, since a cache can
// be wrapped around a single extent starting anywhere in the image).
type Block uint64

// FetchBlockCallback writes the contents of a single block from the backing
// storage into buffer. The following guarantees apply:
//
//   - blockIndex is in the range [0, TotalBlocks).
//   - buffer is always BytesPerBlock bytes.
type FetchBlockCallback func(blockIndex Block, buffer []byte) error

// FlushBlockCallback writes buffer to a block in the backing storage. This
// module never calls it — nothing here writes — but WrapStream still wires
// one through so the cache's shape matches a generic read/write block
// store, which is what BlockCache is adapted from.
type FlushBlockCallback func(blockIndex Block, buffer []byte) error

// ResizeCallback is called to grow or shrink the backing storage. This
// module always passes a stub: forensic images are read-only, so a
// BlockCache never actually resizes one.
type ResizeCallback func(newTotalBlocks Block) error

type BlockCache struct {
	// loadedBlocks is a bitmap indicating which blocks are in data; 1 means
	// present, 0 is not loaded.
	loadedBlocks bitmap.Bitmap
	// dirtyBlocks is a bitmap indicating which blocks in data have been
	// modified and need to be written back to the underlying storage. Kept
	// even though this module never writes; only MarkBlockRangeDirty sets
	// it, and nothing in this module calls MarkBlockRangeDirty.
	dirtyBlocks   bitmap.Bitmap
	fetch         FetchBlockCallback
	flush         FlushBlockCallback
	resize        ResizeCallback
	bytesPerBlock uint
	totalBlocks   uint
	data          []byte
}

// New creates a new BlockCache.
//
// There are three callback functions:
//
//   - fetchCb reads a single block from the backing storage.
//   - flushCb writes a single block to the backing storage.
//   - resizeCb resizes the backing storage to a given number of blocks. If
//     nil is passed, a stub is provided that always returns an
//     errors.ErrArg-derived error.
func New(
	bytesPerBlock uint,
	totalBlocks uint,
	fetchCb FetchBlockCallback,
	flushCb FlushBlockCallback,
	resizeCb ResizeCallback,
) *BlockCache {
	if resizeCb == nil {
		resizeCb = func(newTotalBlocks Block) error {
			return errors.ErrArg.WithMessage(
				fmt.Sprintf(
					"resizing is not supported; size fixed at %d bytes",
					bytesPerBlock*totalBlocks,
				),
			)
		}
	}

	return &BlockCache{
		loadedBlocks:  bitmap.NewSlice(int(totalBlocks)),
		dirtyBlocks:   bitmap.NewSlice(int(totalBlocks)),
		data:          make([]byte, int(bytesPerBlock*totalBlocks)),
		fetch:         fetchCb,
		flush:         flushCb,
		resize:        resizeCb,
		bytesPerBlock: bytesPerBlock,
		totalBlocks:   totalBlocks,
	}
}

// WrapStream creates a BlockCache that reads through any io.ReadWriteSeeker.
// Resizing is never permitted; forensic images are treated as immutable.
func WrapStream(
	stream io.ReadWriteSeeker,
	bytesPerBlock uint,
	totalBlocks uint,
) *BlockCache {
	// This function performs the work of both the fetch and flush
	// callbacks; they differ only by a single method call on the stream.
	runCb := func(block Block, buffer []byte, read bool) error {
		err := seekToBlock(stream, block, Block(totalBlocks), bytesPerBlock)
		if err != nil {
			return err
		}

		if read {
			_, err = stream.Read(buffer)
		} else {
			_, err = stream.Write(buffer)
		}

		if err != nil && err != io.EOF {
			return err
		}
		return nil
	}

	fetchCb := func(block Block, buffer []byte) error {
		return runCb(block, buffer, true)
	}

	flushCb := func(block Block, buffer []byte) error {
		return runCb(block, buffer, false)
	}

	resizeCb := func(newTotalBlocks Block) error {
		return errors.ErrArg.WithMessage("disk images are read-only; resizing is not supported")
	}

	return New(bytesPerBlock, totalBlocks, fetchCb, flushCb, resizeCb)
}

// WrapStreamWithInferredSize wraps stream, computing totalBlocks from the
// stream's length.
func WrapStreamWithInferredSize(
	stream io.ReadWriteSeeker,
	bytesPerBlock uint,
) *BlockCache {
	eofOffset, _ := stream.Seek(0, io.SeekEnd)
	totalBlocks := uint(eofOffset) / bytesPerBlock
	stream.Seek(0, io.SeekStart)
	return WrapStream(stream, bytesPerBlock, totalBlocks)
}

// WrapSlice wraps an in-memory byte slice, most commonly a fixture image in
// a test. The slice is never mutated by this cache.
func WrapSlice(storage []byte, bytesPerBlock uint) *BlockCache {
	stream := bytesextra.NewReadWriteSeeker(storage)
	return WrapStream(stream, bytesPerBlock, uint(len(storage))/bytesPerBlock)
}

// WrapImage wraps a tsk/image.Image as a BlockCache, for drivers that read
// through the generic disk image abstraction instead of a raw stream.
func WrapImage(img image.Image, bytesPerBlock uint) *BlockCache {
	totalBlocks := uint(img.Size()) / bytesPerBlock

	fetchCb := func(block Block, buffer []byte) error {
		offset := int64(block) * int64(bytesPerBlock)
		_, err := img.ReadAt(buffer, offset)
		return err
	}
	flushCb := func(block Block, buffer []byte) error {
		return errors.ErrArg.WithMessage("disk images are read-only; writing is not supported")
	}
	resizeCb := func(newTotalBlocks Block) error {
		return errors.ErrArg.WithMessage("disk images are read-only; resizing is not supported")
	}

	return New(bytesPerBlock, totalBlocks, fetchCb, flushCb, resizeCb)
}

// seekToBlock sets the stream pointer for a stream to the offset of a block.
func seekToBlock(stream io.Seeker, block, totalBlocks Block, bytesPerBlock uint) error {
	if block >= totalBlocks {
		return errors.ErrWalkRange.WithMessage(
			fmt.Sprintf(
				"invalid block number: %d not in range [0, %d)",
				block,
				totalBlocks,
			),
		)
	}

	blockOffset := int64(block) * int64(bytesPerBlock)
	_, err := stream.Seek(blockOffset, io.SeekStart)
	return err
}

// BytesPerBlock returns the size of a single block, in bytes.
func (cache *BlockCache) BytesPerBlock() uint {
	return cache.bytesPerBlock
}

// TotalBlocks returns the size of the cache, in blocks.
func (cache *BlockCache) TotalBlocks() uint {
	return cache.totalBlocks
}

// Size gives the size of the cache, in bytes (not blocks!).
func (cache *BlockCache) Size() int64 {
	return int64(cache.bytesPerBlock) * int64(cache.totalBlocks)
}

// GetMinBlocksForSize gives the minimum number of blocks required to hold
// the given number of bytes.
func (cache *BlockCache) GetMinBlocksForSize(size uint) uint {
	return (size + cache.bytesPerBlock - 1) / cache.bytesPerBlock
}

// CheckBounds verifies that bufferSize bytes can be accessed in the cache
// starting from block start. If not, it returns an error describing the
// exact conditions. If no error would occur, this returns nil.
func (cache *BlockCache) CheckBounds(start Block, bufferSize uint) error {
	numBlocks := cache.GetMinBlocksForSize(bufferSize)

	if uint(start) >= cache.totalBlocks {
		return errors.ErrWalkRange.WithMessage(
			fmt.Sprintf("block %d not in range [0, %d)", start, cache.totalBlocks),
		)
	}
	if uint(start)+numBlocks > cache.totalBlocks {
		return errors.ErrWalkRange.WithMessage(
			fmt.Sprintf(
				"can't access %d bytes (%d blocks) starting at block %d; requested"+
					" range not in [0, %d)",
				bufferSize,
				numBlocks,
				start,
				cache.totalBlocks,
			),
		)
	}
	return nil
}

// GetSlice returns a slice pointing to the cache's storage, beginning at
// block start and continuing for count blocks.
//
// If the returned slice is modified, the modified blocks must be marked
// dirty with MarkBlockRangeDirty.
func (cache *BlockCache) GetSlice(start Block, count uint) ([]byte, error) {
	err := cache.loadBlockRange(start, count)
	if err != nil {
		return nil, err
	}

	startOffset := uint(start) * cache.bytesPerBlock
	endOffset := startOffset + (count * cache.bytesPerBlock)
	return cache.data[startOffset:endOffset], nil
}

// Data returns a slice of the entire cache's data. This requires loading
// all blocks not yet in the cache, so it may incur a one-time performance
// penalty for large files.
func (cache *BlockCache) Data() ([]byte, error) {
	err := cache.LoadAll()
	if err != nil {
		return nil, err
	}
	return cache.data[:], nil
}

// loadBlockRange ensures that all blocks in [start, start+count) are
// present in the cache, loading any missing ones from storage.
func (cache *BlockCache) loadBlockRange(start Block, count uint) error {
	err := cache.CheckBounds(start, count*cache.bytesPerBlock)
	if err != nil {
		return err
	}

	for blockIndex := uint(start); blockIndex < uint(start)+count; blockIndex++ {
		// Dirty blocks are present by definition, so checking loadedBlocks
		// alone is enough.
		if cache.loadedBlocks.Get(int(blockIndex)) {
			continue
		}

		startByteOffset := blockIndex * cache.bytesPerBlock
		endByteOffset := startByteOffset + cache.bytesPerBlock
		buffer := cache.data[startByteOffset:endByteOffset]

		err = cache.fetch(Block(blockIndex), buffer)
		if err != nil {
			return errors.ErrRead.WrapError(
				fmt.Errorf("failed to load block %d from source: %w", blockIndex, err),
			)
		}

		cache.loadedBlocks.Set(int(blockIndex), true)
		cache.dirtyBlocks.Set(int(blockIndex), false)
	}

	return nil
}

// LoadAll ensures all missing blocks are loaded from storage into the
// cache.
func (cache *BlockCache) LoadAll() error {
	return cache.loadBlockRange(0, cache.totalBlocks)
}

// ReadAt fills buffer with data beginning at block start, loading any
// missing blocks first. buffer does not need to be an exact multiple of
// the size of one block.
func (cache *BlockCache) ReadAt(buffer []byte, start Block) (int, error) {
	bufLen := uint(len(buffer))
	err := cache.CheckBounds(start, bufLen)
	if err != nil {
		return 0, err
	}

	numBlocks := cache.GetMinBlocksForSize(bufLen)
	err = cache.loadBlockRange(start, numBlocks)
	if err != nil {
		return 0, err
	}

	sourceData, err := cache.GetSlice(start, numBlocks)
	if err != nil {
		return 0, err
	}

	copy(buffer, sourceData)
	return len(buffer), nil
}

// MarkBlockRangeDirty marks a range of blocks as modified in the cache's
// in-memory copy. Nothing in this module flushes dirty blocks back to an
// image — images are read-only — and nothing in this module calls it; it
// records that a caller modified the cached copy in place, so that the copy
// no longer matches the raw extent bytes.
func (cache *BlockCache) MarkBlockRangeDirty(start Block, count uint) error {
	err := cache.CheckBounds(start, count*cache.bytesPerBlock)
	if err != nil {
		return err
	}

	for i := uint(0); i < count; i++ {
		bitIndex := int(start) + int(i)
		cache.dirtyBlocks.Set(bitIndex, true)
		cache.loadedBlocks.Set(bitIndex, true)
	}
	return nil
}
