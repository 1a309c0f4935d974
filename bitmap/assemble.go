package bitmap

import (
	"fmt"

	"github.com/hupe1980/colmask/internal/bitutil"
)

// FromChunks assembles a Bitmap of length bits from a chunk sequence.
//
// The iterator must report exactly ceil(length/width) chunks; otherwise
// ErrLengthMismatch is returned. Bits of the final chunk beyond length are
// discarded.
func FromChunks[T Chunk](it ChunkIterator[T], length int, opts ...Option) (*Bitmap, error) {
	width := ChunkBits[T]()
	if length < 0 || it.Len() != bitutil.ChunksFor(length, width) {
		return nil, fmt.Errorf("%w: %d chunks of %d bits cannot cover %d bits",
			ErrLengthMismatch, it.Len(), width, length)
	}

	o := applyOptions(opts)
	data, err := o.alloc.Allocate(bitutil.BytesFor(length))
	if err != nil {
		return nil, err
	}
	writeChunks(data, it, length)

	return newBitmap(newSharedBuffer(data, o.alloc), 0, length), nil
}

// writeChunks stores length bits of chunks into dst from byte 0. dst must hold
// at least BytesFor(length) bytes.
func writeChunks[T Chunk](dst []byte, it ChunkIterator[T], length int) {
	width := ChunkBits[T]()
	step := width / 8
	i := 0
	for written := 0; written < length; {
		c, ok := it.Next()
		if !ok {
			return
		}
		rem := length - written
		if rem >= width {
			bitutil.StoreWord(dst, i, uint64(c), step)
			i += step
			written += width
			continue
		}
		bitutil.StoreWord(dst, i, uint64(c)&bitutil.LowMask64(rem), bitutil.BytesFor(rem))
		written = length
	}
}
