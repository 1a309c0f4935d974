package bitmap

import (
	"iter"
	"math/bits"

	"github.com/hupe1980/colmask/internal/bitutil"
)

// Chunk is a fixed-width unit of packed bits. Bit 0 of a chunk is the bit at
// the lowest index of the range it covers.
type Chunk interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// ChunkBits returns the width of T in bits.
func ChunkBits[T Chunk]() int {
	return bits.Len64(uint64(^T(0)))
}

// CountOnes returns the number of set bits in c.
func CountOnes[T Chunk](c T) int {
	return bits.OnesCount64(uint64(c))
}

// ChunkIterator is a length-known sequence of chunks.
//
// Len reports exactly how many more chunks Next will yield.
type ChunkIterator[T Chunk] interface {
	Next() (T, bool)
	Len() int
}

// ChunkIter walks packed bits in chunks of T: one full chunk for every
// complete group of ChunkBits[T]() bits, then one zero-padded chunk for the
// remainder, if any. It is not restartable.
type ChunkIter[T Chunk] struct {
	data      []byte
	pos       int
	end       int
	width     int
	remaining int
}

var _ ChunkIterator[uint64] = (*ChunkIter[uint64])(nil)

// Chunks returns a chunk iterator over the bits of b.
func Chunks[T Chunk](b *Bitmap) *ChunkIter[T] {
	data, offset, length := b.raw()
	return newChunkIter[T](data, offset, length)
}

// ChunksOf returns a chunk iterator over length bits of data starting at bit offset.
// It panics with a *RangeError if the range exceeds data.
func ChunksOf[T Chunk](data []byte, offset, length int) *ChunkIter[T] {
	checkRange(offset, length, len(data)*8)
	return newChunkIter[T](data, offset, length)
}

func newChunkIter[T Chunk](data []byte, offset, length int) *ChunkIter[T] {
	width := ChunkBits[T]()
	return &ChunkIter[T]{
		data:      data,
		pos:       offset,
		end:       offset + length,
		width:     width,
		remaining: bitutil.ChunksFor(length, width),
	}
}

// Len returns the number of chunks left.
func (it *ChunkIter[T]) Len() int {
	return it.remaining
}

// Next returns the next chunk. The final chunk of a length that is not a
// multiple of the chunk width has its unused high bits cleared.
func (it *ChunkIter[T]) Next() (T, bool) {
	if it.remaining == 0 {
		return 0, false
	}
	n := min(it.width, it.end-it.pos)
	v := bitutil.ReadBits(it.data, it.pos, n)
	it.pos += n
	it.remaining--
	return T(v), true
}

// All yields the remaining chunks.
func (it *ChunkIter[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			c, ok := it.Next()
			if !ok || !yield(c) {
				return
			}
		}
	}
}
