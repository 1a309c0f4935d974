package bitmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type word uint64

func TestChunkBits(t *testing.T) {
	assert.Equal(t, 8, ChunkBits[uint8]())
	assert.Equal(t, 16, ChunkBits[uint16]())
	assert.Equal(t, 32, ChunkBits[uint32]())
	assert.Equal(t, 64, ChunkBits[uint64]())
	assert.Equal(t, 64, ChunkBits[word]())
	assert.Equal(t, 3, CountOnes(uint8(0b1011)))
}

func TestChunks_PartialFinalChunk(t *testing.T) {
	b := parseBits(t, "0"+"1111100000"+"11").Slice(1, 10)

	it := Chunks[uint8](b)
	require.Equal(t, 2, it.Len())

	c, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, uint8(0x1F), c)
	assert.Equal(t, 1, it.Len())

	c, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, uint8(0), c)
	assert.Equal(t, 0, it.Len())

	_, ok = it.Next()
	assert.False(t, ok)
}

func TestChunks_ZeroPaddedOverGarbage(t *testing.T) {
	values := []bool{true, false, true}
	b := garbageBitmap(t, values, 6)

	var got []uint64
	for c := range Chunks[uint64](b).All() {
		got = append(got, c)
	}
	assert.Equal(t, []uint64{0b101}, got)
}

func TestChunks_ExactMultiple(t *testing.T) {
	b, err := NewConstant(128, true)
	require.NoError(t, err)
	it := Chunks[uint64](b)
	assert.Equal(t, 2, it.Len())
	for c := range it.All() {
		assert.Equal(t, ^uint64(0), c)
	}
}

func TestChunksOf_Range(t *testing.T) {
	assert.Panics(t, func() { ChunksOf[uint8]([]byte{0}, 1, 8) })
	it := ChunksOf[uint16]([]byte{0xFF, 0x01}, 4, 5)
	c, _ := it.Next()
	assert.Equal(t, uint16(0b11111), c)
}

func roundTripWidth[T Chunk](t *testing.T, b *Bitmap) {
	t.Helper()
	got, err := FromChunks[T](Chunks[T](b), b.Len())
	require.NoError(t, err)
	assert.True(t, got.Equal(b), "width %d length %d", ChunkBits[T](), b.Len())
	data, off, _ := got.Bytes()
	assert.Zero(t, off)
	assert.Len(t, data, (b.Len()+7)/8)
}

func TestFromChunks_RoundTrip(t *testing.T) {
	rng := newRNG(6)
	for _, n := range testLengths {
		for _, offset := range []int{0, 3, 8, 61} {
			b := garbageBitmap(t, randomBools(rng, n), offset)
			roundTripWidth[uint8](t, b)
			roundTripWidth[uint16](t, b)
			roundTripWidth[uint32](t, b)
			roundTripWidth[uint64](t, b)
			roundTripWidth[word](t, b)
		}
	}
}

type sliceChunks[T Chunk] struct {
	chunks []T
}

func (s *sliceChunks[T]) Len() int { return len(s.chunks) }

func (s *sliceChunks[T]) Next() (T, bool) {
	if len(s.chunks) == 0 {
		return 0, false
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, true
}

func TestFromChunks_MasksFinalChunk(t *testing.T) {
	b, err := FromChunks[uint16](&sliceChunks[uint16]{chunks: []uint16{0xFFFF, 0xFFFF}}, 20)
	require.NoError(t, err)
	data, _, _ := b.Bytes()
	assert.Equal(t, []byte{0xFF, 0xFF, 0x0F}, data)
	assert.Equal(t, 20, b.CountOnes())
}

func TestFromChunks_LengthMismatch(t *testing.T) {
	_, err := FromChunks[uint8](&sliceChunks[uint8]{chunks: []uint8{1}}, 9)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = FromChunks[uint8](&sliceChunks[uint8]{chunks: []uint8{1, 2}}, 8)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	b, err := FromChunks[uint8](&sliceChunks[uint8]{}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Len())
}
