package bitmap

import (
	"github.com/hupe1980/colmask/internal/bitutil"
)

// minGrowBytes is the smallest buffer a growing MutableBitmap allocates.
const minGrowBytes = 8

// MutableBitmap is an exclusively-owned, growable sequence of packed bits.
// The zero value is an empty bitmap using DefaultAllocator.
//
// A MutableBitmap has exactly one owner and is not safe for concurrent use.
// Bits beyond Len() in the last byte are unspecified and never read.
type MutableBitmap struct {
	// buf holds BytesFor(length) bytes; its capacity is the reserved storage.
	buf    []byte
	length int
	alloc  Allocator
}

// NewMutable creates an empty MutableBitmap. No memory is allocated until the
// first bit is added.
func NewMutable(opts ...Option) *MutableBitmap {
	o := applyOptions(opts)
	return &MutableBitmap{alloc: o.alloc}
}

// NewMutableWithCapacity creates an empty MutableBitmap with room for at least
// capacity bits.
func NewMutableWithCapacity(capacity int, opts ...Option) (*MutableBitmap, error) {
	m := NewMutable(opts...)
	if err := m.Reserve(capacity); err != nil {
		return nil, err
	}
	return m, nil
}

// Len returns the number of bits.
func (m *MutableBitmap) Len() int {
	return m.length
}

// IsEmpty reports whether the bitmap holds no bits.
func (m *MutableBitmap) IsEmpty() bool {
	return m.length == 0
}

// Cap returns the number of bits the bitmap can hold without reallocating.
func (m *MutableBitmap) Cap() int {
	return cap(m.buf) * 8
}

// Reserve ensures room for at least additional more bits.
func (m *MutableBitmap) Reserve(additional int) error {
	if additional <= 0 {
		return nil
	}
	return m.grow(bitutil.BytesFor(m.length + additional))
}

// allocator makes the zero MutableBitmap usable.
func (m *MutableBitmap) allocator() Allocator {
	if m.alloc == nil {
		m.alloc = DefaultAllocator
	}
	return m.alloc
}

// grow reallocates so that cap(m.buf) >= minBytes, at least doubling.
func (m *MutableBitmap) grow(minBytes int) error {
	old, err := m.regrow(minBytes)
	if err != nil {
		return err
	}
	m.free(old)
	return nil
}

// regrow is grow without freeing the replaced buffer, which is returned so
// that callers still reading from it can free it afterwards.
func (m *MutableBitmap) regrow(minBytes int) ([]byte, error) {
	if minBytes <= cap(m.buf) {
		return nil, nil
	}
	newCap := max(2*cap(m.buf), minBytes, minGrowBytes)
	nb, err := m.allocator().Allocate(newCap)
	if err != nil {
		return nil, err
	}
	nb = nb[:len(m.buf)]
	copy(nb, m.buf)
	old := m.buf
	m.buf = nb
	return old, nil
}

func (m *MutableBitmap) free(buf []byte) {
	if cap(buf) > 0 {
		m.alloc.Free(buf)
	}
}

// Push appends one bit, growing the storage by doubling when it is exhausted.
// On allocation failure the bitmap is unchanged.
func (m *MutableBitmap) Push(v bool) error {
	if m.length&7 == 0 && len(m.buf) == cap(m.buf) {
		if err := m.grow(len(m.buf) + 1); err != nil {
			return err
		}
	}
	m.pushUnchecked(v)
	return nil
}

// pushUnchecked appends a bit; the byte it lands in must fit in cap(m.buf).
func (m *MutableBitmap) pushUnchecked(v bool) {
	if m.length&7 == 0 {
		m.buf = m.buf[:len(m.buf)+1]
	}
	bitutil.SetBit(m.buf, m.length, v)
	m.length++
}

// Get returns bit i. It panics with an *IndexError if i is out of range.
func (m *MutableBitmap) Get(i int) bool {
	checkIndex(i, m.length)
	return bitutil.GetBit(m.buf, i)
}

// Set sets bit i to v. It panics with an *IndexError if i is out of range.
func (m *MutableBitmap) Set(i int, v bool) {
	checkIndex(i, m.length)
	bitutil.SetBit(m.buf, i, v)
}

// Truncate shortens the bitmap to n bits, keeping its capacity.
// It panics with an *IndexError if n is negative or greater than Len().
func (m *MutableBitmap) Truncate(n int) {
	if n < 0 || n > m.length {
		panic(&IndexError{Index: n, Length: m.length})
	}
	m.buf = m.buf[:bitutil.BytesFor(n)]
	m.length = n
}

// Clear removes all bits, keeping the capacity.
func (m *MutableBitmap) Clear() {
	m.Truncate(0)
}

// ExtendConstant appends n copies of v.
func (m *MutableBitmap) ExtendConstant(n int, v bool) error {
	if n < 0 {
		panic(&IndexError{Index: n, Length: 0})
	}
	if n == 0 {
		return nil
	}
	if err := m.grow(bitutil.BytesFor(m.length + n)); err != nil {
		return err
	}

	for m.length&7 != 0 && n > 0 {
		m.pushUnchecked(v)
		n--
	}

	var fill byte
	if v {
		fill = 0xFF
	}
	full := n >> 3
	start := len(m.buf)
	m.buf = m.buf[:start+full]
	for i := start; i < len(m.buf); i++ {
		m.buf[i] = fill
	}
	m.length += full * 8
	n -= full * 8

	for ; n > 0; n-- {
		m.pushUnchecked(v)
	}
	return nil
}

// ExtendFromSlice appends length bits of data starting at bit offset.
//
// The unaligned head is copied bit by bit until the destination reaches a
// byte boundary; the rest is copied a 64-bit chunk at a time. It panics with a
// *RangeError if the range exceeds data.
func (m *MutableBitmap) ExtendFromSlice(data []byte, offset, length int) error {
	checkRange(offset, length, len(data)*8)
	if length == 0 {
		return nil
	}
	// data may be m.Bytes(), so the old buffer outlives the copy.
	old, err := m.regrow(bitutil.BytesFor(m.length + length))
	if err != nil {
		return err
	}
	defer m.free(old)

	for m.length&7 != 0 && length > 0 {
		m.pushUnchecked(bitutil.GetBit(data, offset))
		offset++
		length--
	}
	if length == 0 {
		return nil
	}

	start := len(m.buf)
	nbytes := bitutil.BytesFor(length)
	m.buf = m.buf[:start+nbytes]
	if bitutil.IsByteAligned(offset) {
		copy(m.buf[start:], data[offset>>3:(offset>>3)+nbytes])
		if r := length & 7; r != 0 {
			m.buf[len(m.buf)-1] &= byte(bitutil.LowMask64(r))
		}
	} else {
		writeChunks(m.buf[start:], newChunkIter[uint64](data, offset, length), length)
	}
	m.length += length
	return nil
}

// ExtendFromBitmap appends all bits of b.
func (m *MutableBitmap) ExtendFromBitmap(b *Bitmap) error {
	data, offset, length := b.raw()
	return m.ExtendFromSlice(data, offset, length)
}

// CountOnes returns the number of set bits.
func (m *MutableBitmap) CountOnes() int {
	n := 0
	it := newChunkIter[uint64](m.buf, 0, m.length)
	for c := range it.All() {
		n += CountOnes(c)
	}
	return n
}

// Bytes returns the packed bytes. Bits past Len() in the last byte are
// unspecified. The slice is only valid until the next mutation.
func (m *MutableBitmap) Bytes() []byte {
	return m.buf
}

// Freeze converts m into an immutable Bitmap in O(1) by moving its buffer into
// a shared handle. m is left empty, without storage.
func (m *MutableBitmap) Freeze() *Bitmap {
	b := newBitmap(newSharedBuffer(m.buf, m.allocator()), 0, m.length)
	m.buf = nil
	m.length = 0
	return b
}

// Release returns the storage to the allocator and leaves m empty.
func (m *MutableBitmap) Release() {
	m.free(m.buf)
	m.buf = nil
	m.length = 0
}
