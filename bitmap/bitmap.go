package bitmap

import (
	"fmt"
	"iter"
	"math/bits"
	"strings"

	"github.com/hupe1980/colmask/internal/bitutil"
)

// maxStringBits limits how many bits String renders.
const maxStringBits = 256

// Bitmap is an immutable sequence of packed bits over a reference-counted
// buffer that may be shared with other Bitmaps.
//
// Each *Bitmap is one handle. Clone and Slice create new handles over the same
// buffer in O(1); Release drops a handle, and the buffer is returned to its
// allocator when the last handle is released. Handles may be read from many
// goroutines at once, but a handle must not be released or converted with
// IntoMut while it is still in use elsewhere.
//
// The zero value is an empty bitmap.
type Bitmap struct {
	buf    *sharedBuffer
	offset int
	length int
}

func newBitmap(buf *sharedBuffer, offset, length int) *Bitmap {
	return &Bitmap{buf: buf, offset: offset, length: length}
}

// FromBytes wraps data as a Bitmap of length bits, taking ownership of data.
// If an allocator option is given, data must have come from it and is
// returned to it on release.
func FromBytes(data []byte, length int, opts ...Option) (*Bitmap, error) {
	if length < 0 || bitutil.BytesFor(length) > len(data) {
		return nil, fmt.Errorf("%w: %d bytes for %d bits", ErrBufferTooSmall, len(data), length)
	}
	o := applyOptions(opts)
	return newBitmap(newSharedBuffer(data, o.alloc), 0, length), nil
}

// FromExternal wraps memory the bitmap does not own, such as a file mapping.
// release, if not nil, runs once when the last handle is released. IntoMut on
// such a bitmap always copies.
func FromExternal(data []byte, offset, length int, release func()) (*Bitmap, error) {
	if offset < 0 || length < 0 || offset > len(data)*8-length {
		return nil, fmt.Errorf("%w: %d bytes for %d bits at offset %d", ErrBufferTooSmall, len(data), length, offset)
	}
	return newBitmap(newExternalBuffer(data, release), offset, length), nil
}

// FromBools packs values into a new Bitmap.
func FromBools(values []bool, opts ...Option) (*Bitmap, error) {
	o := applyOptions(opts)
	data, err := o.alloc.Allocate(bitutil.BytesFor(len(values)))
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		if v {
			data[i>>3] |= 1 << (uint(i) & 7)
		}
	}
	return newBitmap(newSharedBuffer(data, o.alloc), 0, len(values)), nil
}

// NewConstant returns a Bitmap of length bits all equal to v.
func NewConstant(length int, v bool, opts ...Option) (*Bitmap, error) {
	m := NewMutable(opts...)
	if err := m.ExtendConstant(length, v); err != nil {
		return nil, err
	}
	return m.Freeze(), nil
}

// raw returns the whole backing buffer with the bitmap's offset and length.
func (b *Bitmap) raw() ([]byte, int, int) {
	if b == nil || b.buf == nil {
		return nil, 0, 0
	}
	return b.buf.data, b.offset, b.length
}

// Len returns the number of bits.
func (b *Bitmap) Len() int {
	if b == nil {
		return 0
	}
	return b.length
}

// IsEmpty reports whether the bitmap holds no bits.
func (b *Bitmap) IsEmpty() bool {
	return b.Len() == 0
}

// Get returns bit i. It panics with an *IndexError if i is out of range.
func (b *Bitmap) Get(i int) bool {
	checkIndex(i, b.Len())
	return bitutil.GetBit(b.buf.data, b.offset+i)
}

// Slice returns a new handle over bits [start, start+length) sharing the same
// buffer. It panics with a *RangeError if the range exceeds Len().
func (b *Bitmap) Slice(start, length int) *Bitmap {
	checkRange(start, length, b.Len())
	if b.buf == nil {
		return &Bitmap{}
	}
	b.buf.retain()
	return newBitmap(b.buf, b.offset+start, length)
}

// Clone returns a new handle over the same bits and buffer.
func (b *Bitmap) Clone() *Bitmap {
	return b.Slice(0, b.Len())
}

// Release drops this handle. The buffer is freed when no handle references
// it. Releasing twice is a no-op; a released handle is empty.
func (b *Bitmap) Release() {
	if b == nil || b.buf == nil {
		return
	}
	buf := b.buf
	b.buf = nil
	b.offset = 0
	b.length = 0
	buf.drop()
}

// IntoMut converts b back into a MutableBitmap and consumes the handle.
//
// If b is the only handle on an allocator-owned buffer and starts at bit 0,
// the buffer is reused without copying. Otherwise the bits are copied into a
// new buffer and b is released. On allocation failure b is left unchanged.
func (b *Bitmap) IntoMut() (*MutableBitmap, error) {
	if b == nil || b.buf == nil {
		return NewMutable(), nil
	}
	if b.offset == 0 {
		if data, ok := b.buf.reclaim(); ok {
			m := &MutableBitmap{
				buf:    data[:bitutil.BytesFor(b.length)],
				length: b.length,
				alloc:  b.buf.alloc,
			}
			b.buf = nil
			b.length = 0
			return m, nil
		}
	}

	alloc := b.buf.alloc
	if alloc == nil {
		alloc = DefaultAllocator
	}
	m, err := NewMutableWithCapacity(b.length, WithAllocator(alloc))
	if err != nil {
		return nil, err
	}
	if err := m.ExtendFromBitmap(b); err != nil {
		m.Release()
		return nil, err
	}
	b.Release()
	return m, nil
}

// Equal reports whether b and other have the same length and bits. Offsets
// and buffer identity are ignored.
func (b *Bitmap) Equal(other *Bitmap) bool {
	if b.Len() != other.Len() {
		return false
	}
	x, y := Chunks[uint64](b), Chunks[uint64](other)
	for {
		cx, ok := x.Next()
		if !ok {
			return true
		}
		cy, _ := y.Next()
		if cx != cy {
			return false
		}
	}
}

// CountOnes returns the number of set bits.
func (b *Bitmap) CountOnes() int {
	n := 0
	for c := range Chunks[uint64](b).All() {
		n += bits.OnesCount64(c)
	}
	return n
}

// UnsetBits returns the number of cleared bits, the null count of a validity mask.
func (b *Bitmap) UnsetBits() int {
	return b.Len() - b.CountOnes()
}

// Bytes exposes the packed buffer for serializers. data starts at the byte
// holding the first bit, bitOffset (0–7) locates that bit within it, and length
// is the bit count. Bits outside the range are unspecified. data must not be
// modified.
func (b *Bitmap) Bytes() (data []byte, bitOffset, length int) {
	buf, offset, n := b.raw()
	if buf == nil {
		return nil, 0, 0
	}
	return buf[offset>>3 : bitutil.BytesFor(offset+n)], offset & 7, n
}

// Values yields every bit in order.
func (b *Bitmap) Values() iter.Seq[bool] {
	return func(yield func(bool) bool) {
		for _, v := range b.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// All yields index/bit pairs in order.
func (b *Bitmap) All() iter.Seq2[int, bool] {
	return func(yield func(int, bool) bool) {
		data, offset, n := b.raw()
		for i := 0; i < n; i++ {
			if !yield(i, bitutil.GetBit(data, offset+i)) {
				return
			}
		}
	}
}

// Ones yields the indices of set bits in ascending order.
func (b *Bitmap) Ones() iter.Seq[int] {
	return func(yield func(int) bool) {
		base := 0
		for c := range Chunks[uint64](b).All() {
			for c != 0 {
				if !yield(base + bits.TrailingZeros64(c)) {
					return
				}
				c &= c - 1
			}
			base += 64
		}
	}
}

// String renders the bits as 0/1 characters, index 0 first.
func (b *Bitmap) String() string {
	n := b.Len()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Bitmap{len=%d, ", n)
	for i, v := range b.All() {
		if i == maxStringBits {
			sb.WriteString("...")
			break
		}
		if v {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	sb.WriteByte('}')
	return sb.String()
}
