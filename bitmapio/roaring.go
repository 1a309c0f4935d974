package bitmapio

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/colmask/bitmap"
)

// maxRoaringLength is the largest bit length roaring positions can address.
const maxRoaringLength = 1 << 32

// roaringBatch is the number of positions buffered per AddMany call.
const roaringBatch = 4096

// ToRoaring returns the positions of the set bits of bm as a roaring bitmap.
// It fails with ErrTooLarge if bm is longer than 2^32 bits.
func ToRoaring(bm *bitmap.Bitmap) (*roaring.Bitmap, error) {
	if uint64(bm.Len()) > maxRoaringLength {
		return nil, fmt.Errorf("%w: %d bits exceeds roaring range", ErrTooLarge, bm.Len())
	}

	rb := roaring.New()
	batch := make([]uint32, 0, roaringBatch)
	for i := range bm.Ones() {
		batch = append(batch, uint32(i))
		if len(batch) == cap(batch) {
			rb.AddMany(batch)
			batch = batch[:0]
		}
	}
	rb.AddMany(batch)
	rb.RunOptimize()

	return rb, nil
}

// FromRoaring builds a Bitmap of length bits with the positions in rb set.
// Positions at or beyond length fail with bitmap.ErrOutOfBounds.
func FromRoaring(rb *roaring.Bitmap, length int, opts ...Option) (*bitmap.Bitmap, error) {
	o := applyOptions(opts)

	if length < 0 || uint64(length) > maxRoaringLength {
		return nil, fmt.Errorf("%w: %d bits exceeds roaring range", ErrTooLarge, length)
	}
	if !rb.IsEmpty() && uint64(rb.Maximum()) >= uint64(length) {
		return nil, fmt.Errorf("%w: position %d for length %d", bitmap.ErrOutOfBounds, rb.Maximum(), length)
	}

	m, err := bitmap.NewMutableWithCapacity(length, o.bitmapOptions()...)
	if err != nil {
		return nil, err
	}
	if err := m.ExtendConstant(length, false); err != nil {
		m.Release()
		return nil, err
	}

	it := rb.Iterator()
	for it.HasNext() {
		m.Set(int(it.Next()), true)
	}

	return m.Freeze(), nil
}
