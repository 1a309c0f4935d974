package bitmapio

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/colmask/bitmap"
	"github.com/hupe1980/colmask/resource"
)

func TestRoaring_RoundTrip(t *testing.T) {
	src := offsetBitmap(t, randomBitmap(t, 41, 20000, 0.05), 5)

	rb, err := ToRoaring(src)
	require.NoError(t, err)
	assert.Equal(t, uint64(src.CountOnes()), rb.GetCardinality())
	for i := range src.Ones() {
		assert.True(t, rb.Contains(uint32(i)))
	}

	got, err := FromRoaring(rb, src.Len())
	require.NoError(t, err)
	assert.True(t, got.Equal(src))
}

func TestRoaring_Empty(t *testing.T) {
	rb, err := ToRoaring(parseBits(t, "0000000000"))
	require.NoError(t, err)
	assert.True(t, rb.IsEmpty())

	got, err := FromRoaring(rb, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Len())
	assert.Zero(t, got.CountOnes())

	got, err = FromRoaring(roaring.New(), 0)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestFromRoaring_Errors(t *testing.T) {
	_, err := FromRoaring(roaring.BitmapOf(3, 10), 10)
	assert.ErrorIs(t, err, bitmap.ErrOutOfBounds)

	_, err = FromRoaring(roaring.New(), -1)
	assert.ErrorIs(t, err, ErrTooLarge)

	rc := resource.NewController(resource.Config{MemoryLimitBytes: 4})
	_, err = FromRoaring(roaring.BitmapOf(1), 100, WithAllocator(bitmap.NewBudgetAllocator(rc)))
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Zero(t, rc.MemoryUsage())
}
