package bitmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/colmask/resource"
)

func newBudget(t *testing.T, limit int64) (*resource.Controller, Option) {
	t.Helper()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: limit})
	return rc, WithAllocator(NewBudgetAllocator(rc))
}

func TestBudgetAllocator_PushFailureLeavesBitmapUnchanged(t *testing.T) {
	rc, opt := newBudget(t, 16)
	m := NewMutable(opt)

	for i := 0; i < 64; i++ {
		require.NoError(t, m.Push(i%3 == 0))
	}
	assert.Equal(t, int64(8), rc.MemoryUsage())

	err := m.Push(true)
	require.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Equal(t, 64, m.Len())
	assert.Equal(t, int64(8), rc.MemoryUsage())
	for i := 0; i < 64; i++ {
		assert.Equal(t, i%3 == 0, m.Get(i))
	}

	err = m.ExtendConstant(100, true)
	require.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Equal(t, 64, m.Len())

	b := m.Freeze()
	assert.Equal(t, int64(8), rc.MemoryUsage())
	b.Release()
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestBudgetAllocator_SharedBufferFreedOnce(t *testing.T) {
	rc, opt := newBudget(t, 64)
	b, err := NewConstant(100, true, opt)
	require.NoError(t, err)
	assert.Equal(t, int64(13), rc.MemoryUsage())

	c := b.Clone()
	s := b.Slice(10, 20)
	b.Release()
	c.Release()
	assert.Equal(t, int64(13), rc.MemoryUsage())
	assert.Equal(t, 20, s.CountOnes())
	s.Release()
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestBudgetAllocator_IntoMutCopyFailure(t *testing.T) {
	rc, opt := newBudget(t, 12)
	m := NewMutable(opt)
	require.NoError(t, m.ExtendConstant(64, true))
	b := m.Freeze()
	shared := b.Clone()

	_, err := shared.IntoMut()
	require.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Equal(t, 64, shared.Len())
	assert.Equal(t, 64, shared.CountOnes())
	assert.Equal(t, int64(8), rc.MemoryUsage())

	shared.Release()
	mm, err := b.IntoMut()
	require.NoError(t, err)
	assert.Equal(t, int64(8), rc.MemoryUsage())
	mm.Release()
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestBudgetAllocator_CombinatorFailure(t *testing.T) {
	rc, opt := newBudget(t, 12)
	a, err := NewConstant(64, true, opt)
	require.NoError(t, err)

	out, err := And(a, a, opt)
	assert.Nil(t, out)
	require.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Contains(t, err.Error(), "allocate 8 bytes with 8 of 12 in use")
	assert.Equal(t, int64(8), rc.MemoryUsage())

	// Results default to the heap allocator.
	out, err = Not(a)
	require.NoError(t, err)
	assert.Zero(t, out.CountOnes())
	assert.Equal(t, int64(8), rc.MemoryUsage())
}

func TestHeapAllocator(t *testing.T) {
	buf, err := HeapAllocator{}.Allocate(5)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0}, buf)
	HeapAllocator{}.Free(buf)
}

func TestOffHeapAllocator(t *testing.T) {
	alloc := NewOffHeapAllocator(64)
	opt := WithAllocator(alloc)

	small, err := NewConstant(100, true, opt)
	require.NoError(t, err)
	assert.Equal(t, 0, alloc.Mapped())

	rng := newRNG(13)
	va, vb := randomBools(rng, 5000), randomBools(rng, 5000)
	a, err := FromBools(va, opt)
	require.NoError(t, err)
	b, err := FromBools(vb, opt)
	require.NoError(t, err)
	assert.Equal(t, 2, alloc.Mapped())

	x, err := Xor(a, b, opt)
	require.NoError(t, err)
	assert.Equal(t, 3, alloc.Mapped())
	for i := range va {
		require.Equal(t, va[i] != vb[i], x.Get(i))
	}

	m, err := x.IntoMut()
	require.NoError(t, err)
	require.NoError(t, m.ExtendConstant(64*1024, false))
	assert.Equal(t, 3, alloc.Mapped())
	assert.Equal(t, 5000+64*1024, m.Len())

	m.Release()
	a.Release()
	b.Release()
	small.Release()
	assert.Equal(t, 0, alloc.Mapped())
}

func TestOffHeapAllocator_ExtendFromOwnBytes(t *testing.T) {
	alloc := NewOffHeapAllocator(1)
	m := NewMutable(WithAllocator(alloc))
	for i := 0; i < 64; i++ {
		require.NoError(t, m.Push(i%3 == 0))
	}
	require.Equal(t, 8, cap(m.Bytes()))

	// Both extends outgrow the buffer they read from.
	require.NoError(t, m.ExtendFromSlice(m.Bytes(), 0, 64))
	require.NoError(t, m.ExtendFromSlice(m.Bytes(), 5, 100))
	assert.Equal(t, 1, alloc.Mapped())

	require.Equal(t, 228, m.Len())
	for i := 0; i < 128; i++ {
		assert.Equal(t, i%64%3 == 0, m.Get(i), "bit %d", i)
	}
	for i := 0; i < 100; i++ {
		assert.Equal(t, (5+i)%64%3 == 0, m.Get(128+i), "bit %d", 128+i)
	}

	m.Release()
	assert.Zero(t, alloc.Mapped())
}
