package bitmap

import (
	"fmt"
	"sync"

	"github.com/hupe1980/colmask/internal/mmap"
	"github.com/hupe1980/colmask/resource"
)

// Allocator provides the byte buffers backing bitmaps.
//
// Allocate must return a zeroed slice with len and cap equal to size.
// Free receives every slice previously returned by Allocate exactly once,
// resliced from its start (cap is unchanged).
type Allocator interface {
	Allocate(size int) ([]byte, error)
	Free(buf []byte)
}

// HeapAllocator allocates from the Go heap and never fails.
type HeapAllocator struct{}

// Allocate implements Allocator.
func (HeapAllocator) Allocate(size int) ([]byte, error) {
	return make([]byte, size), nil
}

// Free implements Allocator.
func (HeapAllocator) Free([]byte) {}

// DefaultAllocator is used when no allocator option is given.
var DefaultAllocator Allocator = HeapAllocator{}

// BudgetAllocator charges every buffer against a resource.Controller memory
// budget. Allocation fails with resource.ErrMemoryLimitExceeded once the
// budget is exhausted; freed buffers return their capacity to the budget.
type BudgetAllocator struct {
	rc *resource.Controller
}

// NewBudgetAllocator creates an allocator bound to rc.
func NewBudgetAllocator(rc *resource.Controller) *BudgetAllocator {
	return &BudgetAllocator{rc: rc}
}

// Allocate implements Allocator.
func (a *BudgetAllocator) Allocate(size int) ([]byte, error) {
	if err := a.rc.AcquireMemory(int64(size)); err != nil {
		return nil, fmt.Errorf("bitmap: allocate %d bytes with %d of %d in use: %w",
			size, a.rc.MemoryUsage(), a.rc.MemoryLimit(), err)
	}
	return make([]byte, size), nil
}

// Free implements Allocator.
func (a *BudgetAllocator) Free(buf []byte) {
	a.rc.ReleaseMemory(int64(cap(buf)))
}

// OffHeapAllocator serves buffers of at least minSize bytes from anonymous
// memory mappings outside the Go heap, and smaller ones from the heap. Large,
// long-lived bitmaps then add nothing to GC scan work.
type OffHeapAllocator struct {
	minSize int

	mu   sync.Mutex
	maps map[*byte]*mmap.Mapping
}

// NewOffHeapAllocator creates an OffHeapAllocator. minSize <= 0 maps every
// non-empty buffer.
func NewOffHeapAllocator(minSize int) *OffHeapAllocator {
	return &OffHeapAllocator{
		minSize: max(minSize, 1),
		maps:    make(map[*byte]*mmap.Mapping),
	}
}

// Allocate implements Allocator.
func (a *OffHeapAllocator) Allocate(size int) ([]byte, error) {
	if size < a.minSize {
		return make([]byte, size), nil
	}
	m, err := mmap.MapAnon(size)
	if err != nil {
		return nil, fmt.Errorf("bitmap: map %d bytes: %w", size, err)
	}
	data := m.Bytes()

	a.mu.Lock()
	a.maps[&data[0]] = m
	a.mu.Unlock()

	return data, nil
}

// Free implements Allocator.
func (a *OffHeapAllocator) Free(buf []byte) {
	if cap(buf) == 0 {
		return
	}
	key := &buf[:1][0]

	a.mu.Lock()
	m, ok := a.maps[key]
	delete(a.maps, key)
	a.mu.Unlock()

	if ok {
		_ = m.Close()
	}
}

// Mapped returns the number of live mappings.
func (a *OffHeapAllocator) Mapped() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.maps)
}
