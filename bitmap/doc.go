// Package bitmap provides packed boolean masks for columnar data: an
// immutable, shareable Bitmap, an append-only MutableBitmap, and chunk-wise
// bitwise combinators.
//
// # Memory Layout
//
// Bits are packed LSB-first: bit i lives in byte i/8 at position i%8.
//
//	index:   7 6 5 4 3 2 1 0   15 14 13 12 11 10 9 8
//	        ┌───────────────┐ ┌─────────────────────┐
//	        │    byte 0     │ │       byte 1        │
//	        └───────────────┘ └─────────────────────┘
//
// A Bitmap is a view {offset, length} over a shared buffer, so slicing never
// copies. Readers of Bytes() must apply the bit offset themselves.
//
// # Ownership
//
//	m := bitmap.NewMutable()
//	_ = m.Push(true)
//	_ = m.Push(false)
//	bm := m.Freeze()       // O(1), buffer moves into a shared handle
//	view := bm.Slice(1, 1) // O(1), shares the buffer
//	view.Release()
//	m2, _ := bm.IntoMut()  // reuses the buffer when bm is the only handle
//
// The buffer of a Bitmap is never written while shared. IntoMut copies unless
// the handle is unique, allocator-owned and starts at bit 0; callers cannot
// observe which path ran.
//
// # Combinators
//
// Unary, Binary, Ternary and Quaternary apply a function to one 8-, 16-, 32-
// or 64-bit chunk of each input at a time:
//
//	maj, err := bitmap.Ternary(a, b, c, func(x, y, z uint64) uint64 {
//	    return x&y | x&z | y&z
//	})
//
// And, Or, Xor, AndNot and Not use 64-bit chunks. Inputs of differing length
// produce a *LengthMismatchError and no output. Bits of the input buffers past
// each bitmap's length never influence a result.
//
// # Allocation
//
// Buffers come from an Allocator. BudgetAllocator charges a
// resource.Controller and fails with resource.ErrMemoryLimitExceeded when the
// budget is exhausted; failed operations leave their receivers unchanged.
package bitmap
