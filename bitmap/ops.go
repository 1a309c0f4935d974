package bitmap

// Combinators apply a chunk function across equal-length bitmaps and assemble
// a fresh Bitmap. The function also sees the zero padding of the final chunk;
// whatever it produces there is discarded.

// Unary applies op to every chunk of a.
func Unary[T Chunk](a *Bitmap, op func(T) T, opts ...Option) (*Bitmap, error) {
	it := &unaryIter[T]{a: Chunks[T](a), op: op}
	return FromChunks[T](it, a.Len(), opts...)
}

// Binary applies op to the chunks of a and b in lockstep.
func Binary[T Chunk](a, b *Bitmap, op func(T, T) T, opts ...Option) (*Bitmap, error) {
	if err := checkLengths(a, b); err != nil {
		return nil, err
	}
	it := &binaryIter[T]{a: Chunks[T](a), b: Chunks[T](b), op: op}
	return FromChunks[T](it, a.Len(), opts...)
}

// Ternary applies op to the chunks of a, b and c in lockstep.
func Ternary[T Chunk](a, b, c *Bitmap, op func(T, T, T) T, opts ...Option) (*Bitmap, error) {
	if err := checkLengths(a, b, c); err != nil {
		return nil, err
	}
	it := &ternaryIter[T]{a: Chunks[T](a), b: Chunks[T](b), c: Chunks[T](c), op: op}
	return FromChunks[T](it, a.Len(), opts...)
}

// Quaternary applies op to the chunks of a, b, c and d in lockstep.
func Quaternary[T Chunk](a, b, c, d *Bitmap, op func(T, T, T, T) T, opts ...Option) (*Bitmap, error) {
	if err := checkLengths(a, b, c, d); err != nil {
		return nil, err
	}
	it := &quaternaryIter[T]{a: Chunks[T](a), b: Chunks[T](b), c: Chunks[T](c), d: Chunks[T](d), op: op}
	return FromChunks[T](it, a.Len(), opts...)
}

// And returns a AND b.
func And(a, b *Bitmap, opts ...Option) (*Bitmap, error) {
	return Binary(a, b, and64, opts...)
}

// Or returns a OR b.
func Or(a, b *Bitmap, opts ...Option) (*Bitmap, error) {
	return Binary(a, b, or64, opts...)
}

// Xor returns a XOR b.
func Xor(a, b *Bitmap, opts ...Option) (*Bitmap, error) {
	return Binary(a, b, xor64, opts...)
}

// AndNot returns a AND NOT b.
func AndNot(a, b *Bitmap, opts ...Option) (*Bitmap, error) {
	return Binary(a, b, andNot64, opts...)
}

// Not returns the bitwise complement of a.
func Not(a *Bitmap, opts ...Option) (*Bitmap, error) {
	return Unary(a, not64, opts...)
}

func and64(x, y uint64) uint64    { return x & y }
func or64(x, y uint64) uint64     { return x | y }
func xor64(x, y uint64) uint64    { return x ^ y }
func andNot64(x, y uint64) uint64 { return x &^ y }
func not64(x uint64) uint64       { return ^x }

func checkLengths(bms ...*Bitmap) error {
	n := bms[0].Len()
	for _, b := range bms[1:] {
		if b.Len() != n {
			lengths := make([]int, len(bms))
			for i, x := range bms {
				lengths[i] = x.Len()
			}
			return &LengthMismatchError{Lengths: lengths}
		}
	}
	return nil
}

type unaryIter[T Chunk] struct {
	a  *ChunkIter[T]
	op func(T) T
}

func (it *unaryIter[T]) Len() int { return it.a.Len() }

func (it *unaryIter[T]) Next() (T, bool) {
	x, ok := it.a.Next()
	if !ok {
		return 0, false
	}
	return it.op(x), true
}

type binaryIter[T Chunk] struct {
	a, b *ChunkIter[T]
	op   func(T, T) T
}

func (it *binaryIter[T]) Len() int { return it.a.Len() }

func (it *binaryIter[T]) Next() (T, bool) {
	x, ok := it.a.Next()
	if !ok {
		return 0, false
	}
	y, _ := it.b.Next()
	return it.op(x, y), true
}

type ternaryIter[T Chunk] struct {
	a, b, c *ChunkIter[T]
	op      func(T, T, T) T
}

func (it *ternaryIter[T]) Len() int { return it.a.Len() }

func (it *ternaryIter[T]) Next() (T, bool) {
	x, ok := it.a.Next()
	if !ok {
		return 0, false
	}
	y, _ := it.b.Next()
	z, _ := it.c.Next()
	return it.op(x, y, z), true
}

type quaternaryIter[T Chunk] struct {
	a, b, c, d *ChunkIter[T]
	op         func(T, T, T, T) T
}

func (it *quaternaryIter[T]) Len() int { return it.a.Len() }

func (it *quaternaryIter[T]) Next() (T, bool) {
	x, ok := it.a.Next()
	if !ok {
		return 0, false
	}
	y, _ := it.b.Next()
	z, _ := it.c.Next()
	w, _ := it.d.Next()
	return it.op(x, y, z, w), true
}
