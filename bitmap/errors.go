package bitmap

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds reports an index or range outside a bitmap's length.
	// Index and range violations are programmer errors and are raised as
	// panics carrying an *IndexError or *RangeError that wraps this value.
	ErrOutOfBounds = errors.New("bitmap: out of bounds")

	// ErrLengthMismatch is returned when combined bitmaps differ in length.
	ErrLengthMismatch = errors.New("bitmap: length mismatch")

	// ErrBufferTooSmall is returned when a byte buffer cannot hold the requested bits.
	ErrBufferTooSmall = errors.New("bitmap: buffer too small")
)

// IndexError describes an index outside [0, Length).
type IndexError struct {
	Index  int
	Length int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("bitmap: index %d out of bounds for length %d", e.Index, e.Length)
}

func (e *IndexError) Unwrap() error { return ErrOutOfBounds }

// RangeError describes a range [Start, Start+Length) exceeding Bound.
type RangeError struct {
	Start  int
	Length int
	Bound  int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("bitmap: range [%d, %d) out of bounds for length %d", e.Start, e.Start+e.Length, e.Bound)
}

func (e *RangeError) Unwrap() error { return ErrOutOfBounds }

// LengthMismatchError lists the lengths of the bitmaps passed to a combinator.
type LengthMismatchError struct {
	Lengths []int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("bitmap: length mismatch: %v", e.Lengths)
}

func (e *LengthMismatchError) Unwrap() error { return ErrLengthMismatch }

func checkIndex(i, n int) {
	if i < 0 || i >= n {
		panic(&IndexError{Index: i, Length: n})
	}
}

func checkRange(start, length, bound int) {
	if start < 0 || length < 0 || start > bound-length {
		panic(&RangeError{Start: start, Length: length, Bound: bound})
	}
}
