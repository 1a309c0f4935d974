package mmap

import "os"

// Region is a view of part of a Mapping, such as the payload after a file
// header. The parent Mapping owns the memory.
type Region struct {
	parent *Mapping
	offset int
	size   int
}

// Region returns a view of size bytes starting at offset.
func (m *Mapping) Region(offset, size int) (*Region, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if offset < 0 || size < 0 || offset > m.size-size {
		return nil, ErrOutOfBounds
	}
	return &Region{parent: m, offset: offset, size: size}, nil
}

// Bytes returns the region's bytes, or nil once the parent is closed.
func (r *Region) Bytes() []byte {
	if r.parent.closed.Load() {
		return nil
	}
	return r.parent.data[r.offset : r.offset+r.size]
}

// Size returns the region length in bytes.
func (r *Region) Size() int {
	return r.size
}

// Advise hints the kernel about access to this region. The hint covers the
// whole pages the region touches.
func (r *Region) Advise(pattern AccessPattern) error {
	if r.parent.closed.Load() {
		return ErrClosed
	}
	if r.size == 0 {
		return nil
	}
	return osAdvise(r.pages(), pattern)
}

// pages extends the region down to the page boundary at or below its start.
// Mappings are page aligned, so the result is a valid madvise range.
func (r *Region) pages() []byte {
	start := r.offset &^ (os.Getpagesize() - 1)
	return r.parent.data[start : r.offset+r.size]
}
