// Package mmap maps bitmap files and anonymous memory for zero-copy access.
//
// # Usage
//
//	m, err := mmap.Open("nulls.cmsk")
//	if err != nil { ... }
//	defer m.Close()
//
//	// Payload after a fixed-size header
//	payload, _ := m.Region(headerSize, m.Size()-headerSize)
//	payload.Advise(mmap.AccessRandom)
//
// MapAnon returns writable anonymous memory outside the Go heap; the
// off-heap bitmap allocator is built on it.
//
// # Platform Support
//
//   - Unix: mmap(2) and madvise(2)
//   - Windows: CreateFileMapping/MapViewOfFile and VirtualAlloc (Advise is a no-op)
//
// # Thread Safety
//
// Mapping and Region are safe for concurrent reads. Close is idempotent, but
// callers must not touch slices from Bytes after Close returns.
package mmap
