package bitmap

import "sync/atomic"

// sharedBuffer is the reference-counted storage behind Bitmap handles.
// Its bytes are never written once shared.
type sharedBuffer struct {
	data []byte
	refs atomic.Int64

	// alloc owns data; nil for external memory.
	alloc Allocator
	// release runs once when external memory is no longer referenced.
	release func()
}

func newSharedBuffer(data []byte, alloc Allocator) *sharedBuffer {
	s := &sharedBuffer{data: data, alloc: alloc}
	s.refs.Store(1)
	return s
}

func newExternalBuffer(data []byte, release func()) *sharedBuffer {
	s := &sharedBuffer{data: data, release: release}
	s.refs.Store(1)
	return s
}

func (s *sharedBuffer) retain() {
	s.refs.Add(1)
}

func (s *sharedBuffer) drop() {
	if s.refs.Add(-1) != 0 {
		return
	}
	data := s.data
	s.data = nil
	if s.alloc != nil {
		s.alloc.Free(data)
	}
	if s.release != nil {
		s.release()
	}
}

// reclaim takes the bytes back out of the buffer if the caller holds the only
// reference and the memory is allocator-owned.
func (s *sharedBuffer) reclaim() ([]byte, bool) {
	if s.alloc == nil {
		return nil, false
	}
	if !s.refs.CompareAndSwap(1, 0) {
		return nil, false
	}
	data := s.data
	s.data = nil
	return data, true
}
