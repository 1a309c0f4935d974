package bitmap

type options struct {
	alloc Allocator
}

// Option configures how bitmaps obtain their buffers.
type Option func(*options)

// WithAllocator sets the allocator for new buffers.
//
// If nil is passed, DefaultAllocator is used.
func WithAllocator(a Allocator) Option {
	return func(o *options) {
		if a == nil {
			a = DefaultAllocator
		}
		o.alloc = a
	}
}

func applyOptions(opts []Option) options {
	o := options{alloc: DefaultAllocator}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
