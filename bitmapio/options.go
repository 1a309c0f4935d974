package bitmapio

import (
	"github.com/hupe1980/colmask/bitmap"
	"github.com/hupe1980/colmask/resource"
)

type options struct {
	encoding       Encoding
	alloc          bitmap.Allocator
	logger         *Logger
	metrics        MetricsCollector
	rc             *resource.Controller
	verifyChecksum bool
	maxLength      uint64
}

// Option configures encoding and decoding.
type Option func(*options)

// WithEncoding selects the payload encoding for writes. Compressed encodings
// fall back to raw when they save less than 10%. Default: EncodingRaw.
func WithEncoding(e Encoding) Option {
	return func(o *options) {
		o.encoding = e
	}
}

// WithAllocator sets the allocator for decoded bitmaps.
func WithAllocator(a bitmap.Allocator) Option {
	return func(o *options) {
		o.alloc = a
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithResourceController throttles file and blob IO through rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithChecksumVerification toggles CRC32C verification on reads.
// Default: enabled.
func WithChecksumVerification(enabled bool) Option {
	return func(o *options) {
		o.verifyChecksum = enabled
	}
}

// WithMaxLength limits the bit length accepted by readers.
// Default: DefaultMaxLength.
func WithMaxLength(bits uint64) Option {
	return func(o *options) {
		o.maxLength = bits
	}
}

func applyOptions(opts []Option) *options {
	o := &options{
		encoding:       EncodingRaw,
		logger:         NoopLogger(),
		metrics:        NoopMetricsCollector{},
		verifyChecksum: true,
		maxLength:      DefaultMaxLength,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) bitmapOptions() []bitmap.Option {
	if o.alloc == nil {
		return nil
	}
	return []bitmap.Option{bitmap.WithAllocator(o.alloc)}
}
