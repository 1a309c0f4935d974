package bitmapio

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives bitmap IO measurements.
// Implement it to forward to a monitoring system.
type MetricsCollector interface {
	// RecordEncode is called after each encode. size is the encoded size in
	// bytes, enc the encoding actually written.
	RecordEncode(enc Encoding, size int, duration time.Duration, err error)

	// RecordDecode is called after each decode.
	RecordDecode(enc Encoding, size int, duration time.Duration, err error)

	// RecordOpen is called after a file or blob is opened. zeroCopy reports
	// whether the bitmap references the mapped bytes directly.
	RecordOpen(zeroCopy bool, duration time.Duration, err error)
}

// NoopMetricsCollector discards all measurements.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordEncode(Encoding, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordDecode(Encoding, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordOpen(bool, time.Duration, error)            {}

// BasicMetricsCollector keeps in-memory counters.
type BasicMetricsCollector struct {
	EncodeCount      atomic.Int64
	EncodeErrors     atomic.Int64
	EncodeBytes      atomic.Int64
	EncodeTotalNanos atomic.Int64
	DecodeCount      atomic.Int64
	DecodeErrors     atomic.Int64
	DecodeBytes      atomic.Int64
	DecodeTotalNanos atomic.Int64
	OpenCount        atomic.Int64
	OpenErrors       atomic.Int64
	ZeroCopyOpens    atomic.Int64
}

// RecordEncode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEncode(_ Encoding, size int, duration time.Duration, err error) {
	b.EncodeCount.Add(1)
	b.EncodeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.EncodeErrors.Add(1)
		return
	}
	b.EncodeBytes.Add(int64(size))
}

// RecordDecode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDecode(_ Encoding, size int, duration time.Duration, err error) {
	b.DecodeCount.Add(1)
	b.DecodeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.DecodeErrors.Add(1)
		return
	}
	b.DecodeBytes.Add(int64(size))
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(zeroCopy bool, _ time.Duration, err error) {
	b.OpenCount.Add(1)
	if err != nil {
		b.OpenErrors.Add(1)
		return
	}
	if zeroCopy {
		b.ZeroCopyOpens.Add(1)
	}
}

// GetStats returns a snapshot of the counters.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		EncodeCount:    b.EncodeCount.Load(),
		EncodeErrors:   b.EncodeErrors.Load(),
		EncodeBytes:    b.EncodeBytes.Load(),
		EncodeAvgNanos: avg(b.EncodeTotalNanos.Load(), b.EncodeCount.Load()),
		DecodeCount:    b.DecodeCount.Load(),
		DecodeErrors:   b.DecodeErrors.Load(),
		DecodeBytes:    b.DecodeBytes.Load(),
		DecodeAvgNanos: avg(b.DecodeTotalNanos.Load(), b.DecodeCount.Load()),
		OpenCount:      b.OpenCount.Load(),
		OpenErrors:     b.OpenErrors.Load(),
		ZeroCopyOpens:  b.ZeroCopyOpens.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector.
type BasicMetricsStats struct {
	EncodeCount    int64
	EncodeErrors   int64
	EncodeBytes    int64
	EncodeAvgNanos int64
	DecodeCount    int64
	DecodeErrors   int64
	DecodeBytes    int64
	DecodeAvgNanos int64
	OpenCount      int64
	OpenErrors     int64
	ZeroCopyOpens  int64
}
