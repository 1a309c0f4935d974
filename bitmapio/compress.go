package bitmapio

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// minCompressionGain is the ratio a compressed payload must stay under to be
// kept; otherwise the raw payload is stored.
const minCompressionGain = 0.9

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// compress returns the compressed form of raw, or ok=false when the
// compression does not pay off.
func compress(raw []byte, enc Encoding) (out []byte, ok bool, err error) {
	if len(raw) == 0 {
		return nil, false, nil
	}

	switch enc {
	case EncodingLZ4:
		out = make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, out, nil)
		if err != nil {
			return nil, false, fmt.Errorf("bitmapio: lz4 compress: %w", err)
		}
		// n == 0 means incompressible.
		out = out[:n]
	case EncodingZSTD:
		e := getZstdEncoder()
		out = e.EncodeAll(raw, nil)
		putZstdEncoder(e)
	default:
		return nil, false, nil
	}

	if len(out) == 0 || float64(len(out)) > float64(len(raw))*minCompressionGain {
		return nil, false, nil
	}
	return out, true, nil
}

// decompress expands payload into dst, which must have exactly the raw size.
func decompress(dst, payload []byte, enc Encoding) error {
	switch enc {
	case EncodingLZ4:
		n, err := lz4.UncompressBlock(payload, dst)
		if err != nil {
			return fmt.Errorf("%w: lz4: %v", ErrCorrupt, err)
		}
		if n != len(dst) {
			return fmt.Errorf("%w: lz4 block expands to %d bytes, want %d", ErrCorrupt, n, len(dst))
		}
	case EncodingZSTD:
		d := getZstdDecoder()
		defer putZstdDecoder(d)

		out, err := d.DecodeAll(payload, dst[:0])
		if err != nil {
			return fmt.Errorf("%w: zstd: %v", ErrCorrupt, err)
		}
		if len(out) != len(dst) {
			return fmt.Errorf("%w: zstd frame expands to %d bytes, want %d", ErrCorrupt, len(out), len(dst))
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownEncoding, enc)
	}
	return nil
}
