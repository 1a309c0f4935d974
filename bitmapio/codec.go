package bitmapio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/colmask/bitmap"
	"github.com/hupe1980/colmask/internal/bitutil"
)

// Encode writes bm to w in the bitmap file format.
func Encode(w io.Writer, bm *bitmap.Bitmap, opts ...Option) error {
	o := applyOptions(opts)
	start := time.Now()

	h, payload, err := frame(bm, o.encoding)
	n := 0
	if err == nil {
		n, err = writeFrame(w, h, payload)
	}

	o.metrics.RecordEncode(h.encoding, n, time.Since(start), err)
	o.logger.LogEncode(context.Background(), h.encoding, bm.Len(), n, err)
	return err
}

// Marshal returns bm in the bitmap file format.
func Marshal(bm *bitmap.Bitmap, opts ...Option) ([]byte, error) {
	o := applyOptions(opts)
	start := time.Now()

	data, enc, err := marshal(bm, o.encoding)

	o.metrics.RecordEncode(enc, len(data), time.Since(start), err)
	o.logger.LogEncode(context.Background(), enc, bm.Len(), len(data), err)
	return data, err
}

// Decode reads one bitmap from r. The result owns its memory.
func Decode(r io.Reader, opts ...Option) (*bitmap.Bitmap, error) {
	o := applyOptions(opts)
	start := time.Now()

	bm, h, n, err := decodeStream(r, o)

	o.metrics.RecordDecode(h.encoding, n, time.Since(start), err)
	o.logger.LogDecode(context.Background(), h.encoding, bm.Len(), n, err)
	return bm, err
}

// Unmarshal decodes a bitmap from data. The result does not reference data.
func Unmarshal(data []byte, opts ...Option) (*bitmap.Bitmap, error) {
	o := applyOptions(opts)
	start := time.Now()

	bm, h, err := unmarshal(data, o)

	o.metrics.RecordDecode(h.encoding, len(data), time.Since(start), err)
	o.logger.LogDecode(context.Background(), h.encoding, bm.Len(), len(data), err)
	return bm, err
}

// frame builds the header and payload for bm. Compressed encodings that do
// not pay off are replaced by raw.
func frame(bm *bitmap.Bitmap, enc Encoding) (header, []byte, error) {
	var payload []byte
	switch enc {
	case EncodingRaw:
		payload = rawPayload(bm)
	case EncodingLZ4, EncodingZSTD:
		raw := rawPayload(bm)
		out, ok, err := compress(raw, enc)
		if err != nil {
			return header{encoding: enc}, nil, err
		}
		if ok {
			payload = out
		} else {
			enc, payload = EncodingRaw, raw
		}
	case EncodingRoaring:
		rb, err := ToRoaring(bm)
		if err != nil {
			return header{encoding: enc}, nil, err
		}
		if payload, err = rb.ToBytes(); err != nil {
			return header{encoding: enc}, nil, fmt.Errorf("bitmapio: roaring encode: %w", err)
		}
	default:
		return header{encoding: enc}, nil, fmt.Errorf("%w: %d", ErrUnknownEncoding, enc)
	}
	return newHeader(enc, bm.Len(), payload), payload, nil
}

func marshal(bm *bitmap.Bitmap, enc Encoding) ([]byte, Encoding, error) {
	h, payload, err := frame(bm, enc)
	if err != nil {
		return nil, h.encoding, err
	}
	data := h.appendTo(make([]byte, 0, HeaderSize+len(payload)))
	return append(data, payload...), h.encoding, nil
}

func writeFrame(w io.Writer, h header, payload []byte) (int, error) {
	var hb [HeaderSize]byte
	n, err := w.Write(h.appendTo(hb[:0]))
	if err != nil {
		return n, err
	}
	m, err := w.Write(payload)
	return n + m, err
}

// rawPayload returns the bits of bm packed from byte 0 with the trailing bits
// of the last byte cleared. bm's own bytes are returned when they already
// have that form.
func rawPayload(bm *bitmap.Bitmap) []byte {
	data, off, n := bm.Bytes()
	if off == 0 && (n&7 == 0 || data[len(data)-1]>>(n&7) == 0) {
		return data
	}

	out := make([]byte, bitutil.BytesFor(n))
	it := bitmap.ChunksOf[uint64](data, off, n)
	for i := 0; i < len(out); i += 8 {
		c, _ := it.Next()
		bitutil.StoreWord(out, i, c, min(8, len(out)-i))
	}
	return out
}

func decodeStream(r io.Reader, o *options) (*bitmap.Bitmap, header, int, error) {
	var hb [HeaderSize]byte
	if _, err := io.ReadFull(r, hb[:]); err != nil {
		return nil, header{}, 0, truncated(err, "header")
	}
	h, err := parseHeader(hb[:])
	if err != nil {
		return nil, h, HeaderSize, err
	}
	if err := h.check(o.maxLength); err != nil {
		return nil, h, HeaderSize, err
	}

	// Raw payloads are read straight into bitmap storage.
	if h.encoding == EncodingRaw {
		buf, err := allocate(o, int(h.payloadSize))
		if err != nil {
			return nil, h, HeaderSize, err
		}
		if _, err := io.ReadFull(r, buf); err != nil {
			free(o, buf)
			return nil, h, HeaderSize, truncated(err, "payload")
		}
		bm, err := adoptRaw(h, buf, o)
		if err != nil {
			free(o, buf)
		}
		return bm, h, HeaderSize + len(buf), err
	}

	payload := make([]byte, h.payloadSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, h, HeaderSize, truncated(err, "payload")
	}
	bm, err := decodePayload(h, payload, o)
	return bm, h, HeaderSize + len(payload), err
}

func unmarshal(data []byte, o *options) (*bitmap.Bitmap, header, error) {
	h, payload, err := split(data, o)
	if err != nil {
		return nil, h, err
	}
	bm, err := decodePayload(h, payload, o)
	return bm, h, err
}

// split parses and checks the header of a complete in-memory file.
func split(data []byte, o *options) (header, []byte, error) {
	h, err := parseHeader(data)
	if err != nil {
		return h, nil, err
	}
	if err := h.check(o.maxLength); err != nil {
		return h, nil, err
	}
	payload := data[HeaderSize:]
	if uint64(len(payload)) != h.payloadSize {
		return h, nil, fmt.Errorf("%w: %d payload bytes, header says %d", ErrCorrupt, len(payload), h.payloadSize)
	}
	return h, payload, nil
}

// decodePayload decodes into newly allocated storage.
func decodePayload(h header, payload []byte, o *options) (*bitmap.Bitmap, error) {
	if err := verify(h, payload, o); err != nil {
		return nil, err
	}
	length := int(h.length)

	switch h.encoding {
	case EncodingRaw, EncodingLZ4, EncodingZSTD:
		buf, err := allocate(o, bitutil.BytesFor(length))
		if err != nil {
			return nil, err
		}
		if h.encoding == EncodingRaw {
			copy(buf, payload)
		} else if err := decompress(buf, payload, h.encoding); err != nil {
			free(o, buf)
			return nil, err
		}
		if err := checkTrailing(buf, length); err != nil {
			free(o, buf)
			return nil, err
		}
		return bitmap.FromBytes(buf, length, o.bitmapOptions()...)
	case EncodingRoaring:
		rb := roaring.New()
		if err := rb.UnmarshalBinary(payload); err != nil {
			return nil, fmt.Errorf("%w: roaring: %v", ErrCorrupt, err)
		}
		bm, err := FromRoaring(rb, length, nestedOptions(o)...)
		if errors.Is(err, bitmap.ErrOutOfBounds) {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		return bm, err
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownEncoding, h.encoding)
	}
}

// adoptRaw wraps an allocator-owned raw payload without copying.
func adoptRaw(h header, buf []byte, o *options) (*bitmap.Bitmap, error) {
	if err := verify(h, buf, o); err != nil {
		return nil, err
	}
	if err := checkTrailing(buf, int(h.length)); err != nil {
		return nil, err
	}
	return bitmap.FromBytes(buf, int(h.length), o.bitmapOptions()...)
}

// decodeView decodes a payload that lives in memory the caller does not
// own, such as a file mapping. Raw payloads are referenced in place and
// release runs when the last handle is released; otherwise the payload is
// decoded into new storage and release runs before returning.
func decodeView(h header, payload []byte, o *options, release func()) (bm *bitmap.Bitmap, zeroCopy bool, err error) {
	if h.encoding != EncodingRaw {
		bm, err = decodePayload(h, payload, o)
		if release != nil {
			release()
		}
		return bm, false, err
	}

	if err = verify(h, payload, o); err == nil {
		err = checkTrailing(payload, int(h.length))
	}
	if err == nil {
		bm, err = bitmap.FromExternal(payload, 0, int(h.length), release)
	}
	if err != nil {
		if release != nil {
			release()
		}
		return nil, false, err
	}
	return bm, true, nil
}

func verify(h header, payload []byte, o *options) error {
	if !o.verifyChecksum {
		if uint64(len(payload)) != h.payloadSize {
			return fmt.Errorf("%w: payload is %d bytes, header says %d", ErrCorrupt, len(payload), h.payloadSize)
		}
		return nil
	}
	return h.verify(payload)
}

// checkTrailing rejects raw data with bits set past length.
func checkTrailing(data []byte, length int) error {
	if rem := length & 7; rem != 0 && data[len(data)-1]>>rem != 0 {
		return fmt.Errorf("%w: bits set past length %d", ErrCorrupt, length)
	}
	return nil
}

func allocate(o *options, size int) ([]byte, error) {
	if o.alloc == nil {
		return bitmap.DefaultAllocator.Allocate(size)
	}
	return o.alloc.Allocate(size)
}

func free(o *options, buf []byte) {
	if o.alloc == nil {
		bitmap.DefaultAllocator.Free(buf)
		return
	}
	o.alloc.Free(buf)
}

// nestedOptions re-exposes the allocator for nested bitmapio calls.
func nestedOptions(o *options) []Option {
	if o.alloc == nil {
		return nil
	}
	return []Option{WithAllocator(o.alloc)}
}

func truncated(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated %s", ErrCorrupt, what)
	}
	return err
}
