package bitmapio

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/colmask/internal/hash"
)

// Header layout, little-endian:
//
//	[0:4]   magic "CMSK"
//	[4]     version
//	[5]     encoding
//	[6:8]   reserved
//	[8:16]  length in bits
//	[16:24] payload size in bytes
//	[24:28] CRC32C of the payload
//	[28:32] reserved
const (
	HeaderSize = 32

	// Version is the current format version.
	Version uint8 = 1
)

var magic = [4]byte{'C', 'M', 'S', 'K'}

// DefaultMaxLength bounds the bit length accepted by the decoder (8 GiB raw).
const DefaultMaxLength = 1 << 36

var (
	// ErrCorrupt is returned when the data is not a valid bitmap file.
	ErrCorrupt = errors.New("bitmapio: corrupt data")
	// ErrUnsupportedVersion is returned for files written by a newer format.
	ErrUnsupportedVersion = errors.New("bitmapio: unsupported version")
	// ErrUnknownEncoding is returned for an unrecognized payload encoding.
	ErrUnknownEncoding = errors.New("bitmapio: unknown encoding")
	// ErrTooLarge is returned when a bitmap exceeds a size limit.
	ErrTooLarge = errors.New("bitmapio: bitmap too large")
)

// Encoding selects the payload representation.
type Encoding uint8

const (
	// EncodingRaw stores the packed bits, LSB-first, trailing bits zero.
	EncodingRaw Encoding = 0
	// EncodingLZ4 stores the raw payload as one LZ4 block.
	EncodingLZ4 Encoding = 1
	// EncodingZSTD stores the raw payload as one ZSTD frame.
	EncodingZSTD Encoding = 2
	// EncodingRoaring stores the set-bit positions as a roaring bitmap.
	// Lengths are limited to 2^32 bits.
	EncodingRoaring Encoding = 3
)

func (e Encoding) String() string {
	switch e {
	case EncodingRaw:
		return "raw"
	case EncodingLZ4:
		return "lz4"
	case EncodingZSTD:
		return "zstd"
	case EncodingRoaring:
		return "roaring"
	default:
		return fmt.Sprintf("encoding(%d)", uint8(e))
	}
}

func (e Encoding) valid() bool {
	return e <= EncodingRoaring
}

type header struct {
	version     uint8
	encoding    Encoding
	length      uint64
	payloadSize uint64
	checksum    uint32
}

func newHeader(enc Encoding, length int, payload []byte) header {
	return header{
		version:     Version,
		encoding:    enc,
		length:      uint64(length),
		payloadSize: uint64(len(payload)),
		checksum:    hash.CRC32C(payload),
	}
}

func (h header) appendTo(dst []byte) []byte {
	dst = append(dst, magic[:]...)
	dst = append(dst, h.version, byte(h.encoding), 0, 0)
	dst = binary.LittleEndian.AppendUint64(dst, h.length)
	dst = binary.LittleEndian.AppendUint64(dst, h.payloadSize)
	dst = binary.LittleEndian.AppendUint32(dst, h.checksum)
	return binary.LittleEndian.AppendUint32(dst, 0)
}

func parseHeader(b []byte) (header, error) {
	if len(b) < HeaderSize {
		return header{}, fmt.Errorf("%w: %d bytes, header needs %d", ErrCorrupt, len(b), HeaderSize)
	}
	if [4]byte(b[0:4]) != magic {
		return header{}, fmt.Errorf("%w: bad magic %q", ErrCorrupt, b[0:4])
	}
	h := header{
		version:     b[4],
		encoding:    Encoding(b[5]),
		length:      binary.LittleEndian.Uint64(b[8:]),
		payloadSize: binary.LittleEndian.Uint64(b[16:]),
		checksum:    binary.LittleEndian.Uint32(b[24:]),
	}
	if h.version == 0 || h.version > Version {
		return header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.version)
	}
	if !h.encoding.valid() {
		return header{}, fmt.Errorf("%w: %d", ErrUnknownEncoding, b[5])
	}
	return h, nil
}

// check validates the header against the decoder limits.
func (h header) check(maxLength uint64) error {
	if h.length > maxLength {
		return fmt.Errorf("%w: %d bits exceeds limit %d", ErrTooLarge, h.length, maxLength)
	}
	rawSize := (h.length + 7) / 8
	switch h.encoding {
	case EncodingRaw:
		if h.payloadSize != rawSize {
			return fmt.Errorf("%w: raw payload of %d bytes for %d bits", ErrCorrupt, h.payloadSize, h.length)
		}
	case EncodingRoaring:
		if h.length > maxRoaringLength {
			return fmt.Errorf("%w: roaring payload for %d bits", ErrCorrupt, h.length)
		}
	}
	if limit := maxPayloadSize(h.encoding, h.length); h.payloadSize > limit {
		return fmt.Errorf("%w: %s payload of %d bytes for %d bits, limit %d", ErrCorrupt, h.encoding, h.payloadSize, h.length, limit)
	}
	return nil
}

// Roaring serialization bounds: an 8-byte cookie, then per 2^16-bit container
// a key/cardinality pair, an offset, a run flag bit and at most 8 KiB of data.
const (
	roaringHeaderBytes    = 16
	roaringContainerBits  = 1 << 16
	roaringContainerBytes = 8 + 1 + 8192
)

// maxPayloadSize bounds the stored payload of a bitmap of length bits.
// Compressed payloads are only kept when smaller than raw; roaring never
// falls back, and a sparse container costs two bytes per set bit.
func maxPayloadSize(enc Encoding, length uint64) uint64 {
	raw := (length + 7) / 8
	if enc == EncodingRoaring {
		containers := (length + roaringContainerBits - 1) / roaringContainerBits
		return roaringHeaderBytes + containers*roaringContainerBytes
	}
	return raw + raw/8 + 1024
}

func (h header) verify(payload []byte) error {
	if uint64(len(payload)) != h.payloadSize {
		return fmt.Errorf("%w: payload is %d bytes, header says %d", ErrCorrupt, len(payload), h.payloadSize)
	}
	if sum := hash.CRC32C(payload); sum != h.checksum {
		return fmt.Errorf("%w: checksum %08x, want %08x", ErrCorrupt, sum, h.checksum)
	}
	return nil
}
