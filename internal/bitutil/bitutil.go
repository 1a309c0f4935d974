package bitutil

import "encoding/binary"

// BytesFor returns the number of bytes needed to hold n bits.
func BytesFor(n int) int {
	return (n + 7) >> 3
}

// ChunksFor returns the number of width-bit chunks needed to hold n bits.
func ChunksFor(n, width int) int {
	return (n + width - 1) / width
}

// IsByteAligned reports whether bit position i starts a byte.
func IsByteAligned(i int) bool {
	return i&7 == 0
}

// GetBit returns bit i of data.
func GetBit(data []byte, i int) bool {
	return data[i>>3]&(1<<(uint(i)&7)) != 0
}

// SetBit sets bit i of data to v.
func SetBit(data []byte, i int, v bool) {
	if v {
		data[i>>3] |= 1 << (uint(i) & 7)
	} else {
		data[i>>3] &^= 1 << (uint(i) & 7)
	}
}

// LowMask64 returns a word with the n low bits set. n must be in [0, 64].
func LowMask64(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(n)) - 1
}

// LoadWord reads up to 8 little-endian bytes of data starting at byte i.
// Bytes past the end of data read as zero.
func LoadWord(data []byte, i int) uint64 {
	if i+8 <= len(data) {
		return binary.LittleEndian.Uint64(data[i:])
	}
	var w uint64
	for k := 0; i+k < len(data) && k < 8; k++ {
		w |= uint64(data[i+k]) << (8 * uint(k))
	}
	return w
}

// StoreWord writes the n low bytes of w to data starting at byte i, little-endian.
func StoreWord(data []byte, i int, w uint64, n int) {
	if n == 8 {
		binary.LittleEndian.PutUint64(data[i:], w)
		return
	}
	for k := 0; k < n; k++ {
		data[i+k] = byte(w >> (8 * uint(k)))
	}
}

// ReadBits returns width bits (width ≤ 64) of data starting at bit position pos,
// LSB-first. Bits past the end of data read as zero.
func ReadBits(data []byte, pos, width int) uint64 {
	byteIdx := pos >> 3
	shift := uint(pos & 7)
	w := LoadWord(data, byteIdx) >> shift
	if shift != 0 && width+int(shift) > 64 && byteIdx+8 < len(data) {
		w |= uint64(data[byteIdx+8]) << (64 - shift)
	}
	return w & LowMask64(width)
}
