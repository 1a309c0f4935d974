// Package bitmapio reads and writes bitmaps in a self-describing binary
// format, to byte slices, streams, files and blob stores.
//
// # Format
//
// A file is a 32-byte little-endian header followed by one payload:
//
//	magic "CMSK" | version u8 | encoding u8 | reserved u16
//	length in bits u64 | payload size u64 | CRC32C(payload) u32 | reserved u32
//
// Payload encodings:
//
//   - EncodingRaw: the packed bits, LSB-first, starting at byte 0, with the
//     unused bits of the last byte cleared
//   - EncodingLZ4, EncodingZSTD: the raw payload compressed as one block;
//     written as raw instead when compression saves less than 10%
//   - EncodingRoaring: a roaring bitmap of the set positions
//
// # Zero-copy reads
//
// Open maps a file and Load uses Mappable blobs; raw payloads are then wrapped
// without copying and the mapping lives until the last bitmap handle is
// released.
//
// # Usage
//
//	err := bitmapio.WriteFile(ctx, "valid.cmsk", bm, bitmapio.WithEncoding(bitmapio.EncodingZSTD))
//
//	bm, err := bitmapio.Open("valid.cmsk")
//	if err != nil { ... }
//	defer bm.Release()
package bitmapio
