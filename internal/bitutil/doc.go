// Package bitutil provides the bit-order and byte-alignment helpers shared by
// the packed bitmap types.
//
// All helpers use LSB-first ordering: bit i of a packed buffer lives in byte
// i/8 at position i%8, where position 0 is the least-significant bit.
package bitutil
