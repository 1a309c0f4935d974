package bitmap

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

// parseBits builds a Bitmap from a string of '0'/'1', index 0 first.
func parseBits(t *testing.T, s string) *Bitmap {
	t.Helper()
	m := NewMutable()
	for _, r := range s {
		require.NoError(t, m.Push(r == '1'))
	}
	return m.Freeze()
}

func bitString(b *Bitmap) string {
	out := make([]byte, 0, b.Len())
	for v := range b.Values() {
		if v {
			out = append(out, '1')
		} else {
			out = append(out, '0')
		}
	}
	return string(out)
}

func randomBools(rng *rand.Rand, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = rng.IntN(2) == 1
	}
	return out
}

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// garbageBitmap places bools at bit offset inside a buffer whose other bits are
// all set, so any read past the logical range shows up in results.
func garbageBitmap(t *testing.T, values []bool, offset int) *Bitmap {
	t.Helper()
	data := make([]byte, (offset+len(values)+7)/8+3)
	for i := range data {
		data[i] = 0xFF
	}
	for i, v := range values {
		if !v {
			data[(offset+i)/8] &^= 1 << ((offset + i) % 8)
		}
	}
	b, err := FromExternal(data, offset, len(values), nil)
	require.NoError(t, err)
	return b
}

// testLengths covers empty, sub-byte, byte, word and multi-word boundaries.
var testLengths = []int{0, 1, 3, 7, 8, 9, 15, 16, 31, 32, 33, 63, 64, 65, 127, 128, 129, 200, 1000}
