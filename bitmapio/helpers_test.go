package bitmapio

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/colmask/bitmap"
)

func parseBits(t *testing.T, s string) *bitmap.Bitmap {
	t.Helper()
	values := make([]bool, len(s))
	for i, r := range s {
		values[i] = r == '1'
	}
	bm, err := bitmap.FromBools(values)
	require.NoError(t, err)
	return bm
}

func randomBitmap(t *testing.T, seed uint64, n int, density float64) *bitmap.Bitmap {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed+1))
	values := make([]bool, n)
	for i := range values {
		values[i] = rng.Float64() < density
	}
	bm, err := bitmap.FromBools(values)
	require.NoError(t, err)
	return bm
}

// offsetBitmap returns a copy of bm that starts at a bit offset inside a
// buffer whose other bits are all set.
func offsetBitmap(t *testing.T, bm *bitmap.Bitmap, offset int) *bitmap.Bitmap {
	t.Helper()
	data := make([]byte, (offset+bm.Len()+7)/8+2)
	for i := range data {
		data[i] = 0xFF
	}
	for i, v := range bm.All() {
		if !v {
			data[(offset+i)/8] &^= 1 << ((offset + i) % 8)
		}
	}
	out, err := bitmap.FromExternal(data, offset, bm.Len(), nil)
	require.NoError(t, err)
	return out
}

var allEncodings = []Encoding{EncodingRaw, EncodingLZ4, EncodingZSTD, EncodingRoaring}
