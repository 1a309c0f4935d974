package bitmap_test

import (
	"fmt"

	"github.com/hupe1980/colmask/bitmap"
)

func bits(s string) *bitmap.Bitmap {
	m := bitmap.NewMutable()
	for _, r := range s {
		_ = m.Push(r == '1')
	}
	return m.Freeze()
}

func Example() {
	a := bits("1111100000")
	b := bits("1010101010")

	and, _ := bitmap.And(a, b)
	not, _ := bitmap.Not(a)
	fmt.Println(and)
	fmt.Println(not, not.CountOnes())

	// Output:
	// Bitmap{len=10, 1010100000}
	// Bitmap{len=10, 0000011111} 5
}

func ExampleTernary() {
	a := bits("1111100000")
	b := bits("1010101010")
	c := bits("0011001100")

	maj, err := bitmap.Ternary(a, b, c, func(x, y, z uint64) uint64 {
		return x&y | x&z | y&z
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(maj)

	// Output:
	// Bitmap{len=10, 1011101000}
}

func ExampleChunks() {
	it := bitmap.Chunks[uint8](bits("1111100000"))
	for c := range it.All() {
		fmt.Println(c)
	}

	// Output:
	// 31
	// 0
}

func ExampleBitmap_IntoMut() {
	bm := bits("101")
	view := bm.Slice(1, 2)
	fmt.Println(view)

	// bm is still shared with view, so IntoMut copies.
	m, _ := bm.IntoMut()
	m.Set(1, true)
	_ = m.Push(true)
	fmt.Println(m.Freeze(), view)

	// Output:
	// Bitmap{len=2, 01}
	// Bitmap{len=4, 1111} Bitmap{len=2, 01}
}
