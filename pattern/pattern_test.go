package pattern

import (
	"testing"

	"github.com/BeatGlow/compositor"
)

func testInRange(t *testing.T, f compositor.ColorFunc, w, h int) {
	t.Helper()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := f(x, y)
			for i, v := range []int{r, g, b, a} {
				if v < 0 || v > 0xff {
					t.Fatalf("channel %d at (%d,%d) is %d, outside [0,255]", i, x, y, v)
				}
			}
		}
	}
}

func TestSolid(t *testing.T) {
	f := Solid(10, 20, 30, 255)
	testInRange(t, f, 8, 8)
	r, g, b, a := f(7, 3)
	if r != 10 || g != 20 || b != 30 || a != 255 {
		t.Errorf("expected (10,20,30,255), got (%d,%d,%d,%d)", r, g, b, a)
	}
}

func TestGradient(t *testing.T) {
	testInRange(t, Gradient(0), 64, 64)
	testInRange(t, Gradient(1000), 64, 64)

	f := Gradient(3)
	r, g, b, _ := f(5, 2)
	if r != 10 || g != 6 || b != 4 {
		t.Errorf("expected (10,6,4), got (%d,%d,%d)", r, g, b)
	}
}

func TestChecker(t *testing.T) {
	f := Checker(2, [4]int{255, 255, 255, 255}, [4]int{0, 0, 0, 255})
	testInRange(t, f, 16, 16)

	r, _, _, _ := f(0, 0)
	if r != 0 {
		t.Errorf("expected even cell at (0,0), got red %d", r)
	}
	r, _, _, _ = f(2, 0)
	if r != 255 {
		t.Errorf("expected odd cell at (2,0), got red %d", r)
	}
	r, _, _, _ = f(2, 2)
	if r != 0 {
		t.Errorf("expected even cell at (2,2), got red %d", r)
	}
}

func TestMandelbrot(t *testing.T) {
	const w, h = 64, 48
	f := Mandelbrot(w, h, -0.5, 0, 3, 64)
	testInRange(t, f, w, h)

	// The view center is inside the set and must be black.
	r, g, b, a := f(w/2, h/2)
	if r != 0 || g != 0 || b != 0 || a != 0xff {
		t.Errorf("expected black interior pixel, got (%d,%d,%d,%d)", r, g, b, a)
	}

	// The top-left corner escapes immediately and must not be black.
	r, g, b, _ = f(0, 0)
	if r == 0 && g == 0 && b == 0 {
		t.Error("expected colored exterior pixel at (0,0)")
	}

	// Purity: repeated evaluation yields identical results.
	r1, g1, b1, a1 := f(13, 7)
	r2, g2, b2, a2 := f(13, 7)
	if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
		t.Error("expected deterministic evaluation")
	}
}
