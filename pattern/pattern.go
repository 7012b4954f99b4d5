// Package pattern provides ready-made color functions for the compositor.
package pattern

import (
	"math"

	"github.com/BeatGlow/compositor"
)

// Solid returns a color function yielding a single color.
func Solid(r, g, b, a int) compositor.ColorFunc {
	return func(x, y int) (int, int, int, int) {
		return r, g, b, a
	}
}

// Gradient returns a moving diagonal color gradient. Increase offset between
// frames to animate.
func Gradient(offset int) compositor.ColorFunc {
	return func(x, y int) (r, g, b, a int) {
		return (x + y + offset) & 0xff, (x - y + offset) & 0xff, (x + y - offset) & 0xff, 0xff
	}
}

// Checker returns a checkerboard of size×size cells alternating between the
// two colors.
func Checker(size int, odd, even [4]int) compositor.ColorFunc {
	if size < 1 {
		size = 1
	}
	return func(x, y int) (r, g, b, a int) {
		if (x/size+y/size)&1 == 1 {
			return odd[0], odd[1], odd[2], odd[3]
		}
		return even[0], even[1], even[2], even[3]
	}
}

// Mandelbrot returns an escape-time rendering of the Mandelbrot set for a
// width×height frame. The view is centered on (cx, cy) in the complex plane
// and spans span units along the horizontal axis. Points inside the set are
// black; escaped points are colored by a smoothed iteration count.
func Mandelbrot(width, height int, cx, cy, span float64, maxIter int) compositor.ColorFunc {
	if maxIter < 1 {
		maxIter = 1
	}
	var (
		scale = span / float64(width)
		x0    = cx - span/2
		y0    = cy - scale*float64(height)/2
	)
	return func(x, y int) (r, g, b, a int) {
		var (
			cr = x0 + float64(x)*scale
			ci = y0 + float64(y)*scale
			zr float64
			zi float64
			n  int
		)
		for n = 0; n < maxIter; n++ {
			zr, zi = zr*zr-zi*zi+cr, 2*zr*zi+ci
			if zr*zr+zi*zi > 4 {
				break
			}
		}
		if n == maxIter {
			return 0, 0, 0, 0xff
		}

		// Smooth the iteration count to avoid banding.
		mu := float64(n) + 1 - math.Log2(math.Log(math.Sqrt(zr*zr+zi*zi)))
		t := mu / float64(maxIter)
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
		return int(255 * t * t), int(255 * t), int(255 * math.Sqrt(t)), 0xff
	}
}
