// Package encode exports compositor frames to image files.
package encode

import (
	"fmt"
	"image/png"
	"io"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"

	"github.com/BeatGlow/compositor"
	"github.com/BeatGlow/compositor/pixel"
)

// PNG writes the frame to w in PNG format.
func PNG(w io.Writer, f *pixel.Frame) error {
	return png.Encode(w, f.RGBA())
}

// WebP writes the frame to w in lossless WebP format.
func WebP(w io.Writer, f *pixel.Frame) error {
	return nativewebp.Encode(w, f.RGBA(), nil)
}

// Downsample reduces a supersampled frame by an integer factor using a
// Catmull-Rom filter. Frame dimensions must be divisible by the factor.
func Downsample(f *pixel.Frame, factor int) (*pixel.Frame, error) {
	if factor <= 0 {
		return nil, fmt.Errorf("%w: downsample factor %d", compositor.ErrInvalidDimension, factor)
	}
	if factor == 1 {
		return f, nil
	}

	var (
		w = f.Rect.Dx()
		h = f.Rect.Dy()
	)
	if w%factor != 0 || h%factor != 0 {
		return nil, fmt.Errorf("%w: %dx%d not divisible by %d", compositor.ErrInvalidDimension, w, h, factor)
	}

	out := pixel.NewFrame(w/factor, h/factor)
	draw.CatmullRom.Scale(out.RGBA(), out.Rect, f.RGBA(), f.Rect, draw.Src, nil)
	return out, nil
}
