// Package text draws string labels onto compositor frames.
package text

import (
	"image"
	"image/color"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/BeatGlow/compositor/pixel"
)

// Options control label rendering.
type Options struct {
	// Size is the font size in points. Zero selects 12pt.
	Size float64

	// DPI is the dot resolution. Zero selects 72dpi.
	DPI float64

	// Color of the glyphs. Nil selects white.
	Color color.Color

	// Font face. Nil selects Go Regular.
	Font *truetype.Font
}

var (
	defaultFont     *truetype.Font
	defaultFontErr  error
	defaultFontOnce sync.Once
)

func loadDefaultFont() (*truetype.Font, error) {
	defaultFontOnce.Do(func() {
		defaultFont, defaultFontErr = freetype.ParseFont(goregular.TTF)
	})
	return defaultFont, defaultFontErr
}

// Label draws s onto the frame with the text baseline starting at (x, y).
// The frame is modified in place; pixels outside the frame are clipped.
func Label(f *pixel.Frame, x, y int, s string, opts *Options) error {
	if opts == nil {
		opts = new(Options)
	}

	fnt := opts.Font
	if fnt == nil {
		var err error
		if fnt, err = loadDefaultFont(); err != nil {
			return err
		}
	}

	size := opts.Size
	if size == 0 {
		size = 12
	}
	dpi := opts.DPI
	if dpi == 0 {
		dpi = 72
	}
	src := opts.Color
	if src == nil {
		src = color.White
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(fnt)
	ctx.SetFontSize(size)
	ctx.SetClip(f.Bounds())
	ctx.SetDst(f.RGBA())
	ctx.SetSrc(image.NewUniform(src))

	_, err := ctx.DrawString(s, freetype.Pt(x, y))
	return err
}
