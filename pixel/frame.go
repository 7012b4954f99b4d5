package pixel

import (
	"image"
	"image/color"
)

// Frame is a single full-resolution RGBA frame buffer.
//
// Samples are stored row-major with the origin in the top left corner, four
// bytes per pixel in R, G, B, A order, so len(Pix) is always
// Rect.Dx()*Rect.Dy()*4.
type Frame struct {
	// Rect is the frame bounding box.
	Rect image.Rectangle

	// Pix are the frame samples.
	Pix []byte

	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
}

// NewFrame returns a zeroed frame with the given dimensions.
func NewFrame(w, h int) *Frame {
	return &Frame{
		Rect:   image.Rect(0, 0, w, h),
		Pix:    make([]byte, w*h*4),
		Stride: w * 4,
	}
}

func (f *Frame) ColorModel() color.Model {
	return color.RGBAModel
}

func (f *Frame) Bounds() image.Rectangle {
	return f.Rect
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (f *Frame) PixOffset(x, y int) int {
	return (y-f.Rect.Min.Y)*f.Stride + (x-f.Rect.Min.X)*4
}

func (f *Frame) At(x, y int) color.Color {
	if !(image.Point{x, y}).In(f.Rect) {
		return color.Transparent
	}

	i := f.PixOffset(x, y)
	return color.RGBA{R: f.Pix[i], G: f.Pix[i+1], B: f.Pix[i+2], A: f.Pix[i+3]}
}

func (f *Frame) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}).In(f.Rect) {
		return
	}

	i := f.PixOffset(x, y)
	v := color.RGBAModel.Convert(c).(color.RGBA)
	f.Pix[i+0] = v.R
	f.Pix[i+1] = v.G
	f.Pix[i+2] = v.B
	f.Pix[i+3] = v.A
}

func (f *Frame) Clear() {
	for i := range f.Pix {
		f.Pix[i] = 0x00
	}
}

// Fill sets every pixel to the given color.
func (f *Frame) Fill(c color.Color) {
	v := color.RGBAModel.Convert(c).(color.RGBA)
	pix := []byte{v.R, v.G, v.B, v.A}
	for i, l := 0, len(f.Pix); i < l; i += 4 {
		copy(f.Pix[i:], pix)
	}
}

// RGBA returns an [image.RGBA] view sharing the frame's sample memory.
// Writes through the view are visible in the frame and vice versa.
func (f *Frame) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    f.Pix,
		Stride: f.Stride,
		Rect:   f.Rect,
	}
}

// Interface checks.
var (
	_ image.Image = (*Frame)(nil)
)
