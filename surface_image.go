package compositor

import (
	"fmt"
	"image"
)

// ImageSurface is an in-memory surface backed by an [image.RGBA]. It is the
// reference Surface implementation, used by tests and file encoders.
type ImageSurface struct {
	img    *image.RGBA
	closed bool
}

// NewImageSurface returns an image surface with the given extent.
func NewImageSurface(width, height int) (*ImageSurface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, width, height)
	}
	return &ImageSurface{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
	}, nil
}

func (s *ImageSurface) String() string {
	size := s.img.Rect.Size()
	return fmt.Sprintf("image surface %dx%d", size.X, size.Y)
}

func (s *ImageSurface) Bounds() image.Rectangle {
	return s.img.Rect
}

// Image returns the backing image. The image reflects all accepted blocks.
func (s *ImageSurface) Image() *image.RGBA {
	return s.img
}

func (s *ImageSurface) AcceptBlock(r image.Rectangle, pix []byte) error {
	if s.closed {
		return ErrSurfaceUnavailable
	}
	if !r.In(s.img.Rect) {
		return fmt.Errorf("%w: block %s, surface %s", ErrBounds, r, s.img.Rect)
	}
	if want := r.Dx() * r.Dy() * 4; len(pix) != want {
		return fmt.Errorf("%w: block %s needs %d samples, got %d", ErrBounds, r, want, len(pix))
	}

	stride := r.Dx() * 4
	for y := r.Min.Y; y < r.Max.Y; y++ {
		src := (y - r.Min.Y) * stride
		dst := s.img.PixOffset(r.Min.X, y)
		copy(s.img.Pix[dst:dst+stride], pix[src:src+stride])
	}
	return nil
}

func (s *ImageSurface) Close() error {
	s.closed = true
	return nil
}

// Interface checks.
var (
	_ Surface = (*ImageSurface)(nil)
)
