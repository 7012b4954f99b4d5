package encode

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BeatGlow/compositor"
	"github.com/BeatGlow/compositor/pixel"
)

// FileSurface is a raster surface that writes every accepted frame to an
// image file. The encoding is selected by the file extension, ".png" or
// ".webp". Each accepted block is composited into an internal frame which is
// then written out in full, so committing a sequence of frames leaves the
// last one on disk.
type FileSurface struct {
	path   string
	back   *compositor.ImageSurface
	enc    func(f *pixel.Frame) error
	writes int
}

// NewFileSurface returns a file surface with the given extent.
func NewFileSurface(path string, width, height int) (*FileSurface, error) {
	back, err := compositor.NewImageSurface(width, height)
	if err != nil {
		return nil, err
	}

	s := &FileSurface{
		path: path,
		back: back,
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		s.enc = func(f *pixel.Frame) error { return s.write(f, PNG) }
	case ".webp":
		s.enc = func(f *pixel.Frame) error { return s.write(f, WebP) }
	default:
		return nil, fmt.Errorf("encode: unsupported file extension %q", ext)
	}
	return s, nil
}

func (s *FileSurface) String() string {
	size := s.back.Bounds().Size()
	return fmt.Sprintf("file surface %dx%d (%s)", size.X, size.Y, s.path)
}

func (s *FileSurface) Bounds() image.Rectangle {
	return s.back.Bounds()
}

// Writes returns the number of files written so far.
func (s *FileSurface) Writes() int {
	return s.writes
}

func (s *FileSurface) AcceptBlock(r image.Rectangle, pix []byte) error {
	if err := s.back.AcceptBlock(r, pix); err != nil {
		return err
	}

	img := s.back.Image()
	frame := &pixel.Frame{
		Rect:   img.Rect,
		Pix:    img.Pix,
		Stride: img.Stride,
	}
	return s.enc(frame)
}

func (s *FileSurface) Close() error {
	return s.back.Close()
}

func (s *FileSurface) write(f *pixel.Frame, enc func(io.Writer, *pixel.Frame) error) error {
	file, err := os.Create(s.path)
	if err != nil {
		return err
	}
	if err = enc(file, f); err != nil {
		_ = file.Close()
		return err
	}
	if err = file.Close(); err != nil {
		return err
	}
	s.writes++
	return nil
}

// Interface checks.
var (
	_ compositor.Surface = (*FileSurface)(nil)
)
