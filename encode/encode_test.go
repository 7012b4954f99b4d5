package encode

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/BeatGlow/compositor"
	"github.com/BeatGlow/compositor/pattern"
	"github.com/BeatGlow/compositor/pixel"
)

func testFrame(t *testing.T, w, h int) *pixel.Frame {
	t.Helper()
	frame, err := compositor.New(nil).Render(w, h, pattern.Gradient(0))
	if err != nil {
		t.Fatal(err)
	}
	return frame
}

func TestPNG(t *testing.T) {
	frame := testFrame(t, 8, 6)

	var buf bytes.Buffer
	if err := PNG(&buf, frame); err != nil {
		t.Fatal(err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !img.Bounds().Eq(frame.Bounds()) {
		t.Errorf("expected decoded bounds %s, got %s", frame.Bounds(), img.Bounds())
	}
	r, g, b, _ := img.At(3, 2).RGBA()
	wr, wg, wb, _ := frame.At(3, 2).RGBA()
	if r != wr || g != wg || b != wb {
		t.Errorf("decoded pixel (3,2) differs: got (%d,%d,%d), expected (%d,%d,%d)", r, g, b, wr, wg, wb)
	}
}

func TestWebP(t *testing.T) {
	frame := testFrame(t, 8, 6)

	var buf bytes.Buffer
	if err := WebP(&buf, frame); err != nil {
		t.Fatal(err)
	}

	// RIFF....WEBP container header.
	data := buf.Bytes()
	if len(data) < 12 || !bytes.Equal(data[:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WEBP")) {
		t.Error("expected a WEBP RIFF container")
	}
}

func TestDownsample(t *testing.T) {
	frame := testFrame(t, 16, 8)

	out, err := Downsample(frame, 4)
	if err != nil {
		t.Fatal(err)
	}
	if size := out.Bounds().Size(); size.X != 4 || size.Y != 2 {
		t.Errorf("expected 4x2 output, got %s", size)
	}

	if same, err := Downsample(frame, 1); err != nil || same != frame {
		t.Error("expected factor 1 to return the input frame")
	}

	if _, err = Downsample(frame, 0); !errors.Is(err, compositor.ErrInvalidDimension) {
		t.Errorf("expected ErrInvalidDimension, got %v", err)
	}
	if _, err = Downsample(frame, 3); !errors.Is(err, compositor.ErrInvalidDimension) {
		t.Errorf("expected ErrInvalidDimension for indivisible factor, got %v", err)
	}
}

func TestFileSurface(t *testing.T) {
	c := compositor.New(nil)

	t.Run("png", func(it *testing.T) {
		path := filepath.Join(it.TempDir(), "frame.png")
		s, err := NewFileSurface(path, 8, 6)
		if err != nil {
			it.Fatal(err)
		}

		frame := testFrame(it, 8, 6)
		if err = c.Commit(frame, s); err != nil {
			it.Fatal(err)
		}
		if s.Writes() != 1 {
			it.Errorf("expected 1 write, got %d", s.Writes())
		}

		f, err := os.Open(path)
		if err != nil {
			it.Fatal(err)
		}
		defer f.Close()
		img, err := png.Decode(f)
		if err != nil {
			it.Fatal(err)
		}
		if !img.Bounds().Eq(frame.Bounds()) {
			it.Errorf("expected file bounds %s, got %s", frame.Bounds(), img.Bounds())
		}
	})

	t.Run("webp", func(it *testing.T) {
		path := filepath.Join(it.TempDir(), "frame.webp")
		s, err := NewFileSurface(path, 4, 4)
		if err != nil {
			it.Fatal(err)
		}
		if err = c.Commit(testFrame(it, 4, 4), s); err != nil {
			it.Fatal(err)
		}
		if _, err = os.Stat(path); err != nil {
			it.Errorf("expected output file: %v", err)
		}
	})

	t.Run("unsupported", func(it *testing.T) {
		if _, err := NewFileSurface("frame.gif", 4, 4); err == nil {
			it.Error("expected error for unsupported extension")
		}
	})

	t.Run("closed", func(it *testing.T) {
		path := filepath.Join(it.TempDir(), "frame.png")
		s, err := NewFileSurface(path, 4, 4)
		if err != nil {
			it.Fatal(err)
		}
		_ = s.Close()
		if err = c.Commit(testFrame(it, 4, 4), s); !errors.Is(err, compositor.ErrSurfaceUnavailable) {
			it.Errorf("expected ErrSurfaceUnavailable, got %v", err)
		}
	})
}
