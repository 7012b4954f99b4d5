package text

import (
	"image/color"
	"testing"

	"github.com/BeatGlow/compositor/pixel"
)

func TestLabel(t *testing.T) {
	f := pixel.NewFrame(128, 32)

	if err := Label(f, 4, 24, "hello", nil); err != nil {
		t.Fatal(err)
	}

	var lit int
	for i := 0; i < len(f.Pix); i += 4 {
		if f.Pix[i] != 0 {
			lit++
		}
	}
	if lit == 0 {
		t.Error("expected label to set pixels")
	}
}

func TestLabelOptions(t *testing.T) {
	f := pixel.NewFrame(64, 32)

	err := Label(f, 2, 20, "x", &Options{
		Size:  18,
		Color: color.RGBA{R: 0xff, A: 0xff},
	})
	if err != nil {
		t.Fatal(err)
	}

	var red, green bool
	for i := 0; i < len(f.Pix); i += 4 {
		if f.Pix[i] != 0 {
			red = true
		}
		if f.Pix[i+1] != 0 {
			green = true
		}
	}
	if !red {
		t.Error("expected red glyph pixels")
	}
	if green {
		t.Error("expected no green component in glyph pixels")
	}
}

func TestLabelClipped(t *testing.T) {
	f := pixel.NewFrame(8, 8)

	// Drawing far outside the frame must neither fail nor write samples.
	if err := Label(f, 100, 100, "clipped", nil); err != nil {
		t.Fatal(err)
	}
	for i, v := range f.Pix {
		if v != 0 {
			t.Fatalf("sample %d is %#02x, expected frame to stay empty", i, v)
		}
	}
}
