package compositor

import (
	"bytes"
	"errors"
	"image"
	"testing"

	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/compositor/pixel"
)

// fakeConn records the command and data traffic of a panel.
type fakeConn struct {
	commands []byte
	data     []byte
}

func (c *fakeConn) String() string         { return "fake bus" }
func (c *fakeConn) Close() error           { return nil }
func (c *fakeConn) Reset(gpio.Level) error { return nil }

func (c *fakeConn) Command(cmnd byte, args ...byte) error {
	c.commands = append(c.commands, cmnd)
	c.data = append(c.data, args...)
	return nil
}

func (c *fakeConn) Data(data []byte) error {
	c.data = append(c.data, data...)
	return nil
}

func (c *fakeConn) sawCommand(cmnd byte) bool {
	return bytes.IndexByte(c.commands, cmnd) >= 0
}

func TestPanelInit(t *testing.T) {
	for _, model := range []PanelModel{ST7735, ST7789} {
		t.Run(model.String(), func(it *testing.T) {
			conn := &fakeConn{}
			p, err := OpenPanel(conn, &PanelConfig{Model: model, Width: 4, Height: 4})
			if err != nil {
				it.Fatal(err)
			}

			if !p.Bounds().Eq(image.Rect(0, 0, 4, 4)) {
				it.Errorf("expected bounds (0,0)-(4,4), got %s", p.Bounds())
			}
			for _, cmnd := range []byte{st77xxSWRESET, st77xxSLPOUT, st77xxCOLMOD, st77xxDISPON, st77xxMADCTL} {
				if !conn.sawCommand(cmnd) {
					it.Errorf("init did not send command %#02x", cmnd)
				}
			}
		})
	}

	t.Run("oversized", func(it *testing.T) {
		if _, err := OpenPanel(&fakeConn{}, &PanelConfig{Model: ST7789, Width: 480, Height: 320}); err == nil {
			it.Error("expected error for oversized panel")
		}
	})
}

func TestPanelAcceptBlock(t *testing.T) {
	conn := &fakeConn{}
	p, err := OpenPanel(conn, &PanelConfig{Model: ST7789, Width: 2, Height: 2})
	if err != nil {
		t.Fatal(err)
	}

	conn.commands = nil
	conn.data = nil

	frame, err := New(nil).Render(2, 2, func(x, y int) (r, g, b, a int) {
		return x * 255, y * 255, 0, 255
	})
	if err != nil {
		t.Fatal(err)
	}
	if err = New(nil).Commit(frame, p); err != nil {
		t.Fatal(err)
	}

	for _, cmnd := range []byte{st77xxCASET, st77xxRASET, st77xxRAMWR} {
		if !conn.sawCommand(cmnd) {
			t.Errorf("accept did not address the window with command %#02x", cmnd)
		}
	}

	// Window addressing sends 8 argument bytes before the pixel payload.
	wire := conn.data[len(conn.data)-8:]
	want := make([]byte, 0, 8)
	for _, px := range [][3]byte{{0, 0, 0}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0}} {
		v := pixel.PackCRGB16(px[0], px[1], px[2])
		want = append(want, byte(v>>8), byte(v))
	}
	if !bytes.Equal(wire, want) {
		t.Errorf("expected wire payload %v, got %v", want, wire)
	}
}

func TestPanelClosed(t *testing.T) {
	p, err := OpenPanel(&fakeConn{}, &PanelConfig{Model: ST7735, Width: 2, Height: 2})
	if err != nil {
		t.Fatal(err)
	}
	if err = p.Close(); err != nil {
		t.Fatal(err)
	}

	block := bytes.Repeat([]byte{0xff}, 2*2*4)
	if err = p.AcceptBlock(image.Rect(0, 0, 2, 2), block); !errors.Is(err, ErrSurfaceUnavailable) {
		t.Errorf("expected ErrSurfaceUnavailable, got %v", err)
	}
}
