package compositor

import (
	"fmt"
	"image"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/compositor/pixel"
)

// PanelModel selects the panel controller chip.
type PanelModel uint8

// Supported panel controllers.
const (
	ST7735 PanelModel = iota
	ST7789
)

func (m PanelModel) String() string {
	switch m {
	case ST7735:
		return "ST7735"
	case ST7789:
		return "ST7789"
	default:
		return "unknown"
	}
}

// Registers shared by the Sitronix ST77xx family (from st7735.pdf and
// st7789.pdf).
const (
	st77xxSWRESET  = 0x01
	st77xxSLPOUT   = 0x11 // Sleep Out
	st77xxNORON    = 0x13 // Normal Display Mode On
	st77xxINVON    = 0x21 // Display Inversion On
	st77xxDISPOFF  = 0x28 // Display Off
	st77xxDISPON   = 0x29 // Display On
	st77xxCASET    = 0x2A // Column Address Set
	st77xxRASET    = 0x2B // Row Address Set
	st77xxRAMWR    = 0x2C // Memory Write
	st77xxMADCTL   = 0x36 // Memory Data Access Control
	st77xxCOLMOD   = 0x3A // Interface Pixel Format
	st7735FRMCTR1  = 0xB1
	st7735FRMCTR2  = 0xB2
	st7735FRMCTR3  = 0xB3
	st7735INVCTR   = 0xB4
	st7735PWCTR1   = 0xC0
	st7735PWCTR2   = 0xC1
	st7735PWCTR3   = 0xC2
	st7735PWCTR4   = 0xC3
	st7735PWCTR5   = 0xC4
	st7735VMCTR1   = 0xC5
	st7735GMCTRP1  = 0xE0
	st7735GMCTRN1  = 0xE1
	st7789PORCTRL  = 0xB2 // Porch Setting
	st7789GCTRL    = 0xB7 // Gate Control
	st7789VCOMS    = 0xBB // VCOM Setting
	st7789LCMCTRL  = 0xC0 // LCM Control
	st7789VDVVRHEN = 0xC2 // VDV and VRH Command Enable
	st7789VRHS     = 0xC3 // VRH Set
	st7789VDVSET   = 0xC4 // VDV Set
	st7789VCMOFSET = 0xC5 // VCOM Offset Set
	st7789FRCTR2   = 0xC6 // Frame Rate Control in Normal Mode
	st7789PWCTRL1  = 0xD0 // Power Control 1
	st7789PVGAMCTR = 0xE0 // Positive Voltage Gamma Control
	st7789NVGAMCTR = 0xE1 // Negative Voltage Gamma Control
)

// Memory Data Access Control (MADCTL) bit fields.
const (
	_                          byte = 1 << iota // D0: reserved
	_                                           // D1: reserved
	st77xxDisplayDataLatchOrder                 // D2: MH
	st77xxRGBOrder                              // D3: RGB
	st77xxLineAddressOrder                      // D4: ML
	st77xxPageColumnOrder                       // D5: MV
	st77xxColumnAddressOrder                    // D6: MX
	st77xxPageAddressOrder                      // D7: MY
)

// PanelConfig is the panel surface configuration.
type PanelConfig struct {
	// Model of the panel controller.
	Model PanelModel

	// Width of the panel in pixels. Zero selects the model default.
	Width int

	// Height of the panel in pixels. Zero selects the model default.
	Height int

	// Rotation of the panel.
	Rotation Rotation

	// ColumnOffset and RowOffset shift the addressable window for panels
	// whose glass is smaller than the controller RAM.
	ColumnOffset int
	RowOffset    int
}

// Panel is a Sitronix ST77xx SPI LCD panel as a raster surface. Accepted
// blocks are converted to the panel's 5-6-5 wire format and pushed over the
// bus in bulk.
type Panel struct {
	c         Conn
	model     PanelModel
	width     int
	height    int
	colOffset int
	rowOffset int
	rotation  Rotation
	wire      []byte // reused RGB565 conversion buffer
	closed    bool
}

// OpenPanel initializes the panel behind c and returns it as a surface.
func OpenPanel(c Conn, config *PanelConfig) (*Panel, error) {
	if config == nil {
		config = new(PanelConfig)
	}

	p := &Panel{
		c:         c,
		model:     config.Model,
		rotation:  config.Rotation,
		colOffset: config.ColumnOffset,
		rowOffset: config.RowOffset,
	}
	if err := p.init(config); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Panel) String() string {
	return fmt.Sprintf("%s %dx%d", p.model, p.width, p.height)
}

func (p *Panel) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

func (p *Panel) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.c.Command(st77xxDISPOFF); err != nil {
		_ = p.c.Close()
		return err
	}
	return p.c.Close()
}

// AcceptBlock converts the RGBA samples to RGB565 and writes them to the
// addressed window in chunked bulk transfers.
func (p *Panel) AcceptBlock(r image.Rectangle, pix []byte) error {
	if p.closed {
		return ErrSurfaceUnavailable
	}
	if !r.In(p.Bounds()) {
		return fmt.Errorf("%w: block %s, panel %s", ErrBounds, r, p.Bounds())
	}
	if want := r.Dx() * r.Dy() * 4; len(pix) != want {
		return fmt.Errorf("%w: block %s needs %d samples, got %d", ErrBounds, r, want, len(pix))
	}

	if err := p.setWindow(r); err != nil {
		return err
	}

	if n := r.Dx() * r.Dy() * 2; cap(p.wire) < n {
		p.wire = make([]byte, n)
	} else {
		p.wire = p.wire[:n]
	}
	for i, j := 0, 0; i < len(pix); i, j = i+4, j+2 {
		v := pixel.PackCRGB16(pix[i], pix[i+1], pix[i+2])
		p.wire[j+0] = byte(v >> 8)
		p.wire[j+1] = byte(v)
	}
	return p.c.Data(p.wire)
}

func (p *Panel) init(config *PanelConfig) (err error) {
	if config.Width == 0 {
		config.Width = p.defaultWidth()
	}
	p.width = config.Width

	if config.Height == 0 {
		config.Height = p.defaultHeight()
	}
	p.height = config.Height

	if (config.Rotation == NoRotation || config.Rotation == Rotate180) && (config.Width > 240 || config.Height > 320) {
		return fmt.Errorf("%s: invalid size %dx%d, maximum size is 240x320 at %s rotation", p.model, config.Width, config.Height, config.Rotation)
	} else if (config.Rotation == Rotate90 || config.Rotation == Rotate270) && (config.Width > 320 || config.Height > 240) {
		return fmt.Errorf("%s: invalid size %dx%d, maximum size is 320x240 at %s rotation", p.model, config.Width, config.Height, config.Rotation)
	}

	logger().Debug("panel init", "model", p.model.String(), "width", p.width, "height", p.height)

	// Reset the device.
	if err = p.c.Reset(gpio.High); err != nil {
		return
	}
	time.Sleep(100 * time.Millisecond)
	if err = p.c.Reset(gpio.Low); err != nil {
		return
	}
	time.Sleep(100 * time.Millisecond)
	if err = p.c.Reset(gpio.High); err != nil {
		return
	}

	time.Sleep(10 * time.Millisecond)
	if err = p.c.Command(st77xxSWRESET); err != nil {
		return
	}
	time.Sleep(150 * time.Millisecond)
	if err = p.c.Command(st77xxSLPOUT); err != nil { // Sleep Out
		return
	}
	time.Sleep(150 * time.Millisecond)

	switch p.model {
	case ST7735:
		err = p.commands([][]byte{
			{st7735FRMCTR1, 0x01, 0x2C, 0x2D},
			{st7735FRMCTR2, 0x01, 0x2C, 0x2D},
			{st7735FRMCTR3, 0x01, 0x2C, 0x2D, 0x01, 0x2C, 0x2D},
			{st7735INVCTR, 0x07},
			{st7735PWCTR1, 0xA2, 0x02, 0x84},
			{st7735PWCTR2, 0xC5},
			{st7735PWCTR3, 0x0A, 0x00},
			{st7735PWCTR4, 0x8A, 0x2A},
			{st7735PWCTR5, 0x8A, 0xEE},
			{st7735VMCTR1, 0x0E},
			{st77xxCOLMOD, 0x05}, // 16-bits per pixel
			{st7735GMCTRP1, 0x02, 0x1C, 0x07, 0x12, 0x37, 0x32, 0x29, 0x2D, 0x29, 0x25, 0x2B, 0x39, 0x00, 0x01, 0x03, 0x10},
			{st7735GMCTRN1, 0x03, 0x1D, 0x07, 0x06, 0x2E, 0x2C, 0x29, 0x2D, 0x2E, 0x2E, 0x37, 0x3F, 0x00, 0x00, 0x02, 0x10},
			{st77xxNORON},
			{st77xxDISPON},
		})
	case ST7789:
		err = p.commands([][]byte{
			{st77xxCOLMOD, 0x05},        // 16-bits per pixel
			{st7789PORCTRL, 0x0C, 0x0C}, // Porch Setting: default
			{st7789GCTRL, 0x35},         // Gate Control: 13.26V / -10.43V (default)
			{st7789VCOMS, 0x1A},         // VCOM Setting: 0.75V
			{st7789LCMCTRL, 0x2C},       // LCM Control: default
			{st7789VDVVRHEN, 0x01},      // VDV and VRH Command Enable: default
			{st7789VRHS, 0x0B},          // VRH Set: default
			{st7789VDVSET, 0x20},        // VDV Set: default (0V)
			{st7789VCMOFSET, 0x20},      // VCOM Offset Set: default (0V)
			{st7789FRCTR2, 0x0F},        // Frame Rate Control in Normal Mode: 60Hz (default)
			{st7789PWCTRL1, 0xA4, 0xA1}, // Power Control 1: default
			{st77xxINVON},
			{st7789PVGAMCTR, 0x00, 0x19, 0x1E, 0x0A, 0x09, 0x15, 0x3D, 0x44, 0x51, 0x12, 0x03, 0x00, 0x3F, 0x3F}, // Positive Voltage Gamma Control: default
			{st7789NVGAMCTR, 0x00, 0x18, 0x1E, 0x0A, 0x09, 0x25, 0x3F, 0x43, 0x52, 0x33, 0x03, 0x00, 0x3F, 0x3F}, // Negative Voltage Gamma Control: default
			{st77xxDISPON},
		})
	default:
		err = fmt.Errorf("compositor: unsupported panel model %d", p.model)
	}
	if err != nil {
		return
	}
	time.Sleep(100 * time.Millisecond)

	return p.setRotation(config.Rotation)
}

func (p *Panel) defaultWidth() int {
	if p.model == ST7735 {
		return 128
	}
	return 240
}

func (p *Panel) defaultHeight() int {
	if p.model == ST7735 {
		return 160
	}
	return 240
}

func (p *Panel) commands(commands [][]byte) (err error) {
	for _, command := range commands {
		if err = p.c.Command(command[0], command[1:]...); err != nil {
			return
		}
	}
	return
}

func (p *Panel) setRotation(rotation Rotation) error {
	rotation &= 3

	var madctl byte
	switch rotation {
	case NoRotation:
		madctl = 0
	case Rotate90:
		madctl = st77xxColumnAddressOrder | st77xxPageColumnOrder
	case Rotate180:
		madctl = st77xxColumnAddressOrder | st77xxPageAddressOrder
	case Rotate270:
		madctl = st77xxPageAddressOrder | st77xxPageColumnOrder
	}

	p.rotation = rotation
	return p.c.Command(st77xxMADCTL, madctl)
}

func (p *Panel) setWindow(r image.Rectangle) error {
	x0, y0 := r.Min.X, r.Min.Y
	x1, y1 := r.Max.X-1, r.Max.Y-1
	if p.rotation == Rotate90 || p.rotation == Rotate270 {
		x0 += p.rowOffset
		y0 += p.colOffset
		x1 += p.rowOffset
		y1 += p.colOffset
	} else {
		x0 += p.colOffset
		y0 += p.rowOffset
		x1 += p.colOffset
		y1 += p.rowOffset
	}
	return p.commands([][]byte{
		{st77xxCASET, byte(x0 >> 8), byte(x0), byte(x1 >> 8), byte(x1)}, // Column address
		{st77xxRASET, byte(y0 >> 8), byte(y0), byte(y1 >> 8), byte(y1)}, // Row address
		{st77xxRAMWR}, // Write to RAM
	})
}

// Interface checks.
var (
	_ Surface = (*Panel)(nil)
)
