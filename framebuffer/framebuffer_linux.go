package framebuffer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"os"
	"syscall"
	"unsafe"

	"github.com/BeatGlow/compositor"
	"github.com/BeatGlow/compositor/pixel"
)

const (
	// From <linux/fb.h>
	fbioGetVScreenInfo = 0x4600
	fbioGetFScreenInfo = 0x4602
)

// Pixel formats supported for conversion from RGBA frames.
type pixelFormat uint8

const (
	formatRGBA32 pixelFormat = iota
	formatBGRA32
	formatRGB565
	formatBGR565
)

type linuxFrameBuffer struct {
	f          *os.File
	fd         uintptr
	mem        []byte
	rect       image.Rectangle
	lineLength int
	format     pixelFormat
	closed     bool
}

// Open a Linux framebuffer device (fbdev) by name, typically /dev/fb[0..x].
func Open(name string) (compositor.Surface, error) {
	f, err := os.OpenFile(name, os.O_RDWR, os.ModeDevice)
	if err != nil {
		return nil, err
	}

	fb := &linuxFrameBuffer{
		f:  f,
		fd: f.Fd(),
	}

	var info linuxFrameBufferInfo
	if err = fb.ioctl(fbioGetFScreenInfo, unsafe.Pointer(&info)); err != nil {
		_ = f.Close()
		return nil, err
	}

	var screenInfo linuxVarScreenInfo
	if err = fb.ioctl(fbioGetVScreenInfo, unsafe.Pointer(&screenInfo)); err != nil {
		_ = f.Close()
		return nil, err
	}
	if fb.format, err = linuxParsePixelFormat(&screenInfo); err != nil {
		_ = f.Close()
		return nil, err
	}

	// Map screen memory.
	if fb.mem, err = syscall.Mmap(int(fb.fd), 0, int(info.SmemLen), syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED); err != nil {
		_ = f.Close()
		return nil, err
	}

	fb.rect = image.Rect(0, 0, int(screenInfo.Xres), int(screenInfo.Yres))
	fb.lineLength = int(info.LineLength)

	compositor.Logger().Debug("framebuffer open",
		"device", name,
		"bounds", fb.rect,
		"bpp", screenInfo.BitsPerPixel,
		"line", fb.lineLength)
	return fb, nil
}

func (fb *linuxFrameBuffer) String() string {
	return fmt.Sprintf("framebuffer %dx%d", fb.rect.Dx(), fb.rect.Dy())
}

func (fb *linuxFrameBuffer) Bounds() image.Rectangle {
	return fb.rect
}

// AcceptBlock converts the RGBA samples to the device pixel format and
// copies them row by row into the mapped screen memory.
func (fb *linuxFrameBuffer) AcceptBlock(r image.Rectangle, pix []byte) error {
	if fb.closed {
		return compositor.ErrSurfaceUnavailable
	}
	if !r.In(fb.rect) {
		return fmt.Errorf("%w: block %s, framebuffer %s", compositor.ErrBounds, r, fb.rect)
	}
	if want := r.Dx() * r.Dy() * 4; len(pix) != want {
		return fmt.Errorf("%w: block %s needs %d samples, got %d", compositor.ErrBounds, r, want, len(pix))
	}

	stride := r.Dx() * 4
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := pix[(y-r.Min.Y)*stride : (y-r.Min.Y+1)*stride]
		fb.storeRow(r.Min.X, y, row)
	}
	return nil
}

func (fb *linuxFrameBuffer) storeRow(x, y int, row []byte) {
	switch fb.format {
	case formatRGBA32:
		copy(fb.mem[y*fb.lineLength+x*4:], row)
	case formatBGRA32:
		o := y*fb.lineLength + x*4
		for i := 0; i < len(row); i, o = i+4, o+4 {
			fb.mem[o+0] = row[i+2]
			fb.mem[o+1] = row[i+1]
			fb.mem[o+2] = row[i+0]
			fb.mem[o+3] = row[i+3]
		}
	case formatRGB565:
		o := y*fb.lineLength + x*2
		for i := 0; i < len(row); i, o = i+4, o+2 {
			binary.LittleEndian.PutUint16(fb.mem[o:], pixel.PackCRGB16(row[i], row[i+1], row[i+2]))
		}
	case formatBGR565:
		o := y*fb.lineLength + x*2
		for i := 0; i < len(row); i, o = i+4, o+2 {
			binary.LittleEndian.PutUint16(fb.mem[o:], pixel.PackCRGB16(row[i+2], row[i+1], row[i]))
		}
	}
}

// Close unmaps the screen memory and closes the device.
func (fb *linuxFrameBuffer) Close() error {
	if fb.closed {
		return nil
	}
	fb.closed = true
	if err := syscall.Munmap(fb.mem); err != nil {
		_ = fb.f.Close()
		return err
	}
	return fb.f.Close()
}

func (fb *linuxFrameBuffer) ioctl(cmd uintptr, arg unsafe.Pointer) (err error) {
	if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fb.fd, cmd, uintptr(arg)); errno != 0 {
		return &os.SyscallError{
			Syscall: "SYS_IOCTL",
			Err:     errno,
		}
	}
	return nil
}

func linuxParsePixelFormat(info *linuxVarScreenInfo) (pixelFormat, error) {
	if info == nil {
		return 0, errors.New("framebuffer: invalid VarScreenInfo")
	}

	switch info.BitsPerPixel {
	case 16:
		switch {
		case info.Blue.Offset == 0 &&
			info.Blue.Length == 5 &&
			info.Green.Offset == 5 &&
			info.Green.Length == 6 &&
			info.Red.Offset == 11 &&
			info.Red.Length == 5:
			return formatRGB565, nil

		case info.Red.Offset == 0 &&
			info.Red.Length == 5 &&
			info.Green.Offset == 5 &&
			info.Green.Length == 6 &&
			info.Blue.Offset == 11 &&
			info.Blue.Length == 5:
			return formatBGR565, nil
		}

	case 32:
		switch {
		case info.Red.Offset == 0 &&
			info.Green.Offset == 8 &&
			info.Blue.Offset == 16:
			return formatRGBA32, nil

		case info.Blue.Offset == 0 &&
			info.Green.Offset == 8 &&
			info.Red.Offset == 16:
			return formatBGRA32, nil
		}
	}

	return 0, errors.New("framebuffer: unsupported pixel format")
}

type linuxFrameBufferInfo struct {
	ID         [16]byte  // Identification string eg "TT Builtin"
	SmemStart  uintptr   // Start of frame buffer mem
	SmemLen    uint32    // Length of frame buffer mem
	Type       uint32    // FB_TYPE_
	TypeAux    uint32    // Interleave for interleaved Planes
	Visual     uint32    // FB_VISUAL_
	Xpanstep   uint16    // Zero if no hardware panning
	Ypanstep   uint16    // Zero if no hardware panning
	Ywrapstep  uint16    // Zero if no hardware ywrap
	LineLength uint32    // Length of a line in bytes
	MmioStart  uintptr   // Start of Memory Mapped I/O (physical address)
	MmioLen    uint32    // Length of Memory Mapped I/O
	Accel      uint32    // Type of acceleration available
	Reserved   [3]uint16 // Reserved for future compatibility
}

// linuxBitField for the color
type linuxBitField struct {
	Offset   uint32 // Beginning of bitfield
	Length   uint32 // Length of bitfield
	MsbRight uint32 // != 0 : Most significant bit is right
}

// linuxVarScreenInfo contains device independent changeable information about a frame buffer device and a specific video mode.
type linuxVarScreenInfo struct {
	Xres                    uint32
	Yres                    uint32
	XresVirtual             uint32
	YresVirtual             uint32
	Xoffset                 uint32
	Yoffset                 uint32
	BitsPerPixel            uint32
	Grayscale               uint32
	Red, Green, Blue, Alpha linuxBitField
	Nonstd                  uint32
	Activate                uint32
	Height                  uint32
	Width                   uint32
	AccelFlags              uint32
	Pixclock                uint32
	LeftMargin              uint32
	RightMargin             uint32
	UpperMargin             uint32
	LowerMargin             uint32
	HsyncLen                uint32
	VsyncLen                uint32
	Sync                    uint32
	Vmode                   uint32
	Rotate                  uint32
	Colorspace              uint32
	Reserved                [4]uint32
}
