package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/compositor"
	"github.com/BeatGlow/compositor/encode"
	"github.com/BeatGlow/compositor/framebuffer"
	"github.com/BeatGlow/compositor/pattern"
	"github.com/BeatGlow/compositor/pixel"
	"github.com/BeatGlow/compositor/text"
)

func main() {
	widthFlag := flag.Int("width", 240, "Frame width")
	heightFlag := flag.Int("height", 240, "Frame height")
	workersFlag := flag.Int("workers", 0, "Render workers (0 = single-threaded)")
	clampFlag := flag.Bool("clamp", false, "Clamp out-of-range channel values")
	patternFlag := flag.String("pattern", "gradient", "Pattern: solid, gradient, checker, mandelbrot")
	supersampleFlag := flag.Int("supersample", 1, "Render at N times the size, then downsample")
	labelFlag := flag.String("label", "", "Stamp a text label on each frame")
	outFlag := flag.String("out", "", "Write frames to an image file (.png or .webp)")
	fbdevFlag := flag.String("fbdev", "", "Write frames to a framebuffer device, e.g. /dev/fb0")
	spiFlag := flag.Bool("spi", false, "Write frames to a SPI LCD panel")
	spiPortFlag := flag.String("spi-port", "", "SPI port name (default: use first available)")
	panelFlag := flag.String("panel", "st7789", "Panel model: st7735, st7789")
	resetPinFlag := flag.String("reset", "GPIO25", "Reset GPIO pin")
	dcPinFlag := flag.String("dc", "GPIO24", "Data/Command GPIO pin (DC)")
	rotateFlag := flag.String("rotate", "", "Panel rotation")
	framesFlag := flag.Int("frames", 1, "Number of frames to render (0 = run forever)")
	intervalFlag := flag.Duration("interval", 50*time.Millisecond, "Delay between frames")
	verboseFlag := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if *verboseFlag {
		compositor.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	var rotation compositor.Rotation
	switch *rotateFlag {
	case "", "no", "0":
		rotation = compositor.NoRotation
	case "90", "right", "cw":
		rotation = compositor.Rotate90
	case "180", "flip":
		rotation = compositor.Rotate180
	case "270", "left", "ccw":
		rotation = compositor.Rotate270
	default:
		fatal(fmt.Errorf("invalid rotation %q specified", *rotateFlag))
	}

	var (
		width   = *widthFlag
		height  = *heightFlag
		surface compositor.Surface
		err     error
	)
	switch {
	case *outFlag != "":
		surface, err = encode.NewFileSurface(*outFlag, width, height)
	case *fbdevFlag != "":
		surface, err = framebuffer.Open(*fbdevFlag)
	case *spiFlag:
		surface, err = openPanel(*spiPortFlag, *panelFlag, *resetPinFlag, *dcPinFlag, width, height, rotation)
	default:
		err = fmt.Errorf("no output selected, use -out, -fbdev or -spi")
	}
	if err != nil {
		fatal(err)
	}
	defer surface.Close()

	// Surfaces with a fixed extent dictate the frame size.
	if size := surface.Bounds().Size(); size.X != width || size.Y != height {
		width, height = size.X, size.Y
		fmt.Printf("using surface size %dx%d\n", width, height)
	}

	var (
		ss = *supersampleFlag
		c  = compositor.New(&compositor.Config{
			Clamp:   *clampFlag,
			Workers: *workersFlag,
		})
	)
	if ss < 1 {
		ss = 1
	}

	fmt.Printf("using output: %s\n", surface)
	for offset := 0; *framesFlag == 0 || offset < *framesFlag; offset++ {
		var frame *pixel.Frame
		if frame, err = c.Render(width*ss, height*ss, colorFunc(*patternFlag, width*ss, height*ss, offset)); err != nil {
			fatal(err)
		}
		if frame, err = encode.Downsample(frame, ss); err != nil {
			fatal(err)
		}
		if *labelFlag != "" {
			if err = text.Label(frame, 4, height-6, *labelFlag, nil); err != nil {
				fatal(err)
			}
		}
		if err = c.Commit(frame, surface); err != nil {
			fatal(err)
		}

		if *framesFlag != 1 {
			time.Sleep(*intervalFlag)
		}
	}
}

func colorFunc(name string, width, height, offset int) compositor.ColorFunc {
	switch strings.ToLower(name) {
	case "solid":
		return pattern.Solid(0x20, 0x60, 0xa0, 0xff)
	case "checker":
		return pattern.Checker(8+offset%8,
			[4]int{0xff, 0xff, 0xff, 0xff},
			[4]int{0x00, 0x00, 0x00, 0xff})
	case "mandelbrot":
		span := 3 / (1 + float64(offset)*0.05)
		return pattern.Mandelbrot(width, height, -0.5, 0, span, 128)
	default:
		return pattern.Gradient(offset)
	}
}

func openPanel(port, model, resetPin, dcPin string, width, height int, rotation compositor.Rotation) (compositor.Surface, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}

	conn, err := compositor.OpenSPI(&compositor.SPIConfig{
		Port:  port,
		Reset: gpioreg.ByName(resetPin),
		DC:    gpioreg.ByName(dcPin),
	})
	if err != nil {
		return nil, err
	}

	var panelModel compositor.PanelModel
	switch strings.ToLower(model) {
	case "st7735":
		panelModel = compositor.ST7735
	case "st7789":
		panelModel = compositor.ST7789
	default:
		_ = conn.Close()
		return nil, fmt.Errorf("unsupported panel model %q", model)
	}

	return compositor.OpenPanel(conn, &compositor.PanelConfig{
		Model:    panelModel,
		Width:    width,
		Height:   height,
		Rotation: rotation,
	})
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "fatal: "+err.Error())
	os.Exit(1)
}
