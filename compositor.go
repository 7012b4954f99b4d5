// Package compositor computes full frames of pixel data in memory and
// transfers them to an external raster surface in a single bulk operation.
//
// Crossing the surface boundary carries a fixed per-call overhead, so a
// frame is always computed locally and committed with exactly one transfer
// instead of one transfer per pixel.
package compositor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/BeatGlow/compositor/pixel"
)

// Errors
var (
	ErrInvalidDimension   = errors.New("compositor: invalid frame dimension")
	ErrColorRange         = errors.New("compositor: color channel out of range")
	ErrSurfaceUnavailable = errors.New("compositor: surface unavailable")
	ErrBounds             = errors.New("compositor: block out of surface bounds")
)

// ColorFunc computes the color of the pixel at (x, y). Each channel must be
// in [0, 255]. The function must be pure: it is evaluated exactly once per
// coordinate, possibly from multiple goroutines, and must not touch the
// frame being rendered.
type ColorFunc func(x, y int) (r, g, b, a int)

// Config is the compositor configuration.
type Config struct {
	// Clamp out-of-range channel values to [0, 255] instead of failing
	// with ErrColorRange.
	Clamp bool

	// Workers is the number of goroutines rendering rows. Values below 2
	// select single-threaded rendering.
	Workers int
}

// DefaultConfig are the default configuration values.
var DefaultConfig = Config{}

// Compositor renders frames and commits them to raster surfaces.
type Compositor struct {
	clamp   bool
	workers int
}

// New returns a compositor, using [DefaultConfig] if config is nil.
func New(config *Config) *Compositor {
	if config == nil {
		config = new(Config)
		*config = DefaultConfig
	}
	return &Compositor{
		clamp:   config.Clamp,
		workers: config.Workers,
	}
}

// Render evaluates f for every coordinate in row-major order and returns the
// fully populated frame. The four channel bytes for (x, y) land at sample
// offset (y*width+x)*4.
func (c *Compositor) Render(width, height int, f ColorFunc) (*pixel.Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, width, height)
	}

	frame := pixel.NewFrame(width, height)
	if n := c.rowWorkers(height); n > 1 {
		if err := c.renderParallel(frame, f, n); err != nil {
			return nil, err
		}
	} else if err := c.renderRows(frame, f, 0, height); err != nil {
		return nil, err
	}
	return frame, nil
}

// Commit transfers the frame to the surface in one bulk operation covering
// the full extent at origin (0, 0). The surface takes a copy; the frame may
// be reused or discarded as soon as Commit returns.
func (c *Compositor) Commit(frame *pixel.Frame, s Surface) error {
	if frame == nil || frame.Rect.Empty() {
		return fmt.Errorf("%w: empty frame", ErrInvalidDimension)
	}

	if v := s.Bounds().Size(); !v.Eq(frame.Rect.Size()) {
		return fmt.Errorf("%w: frame is %s, surface is %s", ErrSurfaceUnavailable, frame.Rect.Size(), v)
	}

	logger().Debug("commit", "bounds", frame.Rect, "bytes", len(frame.Pix))
	if err := s.AcceptBlock(frame.Rect, frame.Pix); err != nil {
		return fmt.Errorf("%w: %w", ErrSurfaceUnavailable, err)
	}
	return nil
}

func (c *Compositor) rowWorkers(height int) int {
	n := c.workers
	if n > height {
		n = height
	}
	return n
}

func (c *Compositor) renderRows(frame *pixel.Frame, f ColorFunc, y0, y1 int) error {
	width := frame.Rect.Dx()
	for y := y0; y < y1; y++ {
		i := y * frame.Stride
		for x := 0; x < width; x++ {
			r, g, b, a := f(x, y)
			if c.clamp {
				r, g, b, a = clamp8(r), clamp8(g), clamp8(b), clamp8(a)
			} else if uint(r)|uint(g)|uint(b)|uint(a) > 0xff {
				// Negative values wrap to large uints.
				return fmt.Errorf("%w: (%d,%d,%d,%d) at (%d,%d)", ErrColorRange, r, g, b, a, x, y)
			}
			frame.Pix[i+0] = byte(r)
			frame.Pix[i+1] = byte(g)
			frame.Pix[i+2] = byte(b)
			frame.Pix[i+3] = byte(a)
			i += 4
		}
	}
	return nil
}

// renderParallel splits the frame into contiguous row bands, one per worker.
// Every output offset is written by exactly one goroutine, so no locking is
// needed beyond the final join.
func (c *Compositor) renderParallel(frame *pixel.Frame, f ColorFunc, workers int) error {
	var (
		height = frame.Rect.Dy()
		band   = (height + workers - 1) / workers
		errs   = make([]error, workers)
		wg     sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		y0 := w * band
		y1 := y0 + band
		if y1 > height {
			y1 = height
		}
		if y0 >= y1 {
			break
		}

		wg.Add(1)
		go func(w, y0, y1 int) {
			defer wg.Done()
			errs[w] = c.renderRows(frame, f, y0, y1)
		}(w, y0, y1)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func clamp8(v int) int {
	if v < 0 {
		return 0
	}
	if v > 0xff {
		return 0xff
	}
	return v
}
