//go:build !linux

package framebuffer

import (
	"errors"

	"github.com/BeatGlow/compositor"
)

var ErrNotSupported = errors.New("framebuffer: not supported")

func Open(_ string) (compositor.Surface, error) {
	return nil, ErrNotSupported
}
