// Package pixel implements the frame buffer and wire color formats used by
// the compositor.
//
// Frames are compatible with Go's native [image.Image] and [draw.Image]
// interfaces, so the standard library drawing primitives work on them.
package pixel
