package compositor

import "image"

// Surface is an external raster target that accepts rectangular blocks of
// RGBA samples. Implementations take a copy of the samples during
// AcceptBlock; callers may reuse the slice afterwards.
//
// Surfaces are passed to [Compositor.Commit] explicitly, never reached
// through ambient global state.
type Surface interface {
	// Bounds is the surface extent.
	Bounds() image.Rectangle

	// AcceptBlock stores the RGBA samples for the rectangle r, which must
	// lie within Bounds. len(pix) must be r.Dx()*r.Dy()*4.
	AcceptBlock(r image.Rectangle, pix []byte) error

	// Close releases the surface. Subsequent AcceptBlock calls fail.
	Close() error
}
