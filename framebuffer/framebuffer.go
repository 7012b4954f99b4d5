// Package framebuffer exposes the operating system's native framebuffer as
// a compositor surface.
//
// This requires framebuffer device support in the operating system. The
// device can be opened with the [Open] call; committed frames are converted
// to the device's pixel format and copied into the mapped screen memory.
package framebuffer
