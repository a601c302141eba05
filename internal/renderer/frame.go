package renderer

import (
	"image"

	"github.com/ivlev/math2video/internal/system"
)

// Frame is one captured tick. Image is borrowed from the shared buffer pool;
// call Release once the frame has been encoded.
type Frame struct {
	Index      int
	Elapsed    float64 // seconds since start
	Normalized float64 // Elapsed / total duration, in [0,1]
	Image      *image.RGBA
}

// Release returns the pixel buffer to the pool. The frame must not be used
// afterwards.
func (f *Frame) Release() {
	if f.Image != nil {
		system.PutImage(f.Image)
		f.Image = nil
	}
}
