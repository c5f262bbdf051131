package compose

import "image"

// Frame is one fully composited output image covering the time window
// [Index/fps, (Index+1)/fps). Frames are produced, handed to the encoder,
// and discarded; they are never retained by the compositor.
type Frame struct {
	Index    int
	Time     float64
	Degraded bool
	Image    *image.RGBA
}

// RGBA returns the raw pixel buffer in RGBA order, suitable for streaming
// into a rawvideo encoder input.
func (f *Frame) RGBA() []byte {
	return f.Image.Pix
}
