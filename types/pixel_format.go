package types

// PixelFormat is the layout of the pixel buffers handed to a VideoSink.
type PixelFormat string

const (
	PixelFormatUndefined = PixelFormat("")
	PixelFormatRGBA      = PixelFormat("rgba")
)

// BytesPerPixel returns 0 for formats which are not packed.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case PixelFormatRGBA:
		return 4
	default:
		return 0
	}
}
