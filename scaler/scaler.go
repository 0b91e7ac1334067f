// Package scaler converts decoded video frames into the pixel layout
// the video sinks take.
package scaler

import (
	"context"
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avplayer/types"
)

type Scaler interface {
	fmt.Stringer
	Close(context.Context) error
	ScaleFrame(ctx context.Context, src *astiav.Frame, dst *astiav.Frame) error
	SourceResolution() types.Resolution
	SourcePixelFormat() astiav.PixelFormat
	DestinationResolution() types.Resolution
	DestinationPixelFormat() astiav.PixelFormat
}

// Matches reports whether the scaler was created for frames like src.
func Matches(s Scaler, src *astiav.Frame) bool {
	return s.SourcePixelFormat() == src.PixelFormat() &&
		s.SourceResolution() == types.Resolution{Width: uint32(src.Width()), Height: uint32(src.Height())}
}
