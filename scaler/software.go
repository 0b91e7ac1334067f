package scaler

import (
	"context"
	"fmt"
	"time"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avplayer/frame"
	"github.com/xaionaro-go/avplayer/helpers/closuresignaler"
	"github.com/xaionaro-go/avplayer/internal"
	"github.com/xaionaro-go/avplayer/logger"
	"github.com/xaionaro-go/avplayer/types"
	"github.com/xaionaro-go/typing"
)

// bufferAlign packs the rows without padding, as the sinks expect.
const bufferAlign = 1

type Software struct {
	*astiav.SoftwareScaleContext
	*closuresignaler.ClosureSignaler
}

var _ Scaler = (*Software)(nil)

func NewSoftware(
	ctx context.Context,
	src types.Resolution,
	srcPixFmt astiav.PixelFormat,
	dst types.Resolution,
	dstPixFmt astiav.PixelFormat,
	opts ...astiav.SoftwareScaleContextFlag,
) (*Software, error) {
	swSCtx, err := astiav.CreateSoftwareScaleContext(
		int(src.Width),
		int(src.Height),
		srcPixFmt,
		int(dst.Width),
		int(dst.Height),
		dstPixFmt,
		astiav.NewSoftwareScaleContextFlags(opts...),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create a software scale context: %w", err)
	}
	internal.SetFinalizerFree(ctx, swSCtx)
	return &Software{
		SoftwareScaleContext: swSCtx,
		ClosureSignaler:      closuresignaler.New(),
	}, nil
}

// NewSoftwareToRGBA creates a scaler which keeps the resolution of src
// and converts it to packed RGBA.
func NewSoftwareToRGBA(
	ctx context.Context,
	src *astiav.Frame,
) (*Software, error) {
	res := types.Resolution{Width: uint32(src.Width()), Height: uint32(src.Height())}
	return NewSoftware(ctx, res, src.PixelFormat(), res, astiav.PixelFormatRgba, astiav.SoftwareScaleContextFlagBilinear)
}

func (s *Software) String() string {
	return fmt.Sprintf(
		"SoftwareScaler(%dx%d:%s -> %dx%d:%s)",
		s.SoftwareScaleContext.SourceWidth(),
		s.SoftwareScaleContext.SourceHeight(),
		s.SoftwareScaleContext.SourcePixelFormat(),
		s.SoftwareScaleContext.DestinationWidth(),
		s.SoftwareScaleContext.DestinationHeight(),
		s.SoftwareScaleContext.DestinationPixelFormat(),
	)
}

func (s *Software) Close(ctx context.Context) error {
	logger.Tracef(ctx, "Close")
	defer logger.Tracef(ctx, "/Close")
	s.ClosureSignaler.Close(ctx)
	return nil
}

func (s *Software) ScaleFrame(
	ctx context.Context,
	src *astiav.Frame,
	dst *astiav.Frame,
) (_err error) {
	logger.Tracef(ctx, "ScaleFrame")
	defer logger.Tracef(ctx, "/ScaleFrame: %v", _err)
	if s.IsClosed() {
		return fmt.Errorf("scaler is closed")
	}
	if err := s.SoftwareScaleContext.ScaleFrame(src, dst); err != nil {
		return fmt.Errorf("unable to scale a frame: %w", err)
	}
	return nil
}

// ScaleToDecoded scales src and copies the packed pixels into a pooled
// decoded frame.
func (s *Software) ScaleToDecoded(
	ctx context.Context,
	src *astiav.Frame,
	pts typing.Optional[time.Duration],
	repeatPict int,
) (_ret *frame.Decoded, _err error) {
	dst := frame.Pool.Get()
	defer frame.Pool.Put(dst)
	if err := s.ScaleFrame(ctx, src, dst); err != nil {
		return nil, err
	}

	size, err := dst.ImageBufferSize(bufferAlign)
	if err != nil {
		return nil, fmt.Errorf("unable to get the image buffer size: %w", err)
	}
	result := frame.NewDecoded(pts, repeatPict, size)
	n, err := dst.ImageCopyToBuffer(result.Bytes(), bufferAlign)
	if err != nil {
		result.Release()
		return nil, fmt.Errorf("unable to copy the image: %w", err)
	}
	result.Truncate(n)
	return result, nil
}

func (s *Software) SourceResolution() types.Resolution {
	return types.Resolution{
		Width:  uint32(s.SoftwareScaleContext.SourceWidth()),
		Height: uint32(s.SoftwareScaleContext.SourceHeight()),
	}
}

func (s *Software) SourcePixelFormat() astiav.PixelFormat {
	return s.SoftwareScaleContext.SourcePixelFormat()
}

func (s *Software) DestinationResolution() types.Resolution {
	return types.Resolution{
		Width:  uint32(s.SoftwareScaleContext.DestinationWidth()),
		Height: uint32(s.SoftwareScaleContext.DestinationHeight()),
	}
}

func (s *Software) DestinationPixelFormat() astiav.PixelFormat {
	return s.SoftwareScaleContext.DestinationPixelFormat()
}
