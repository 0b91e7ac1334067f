// Package resampler converts decoded audio frames into the PCM layout
// the audio sinks take.
package resampler

import (
	"context"
	"fmt"
	"time"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avplayer/frame"
	"github.com/xaionaro-go/avplayer/internal"
	"github.com/xaionaro-go/avplayer/logger"
	"github.com/xaionaro-go/typing"
)

// bufferAlign packs the samples without padding.
const bufferAlign = 1

type Resampler struct {
	SoftwareResampleContext *astiav.SoftwareResampleContext
	FormatInput             *Format
	FormatOutput            Format
}

func New(
	ctx context.Context,
	out Format,
) (_ret *Resampler, _err error) {
	logger.Tracef(ctx, "New: %s", out)
	defer func() { logger.Tracef(ctx, "/New: %s: %v %v", out, _ret, _err) }()

	swrCtx := astiav.AllocSoftwareResampleContext()
	if swrCtx == nil {
		return nil, fmt.Errorf("cannot alloc SoftwareResampleContext")
	}
	internal.SetFinalizerFree(ctx, swrCtx)

	return &Resampler{
		SoftwareResampleContext: swrCtx,
		FormatOutput:            out,
	}, nil
}

func (r *Resampler) Close(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "Close")
	defer func() { logger.Debugf(ctx, "/Close: %v", _err) }()

	// freed by the finalizer
	r.SoftwareResampleContext = nil
	return nil
}

func (r *Resampler) String() string {
	return fmt.Sprintf("Resampler<%s>", r.FormatOutput)
}

// Resample converts the frame; the result is nil if the resampler
// buffered all the samples.
func (r *Resampler) Resample(
	ctx context.Context,
	in *astiav.Frame,
) (_ret *astiav.Frame, _err error) {
	logger.Tracef(ctx, "Resample: %d", in.NbSamples())
	defer func() { logger.Tracef(ctx, "/Resample: %d: %v", in.NbSamples(), _err) }()

	if r.SoftwareResampleContext == nil {
		return nil, fmt.Errorf("resampler is closed")
	}

	inFormat := getFormatFromFrame(ctx, in)
	if r.FormatInput == nil {
		r.FormatInput = inFormat
	} else if !r.FormatInput.Equal(*inFormat) {
		return nil, fmt.Errorf("input frame format changed: %s -> %s: %w", r.FormatInput, inFormat, astiav.ErrInputChanged)
	}

	out := frame.Pool.Get()
	out.SetChannelLayout(r.FormatOutput.ChannelLayout)
	out.SetSampleFormat(r.FormatOutput.SampleFormat)
	out.SetSampleRate(r.FormatOutput.SampleRate)
	if err := r.SoftwareResampleContext.ConvertFrame(in, out); err != nil {
		frame.Pool.Put(out)
		return nil, fmt.Errorf("cannot convert frame: %w", err)
	}
	if out.NbSamples() == 0 {
		frame.Pool.Put(out)
		return nil, nil
	}
	return out, nil
}

// ResampleToDecoded converts the frame and copies the samples into a
// pooled decoded frame; the result is nil if no samples came out.
func (r *Resampler) ResampleToDecoded(
	ctx context.Context,
	in *astiav.Frame,
	pts typing.Optional[time.Duration],
) (*frame.Decoded, error) {
	out, err := r.Resample(ctx, in)
	if err != nil || out == nil {
		return nil, err
	}
	defer frame.Pool.Put(out)

	size, err := out.SamplesBufferSize(bufferAlign)
	if err != nil {
		return nil, fmt.Errorf("unable to get sample buffer size: %w", err)
	}
	result := frame.NewDecoded(pts, 0, size)
	n, err := out.SamplesCopyToBuffer(result.Bytes(), bufferAlign)
	if err != nil {
		result.Release()
		return nil, fmt.Errorf("unable to copy samples to buffer: %w", err)
	}
	result.Truncate(n)
	return result, nil
}
