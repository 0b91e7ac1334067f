// Package codec is the libav decoder of the player; it converts the
// decoded frames into RGBA or interleaved signed 16-bit PCM.
package codec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/asticode/go-astiav"
	"github.com/asticode/go-astikit"
	"github.com/facebookincubator/go-belt"
	"github.com/xaionaro-go/avplayer/avconv"
	"github.com/xaionaro-go/avplayer/frame"
	"github.com/xaionaro-go/avplayer/logger"
	"github.com/xaionaro-go/avplayer/packet"
	"github.com/xaionaro-go/avplayer/resampler"
	"github.com/xaionaro-go/avplayer/scaler"
	"github.com/xaionaro-go/avplayer/types"
	"github.com/xaionaro-go/typing"
	"github.com/xaionaro-go/xsync"
)

type Config struct {
	CodecName     Name
	CustomOptions types.DictionaryItems

	// ThreadCount is passed to libav as is; zero lets libav decide.
	ThreadCount int
}

type Decoder struct {
	Config Config

	locker       xsync.Mutex
	closer       *astikit.Closer
	codec        *astiav.Codec
	codecContext *astiav.CodecContext
	stream       types.StreamInfo
	timeBase     astiav.Rational

	scaler    *scaler.Software
	resampler *resampler.Resampler
}

var _ types.Decoder = (*Decoder)(nil)

func NewDecoder(cfg Config) *Decoder {
	return &Decoder{
		Config: cfg,
	}
}

func (d *Decoder) String() string {
	if d.codec == nil {
		return "Decoder(<not opened>)"
	}
	return fmt.Sprintf("Decoder(%s)", d.codec.Name())
}

func (d *Decoder) Open(
	ctx context.Context,
	stream types.StreamInfo,
) (_err error) {
	logger.Debugf(ctx, "Open(%s)", stream)
	defer func() { logger.Debugf(ctx, "/Open(%s): %v", stream, _err) }()
	return xsync.DoA2R1(ctx, &d.locker, d.openLocked, ctx, stream)
}

func (d *Decoder) openLocked(
	ctx context.Context,
	stream types.StreamInfo,
) (_err error) {
	if d.codecContext != nil {
		return fmt.Errorf("the decoder is already opened")
	}
	codecParameters, ok := stream.Parameters.(*astiav.CodecParameters)
	if !ok || codecParameters == nil {
		return fmt.Errorf("stream %s carries no libav codec parameters (%T)", stream, stream.Parameters)
	}

	d.codec = findDecoder(ctx, codecParameters.CodecID(), d.Config.CodecName)
	if d.codec == nil {
		return fmt.Errorf("unable to find a decoder for codec ID %s", codecParameters.CodecID())
	}
	ctx = belt.WithField(ctx, "codec_id", d.codec.ID())
	logger.Tracef(ctx, "codec name: '%s' (%s)", d.codec.Name(), d.codec.ID())

	d.closer = astikit.NewCloser()
	d.codecContext = astiav.AllocCodecContext(d.codec)
	if d.codecContext == nil {
		d.codec = nil
		return fmt.Errorf("unable to allocate codec context")
	}
	d.closer.Add(d.codecContext.Free)
	defer func() {
		if _err != nil {
			d.closeLocked(ctx)
		}
	}()

	if err := codecParameters.ToCodecContext(d.codecContext); err != nil {
		return fmt.Errorf("codecParameters.ToCodecContext(...) returned error: %w", err)
	}
	d.stream = stream
	d.timeBase = avconv.RationalToAstiav(stream.TimeBase)
	d.codecContext.SetPktTimeBase(d.timeBase)
	if d.Config.ThreadCount > 0 {
		d.codecContext.SetThreadCount(d.Config.ThreadCount)
	}

	options := avconv.DictionaryItemsToAstiav(ctx, d.Config.CustomOptions)
	logger.Tracef(ctx, "d.codecContext.Open(%#+v, %#+v)", d.codec, options)
	if err := d.codecContext.Open(d.codec, options); err != nil {
		return fmt.Errorf("unable to open codec context: %w", err)
	}
	return nil
}

// Submit takes the packet of a *packet.Unit; the unit stays owned by
// the caller.
func (d *Decoder) Submit(
	ctx context.Context,
	unit types.EncodedUnit,
) error {
	u, ok := unit.(*packet.Unit)
	if !ok {
		return fmt.Errorf("unexpected unit type %T", unit)
	}
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &d.locker, func() error {
		if d.codecContext == nil {
			return fmt.Errorf("the decoder is not opened")
		}
		err := d.codecContext.SendPacket(u.Packet)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, astiav.ErrEagain):
			return types.ErrWouldBlock
		case errors.Is(err, astiav.ErrEof):
			return io.EOF
		default:
			return fmt.Errorf("unable to send a packet to the decoder: %w", err)
		}
	})
}

func (d *Decoder) ReceiveFrame(
	ctx context.Context,
) (types.Frame, error) {
	return xsync.DoA1R2(xsync.WithNoLogging(ctx, true), &d.locker, d.receiveFrameLocked, ctx)
}

func (d *Decoder) receiveFrameLocked(
	ctx context.Context,
) (types.Frame, error) {
	if d.codecContext == nil {
		return nil, fmt.Errorf("the decoder is not opened")
	}
	for {
		f := frame.Pool.Get()
		err := d.codecContext.ReceiveFrame(f)
		if err != nil {
			frame.Pool.Put(f)
			isEOF := errors.Is(err, astiav.ErrEof)
			isEAgain := errors.Is(err, astiav.ErrEagain)
			logger.Tracef(ctx, "decoder.ReceiveFrame(): %v (isEOF:%t, isEAgain:%t)", err, isEOF, isEAgain)
			switch {
			case isEOF:
				return nil, io.EOF
			case isEAgain:
				return nil, types.ErrWouldBlock
			default:
				return nil, fmt.Errorf("unable to receive a frame from the decoder: %w", err)
			}
		}

		result, err := d.convert(ctx, f)
		frame.Pool.Put(f)
		if err != nil {
			return nil, err
		}
		if result == nil {
			// the resampler keeps the samples until the next frame
			continue
		}
		return result, nil
	}
}

func (d *Decoder) convert(
	ctx context.Context,
	f *astiav.Frame,
) (*frame.Decoded, error) {
	pts := d.framePTS(f)
	switch d.stream.MediaType {
	case types.MediaTypeVideo:
		if d.scaler == nil || !scaler.Matches(d.scaler, f) {
			if d.scaler != nil {
				logger.Debugf(ctx, "the frame geometry changed, recreating the scaler")
				d.scaler.Close(ctx)
			}
			s, err := scaler.NewSoftwareToRGBA(ctx, f)
			if err != nil {
				return nil, err
			}
			d.scaler = s
		}
		return d.scaler.ScaleToDecoded(ctx, f, pts, d.repeatPict(f))
	case types.MediaTypeAudio:
		if d.resampler == nil {
			r, err := resampler.New(ctx, resampler.PlaybackFormat(f.SampleRate(), f.ChannelLayout().Channels()))
			if err != nil {
				return nil, err
			}
			d.resampler = r
		}
		result, err := d.resampler.ResampleToDecoded(ctx, f, pts)
		if errors.Is(err, astiav.ErrInputChanged) {
			logger.Debugf(ctx, "the audio format changed, recreating the resampler: %v", err)
			d.resampler.Close(ctx)
			d.resampler = nil
			return d.convert(ctx, f)
		}
		return result, err
	default:
		return nil, fmt.Errorf("unsupported media type %s", d.stream.MediaType)
	}
}

func (d *Decoder) framePTS(f *astiav.Frame) typing.Optional[time.Duration] {
	if pts := avconv.Duration(f.Pts(), d.timeBase); pts.IsSet() {
		return pts
	}
	return avconv.Duration(f.PktDts(), d.timeBase)
}

func (d *Decoder) repeatPict(f *astiav.Frame) int {
	if f.Duration() <= 0 {
		return 0
	}
	dur := avconv.Duration(f.Duration(), d.timeBase)
	if !dur.IsSet() {
		return 0
	}
	return RepeatPict(dur.Get(), d.stream.AvgFrameDuration)
}

// RepeatPict is the number of extra fields a frame of the given
// duration is shown for, relative to the nominal frame duration.
func RepeatPict(frameDuration, nominal time.Duration) int {
	if nominal <= 0 || frameDuration <= nominal {
		return 0
	}
	return int(math.Round(2 * float64(frameDuration-nominal) / float64(nominal)))
}

// Reset drops the buffered frames and samples; it is used after a seek.
func (d *Decoder) Reset(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "Reset")
	defer func() { logger.Debugf(ctx, "/Reset: %v", _err) }()
	return xsync.DoR1(ctx, &d.locker, func() error {
		if d.codecContext == nil {
			return fmt.Errorf("the decoder is not opened")
		}
		d.codecContext.FlushBuffers()
		if d.resampler != nil {
			d.resampler.Close(ctx)
			d.resampler = nil
		}
		return nil
	})
}

func (d *Decoder) Close(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "Close")
	defer func() { logger.Debugf(ctx, "/Close: %v", _err) }()
	return xsync.DoA1R1(ctx, &d.locker, d.closeLocked, ctx)
}

func (d *Decoder) closeLocked(ctx context.Context) error {
	if d.closer == nil {
		return nil
	}
	if d.scaler != nil {
		d.scaler.Close(ctx)
		d.scaler = nil
	}
	if d.resampler != nil {
		d.resampler.Close(ctx)
		d.resampler = nil
	}
	err := d.closer.Close()
	d.closer = nil
	d.codecContext = nil
	return err
}
