package resampler

import (
	"context"
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avplayer/logger"
)

// Format is a PCM layout.
type Format struct {
	SampleFormat  astiav.SampleFormat
	SampleRate    int
	ChannelLayout astiav.ChannelLayout
}

func (f Format) Equal(cmp Format) bool {
	return f.SampleFormat == cmp.SampleFormat &&
		f.SampleRate == cmp.SampleRate &&
		f.ChannelLayout.Equal(cmp.ChannelLayout)
}

func (f Format) String() string {
	return fmt.Sprintf("%s:%dHz:%s", f.SampleFormat, f.SampleRate, f.ChannelLayout)
}

// BytesPerSample is the size of one sample of all the channels, for
// packed formats.
func (f Format) BytesPerSample() int {
	switch f.SampleFormat {
	case astiav.SampleFormatU8:
		return f.ChannelLayout.Channels()
	case astiav.SampleFormatS16:
		return 2 * f.ChannelLayout.Channels()
	case astiav.SampleFormatS32, astiav.SampleFormatFlt:
		return 4 * f.ChannelLayout.Channels()
	case astiav.SampleFormatDbl:
		return 8 * f.ChannelLayout.Channels()
	default:
		return 0
	}
}

// PlaybackFormat is the interleaved signed 16-bit layout the audio sinks
// take: mono stays mono, everything else becomes stereo.
func PlaybackFormat(sampleRate int, channels int) Format {
	layout := astiav.ChannelLayoutStereo
	if channels == 1 {
		layout = astiav.ChannelLayoutMono
	}
	return Format{
		SampleFormat:  astiav.SampleFormatS16,
		SampleRate:    sampleRate,
		ChannelLayout: layout,
	}
}

func getFormatFromFrame(
	ctx context.Context,
	f *astiav.Frame,
) *Format {
	if f == nil {
		logger.Debugf(ctx, "getFormatFromFrame: nil frame")
		return nil
	}
	return &Format{
		SampleFormat:  f.SampleFormat(),
		SampleRate:    f.SampleRate(),
		ChannelLayout: f.ChannelLayout(),
	}
}
