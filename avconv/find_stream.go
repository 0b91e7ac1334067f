package avconv

import (
	"time"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avplayer/types"
)

func FindStreamByIndex(
	fmtCtx *astiav.FormatContext,
	streamIndex int,
) *astiav.Stream {
	for _, stream := range fmtCtx.Streams() {
		if stream.Index() == streamIndex {
			return stream
		}
	}
	return nil
}

func MediaType(t astiav.MediaType) types.MediaType {
	return types.MediaType(t)
}

// StreamInfo describes a libav stream; the codec parameters are passed
// along for the decoder.
func StreamInfo(stream *astiav.Stream) types.StreamInfo {
	params := stream.CodecParameters()
	info := types.StreamInfo{
		Index:      stream.Index(),
		MediaType:  MediaType(params.MediaType()),
		TimeBase:   RationalFromAstiav(stream.TimeBase()),
		Parameters: params,
	}
	if d := Duration(stream.Duration(), stream.TimeBase()); d.IsSet() && d.Get() > 0 {
		info.Duration = d.Get()
	}
	switch info.MediaType {
	case types.MediaTypeVideo:
		info.Width = params.Width()
		info.Height = params.Height()
		info.PixelFormat = types.PixelFormat(params.PixelFormat().String())
		if fps := stream.AvgFrameRate().Float64(); fps > 0 {
			info.AvgFrameDuration = time.Duration(float64(time.Second) / fps)
		}
	case types.MediaTypeAudio:
		info.SampleRate = params.SampleRate()
		info.Channels = params.ChannelLayout().Channels()
	}
	return info
}
