package types

import (
	"fmt"
	"time"
)

// StreamInfo describes one elementary stream of a source.
type StreamInfo struct {
	Index     int
	MediaType MediaType

	// TimeBase is the duration of one timestamp tick, in seconds.
	TimeBase Rational
	Duration time.Duration

	// AvgFrameDuration is the nominal duration of a video frame; zero if unknown.
	AvgFrameDuration time.Duration

	Width       int
	Height      int
	PixelFormat PixelFormat

	SampleRate int
	Channels   int

	// Parameters is an opaque demuxer-specific handle which is passed
	// as is to Decoder.Open (for libav it is *astiav.CodecParameters).
	Parameters any
}

func (s StreamInfo) String() string {
	switch s.MediaType {
	case MediaTypeVideo:
		return fmt.Sprintf("#%d:video(%dx%d, tb:%s)", s.Index, s.Width, s.Height, s.TimeBase)
	case MediaTypeAudio:
		return fmt.Sprintf("#%d:audio(%dHz, %dch, tb:%s)", s.Index, s.SampleRate, s.Channels, s.TimeBase)
	default:
		return fmt.Sprintf("#%d:%s", s.Index, s.MediaType)
	}
}

// StreamInfos is the stream list of a source, in the order of their indexes.
type StreamInfos []StreamInfo

// First returns the first stream of the given media type.
func (s StreamInfos) First(mediaType MediaType) (StreamInfo, bool) {
	for _, stream := range s {
		if stream.MediaType == mediaType {
			return stream, true
		}
	}
	return StreamInfo{}, false
}
