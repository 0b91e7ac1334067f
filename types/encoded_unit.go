package types

import (
	"time"

	"github.com/xaionaro-go/typing"
)

// EncodedUnit is one demuxed access unit. It is owned by whoever holds it;
// the last holder must call Release.
type EncodedUnit interface {
	StreamIndex() int

	// PTS is the presentation timestamp converted to the stream position,
	// it is unset if the source does not know it.
	PTS() typing.Optional[time.Duration]

	Release()
}

// Frame is a decoded and converted unit: RGBA pixels for video,
// interleaved signed 16-bit PCM for audio.
type Frame interface {
	PTS() typing.Optional[time.Duration]

	// RepeatPict is the number of extra fields the frame is to be displayed
	// for: the display time is stretched by RepeatPict/2 frame durations.
	RepeatPict() int

	Bytes() []byte

	Release()
}
