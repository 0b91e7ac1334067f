package types

import "fmt"

// MediaType is the kind of an elementary stream. The values mirror
// FFmpeg's AVMediaType, so a libav media type converts with a plain cast.
type MediaType int

const (
	MediaTypeUnknown  = MediaType(-1)
	MediaTypeVideo    = MediaType(0)
	MediaTypeAudio    = MediaType(1)
	MediaTypeData     = MediaType(2)
	MediaTypeSubtitle = MediaType(3)
)

func (t MediaType) String() string {
	switch t {
	case MediaTypeVideo:
		return "video"
	case MediaTypeAudio:
		return "audio"
	case MediaTypeData:
		return "data"
	case MediaTypeSubtitle:
		return "subtitle"
	case MediaTypeUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("MediaType(%d)", int(t))
	}
}
