package codec

import (
	"context"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avplayer/logger"
)

// Name is a libav decoder name, for example "h264" or "libdav1d".
type Name string

// NameAuto picks the decoder by the codec ID of the stream.
const NameAuto = Name("")

func (n Name) Codec(
	ctx context.Context,
) (_ret *astiav.Codec) {
	logger.Tracef(ctx, "findDecoderByName(ctx, '%s')", n)
	defer func() { logger.Tracef(ctx, "/findDecoderByName(ctx, '%s'): %v", n, _ret) }()
	if n == NameAuto {
		return nil
	}
	return astiav.FindDecoderByName(string(n))
}

func findDecoder(
	ctx context.Context,
	codecID astiav.CodecID,
	codecName Name,
) *astiav.Codec {
	if codecName != NameAuto {
		if r := codecName.Codec(ctx); r != nil {
			return r
		}
		logger.Warnf(ctx, "unable to find decoder '%s', falling back to codec ID %s", codecName, codecID)
	}
	return astiav.FindDecoder(codecID)
}
