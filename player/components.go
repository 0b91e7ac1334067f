package player

import (
	"context"
	"errors"
	"fmt"

	"github.com/xaionaro-go/avplayer/types"
)

// Components are the collaborators a Session plays with. A stream is
// played only if both its decoder and its sink are set; the session
// takes the ownership of every non-nil component and closes it on
// teardown (or on a failed start).
type Components struct {
	Demuxer      types.Demuxer
	VideoDecoder types.Decoder
	AudioDecoder types.Decoder
	VideoSink    types.VideoSink
	AudioSink    types.AudioSink

	// Callback may be nil; if it implements types.ErrorHandler it also
	// receives the non-fatal errors.
	Callback types.PlaybackCallback
}

func (c *Components) closers() []types.Closer {
	var result []types.Closer
	if c.VideoDecoder != nil {
		result = append(result, c.VideoDecoder)
	}
	if c.AudioDecoder != nil {
		result = append(result, c.AudioDecoder)
	}
	if c.VideoSink != nil {
		result = append(result, c.VideoSink)
	}
	if c.AudioSink != nil {
		result = append(result, c.AudioSink)
	}
	if c.Demuxer != nil {
		result = append(result, c.Demuxer)
	}
	return result
}

// Close closes every component, in the order consumers to producer.
func (c *Components) Close(ctx context.Context) error {
	var mErr []error
	for _, closer := range c.closers() {
		if err := closer.Close(ctx); err != nil {
			mErr = append(mErr, fmt.Errorf("unable to close %T: %w", closer, err))
		}
	}
	return errors.Join(mErr...)
}
