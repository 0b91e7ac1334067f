package player

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/avplayer/types"
)

type audioPresenter struct {
	stream types.StreamInfo
	sink   types.AudioSink
}

var _ presenter = (*audioPresenter)(nil)

func (p *audioPresenter) Prepare(ctx context.Context) error {
	if p.stream.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", p.stream.SampleRate)
	}
	return p.sink.Prepare(ctx, p.stream.SampleRate, types.OutputAudioChannels(p.stream.Channels))
}

// Present never waits: audio is the clock.
func (p *audioPresenter) Present(
	ctx context.Context,
	_ stampedUnit,
	frame types.Frame,
) error {
	return p.sink.Write(ctx, frame.Bytes())
}
