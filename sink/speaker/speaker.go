//go:build with_audio
// +build with_audio

package speaker

import (
	"context"
	"fmt"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/xaionaro-go/avplayer/logger"
	"github.com/xaionaro-go/avplayer/types"
)

const (
	defaultBufferDuration = 100 * time.Millisecond
	defaultBacklog        = 8
)

type Speaker struct {
	*Streamer
	BufferDuration time.Duration
}

var _ types.AudioSink = (*Speaker)(nil)

func New() *Speaker {
	return &Speaker{
		BufferDuration: defaultBufferDuration,
	}
}

func (s *Speaker) String() string {
	return "Speaker"
}

func (s *Speaker) Prepare(
	ctx context.Context,
	sampleRate, channels int,
) (_err error) {
	logger.Debugf(ctx, "Prepare(%d, %d)", sampleRate, channels)
	defer func() { logger.Debugf(ctx, "/Prepare(%d, %d): %v", sampleRate, channels, _err) }()
	if channels < 1 || channels > 2 {
		return fmt.Errorf("unsupported channel count %d", channels)
	}
	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(s.BufferDuration)); err != nil {
		return fmt.Errorf("unable to initialize the speaker: %w", err)
	}
	s.Streamer = NewStreamer(channels, defaultBacklog)
	speaker.Play(s.Streamer)
	return nil
}

func (s *Speaker) Write(ctx context.Context, pcm []byte) error {
	if s.Streamer == nil {
		return fmt.Errorf("the speaker is not prepared")
	}
	return s.Streamer.Write(ctx, pcm)
}

func (s *Speaker) Close(ctx context.Context) error {
	if s.Streamer == nil {
		return nil
	}
	logger.Debugf(ctx, "Close: underruns: %d", s.Streamer.Underruns())
	s.Streamer.Close(ctx)
	speaker.Clear()
	return nil
}
