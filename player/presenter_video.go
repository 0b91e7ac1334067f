package player

import (
	"context"
	"fmt"
	"time"

	"github.com/xaionaro-go/avplayer/logger"
	"github.com/xaionaro-go/avplayer/types"
)

type videoPresenter struct {
	session *Session
	stream  types.StreamInfo
	sink    types.VideoSink

	// isMaster makes the presenter pace itself by its own timestamps
	// and advance the clock, for sources without audio.
	isMaster bool
}

var _ presenter = (*videoPresenter)(nil)

func (p *videoPresenter) Prepare(ctx context.Context) error {
	if p.stream.Width <= 0 || p.stream.Height <= 0 {
		return fmt.Errorf("invalid video resolution %dx%d", p.stream.Width, p.stream.Height)
	}
	return p.sink.Prepare(ctx, p.stream.Width, p.stream.Height, types.PixelFormatRGBA)
}

func (p *videoPresenter) nominalFrameDuration() time.Duration {
	if p.stream.AvgFrameDuration > 0 {
		return p.stream.AvgFrameDuration
	}
	return p.session.Config.DefaultFrameDuration
}

func (p *videoPresenter) syncConfig() SyncConfig {
	cfg := p.session.Config.Sync
	if p.isMaster {
		// there is no other clock to lag behind, so every positive
		// difference is a frame interval to wait
		cfg.ThresholdMin = 0
	}
	return cfg
}

func (p *videoPresenter) Present(
	ctx context.Context,
	unit stampedUnit,
	frame types.Frame,
) error {
	s := p.session
	changedCh := s.gate.ChangedChan()
	delay := VideoDelay(
		frame.PTS(),
		s.clock.Seconds(),
		p.nominalFrameDuration(),
		frame.RepeatPict(),
		p.syncConfig(),
	)
	logger.Tracef(ctx, "delay: %v", delay)
	if delay > 0 && !p.sleep(ctx, delay, changedCh) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.gate.Wait(ctx); err != nil {
			return err
		}
		if unit.Generation != s.gate.Generation() {
			return errInterrupted
		}
	}

	if err := p.sink.Present(ctx, frame.Bytes()); err != nil {
		return err
	}

	if p.isMaster && unit.Generation == s.gate.Generation() {
		if pts := frame.PTS(); pts.IsSet() {
			s.clock.SetDuration(pts.Get())
		} else {
			s.clock.SetDuration(s.clock.Duration() + delay)
		}
	}
	return nil
}

// sleep returns false if it was interrupted by the context or by the
// gate being held.
func (p *videoPresenter) sleep(
	ctx context.Context,
	d time.Duration,
	changedCh <-chan struct{},
) bool {
	if p.session.gate.IsHeld() {
		return false
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-changedCh:
		return false
	case <-t.C:
		return true
	}
}
