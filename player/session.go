// Package player schedules the playback of one source: a producer
// goroutine demuxes the units into per-stream queues, a consumer
// goroutine per stream decodes and presents them, audio drives the clock.
package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/facebookincubator/go-belt/tool/experimental/errmon"
	"github.com/xaionaro-go/avplayer/clock"
	"github.com/xaionaro-go/avplayer/helpers/closuresignaler"
	"github.com/xaionaro-go/avplayer/logger"
	"github.com/xaionaro-go/avplayer/seekgate"
	"github.com/xaionaro-go/avplayer/types"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/xcontext"
	"github.com/xaionaro-go/xsync"
)

// Session is one playback of one source.
type Session struct {
	Config Config

	components Components
	video      *consumer
	audio      *consumer

	clock *clock.AVClock
	gate  *seekgate.Gate

	cancelFn    context.CancelFunc
	consumersWG sync.WaitGroup
	done        *closuresignaler.ClosureSignaler

	demuxLocker xsync.Mutex
	endLocker   xsync.Mutex
	isEnded     bool

	pauseLocker  xsync.Mutex
	pauseRelease func()

	counters counters
}

// Start opens the decoders, prepares the sinks and starts the playback.
//
// Setup failures are returned synchronously: no goroutine is started
// and every component is closed. The session lives until the end of the
// stream, Stop or the cancellation of ctx.
func Start(
	ctx context.Context,
	components Components,
	cfg Config,
) (_ret *Session, _err error) {
	logger.Debugf(ctx, "Start")
	defer func() { logger.Debugf(ctx, "/Start: %v", _err) }()

	if components.Demuxer == nil {
		return nil, ErrSetup{Stage: "start", Err: fmt.Errorf("no demuxer")}
	}
	defer func() {
		if _err == nil {
			return
		}
		if err := components.Close(xcontext.DetachDone(ctx)); err != nil {
			logger.Errorf(ctx, "unable to close the components: %v", err)
		}
	}()
	if err := cfg.Validate(); err != nil {
		return nil, ErrSetup{Stage: "validate the config", Err: err}
	}

	s := &Session{
		Config:     cfg,
		components: components,
		clock:      clock.New(),
		gate:       seekgate.New(),
		done:       closuresignaler.New(),
	}

	streams := components.Demuxer.Streams()
	if stream, ok := streams.First(types.MediaTypeVideo); ok && components.VideoDecoder != nil && components.VideoSink != nil {
		s.video = newConsumer(s, stream, components.VideoDecoder, cfg.QueueCapacity)
		s.video.presenter = &videoPresenter{session: s, stream: stream, sink: components.VideoSink}
	}
	if stream, ok := streams.First(types.MediaTypeAudio); ok && components.AudioDecoder != nil && components.AudioSink != nil {
		s.audio = newConsumer(s, stream, components.AudioDecoder, cfg.QueueCapacity)
		s.audio.presenter = &audioPresenter{stream: stream, sink: components.AudioSink}
	}
	switch {
	case s.audio != nil:
		s.audio.isMaster = true
	case s.video != nil:
		s.video.isMaster = true
		s.video.presenter.(*videoPresenter).isMaster = true
	default:
		return nil, ErrSetup{Stage: "select the streams", Err: types.ErrNoPlayableStreams{}}
	}

	for _, c := range s.consumers() {
		if err := c.setup(logger.CtxWithStream(ctx, c.stream.MediaType.String())); err != nil {
			return nil, err
		}
		logger.Debugf(ctx, "playing stream %s (master: %t)", c.stream, c.isMaster)
	}

	ctx, s.cancelFn = context.WithCancel(ctx)
	for _, c := range s.consumers() {
		s.consumersWG.Add(1)
		observability.Go(ctx, func(ctx context.Context) {
			defer s.consumersWG.Done()
			c.run(logger.CtxWithStream(ctx, c.stream.MediaType.String()))
		})
	}
	observability.Go(ctx, func(ctx context.Context) {
		s.runProducer(ctx)
	})
	return s, nil
}

func (s *Session) consumers() []*consumer {
	result := make([]*consumer, 0, 2)
	if s.audio != nil {
		result = append(result, s.audio)
	}
	if s.video != nil {
		result = append(result, s.video)
	}
	return result
}

func (s *Session) String() string {
	return fmt.Sprintf("Session(%s, %s)", s.clock, s.gate)
}

// Seek repositions the playback. Seeks are serialized; a seek of a
// session which has ended returns ErrSessionEnded. The session counts as
// ended once the whole source was read, even if the buffered units are
// still being played, and once it is stopped.
//
// Every stream is repositioned even if some of them fail. If none could
// be repositioned the seek is abandoned and the playback goes on from
// where it was (minus the buffered units).
func (s *Session) Seek(
	ctx context.Context,
	position time.Duration,
) (_err error) {
	logger.Debugf(ctx, "Seek(%v)", position)
	defer func() { logger.Debugf(ctx, "/Seek(%v): %v", position, _err) }()
	if position < 0 {
		position = 0
	}

	seek, err := s.gate.BeginSeek(ctx)
	if err != nil {
		return fmt.Errorf("unable to begin the seek: %w", err)
	}
	defer seek.End(ctx)

	isEnded := xsync.DoR1(ctx, &s.endLocker, func() bool {
		if s.isEnded {
			return true
		}
		for _, c := range s.consumers() {
			c.queue.Clear(ctx)
		}
		return false
	})
	if isEnded {
		return ErrSessionEnded
	}
	s.counters.Seeks.Inc()

	return xsync.DoA3R1(ctx, &s.demuxLocker, s.repositionLocked, ctx, seek, position)
}

func (s *Session) repositionLocked(
	ctx context.Context,
	seek *seekgate.Seek,
	position time.Duration,
) error {
	repositioned := 0
	var mErr []error
	for _, c := range s.consumers() {
		err := s.components.Demuxer.Seek(ctx, c.stream.Index, position)
		if err != nil {
			err = ErrSeek{StreamIndex: c.stream.Index, Err: err}
			s.counters.SeekErrors.Inc()
			s.reportError(ctx, err)
			mErr = append(mErr, err)
			continue
		}
		repositioned++
	}
	if s.hasEnded(ctx) {
		logger.Debugf(ctx, "the session ended while seeking")
		return ErrSessionEnded
	}
	if repositioned == 0 {
		logger.Warnf(ctx, "the seek to %v was abandoned", position)
		return errors.Join(mErr...)
	}

	seek.Commit(ctx)
	if s.Config.ResetClockOnSeek {
		s.clock.Reset(position)
	}
	return errors.Join(mErr...)
}

// Pause holds the pipeline at its next step; the buffered units are kept.
func (s *Session) Pause(ctx context.Context) {
	logger.Debugf(ctx, "Pause")
	defer func() { logger.Debugf(ctx, "/Pause") }()
	s.pauseLocker.Do(ctx, func() {
		if s.pauseRelease != nil {
			return
		}
		s.pauseRelease = s.gate.Hold(ctx)
	})
}

func (s *Session) Resume(ctx context.Context) {
	logger.Debugf(ctx, "Resume")
	defer func() { logger.Debugf(ctx, "/Resume") }()
	s.pauseLocker.Do(ctx, func() {
		if s.pauseRelease == nil {
			return
		}
		s.pauseRelease()
		s.pauseRelease = nil
	})
}

func (s *Session) hasEnded(ctx context.Context) bool {
	return xsync.DoR1(ctx, &s.endLocker, func() bool {
		return s.isEnded
	})
}

func (s *Session) IsPaused() bool {
	return xsync.DoR1(xsync.WithNoLogging(context.TODO(), true), &s.pauseLocker, func() bool {
		return s.pauseRelease != nil
	})
}

// Stop interrupts the playback and waits for the teardown. OnEnd is not
// emitted for a stopped session. It is safe to call Stop multiple times.
func (s *Session) Stop(ctx context.Context) error {
	logger.Debugf(ctx, "Stop")
	defer func() { logger.Debugf(ctx, "/Stop") }()
	s.cancelFn()
	return s.Wait(ctx)
}

// Wait blocks until the session is torn down and returns the teardown error.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done.CloseChan():
		return s.done.Err()
	}
}

// Done is closed when the session is torn down.
func (s *Session) Done() <-chan struct{} {
	return s.done.CloseChan()
}

// Position is the current playback position according to the clock.
func (s *Session) Position() time.Duration {
	return s.clock.Duration()
}

func (s *Session) Duration() time.Duration {
	return s.components.Demuxer.Duration()
}

func (s *Session) Statistics() Statistics {
	return Statistics{
		UnitsRead:      s.counters.UnitsRead.Load(),
		UnitsUntracked: s.counters.UnitsUntracked.Load(),
		Seeks:          s.counters.Seeks.Load(),
		SeekErrors:     s.counters.SeekErrors.Load(),
		Video:          s.video.statistics(),
		Audio:          s.audio.statistics(),
	}
}

func (s *Session) teardown(ctx context.Context) {
	logger.Debugf(ctx, "teardown")
	defer func() { logger.Debugf(ctx, "/teardown") }()
	ctx = xcontext.DetachDone(ctx)

	s.cancelFn()
	s.Resume(ctx)
	for _, c := range s.consumers() {
		c.queue.Clear(ctx)
	}
	// a seek may still be inside the demuxer
	err := xsync.DoR1(ctx, &s.demuxLocker, func() error {
		return s.components.Close(ctx)
	})
	if err != nil {
		errmon.ObserveErrorCtx(ctx, err)
	}
	s.done.CloseWithError(ctx, err)
}

func (s *Session) reportError(ctx context.Context, err error) {
	logger.Errorf(ctx, "%v", err)
	if h, ok := s.components.Callback.(types.ErrorHandler); ok {
		h.OnError(ctx, err)
	}
}

func (s *Session) emitStart(ctx context.Context) {
	logger.Debugf(ctx, "emitStart")
	if s.components.Callback != nil {
		s.components.Callback.OnStart(ctx)
	}
}

func (s *Session) emitProgress(ctx context.Context) {
	if s.components.Callback != nil {
		s.components.Callback.OnProgress(ctx, s.Duration(), s.Position())
	}
}

func (s *Session) emitEnd(ctx context.Context) {
	logger.Debugf(ctx, "emitEnd")
	if s.components.Callback != nil {
		s.components.Callback.OnEnd(ctx)
	}
}
