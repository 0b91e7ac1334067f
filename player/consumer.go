package player

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/xaionaro-go/avplayer/logger"
	"github.com/xaionaro-go/avplayer/queue"
	"github.com/xaionaro-go/avplayer/types"
)

// presenter hands decoded frames of one stream to its sink.
type presenter interface {
	Prepare(ctx context.Context) error
	Present(ctx context.Context, unit stampedUnit, frame types.Frame) error
}

// errInterrupted means a frame was not presented because a seek
// started while it was waiting.
var errInterrupted = errors.New("interrupted by a seek")

// consumer decodes the units of one stream and presents them.
type consumer struct {
	session   *Session
	stream    types.StreamInfo
	decoder   types.Decoder
	queue     *queue.Bounded[stampedUnit]
	presenter presenter

	// isMaster is set for the stream which drives the clock and the
	// playback callbacks: audio if there is any, otherwise video.
	isMaster bool

	counters          streamCounters
	decoderGeneration uint64
}

func newConsumer(
	s *Session,
	stream types.StreamInfo,
	decoder types.Decoder,
	queueCapacity int,
) *consumer {
	return &consumer{
		session: s,
		stream:  stream,
		decoder: decoder,
		queue:   queue.New(queueCapacity, releaseUnit),
	}
}

func (c *consumer) String() string {
	return fmt.Sprintf("consumer(%s)", c.stream)
}

func (c *consumer) setup(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "setup")
	defer func() { logger.Debugf(ctx, "/setup: %v", _err) }()

	if err := c.decoder.Open(ctx, c.stream); err != nil {
		return ErrSetup{Stage: "open the decoder", Stream: &c.stream, Err: err}
	}
	if err := c.presenter.Prepare(ctx); err != nil {
		return ErrSetup{Stage: "prepare the sink", Stream: &c.stream, Err: err}
	}
	return nil
}

func (c *consumer) run(ctx context.Context) {
	logger.Debugf(ctx, "run")
	defer func() { logger.Debugf(ctx, "/run") }()

	s := c.session
	if c.isMaster {
		s.emitStart(ctx)
	}

	for {
		if _, err := s.gate.Wait(ctx); err != nil {
			logger.Debugf(ctx, "unable to wait for the gate: %v", err)
			return
		}
		unit, err := c.queue.Dequeue(ctx)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			logger.Debugf(ctx, "the queue is closed")
			if c.isMaster && ctx.Err() == nil {
				s.emitEnd(ctx)
			}
			return
		default:
			logger.Debugf(ctx, "unable to dequeue: %v", err)
			return
		}
		c.processUnit(ctx, unit)
	}
}

func (c *consumer) processUnit(
	ctx context.Context,
	unit stampedUnit,
) {
	logger.Tracef(ctx, "processUnit: %v", unit.PTS())
	defer func() { logger.Tracef(ctx, "/processUnit: %v", unit.PTS()) }()
	defer unit.Release()

	s := c.session
	if unit.Generation != s.gate.Generation() {
		c.counters.Stale.Inc()
		logger.Tracef(ctx, "a stale unit (generation %d)", unit.Generation)
		return
	}
	if unit.Generation != c.decoderGeneration {
		logger.Debugf(ctx, "a seek happened, resetting the decoder (generation %d -> %d)", c.decoderGeneration, unit.Generation)
		if err := c.decoder.Reset(ctx); err != nil {
			s.reportError(ctx, ErrDecode{MediaType: c.stream.MediaType, Err: fmt.Errorf("unable to reset the decoder: %w", err)})
		}
		c.decoderGeneration = unit.Generation
	}

	err := c.decode(ctx, unit)
	if err != nil {
		c.counters.DecodeErrors.Inc()
		s.reportError(ctx, ErrDecode{MediaType: c.stream.MediaType, Err: err})
	}

	if !c.isMaster {
		return
	}
	// a corrupted unit still counts as progress, but it does not move the clock
	if err == nil && c.stream.MediaType == types.MediaTypeAudio {
		if pts := unit.PTS(); pts.IsSet() && unit.Generation == s.gate.Generation() {
			s.clock.SetDuration(pts.Get())
		}
	}
	s.emitProgress(ctx)
}

// decode submits the unit and presents every frame the decoder yields.
func (c *consumer) decode(
	ctx context.Context,
	unit stampedUnit,
) error {
	for {
		err := c.decoder.Submit(ctx, unit.EncodedUnit)
		if err == nil {
			break
		}
		if !errors.Is(err, types.ErrWouldBlock) {
			return fmt.Errorf("unable to submit the unit: %w", err)
		}
		received, err := c.receiveFrames(ctx, unit)
		if err != nil {
			return err
		}
		if received == 0 {
			return fmt.Errorf("the decoder neither accepts input nor produces output")
		}
	}

	_, err := c.receiveFrames(ctx, unit)
	return err
}

func (c *consumer) receiveFrames(
	ctx context.Context,
	unit stampedUnit,
) (int, error) {
	count := 0
	for {
		frame, err := c.decoder.ReceiveFrame(ctx)
		switch {
		case err == nil:
		case errors.Is(err, types.ErrWouldBlock), errors.Is(err, io.EOF):
			return count, nil
		default:
			return count, fmt.Errorf("unable to receive a frame: %w", err)
		}
		count++
		c.counters.Decoded.Inc()
		c.present(ctx, unit, frame)
	}
}

func (c *consumer) present(
	ctx context.Context,
	unit stampedUnit,
	frame types.Frame,
) {
	defer frame.Release()
	err := c.presenter.Present(ctx, unit, frame)
	switch {
	case err == nil:
		c.counters.Presented.Inc()
	case errors.Is(err, errInterrupted), errors.Is(err, context.Canceled):
		c.counters.Stale.Inc()
	default:
		c.counters.SinkErrors.Inc()
		c.session.reportError(ctx, ErrPresent{MediaType: c.stream.MediaType, Err: err})
	}
}
