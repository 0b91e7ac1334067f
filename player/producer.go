package player

import (
	"context"
	"errors"
	"io"

	"github.com/xaionaro-go/avplayer/logger"
	"github.com/xaionaro-go/avplayer/queue"
	"github.com/xaionaro-go/xsync"
)

// runProducer reads the units in the stream order and routes them to
// the queues of the consumers. It owns the end-of-stream transition:
// when it returns the consumers are drained and the session is torn down.
func (s *Session) runProducer(ctx context.Context) {
	logger.Debugf(ctx, "runProducer")
	defer func() { logger.Debugf(ctx, "/runProducer") }()
	defer s.finish(ctx)

	for {
		if _, err := s.gate.Wait(ctx); err != nil {
			logger.Debugf(ctx, "unable to wait for the gate: %v", err)
			return
		}

		unit, err := s.nextUnit(ctx)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			logger.Debugf(ctx, "end of the stream")
			return
		case ctx.Err() != nil:
			logger.Debugf(ctx, "cancelled: %v", err)
			return
		default:
			s.reportError(ctx, ErrRead{Err: err})
			return
		}
		s.counters.UnitsRead.Inc()

		c := s.consumerByStreamIndex(unit.StreamIndex())
		if c == nil {
			s.counters.UnitsUntracked.Inc()
			unit.Release()
			continue
		}

		err = c.queue.Enqueue(ctx, unit)
		switch {
		case err == nil:
			c.counters.Queued.Inc()
		case errors.Is(err, queue.ErrCleared):
			logger.Debugf(ctx, "the %s queue was cleared by a seek, the unit is stale", c.stream.MediaType)
			c.counters.Stale.Inc()
			unit.Release()
		case errors.Is(err, queue.ErrDropped):
			logger.Warnf(ctx, "the %s queue does not accept units anymore, dropped a unit", c.stream.MediaType)
			unit.Release()
		default:
			logger.Debugf(ctx, "unable to enqueue: %v", err)
			unit.Release()
			return
		}
	}
}

// nextUnit reads a unit and stamps it with the current seek generation.
// A seek repositions the demuxer under the same lock, so the stamp
// always matches the position the unit was read from.
func (s *Session) nextUnit(
	ctx context.Context,
) (stampedUnit, error) {
	return xsync.DoR2(ctx, &s.demuxLocker, func() (stampedUnit, error) {
		unit, err := s.components.Demuxer.NextUnit(ctx)
		if err != nil {
			return stampedUnit{}, err
		}
		return stampedUnit{
			EncodedUnit: unit,
			Generation:  s.gate.Generation(),
		}, nil
	})
}

func (s *Session) consumerByStreamIndex(streamIndex int) *consumer {
	for _, c := range s.consumers() {
		if c.stream.Index == streamIndex {
			return c
		}
	}
	return nil
}

// finish drains the consumers and tears the session down.
func (s *Session) finish(ctx context.Context) {
	logger.Debugf(ctx, "finish")
	defer func() { logger.Debugf(ctx, "/finish") }()

	s.endLocker.Do(ctx, func() {
		s.isEnded = true
		for _, c := range s.consumers() {
			c.queue.Unblock(ctx)
		}
	})
	s.consumersWG.Wait()
	s.teardown(ctx)
}
