// Package seekgate provides the barrier which parks the pipeline
// goroutines while the source is being repositioned (or paused).
package seekgate

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-ng/xatomic"
	"github.com/xaionaro-go/avplayer/logger"
	"github.com/xaionaro-go/xsync"
	"go.uber.org/atomic"
)

// Gate is open unless somebody holds it. Every completed seek bumps the
// generation, so the pipeline can tell the units demuxed before the seek
// from the ones demuxed after it.
type Gate struct {
	locker     xsync.Mutex
	seekLocker xsync.Mutex

	holdCount int
	waitCh    <-chan struct{}
	releaseFn context.CancelFunc

	generation atomic.Uint64
	changeChan *chan struct{}
}

func New() *Gate {
	openCh := make(chan struct{})
	close(openCh)
	return &Gate{
		waitCh:     openCh,
		releaseFn:  func() {},
		changeChan: ptr(make(chan struct{})),
	}
}

func (g *Gate) String() string {
	return fmt.Sprintf("SeekGate(held:%t, gen:%d)", g.IsHeld(), g.Generation())
}

// Generation is the number of completed seeks.
func (g *Gate) Generation() uint64 {
	return g.generation.Load()
}

func (g *Gate) IsHeld() bool {
	return xsync.DoR1(xsync.WithNoLogging(context.TODO(), true), &g.locker, func() bool {
		return g.holdCount > 0
	})
}

// ChangedChan is closed when a hold begins; it is used to interrupt sleeps.
func (g *Gate) ChangedChan() <-chan struct{} {
	return *xatomic.LoadPointer(&g.changeChan)
}

// Wait blocks while the gate is held, and returns the generation
// observed once it is open.
func (g *Gate) Wait(ctx context.Context) (_ret uint64, _err error) {
	logger.Tracef(ctx, "Wait")
	defer func() { logger.Tracef(ctx, "/Wait: %d %v", _ret, _err) }()
	for {
		waitCh := xsync.DoR1(xsync.WithNoLogging(ctx, true), &g.locker, func() <-chan struct{} {
			return g.waitCh
		})
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-waitCh:
		}
		isOpen := xsync.DoR1(xsync.WithNoLogging(ctx, true), &g.locker, func() bool {
			return g.holdCount == 0
		})
		if isOpen {
			return g.Generation(), nil
		}
	}
}

// Hold closes the gate until the returned function is called. Holds nest:
// the gate opens when the last one is released.
func (g *Gate) Hold(ctx context.Context) (release func()) {
	logger.Debugf(ctx, "Hold")
	defer func() { logger.Debugf(ctx, "/Hold") }()
	g.locker.Do(ctx, func() {
		g.holdCount++
		if g.holdCount != 1 {
			return
		}
		waitCtx, cancelFn := context.WithCancel(context.Background())
		g.waitCh = waitCtx.Done()
		g.releaseFn = cancelFn
		close(*xatomic.SwapPointer(&g.changeChan, ptr(make(chan struct{}))))
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			g.release(ctx)
		})
	}
}

func (g *Gate) release(ctx context.Context) {
	logger.Debugf(ctx, "release")
	defer func() { logger.Debugf(ctx, "/release") }()
	g.locker.Do(ctx, func() {
		g.holdCount--
		if g.holdCount < 0 {
			panic(fmt.Errorf("the gate was released more times than held: %d", g.holdCount))
		}
		if g.holdCount == 0 {
			g.releaseFn()
		}
	})
}

// Seek is an ongoing seek; it holds the gate until End.
type Seek struct {
	gate       *Gate
	release    func()
	commitOnce sync.Once
	endOnce    sync.Once
}

// BeginSeek holds the gate for a seek. Seeks are serialized: a second
// BeginSeek waits until the first one has ended.
func (g *Gate) BeginSeek(ctx context.Context) (*Seek, error) {
	logger.Debugf(ctx, "BeginSeek")
	defer func() { logger.Debugf(ctx, "/BeginSeek") }()
	if !g.seekLocker.ManualTryLock(ctx) {
		logger.Debugf(ctx, "another seek is in progress, waiting")
		g.seekLocker.ManualLock(ctx)
	}
	if err := ctx.Err(); err != nil {
		g.seekLocker.ManualUnlock(ctx)
		return nil, err
	}
	return &Seek{
		gate:    g,
		release: g.Hold(ctx),
	}, nil
}

// Commit increments the generation while the gate is still held: from
// now on everything stamped with an older generation is stale.
func (s *Seek) Commit(ctx context.Context) {
	s.commitOnce.Do(func() {
		newGen := s.gate.generation.Inc()
		logger.Debugf(ctx, "seek committed, generation: %d", newGen)
	})
}

// End releases the gate. A seek ended without Commit is abandoned: the
// generation stays the same.
func (s *Seek) End(ctx context.Context) {
	s.endOnce.Do(func() {
		s.release()
		s.gate.seekLocker.ManualUnlock(ctx)
	})
}
