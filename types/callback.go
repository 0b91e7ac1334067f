package types

import (
	"context"
	"time"
)

// PlaybackCallback receives the host-facing playback notifications.
//
// OnStart is emitted once, before any OnProgress; OnEnd is emitted once
// after the last unit was presented. A callback may additionally
// implement ErrorHandler.
type PlaybackCallback interface {
	OnStart(ctx context.Context)
	OnProgress(ctx context.Context, total, current time.Duration)
	OnEnd(ctx context.Context)
}

// CallbackFuncs is a PlaybackCallback made of closures; nil closures are skipped.
type CallbackFuncs struct {
	Start    func(ctx context.Context)
	Progress func(ctx context.Context, total, current time.Duration)
	End      func(ctx context.Context)
	Error    func(ctx context.Context, err error)
}

var _ PlaybackCallback = (*CallbackFuncs)(nil)
var _ ErrorHandler = (*CallbackFuncs)(nil)

func (c *CallbackFuncs) OnStart(ctx context.Context) {
	if c.Start != nil {
		c.Start(ctx)
	}
}

func (c *CallbackFuncs) OnProgress(ctx context.Context, total, current time.Duration) {
	if c.Progress != nil {
		c.Progress(ctx, total, current)
	}
}

func (c *CallbackFuncs) OnEnd(ctx context.Context) {
	if c.End != nil {
		c.End(ctx)
	}
}

func (c *CallbackFuncs) OnError(ctx context.Context, err error) {
	if c.Error != nil {
		c.Error(ctx, err)
	}
}
