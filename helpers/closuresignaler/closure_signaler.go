// Package closuresignaler provides a once-closable signal which remembers why it was closed.
package closuresignaler

import (
	"context"
	"sync"

	"github.com/xaionaro-go/avplayer/logger"
)

type ClosureSignaler struct {
	closeOnce sync.Once
	c         chan struct{}
	err       error
}

func New() *ClosureSignaler {
	return &ClosureSignaler{
		c: make(chan struct{}),
	}
}

func (c *ClosureSignaler) CloseChan() <-chan struct{} {
	return c.c
}

// Close closes the signal; only the first call has an effect.
func (c *ClosureSignaler) Close(ctx context.Context) {
	c.CloseWithError(ctx, nil)
}

// CloseWithError closes the signal and records err as the outcome;
// only the first call has an effect.
func (c *ClosureSignaler) CloseWithError(ctx context.Context, err error) {
	logger.Debugf(ctx, "CloseWithError(%v)", err)
	defer func() { logger.Debugf(ctx, "/CloseWithError(%v)", err) }()
	c.closeOnce.Do(func() {
		c.err = err
		close(c.c)
	})
}

// Err returns the error the signal was closed with. It is nil until the
// signal is closed.
func (c *ClosureSignaler) Err() error {
	if !c.IsClosed() {
		return nil
	}
	return c.err
}

func (c *ClosureSignaler) IsClosed() bool {
	select {
	case <-c.c:
		return true
	default:
		return false
	}
}
