// Package queue provides the bounded blocking FIFO which buffers encoded
// units between the demuxer and the decoders.
package queue

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/xaionaro-go/avplayer/logger"
	"github.com/xaionaro-go/xsync"
	"go.uber.org/atomic"
)

// DefaultCapacity is the amount of units buffered per stream.
const DefaultCapacity = 50

// ErrDropped is returned by Enqueue if the queue is full and was unblocked
// meanwhile: the item is not stored and the ownership stays with the caller.
var ErrDropped = errors.New("the queue is full and does not block anymore; the item was dropped")

// ErrCleared is returned by an Enqueue which was waiting for free space
// while the queue was cleared: the item is not stored and the ownership
// stays with the caller.
var ErrCleared = errors.New("the queue was cleared while waiting for free space")

// Bounded is a fixed-capacity FIFO with blocking Enqueue/Dequeue.
//
// After Unblock nobody waits on the queue anymore: Dequeue returns the
// remaining items and then io.EOF, Enqueue stores items only while there
// is free space. Clear returns the queue into the blocking mode.
type Bounded[T any] struct {
	Locker    xsync.Mutex
	OnDiscard func(T)

	items    []T
	head     int
	size     int
	blocking bool
	clearGen uint64

	notEmptyChan chan struct{}
	notFullChan  chan struct{}

	droppedCount atomic.Uint64
}

// New creates a queue; onDiscard (may be nil) is called for every item
// thrown away by Clear.
func New[T any](capacity int, onDiscard func(T)) *Bounded[T] {
	if capacity <= 0 {
		panic(fmt.Errorf("invalid capacity: %d", capacity))
	}
	return &Bounded[T]{
		OnDiscard:    onDiscard,
		items:        make([]T, capacity),
		blocking:     true,
		notEmptyChan: make(chan struct{}),
		notFullChan:  make(chan struct{}),
	}
}

func (q *Bounded[T]) String() string {
	return fmt.Sprintf("Bounded[%T](%d/%d)", *new(T), q.Size(), q.Capacity())
}

func (q *Bounded[T]) Capacity() int {
	return len(q.items)
}

func (q *Bounded[T]) Size() int {
	return xsync.DoR1(xsync.WithNoLogging(context.TODO(), true), &q.Locker, func() int {
		return q.size
	})
}

func (q *Bounded[T]) IsEmpty() bool {
	return q.Size() == 0
}

func (q *Bounded[T]) IsFull() bool {
	return q.Size() == q.Capacity()
}

// IsBlocking returns false after Unblock and until the next Clear.
func (q *Bounded[T]) IsBlocking() bool {
	return xsync.DoR1(xsync.WithNoLogging(context.TODO(), true), &q.Locker, func() bool {
		return q.blocking
	})
}

// DroppedCount is the total amount of items rejected with ErrDropped.
func (q *Bounded[T]) DroppedCount() uint64 {
	return q.droppedCount.Load()
}

func (q *Bounded[T]) isFullLocked() bool {
	return q.size == len(q.items)
}

func (q *Bounded[T]) signalNotEmptyLocked() {
	close(q.notEmptyChan)
	q.notEmptyChan = make(chan struct{})
}

func (q *Bounded[T]) signalNotFullLocked() {
	close(q.notFullChan)
	q.notFullChan = make(chan struct{})
}

// Enqueue appends the item to the tail, waiting for free space while the
// queue is blocking.
func (q *Bounded[T]) Enqueue(
	ctx context.Context,
	item T,
) (_err error) {
	logger.Tracef(ctx, "Enqueue")
	defer func() { logger.Tracef(ctx, "/Enqueue: %v", _err) }()

	q.Locker.ManualLock(ctx)
	clearGen := q.clearGen
	for q.isFullLocked() && q.blocking {
		ch := q.notFullChan
		q.Locker.ManualUnlock(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
		q.Locker.ManualLock(ctx)
		if q.clearGen != clearGen {
			q.Locker.ManualUnlock(ctx)
			return ErrCleared
		}
	}
	defer q.Locker.ManualUnlock(ctx)

	if q.isFullLocked() {
		q.droppedCount.Inc()
		return ErrDropped
	}

	q.items[(q.head+q.size)%len(q.items)] = item
	q.size++
	q.signalNotEmptyLocked()
	return nil
}

// Dequeue removes the head item, waiting for one while the queue is
// blocking. It returns io.EOF once the queue is unblocked and empty.
func (q *Bounded[T]) Dequeue(
	ctx context.Context,
) (_ret T, _err error) {
	logger.Tracef(ctx, "Dequeue")
	defer func() { logger.Tracef(ctx, "/Dequeue: %v", _err) }()

	q.Locker.ManualLock(ctx)
	for q.size == 0 && q.blocking {
		ch := q.notEmptyChan
		q.Locker.ManualUnlock(ctx)
		select {
		case <-ctx.Done():
			return _ret, ctx.Err()
		case <-ch:
		}
		q.Locker.ManualLock(ctx)
	}
	defer q.Locker.ManualUnlock(ctx)

	if q.size == 0 {
		return _ret, io.EOF
	}

	var zeroValue T
	_ret = q.items[q.head]
	q.items[q.head] = zeroValue
	q.head = (q.head + 1) % len(q.items)
	q.size--
	q.signalNotFullLocked()
	return _ret, nil
}

// Clear discards all the items and re-enables the blocking mode. Enqueues
// waiting for free space are rejected with ErrCleared.
func (q *Bounded[T]) Clear(ctx context.Context) {
	logger.Debugf(ctx, "Clear")
	defer func() { logger.Debugf(ctx, "/Clear") }()
	var discarded []T
	q.Locker.Do(ctx, func() {
		var zeroValue T
		discarded = make([]T, 0, q.size)
		for q.size > 0 {
			discarded = append(discarded, q.items[q.head])
			q.items[q.head] = zeroValue
			q.head = (q.head + 1) % len(q.items)
			q.size--
		}
		q.head = 0
		q.blocking = true
		q.clearGen++
		q.signalNotFullLocked()
	})
	logger.Debugf(ctx, "discarded %d items", len(discarded))
	if q.OnDiscard == nil {
		return
	}
	for _, item := range discarded {
		q.OnDiscard(item)
	}
}

// Unblock permanently (until Clear) disables waiting and wakes up
// everybody waiting on the queue.
func (q *Bounded[T]) Unblock(ctx context.Context) {
	logger.Debugf(ctx, "Unblock")
	defer func() { logger.Debugf(ctx, "/Unblock") }()
	q.Locker.Do(ctx, func() {
		if !q.blocking {
			return
		}
		q.blocking = false
		q.signalNotEmptyLocked()
		q.signalNotFullLocked()
	})
}
