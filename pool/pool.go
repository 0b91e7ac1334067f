// Package pool provides a generic object pool which frees the objects
// through finalizers once the runtime drops them.
package pool

import (
	"runtime"
	"sync"

	"go.uber.org/atomic"
)

// ReuseMemory may be disabled to hunt use-after-release bugs: released
// objects are then left to the finalizers instead of being reused.
var ReuseMemory = true

type Pool[T any] struct {
	sync.Pool
	ResetFunc func(*T)

	allocated atomic.Int64
	inUse     atomic.Int64
}

func New[T any](
	allocFunc func() *T,
	resetFunc func(*T),
	freeFunc func(*T),
) *Pool[T] {
	p := &Pool[T]{
		ResetFunc: resetFunc,
	}
	p.Pool.New = func() any {
		v := allocFunc()
		p.allocated.Inc()
		runtime.SetFinalizer(v, func(v *T) {
			p.allocated.Dec()
			freeFunc(v)
		})
		return v
	}
	return p
}

func (p *Pool[T]) Get() *T {
	p.inUse.Inc()
	return p.Pool.Get().(*T)
}

func (p *Pool[T]) Put(items ...*T) {
	for _, item := range items {
		if item == nil {
			continue
		}
		p.inUse.Dec()
		if !ReuseMemory {
			continue
		}
		p.ResetFunc(item)
		p.Pool.Put(item)
	}
}

// InUse is the amount of objects taken with Get and not Put back yet.
func (p *Pool[T]) InUse() int64 {
	return p.inUse.Load()
}

// Allocated is the amount of objects not collected yet.
func (p *Pool[T]) Allocated() int64 {
	return p.allocated.Load()
}
