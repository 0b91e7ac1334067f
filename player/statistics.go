package player

import (
	"go.uber.org/atomic"
)

type StreamStatistics struct {
	Queued       uint64 `json:",omitempty"`
	Dropped      uint64 `json:",omitempty"`
	Stale        uint64 `json:",omitempty"`
	Decoded      uint64 `json:",omitempty"`
	DecodeErrors uint64 `json:",omitempty"`
	Presented    uint64 `json:",omitempty"`
	SinkErrors   uint64 `json:",omitempty"`
	QueueSize    int    `json:",omitempty"`
}

type Statistics struct {
	UnitsRead      uint64
	UnitsUntracked uint64            `json:",omitempty"`
	Seeks          uint64            `json:",omitempty"`
	SeekErrors     uint64            `json:",omitempty"`
	Video          *StreamStatistics `json:",omitempty"`
	Audio          *StreamStatistics `json:",omitempty"`
}

type streamCounters struct {
	Queued       atomic.Uint64
	Stale        atomic.Uint64
	Decoded      atomic.Uint64
	DecodeErrors atomic.Uint64
	Presented    atomic.Uint64
	SinkErrors   atomic.Uint64
}

type counters struct {
	UnitsRead      atomic.Uint64
	UnitsUntracked atomic.Uint64
	Seeks          atomic.Uint64
	SeekErrors     atomic.Uint64
}

func (c *consumer) statistics() *StreamStatistics {
	if c == nil {
		return nil
	}
	return &StreamStatistics{
		Queued:       c.counters.Queued.Load(),
		Dropped:      c.queue.DroppedCount(),
		Stale:        c.counters.Stale.Load(),
		Decoded:      c.counters.Decoded.Load(),
		DecodeErrors: c.counters.DecodeErrors.Load(),
		Presented:    c.counters.Presented.Load(),
		SinkErrors:   c.counters.SinkErrors.Load(),
		QueueSize:    c.queue.Size(),
	}
}
