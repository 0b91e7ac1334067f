// Package frame provides pooled libav frames and the decoded frame
// handed to the sinks.
package frame

import (
	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avplayer/pool"
)

var Pool = pool.New(
	astiav.AllocFrame,
	func(f *astiav.Frame) { f.Unref() },
	func(f *astiav.Frame) { f.Free() },
)

// buffer is a reusable byte slice for the converted payloads.
type buffer struct {
	Bytes []byte
}

var bufferPool = pool.New(
	func() *buffer { return &buffer{} },
	func(b *buffer) { b.Bytes = b.Bytes[:0] },
	func(b *buffer) {},
)
