package frame

import (
	"fmt"
	"sync"
	"time"

	"github.com/xaionaro-go/avplayer/types"
	"github.com/xaionaro-go/typing"
)

// Decoded is a decoded and converted frame: RGBA pixels or interleaved
// signed 16-bit PCM. The payload is pooled and must not be used after
// Release.
type Decoded struct {
	pts         typing.Optional[time.Duration]
	repeatPict  int
	buffer      *buffer
	releaseOnce sync.Once
}

var _ types.Frame = (*Decoded)(nil)

// NewDecoded returns a frame with a payload of the given size, to be
// filled through Bytes.
func NewDecoded(
	pts typing.Optional[time.Duration],
	repeatPict int,
	size int,
) *Decoded {
	buf := bufferPool.Get()
	if cap(buf.Bytes) < size {
		buf.Bytes = make([]byte, size)
	}
	buf.Bytes = buf.Bytes[:size]
	return &Decoded{
		pts:        pts,
		repeatPict: repeatPict,
		buffer:     buf,
	}
}

func (f *Decoded) PTS() typing.Optional[time.Duration] {
	return f.pts
}

func (f *Decoded) RepeatPict() int {
	return f.repeatPict
}

func (f *Decoded) Bytes() []byte {
	if f.buffer == nil {
		return nil
	}
	return f.buffer.Bytes
}

// Truncate shrinks the payload to the amount of bytes actually written.
func (f *Decoded) Truncate(size int) {
	f.buffer.Bytes = f.buffer.Bytes[:size]
}

func (f *Decoded) Release() {
	f.releaseOnce.Do(func() {
		bufferPool.Put(f.buffer)
		f.buffer = nil
	})
}

func (f *Decoded) String() string {
	return fmt.Sprintf("Decoded(pts:%v, repeat:%d, size:%d)", f.pts, f.repeatPict, len(f.Bytes()))
}
