// Package discard provides sinks which drop everything, for headless
// runs and benchmarks.
package discard

import (
	"context"

	"github.com/xaionaro-go/avplayer/types"
	"go.uber.org/atomic"
)

type Video struct {
	Frames atomic.Uint64
	Bytes  atomic.Uint64
}

var _ types.VideoSink = (*Video)(nil)

func NewVideo() *Video {
	return &Video{}
}

func (*Video) String() string {
	return "Discard(video)"
}

func (*Video) Prepare(context.Context, int, int, types.PixelFormat) error {
	return nil
}

func (v *Video) Present(_ context.Context, pixels []byte) error {
	v.Frames.Inc()
	v.Bytes.Add(uint64(len(pixels)))
	return nil
}

func (*Video) Close(context.Context) error {
	return nil
}

type Audio struct {
	Chunks atomic.Uint64
	Bytes  atomic.Uint64
}

var _ types.AudioSink = (*Audio)(nil)

func NewAudio() *Audio {
	return &Audio{}
}

func (*Audio) String() string {
	return "Discard(audio)"
}

func (*Audio) Prepare(context.Context, int, int) error {
	return nil
}

func (a *Audio) Write(_ context.Context, pcm []byte) error {
	a.Chunks.Inc()
	a.Bytes.Add(uint64(len(pcm)))
	return nil
}

func (*Audio) Close(context.Context) error {
	return nil
}
