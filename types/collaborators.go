package types

import (
	"context"
	"time"
)

// Closer releases the resources of a collaborator; the session calls
// it exactly once on teardown.
type Closer interface {
	Close(context.Context) error
}

// Demuxer splits a source into encoded units, in stream order.
type Demuxer interface {
	Closer
	Streams() StreamInfos
	Duration() time.Duration

	// NextUnit returns io.EOF at the end of the stream.
	NextUnit(ctx context.Context) (EncodedUnit, error)

	// Seek repositions the stream to the nearest random-access point
	// at or before the position.
	Seek(ctx context.Context, streamIndex int, position time.Duration) error
}

// Decoder decodes the units of one stream. Submit and ReceiveFrame
// mirror the send/receive split of FFmpeg.
type Decoder interface {
	Closer
	Open(ctx context.Context, stream StreamInfo) error

	// Submit returns ErrWouldBlock if frames have to be received first.
	Submit(ctx context.Context, unit EncodedUnit) error

	// ReceiveFrame returns ErrWouldBlock if more input is needed and
	// io.EOF if the decoder was fully drained.
	ReceiveFrame(ctx context.Context) (Frame, error)

	// Reset drops any buffered state, it is used after a seek.
	Reset(ctx context.Context) error
}

type VideoSink interface {
	Closer
	Prepare(ctx context.Context, width, height int, pixelFormat PixelFormat) error
	Present(ctx context.Context, pixels []byte) error
}

type AudioSink interface {
	Closer
	Prepare(ctx context.Context, sampleRate, channels int) error
	Write(ctx context.Context, pcm []byte) error
}
