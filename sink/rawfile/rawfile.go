// Package rawfile writes the decoded payloads as is: packed RGBA frames
// one after another, or interleaved signed 16-bit little-endian PCM.
// The result can be played with, for example:
//
//	ffplay -f rawvideo -pixel_format rgba -video_size WxH out.rgba
//	ffplay -f s16le -ar RATE -ac CHANNELS out.pcm
package rawfile

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/xaionaro-go/avplayer/logger"
	"github.com/xaionaro-go/avplayer/types"
	"github.com/xaionaro-go/xsync"
)

type writer struct {
	locker xsync.Mutex
	output io.Writer
	name   string
}

func (w *writer) write(ctx context.Context, b []byte) error {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &w.locker, func() error {
		if w.output == nil {
			return fmt.Errorf("%s is closed", w.name)
		}
		if _, err := w.output.Write(b); err != nil {
			return fmt.Errorf("unable to write into %s: %w", w.name, err)
		}
		return nil
	})
}

func (w *writer) close(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "Close(%s)", w.name)
	defer func() { logger.Debugf(ctx, "/Close(%s): %v", w.name, _err) }()
	return xsync.DoR1(ctx, &w.locker, func() error {
		closer, ok := w.output.(io.Closer)
		w.output = nil
		if !ok {
			return nil
		}
		return closer.Close()
	})
}

type Video struct {
	writer
	Width       int
	Height      int
	PixelFormat types.PixelFormat
}

var _ types.VideoSink = (*Video)(nil)

// NewVideo writes into output; it is closed on Close if it is an io.Closer.
func NewVideo(output io.Writer) *Video {
	return &Video{writer: writer{output: output, name: "raw video output"}}
}

// CreateVideo creates (or truncates) the file at path.
func CreateVideo(path string) (*Video, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create '%s': %w", path, err)
	}
	return NewVideo(f), nil
}

func (v *Video) String() string {
	return fmt.Sprintf("RawVideo(%dx%d:%s)", v.Width, v.Height, v.PixelFormat)
}

func (v *Video) Prepare(
	ctx context.Context,
	width, height int,
	pixelFormat types.PixelFormat,
) error {
	logger.Infof(ctx, "raw video: %dx%d %s", width, height, pixelFormat)
	v.Width, v.Height, v.PixelFormat = width, height, pixelFormat
	return nil
}

func (v *Video) Present(ctx context.Context, pixels []byte) error {
	if expected := v.Width * v.Height * v.PixelFormat.BytesPerPixel(); expected > 0 && len(pixels) != expected {
		return fmt.Errorf("unexpected frame size: %d != %d", len(pixels), expected)
	}
	return v.write(ctx, pixels)
}

func (v *Video) Close(ctx context.Context) error {
	return v.close(ctx)
}

type Audio struct {
	writer
	SampleRate int
	Channels   int
}

var _ types.AudioSink = (*Audio)(nil)

// NewAudio writes into output; it is closed on Close if it is an io.Closer.
func NewAudio(output io.Writer) *Audio {
	return &Audio{writer: writer{output: output, name: "raw audio output"}}
}

// CreateAudio creates (or truncates) the file at path.
func CreateAudio(path string) (*Audio, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create '%s': %w", path, err)
	}
	return NewAudio(f), nil
}

func (a *Audio) String() string {
	return fmt.Sprintf("RawAudio(%dHz, %dch)", a.SampleRate, a.Channels)
}

func (a *Audio) Prepare(
	ctx context.Context,
	sampleRate, channels int,
) error {
	logger.Infof(ctx, "raw audio: s16le %dHz %dch", sampleRate, channels)
	a.SampleRate, a.Channels = sampleRate, channels
	return nil
}

func (a *Audio) Write(ctx context.Context, pcm []byte) error {
	if a.Channels > 0 && len(pcm)%(2*a.Channels) != 0 {
		return fmt.Errorf("a partial sample: %d bytes for %d channels", len(pcm), a.Channels)
	}
	return a.write(ctx, pcm)
}

func (a *Audio) Close(ctx context.Context) error {
	return a.close(ctx)
}
