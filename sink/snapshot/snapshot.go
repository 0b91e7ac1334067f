// Package snapshot is a video sink which saves every N-th frame as
// a PNG file.
package snapshot

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/xaionaro-go/avplayer/logger"
	"github.com/xaionaro-go/avplayer/types"
	"go.uber.org/atomic"
)

type Config struct {
	// Every is the period in frames; zero or one saves every frame.
	Every uint64

	// Size is the size of the saved pictures; zero keeps the frame size.
	Size types.Resolution
}

type Snapshot struct {
	Dir    string
	Config Config

	width  int
	height int

	frameCount atomic.Uint64
	savedCount atomic.Uint64
}

var _ types.VideoSink = (*Snapshot)(nil)

func New(dir string, cfg Config) *Snapshot {
	return &Snapshot{
		Dir:    dir,
		Config: cfg,
	}
}

func (s *Snapshot) String() string {
	return fmt.Sprintf("Snapshot(%s, every:%d)", s.Dir, s.Config.Every)
}

func (s *Snapshot) Prepare(
	ctx context.Context,
	width, height int,
	pixelFormat types.PixelFormat,
) error {
	if pixelFormat != types.PixelFormatRGBA {
		return fmt.Errorf("pixel format %s is not supported, only %s is", pixelFormat, types.PixelFormatRGBA)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("unable to create directory '%s': %w", s.Dir, err)
	}
	s.width, s.height = width, height
	return nil
}

func (s *Snapshot) Present(
	ctx context.Context,
	pixels []byte,
) error {
	idx := s.frameCount.Inc() - 1
	if s.Config.Every > 1 && idx%s.Config.Every != 0 {
		return nil
	}
	if len(pixels) != s.width*s.height*4 {
		return fmt.Errorf("unexpected frame size: %d != %dx%dx4", len(pixels), s.width, s.height)
	}

	var img image.Image = &image.RGBA{
		Pix:    pixels,
		Stride: s.width * 4,
		Rect:   image.Rect(0, 0, s.width, s.height),
	}
	if !s.Config.Size.IsZero() {
		img = transform.Resize(img, int(s.Config.Size.Width), int(s.Config.Size.Height), transform.Linear)
	}

	path := filepath.Join(s.Dir, fmt.Sprintf("frame-%08d.png", idx))
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("unable to save '%s': %w", path, err)
	}
	s.savedCount.Inc()
	logger.Debugf(ctx, "saved %s", path)
	return nil
}

// SavedCount is the amount of pictures written so far.
func (s *Snapshot) SavedCount() uint64 {
	return s.savedCount.Load()
}

func (s *Snapshot) Close(ctx context.Context) error {
	logger.Debugf(ctx, "Close: %d of %d frames saved", s.savedCount.Load(), s.frameCount.Load())
	return nil
}
