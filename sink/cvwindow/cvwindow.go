//go:build with_cv
// +build with_cv

// Package cvwindow is a video sink which shows the frames in an OpenCV
// window.
package cvwindow

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/avplayer/helpers/closuresignaler"
	"github.com/xaionaro-go/avplayer/logger"
	"github.com/xaionaro-go/avplayer/types"
	"github.com/xaionaro-go/xsync"
	"gocv.io/x/gocv"
)

type Window struct {
	*closuresignaler.ClosureSignaler
	Title string

	locker xsync.Mutex
	window *gocv.Window
	bgr    gocv.Mat
	width  int
	height int
}

var _ types.VideoSink = (*Window)(nil)

func New(title string) *Window {
	return &Window{
		ClosureSignaler: closuresignaler.New(),
		Title:           title,
	}
}

func (w *Window) String() string {
	return fmt.Sprintf("CVWindow(%s)", w.Title)
}

func (w *Window) Prepare(
	ctx context.Context,
	width, height int,
	pixelFormat types.PixelFormat,
) error {
	if pixelFormat != types.PixelFormatRGBA {
		return fmt.Errorf("pixel format %s is not supported, only %s is", pixelFormat, types.PixelFormatRGBA)
	}
	return xsync.DoR1(ctx, &w.locker, func() error {
		if w.window != nil {
			return fmt.Errorf("the window is already opened")
		}
		w.window = gocv.NewWindow(w.Title)
		w.window.ResizeWindow(width, height)
		w.bgr = gocv.NewMat()
		w.width, w.height = width, height
		logger.Debugf(ctx, "opened window '%s' %dx%d", w.Title, width, height)
		return nil
	})
}

func (w *Window) Present(
	ctx context.Context,
	pixels []byte,
) error {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &w.locker, func() error {
		if w.IsClosed() || w.window == nil {
			return fmt.Errorf("the window is closed")
		}
		rgba, err := gocv.NewMatFromBytes(w.height, w.width, gocv.MatTypeCV8UC4, pixels)
		if err != nil {
			return fmt.Errorf("unable to wrap the frame: %w", err)
		}
		defer rgba.Close()
		gocv.CvtColor(rgba, &w.bgr, gocv.ColorRGBAToBGR)
		w.window.IMShow(w.bgr)
		w.window.WaitKey(1)
		return nil
	})
}

func (w *Window) Close(ctx context.Context) error {
	w.ClosureSignaler.Close(ctx)
	return xsync.DoR1(ctx, &w.locker, func() error {
		if w.window == nil {
			return nil
		}
		w.bgr.Close()
		w.window.Close()
		w.window = nil
		return nil
	})
}
