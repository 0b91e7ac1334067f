//go:build with_cv
// +build with_cv

package main

import (
	"github.com/xaionaro-go/avplayer/sink/cvwindow"
	"github.com/xaionaro-go/avplayer/types"
)

func newWindowSink(title string) (types.VideoSink, error) {
	if title == "" {
		title = "avplay"
	}
	return cvwindow.New(title), nil
}
