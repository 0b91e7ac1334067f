//go:build !with_cv
// +build !with_cv

package main

import (
	"fmt"

	"github.com/xaionaro-go/avplayer/types"
)

func newWindowSink(string) (types.VideoSink, error) {
	return nil, fmt.Errorf("the window output requires building with tag 'with_cv'")
}
