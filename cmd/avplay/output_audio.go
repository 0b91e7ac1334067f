//go:build with_audio
// +build with_audio

package main

import (
	"github.com/xaionaro-go/avplayer/sink/speaker"
	"github.com/xaionaro-go/avplayer/types"
)

func newSpeakerSink() (types.AudioSink, error) {
	return speaker.New(), nil
}
