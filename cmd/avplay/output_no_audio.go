//go:build !with_audio
// +build !with_audio

package main

import (
	"fmt"

	"github.com/xaionaro-go/avplayer/types"
)

func newSpeakerSink() (types.AudioSink, error) {
	return nil, fmt.Errorf("the speaker output requires building with tag 'with_audio'")
}
