package main

import (
	"fmt"
	"strings"

	"github.com/xaionaro-go/avplayer/sink/discard"
	"github.com/xaionaro-go/avplayer/sink/rawfile"
	"github.com/xaionaro-go/avplayer/sink/snapshot"
	"github.com/xaionaro-go/avplayer/types"
)

// parseOutput splits "kind:argument"; the argument is optional.
func parseOutput(s string) (string, string) {
	kind, arg, _ := strings.Cut(s, ":")
	return kind, arg
}

func newVideoSink(spec string, snapshotCfg snapshot.Config) (types.VideoSink, error) {
	kind, arg := parseOutput(spec)
	switch kind {
	case "", "none":
		return nil, nil
	case "discard":
		return discard.NewVideo(), nil
	case "raw":
		if arg == "" {
			return nil, fmt.Errorf("'raw' needs a path: raw:<path>")
		}
		return rawfile.CreateVideo(arg)
	case "snapshot":
		if arg == "" {
			return nil, fmt.Errorf("'snapshot' needs a directory: snapshot:<dir>")
		}
		return snapshot.New(arg, snapshotCfg), nil
	case "window":
		return newWindowSink(arg)
	default:
		return nil, fmt.Errorf("unknown video output '%s'", kind)
	}
}

func newAudioSink(spec string) (types.AudioSink, error) {
	kind, arg := parseOutput(spec)
	switch kind {
	case "", "none":
		return nil, nil
	case "discard":
		return discard.NewAudio(), nil
	case "raw":
		if arg == "" {
			return nil, fmt.Errorf("'raw' needs a path: raw:<path>")
		}
		return rawfile.CreateAudio(arg)
	case "speaker":
		return newSpeakerSink()
	default:
		return nil, fmt.Errorf("unknown audio output '%s'", kind)
	}
}
