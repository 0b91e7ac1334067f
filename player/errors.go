package player

import (
	"errors"
	"fmt"

	"github.com/xaionaro-go/avplayer/types"
)

// ErrSessionEnded is returned by the controls of a session which has
// already reached the end of the stream or was stopped.
var ErrSessionEnded = errors.New("the playback session has ended")

type ErrSetup struct {
	Stage  string
	Stream *types.StreamInfo
	Err    error
}

func (e ErrSetup) Error() string {
	if e.Stream == nil {
		return fmt.Sprintf("unable to %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("unable to %s for stream %s: %v", e.Stage, e.Stream, e.Err)
}

func (e ErrSetup) Unwrap() error {
	return e.Err
}

// ErrDecode is a per-unit decode failure; the unit is skipped.
type ErrDecode struct {
	MediaType types.MediaType
	Err       error
}

func (e ErrDecode) Error() string {
	return fmt.Sprintf("unable to decode a %s unit: %v", e.MediaType, e.Err)
}

func (e ErrDecode) Unwrap() error {
	return e.Err
}

// ErrPresent is a sink failure; the frame is dropped.
type ErrPresent struct {
	MediaType types.MediaType
	Err       error
}

func (e ErrPresent) Error() string {
	return fmt.Sprintf("unable to present a %s frame: %v", e.MediaType, e.Err)
}

func (e ErrPresent) Unwrap() error {
	return e.Err
}

// ErrSeek is a reposition failure; the playback continues from the
// position before the seek.
type ErrSeek struct {
	StreamIndex int
	Err         error
}

func (e ErrSeek) Error() string {
	return fmt.Sprintf("unable to seek stream #%d: %v", e.StreamIndex, e.Err)
}

func (e ErrSeek) Unwrap() error {
	return e.Err
}

// ErrRead is a demuxer failure other than the end of the stream; it ends
// the playback as if the stream ended.
type ErrRead struct {
	Err error
}

func (e ErrRead) Error() string {
	return fmt.Sprintf("unable to read the next unit: %v", e.Err)
}

func (e ErrRead) Unwrap() error {
	return e.Err
}
