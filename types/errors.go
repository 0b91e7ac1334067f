package types

import (
	"errors"
)

// ErrWouldBlock is returned by a Decoder if it cannot accept input or
// produce output right now. It is not a failure.
var ErrWouldBlock = errors.New("would block")

type ErrNoPlayableStreams struct{}

func (ErrNoPlayableStreams) Error() string {
	return "the source has neither a video nor an audio stream"
}
