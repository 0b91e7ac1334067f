// Package speaker is an audio sink which plays the PCM through the
// system audio output.
package speaker

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/gopxl/beep/v2"
	"github.com/xaionaro-go/avplayer/helpers/closuresignaler"
	"go.uber.org/atomic"
)

// Streamer feeds the PCM chunks passed to Write to beep. Write blocks
// while the backlog is full, so the writer is paced by the playback.
type Streamer struct {
	*closuresignaler.ClosureSignaler
	Channels int

	chunks    chan []byte
	pending   []byte
	underruns atomic.Uint64
}

var _ beep.Streamer = (*Streamer)(nil)

// NewStreamer keeps up to backlog chunks ahead of the playback.
func NewStreamer(channels int, backlog int) *Streamer {
	return &Streamer{
		ClosureSignaler: closuresignaler.New(),
		Channels:        channels,
		chunks:          make(chan []byte, backlog),
	}
}

func (s *Streamer) String() string {
	return fmt.Sprintf("Streamer(%dch, backlog:%d/%d)", s.Channels, len(s.chunks), cap(s.chunks))
}

func (s *Streamer) Write(ctx context.Context, pcm []byte) error {
	if len(pcm)%(2*s.Channels) != 0 {
		return fmt.Errorf("a partial sample: %d bytes for %d channels", len(pcm), s.Channels)
	}
	if s.IsClosed() {
		return fmt.Errorf("the streamer is closed")
	}
	chunk := make([]byte, len(pcm))
	copy(chunk, pcm)
	select {
	case s.chunks <- chunk:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.CloseChan():
		return fmt.Errorf("the streamer is closed")
	}
}

// Stream fills the missing samples with silence instead of blocking
// the audio output.
func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	if s.IsClosed() {
		return 0, false
	}
	frameSize := 2 * s.Channels
	for i := range samples {
		if len(s.pending) < frameSize {
			select {
			case s.pending = <-s.chunks:
			default:
			}
		}
		if len(s.pending) < frameSize {
			s.underruns.Inc()
			for j := i; j < len(samples); j++ {
				samples[j] = [2]float64{}
			}
			break
		}
		left := sampleToFloat(s.pending[0:2])
		right := left
		if s.Channels > 1 {
			right = sampleToFloat(s.pending[2:4])
		}
		samples[i] = [2]float64{left, right}
		s.pending = s.pending[frameSize:]
	}
	return len(samples), true
}

func (s *Streamer) Err() error {
	return nil
}

// Underruns is the amount of Stream calls which ran out of samples.
func (s *Streamer) Underruns() uint64 {
	return s.underruns.Load()
}

func sampleToFloat(b []byte) float64 {
	return float64(int16(binary.LittleEndian.Uint16(b))) / 32768
}
