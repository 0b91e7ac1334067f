// Package clock provides the shared audio/video presentation clock.
package clock

import (
	"fmt"
	"time"

	"go.uber.org/atomic"
)

// AVClock is the presentation time of the master stream, in seconds.
//
// It is written by the master consumer only and read by everybody else,
// so it is a single atomic value rather than a locked structure.
type AVClock struct {
	seconds atomic.Float64
}

func New() *AVClock {
	return &AVClock{}
}

func (c *AVClock) String() string {
	return fmt.Sprintf("AVClock(%.3fs)", c.Seconds())
}

// Set stores the time of the latest presented master unit.
func (c *AVClock) Set(seconds float64) {
	c.seconds.Store(seconds)
}

func (c *AVClock) SetDuration(d time.Duration) {
	c.Set(d.Seconds())
}

func (c *AVClock) Seconds() float64 {
	return c.seconds.Load()
}

func (c *AVClock) Duration() time.Duration {
	return time.Duration(c.Seconds() * float64(time.Second))
}

// Reset moves the clock to the given position, it is used on seeks.
func (c *AVClock) Reset(position time.Duration) {
	c.SetDuration(position)
}
