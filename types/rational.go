package types

import (
	"fmt"
	"time"
)

// Rational is a fraction, used for stream time bases (seconds per tick).
type Rational struct {
	Num int
	Den int
}

func (r Rational) IsZero() bool {
	return r.Num == 0 || r.Den == 0
}

func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Duration converts a timestamp expressed in ticks of this time base.
func (r Rational) Duration(ticks int64) time.Duration {
	return time.Duration(float64(ticks) * r.Float64() * float64(time.Second))
}

// Ticks converts a duration into ticks of this time base, rounding down.
func (r Rational) Ticks(d time.Duration) int64 {
	if r.IsZero() {
		return 0
	}
	return int64(d.Seconds() * float64(r.Den) / float64(r.Num))
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}
