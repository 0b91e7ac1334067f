// Package avconv converts between libav values and the avplayer types.
package avconv

import (
	"math"
	"time"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/typing"
)

const (
	// see https://ffmpeg.org/doxygen/trunk/group__lavu__time.html#ga2eaefe702f95f619ea6f2d08afa01be1
	avNoPTSValue = uint64(0x8000000000000000)
)

// TimeBaseAV is AV_TIME_BASE_Q, the time base of the container durations.
var TimeBaseAV = astiav.NewRational(1, astiav.TimeBase)

func init() {
	if avNoPTSValue != uint64(any(int64(math.MinInt64)).(int64)) { // to bypass the compiler check
		panic("avNoPTSValue changed")
	}
}

func IsNoPTS(t int64) bool {
	return uint64(t) == avNoPTSValue
}

// Duration converts a timestamp to a duration; the result is unset for
// AV_NOPTS_VALUE or an invalid time base.
func Duration(t int64, timeBase astiav.Rational) typing.Optional[time.Duration] {
	if IsNoPTS(t) || timeBase.Den() == 0 {
		return typing.Optional[time.Duration]{}
	}
	return typing.Opt(time.Duration(float64(t) * timeBase.Float64() * float64(time.Second)))
}

// FromDuration converts a duration to a timestamp, rounding towards
// the past.
func FromDuration(d time.Duration, timeBase astiav.Rational) int64 {
	if timeBase.Num() == 0 {
		return 0
	}
	return int64(math.Floor(d.Seconds() * float64(timeBase.Den()) / float64(timeBase.Num())))
}
