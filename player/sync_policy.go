package player

import (
	"time"

	"github.com/xaionaro-go/typing"
)

// VideoDelay returns how long a decoded video frame should wait before
// being presented, given the current master clock (in seconds).
//
// Video is never dropped or hurried: it is only slowed down when it is
// ahead of the clock within the sync window.
func VideoDelay(
	framePTS typing.Optional[time.Duration],
	clockSeconds float64,
	nominal time.Duration,
	repeatPict int,
	cfg SyncConfig,
) time.Duration {
	if !framePTS.IsSet() {
		return nominal + time.Duration(repeatPict)*nominal/2
	}

	diff := framePTS.Get().Seconds() - clockSeconds
	absDiff := diff
	if absDiff < 0 {
		absDiff = -absDiff
	}
	switch {
	case diff <= 0:
		return 0
	case absDiff >= cfg.NoSyncThreshold.Seconds():
		return 0
	case absDiff > cfg.ThresholdMin.Seconds():
		return time.Duration(diff * float64(time.Second))
	default:
		return 0
	}
}
