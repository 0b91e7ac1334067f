package player

import (
	"fmt"
	"time"

	"github.com/xaionaro-go/avplayer/queue"
)

// SyncConfig is the threshold structure of the audio-master
// synchronization: corrections are applied only when the video is ahead
// by more than ThresholdMin and less than NoSyncThreshold.
type SyncConfig struct {
	ThresholdMin    time.Duration
	NoSyncThreshold time.Duration
}

func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		ThresholdMin:    30 * time.Millisecond,
		NoSyncThreshold: 10 * time.Second,
	}
}

type Config struct {
	// QueueCapacity is the amount of encoded units buffered per stream.
	QueueCapacity int

	Sync SyncConfig

	// ResetClockOnSeek moves the clock to the seek target right away
	// instead of waiting for the first audio unit after the seek.
	ResetClockOnSeek bool

	// DefaultFrameDuration is used to pace video frames without a
	// timestamp if the stream does not report its frame rate.
	DefaultFrameDuration time.Duration
}

func DefaultConfig() Config {
	return Config{
		QueueCapacity:        queue.DefaultCapacity,
		Sync:                 DefaultSyncConfig(),
		ResetClockOnSeek:     true,
		DefaultFrameDuration: 40 * time.Millisecond,
	}
}

func (cfg Config) Validate() error {
	if cfg.QueueCapacity <= 0 {
		return fmt.Errorf("queue capacity must be positive, but it is %d", cfg.QueueCapacity)
	}
	if cfg.Sync.ThresholdMin < 0 || cfg.Sync.NoSyncThreshold <= cfg.Sync.ThresholdMin {
		return fmt.Errorf("invalid sync thresholds: min:%v nosync:%v", cfg.Sync.ThresholdMin, cfg.Sync.NoSyncThreshold)
	}
	if cfg.DefaultFrameDuration <= 0 {
		return fmt.Errorf("default frame duration must be positive, but it is %v", cfg.DefaultFrameDuration)
	}
	return nil
}
