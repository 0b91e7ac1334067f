package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/typing"
)

func TestVideoDelay(t *testing.T) {
	cfg := DefaultSyncConfig()
	nominal := 40 * time.Millisecond

	for _, tc := range []struct {
		name       string
		pts        typing.Optional[time.Duration]
		clock      float64
		repeatPict int
		expected   time.Duration
	}{
		{
			name:     "ahead-within-window",
			pts:      typing.Opt(10050 * time.Millisecond),
			clock:    10.00,
			expected: 50 * time.Millisecond,
		},
		{
			name:  "behind",
			pts:   typing.Opt(9900 * time.Millisecond),
			clock: 10.00,
		},
		{
			name:  "equal",
			pts:   typing.Opt(10 * time.Second),
			clock: 10.00,
		},
		{
			name:  "ahead-below-min-threshold",
			pts:   typing.Opt(10020 * time.Millisecond),
			clock: 10.00,
		},
		{
			name:  "ahead-beyond-nosync",
			pts:   typing.Opt(25 * time.Second),
			clock: 10.00,
		},
		{
			name:  "behind-beyond-nosync",
			pts:   typing.Opt(time.Duration(0)),
			clock: 30.00,
		},
		{
			name:     "no-pts",
			clock:    10.00,
			expected: nominal,
		},
		{
			name:       "no-pts-repeated-field",
			clock:      10.00,
			repeatPict: 1,
			expected:   60 * time.Millisecond,
		},
		{
			name:       "no-pts-repeated-frame",
			clock:      10.00,
			repeatPict: 2,
			expected:   2 * nominal,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			delay := VideoDelay(tc.pts, tc.clock, nominal, tc.repeatPict, cfg)
			require.InDelta(t, tc.expected.Seconds(), delay.Seconds(), 0.001)
		})
	}
}
