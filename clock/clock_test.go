package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAVClock(t *testing.T) {
	c := New()
	require.Zero(t, c.Seconds())

	c.Set(10.5)
	require.Equal(t, 10.5, c.Seconds())
	require.Equal(t, 10500*time.Millisecond, c.Duration())

	c.Reset(30 * time.Second)
	require.Equal(t, 30.0, c.Seconds())
	require.Equal(t, "AVClock(30.000s)", c.String())
}

func TestAVClockConcurrentReaders(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prev := 0.0
			for range 1000 {
				cur := c.Seconds()
				assert.GreaterOrEqual(t, cur, prev)
				prev = cur
			}
		}()
	}
	for i := range 1000 {
		c.Set(float64(i) / 100)
	}
	wg.Wait()
}
