package discard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avplayer/types"
)

func TestDiscard(t *testing.T) {
	ctx := context.Background()

	t.Run("Video", func(t *testing.T) {
		v := NewVideo()
		require.NoError(t, v.Prepare(ctx, 2, 2, types.PixelFormatRGBA))
		require.NoError(t, v.Present(ctx, make([]byte, 16)))
		require.NoError(t, v.Present(ctx, make([]byte, 16)))
		require.Equal(t, uint64(2), v.Frames.Load())
		require.Equal(t, uint64(32), v.Bytes.Load())
		require.NoError(t, v.Close(ctx))
	})

	t.Run("Audio", func(t *testing.T) {
		a := NewAudio()
		require.NoError(t, a.Prepare(ctx, 48000, 2))
		require.NoError(t, a.Write(ctx, make([]byte, 4096)))
		require.Equal(t, uint64(1), a.Chunks.Load())
		require.Equal(t, uint64(4096), a.Bytes.Load())
		require.NoError(t, a.Close(ctx))
	})
}
