package player

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avplayer/types"
)

type testRig struct {
	demuxer      *fakeDemuxer
	videoDecoder *fakeDecoder
	audioDecoder *fakeDecoder
	videoSink    *fakeVideoSink
	audioSink    *fakeAudioSink
	callback     *recordingCallback
}

func newTestRig(demuxer *fakeDemuxer) *testRig {
	return &testRig{
		demuxer:      demuxer,
		videoDecoder: &fakeDecoder{},
		audioDecoder: &fakeDecoder{},
		videoSink:    &fakeVideoSink{},
		audioSink:    &fakeAudioSink{},
		callback:     &recordingCallback{},
	}
}

func (r *testRig) Components() Components {
	c := Components{
		Demuxer:      r.demuxer,
		VideoDecoder: r.videoDecoder,
		AudioDecoder: r.audioDecoder,
		Callback:     r.callback,
	}
	if r.videoSink != nil {
		c.VideoSink = r.videoSink
	}
	if r.audioSink != nil {
		c.AudioSink = r.audioSink
	}
	return c
}

func (r *testRig) requireClosed(t *testing.T) {
	require.True(t, r.demuxer.closed.Load())
	require.True(t, r.videoDecoder.closed.Load())
	require.True(t, r.audioDecoder.closed.Load())
	require.True(t, r.videoSink.closed.Load())
	require.True(t, r.audioSink.closed.Load())
}

func waitSession(t *testing.T, s *Session) {
	ctx, cancelFn := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelFn()
	require.NoError(t, s.Wait(ctx))
}

func TestSessionEndToEnd(t *testing.T) {
	ctx := context.Background()

	demuxer := newFakeDemuxer(videoStream(0), audioStream(1))
	demuxer.addUnits(0, 100, 40*time.Millisecond)
	demuxer.addUnits(1, 50, 80*time.Millisecond)
	demuxer.interleave()
	rig := newTestRig(demuxer)

	s, err := Start(ctx, rig.Components(), DefaultConfig())
	require.NoError(t, err)
	waitSession(t, s)

	events := rig.callback.Events()
	require.NotEmpty(t, events)
	require.Equal(t, "start", events[0].Kind)
	require.Equal(t, "end", events[len(events)-1].Kind)
	require.Equal(t, 1, rig.callback.count("start"))
	require.Equal(t, 50, rig.callback.count("progress"))
	require.Equal(t, 1, rig.callback.count("end"))
	require.Empty(t, rig.callback.Errors())

	require.Equal(t, int64(150), demuxer.released.Load())
	require.Equal(t, int64(100), rig.videoSink.presented.Load())
	require.Equal(t, int64(50), rig.audioSink.written.Load())
	require.Equal(t, int64(100), rig.videoDecoder.framesReleased.Load())
	require.Equal(t, int64(50), rig.audioDecoder.framesReleased.Load())

	require.Equal(t, 320, rig.videoSink.width)
	require.Equal(t, 240, rig.videoSink.height)
	require.Equal(t, 48000, rig.audioSink.sampleRate)
	require.Equal(t, 2, rig.audioSink.channels)
	require.Equal(t, 49*80*time.Millisecond, s.Position())
	rig.requireClosed(t)

	stats := s.Statistics()
	require.Equal(t, uint64(150), stats.UnitsRead)
	require.Equal(t, uint64(100), stats.Video.Presented)
	require.Equal(t, uint64(50), stats.Audio.Presented)
	require.Zero(t, stats.Video.Dropped)
	require.Zero(t, stats.Audio.Dropped)

	require.ErrorIs(t, s.Seek(ctx, time.Second), ErrSessionEnded)
	require.NoError(t, s.Stop(ctx))
}

func TestSessionProgressIsMonotonic(t *testing.T) {
	ctx := context.Background()

	demuxer := newFakeDemuxer(audioStream(0))
	demuxer.addUnits(0, 20, 20*time.Millisecond)
	rig := newTestRig(demuxer)

	s, err := Start(ctx, rig.Components(), DefaultConfig())
	require.NoError(t, err)
	waitSession(t, s)

	var prev time.Duration
	for _, ev := range rig.callback.Events() {
		if ev.Kind != "progress" {
			continue
		}
		require.GreaterOrEqual(t, ev.Current, prev)
		prev = ev.Current
	}
	require.Equal(t, 19*20*time.Millisecond, prev)
	require.Zero(t, rig.videoSink.presented.Load())
}

func TestSessionVideoOnly(t *testing.T) {
	ctx := context.Background()

	demuxer := newFakeDemuxer(videoStream(0))
	demuxer.addUnits(0, 10, 10*time.Millisecond)
	rig := newTestRig(demuxer)

	startedAt := time.Now()
	s, err := Start(ctx, rig.Components(), DefaultConfig())
	require.NoError(t, err)
	waitSession(t, s)

	require.GreaterOrEqual(t, time.Since(startedAt), 80*time.Millisecond)
	require.Equal(t, int64(10), rig.videoSink.presented.Load())
	require.Equal(t, 1, rig.callback.count("start"))
	require.Equal(t, 10, rig.callback.count("progress"))
	require.Equal(t, 1, rig.callback.count("end"))
	require.Equal(t, 90*time.Millisecond, s.Position())
}

func TestSessionUntrackedStreams(t *testing.T) {
	ctx := context.Background()

	subtitles := types.StreamInfo{Index: 2, MediaType: types.MediaTypeSubtitle}
	demuxer := newFakeDemuxer(videoStream(0), audioStream(1), subtitles)
	demuxer.addUnits(0, 5, 40*time.Millisecond)
	demuxer.addUnits(1, 5, 40*time.Millisecond)
	demuxer.addUnits(2, 5, 40*time.Millisecond)
	demuxer.interleave()
	rig := newTestRig(demuxer)
	rig.videoSink = nil

	s, err := Start(ctx, rig.Components(), DefaultConfig())
	require.NoError(t, err)
	waitSession(t, s)

	stats := s.Statistics()
	require.Nil(t, stats.Video)
	require.Equal(t, uint64(10), stats.UnitsUntracked)
	require.Equal(t, int64(15), demuxer.released.Load())
	require.Zero(t, rig.videoDecoder.submitted.Load())
	require.True(t, rig.videoDecoder.closed.Load())
}

func TestSessionSeek(t *testing.T) {
	ctx := context.Background()

	demuxer := newFakeDemuxer(videoStream(0), audioStream(1))
	demuxer.addUnits(0, 1000, 40*time.Millisecond)
	demuxer.addUnits(1, 500, 80*time.Millisecond)
	demuxer.interleave()
	rig := newTestRig(demuxer)
	rig.videoDecoder.proceedCh = make(chan struct{})
	rig.audioDecoder.proceedCh = make(chan struct{})

	s, err := Start(ctx, rig.Components(), DefaultConfig())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return s.video.queue.IsFull()
	}, 5*time.Second, 10*time.Millisecond)
	require.False(t, s.audio.queue.IsEmpty())

	var queueSizesOnSeek []int
	demuxer.onSeek = func(streamIndex int, position time.Duration) error {
		queueSizesOnSeek = append(queueSizesOnSeek, s.video.queue.Size(), s.audio.queue.Size())
		return nil
	}

	require.NoError(t, s.Seek(ctx, 30*time.Second))
	require.Equal(t, []int{0, 0, 0, 0}, queueSizesOnSeek)

	seeks := demuxer.Seeks()
	require.Len(t, seeks, 2)
	require.ElementsMatch(t, []int{0, 1}, []int{seeks[0].StreamIndex, seeks[1].StreamIndex})
	for _, seek := range seeks {
		require.LessOrEqual(t, seek.Position, 30*time.Second)
	}
	require.Equal(t, 30*time.Second, s.Position())

	close(rig.videoDecoder.proceedCh)
	close(rig.audioDecoder.proceedCh)
	waitSession(t, s)

	require.Equal(t, int64(1), rig.videoDecoder.resets.Load())
	require.Equal(t, int64(1), rig.audioDecoder.resets.Load())
	require.Equal(t, demuxer.created.Load(), demuxer.released.Load())
	require.Equal(t, 499*80*time.Millisecond, s.Position())
	require.Equal(t, 1, rig.callback.count("end"))
	require.Equal(t, uint64(1), s.Statistics().Seeks)
	require.Less(t, demuxer.created.Load(), int64(1500))
}

func TestSessionSeekFailure(t *testing.T) {
	ctx := context.Background()

	demuxer := newFakeDemuxer(videoStream(0), audioStream(1))
	demuxer.addUnits(0, 100, 40*time.Millisecond)
	demuxer.addUnits(1, 50, 80*time.Millisecond)
	demuxer.interleave()
	seekErr := errors.New("not seekable")
	demuxer.onSeek = func(streamIndex int, position time.Duration) error {
		return seekErr
	}
	rig := newTestRig(demuxer)
	rig.audioDecoder.proceedCh = make(chan struct{})

	s, err := Start(ctx, rig.Components(), DefaultConfig())
	require.NoError(t, err)

	err = s.Seek(ctx, time.Second)
	require.ErrorIs(t, err, seekErr)
	require.Len(t, demuxer.Seeks(), 2)
	require.False(t, s.gate.IsHeld())
	require.Zero(t, s.gate.Generation())
	require.Equal(t, uint64(2), s.Statistics().SeekErrors)

	errs := rig.callback.Errors()
	require.Len(t, errs, 2)
	for _, err := range errs {
		var seekErrReported ErrSeek
		require.ErrorAs(t, err, &seekErrReported)
	}

	close(rig.audioDecoder.proceedCh)
	waitSession(t, s)
	require.Equal(t, 1, rig.callback.count("end"))
	require.Zero(t, rig.videoDecoder.resets.Load())
}

func TestSessionSeekPartialFailure(t *testing.T) {
	ctx := context.Background()

	demuxer := newFakeDemuxer(videoStream(0), audioStream(1))
	demuxer.addUnits(0, 1000, 40*time.Millisecond)
	demuxer.addUnits(1, 500, 80*time.Millisecond)
	demuxer.interleave()
	seekErr := errors.New("no index for the stream")
	demuxer.onSeek = func(streamIndex int, position time.Duration) error {
		if streamIndex == 0 {
			return seekErr
		}
		return nil
	}
	rig := newTestRig(demuxer)
	rig.audioDecoder.proceedCh = make(chan struct{})

	s, err := Start(ctx, rig.Components(), DefaultConfig())
	require.NoError(t, err)

	err = s.Seek(ctx, 30*time.Second)
	require.ErrorIs(t, err, seekErr)
	var seekErrReturned ErrSeek
	require.ErrorAs(t, err, &seekErrReturned)
	require.Equal(t, 0, seekErrReturned.StreamIndex)

	seeks := demuxer.Seeks()
	require.Len(t, seeks, 2)
	require.ElementsMatch(t, []int{0, 1}, []int{seeks[0].StreamIndex, seeks[1].StreamIndex})
	require.Equal(t, uint64(1), s.gate.Generation())
	require.Equal(t, 30*time.Second, s.Position())
	require.Len(t, rig.callback.Errors(), 1)

	require.NoError(t, s.Stop(ctx))
	close(rig.audioDecoder.proceedCh)
}

func TestSessionStopDuringSeek(t *testing.T) {
	ctx := context.Background()

	demuxer := newFakeDemuxer(audioStream(0))
	demuxer.endless = true
	seekStartedCh := make(chan struct{})
	seekProceedCh := make(chan struct{})
	demuxer.onSeek = func(streamIndex int, position time.Duration) error {
		close(seekStartedCh)
		<-seekProceedCh
		return nil
	}
	rig := newTestRig(demuxer)

	s, err := Start(ctx, rig.Components(), DefaultConfig())
	require.NoError(t, err)

	seekErrCh := make(chan error, 1)
	go func() {
		seekErrCh <- s.Seek(ctx, time.Second)
	}()
	<-seekStartedCh

	stopErrCh := make(chan error, 1)
	go func() {
		stopErrCh <- s.Stop(ctx)
	}()
	require.Eventually(t, func() bool {
		return s.hasEnded(ctx)
	}, 5*time.Second, time.Millisecond)

	select {
	case err := <-stopErrCh:
		t.Fatalf("the session was torn down while the demuxer was seeking: %v", err)
	case <-time.After(100 * time.Millisecond):
	}
	require.False(t, demuxer.closed.Load())

	close(seekProceedCh)
	require.ErrorIs(t, <-seekErrCh, ErrSessionEnded)
	require.NoError(t, <-stopErrCh)
	require.True(t, demuxer.closed.Load())
	require.Zero(t, s.gate.Generation())
	require.Equal(t, demuxer.created.Load(), demuxer.released.Load())
}

func TestSessionDecodeErrorsAreNotFatal(t *testing.T) {
	ctx := context.Background()

	demuxer := newFakeDemuxer(audioStream(0))
	demuxer.addUnits(0, 10, 20*time.Millisecond)
	rig := newTestRig(demuxer)
	rig.audioDecoder.failOn = func(unit types.EncodedUnit) bool {
		return unit.PTS().Get() == 100*time.Millisecond
	}

	s, err := Start(ctx, rig.Components(), DefaultConfig())
	require.NoError(t, err)
	waitSession(t, s)

	require.Equal(t, int64(9), rig.audioSink.written.Load())
	require.Equal(t, int64(10), demuxer.released.Load())
	require.Equal(t, 10, rig.callback.count("progress"))
	require.Equal(t, 1, rig.callback.count("end"))

	var progress []time.Duration
	for _, ev := range rig.callback.Events() {
		if ev.Kind == "progress" {
			progress = append(progress, ev.Current)
		}
	}
	require.Equal(t, 80*time.Millisecond, progress[5])

	errs := rig.callback.Errors()
	require.Len(t, errs, 1)
	var decodeErr ErrDecode
	require.ErrorAs(t, errs[0], &decodeErr)
	require.Equal(t, types.MediaTypeAudio, decodeErr.MediaType)
	require.Equal(t, uint64(1), s.Statistics().Audio.DecodeErrors)
}

func TestSessionStop(t *testing.T) {
	ctx := context.Background()

	demuxer := newFakeDemuxer(videoStream(0), audioStream(1))
	demuxer.endless = true
	rig := newTestRig(demuxer)

	s, err := Start(ctx, rig.Components(), DefaultConfig())
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return rig.callback.count("progress") > 10
	}, 5*time.Second, time.Millisecond)

	stopCtx, cancelFn := context.WithTimeout(ctx, 10*time.Second)
	defer cancelFn()
	require.NoError(t, s.Stop(stopCtx))
	require.NoError(t, s.Stop(stopCtx))

	require.Equal(t, 1, rig.callback.count("start"))
	require.Zero(t, rig.callback.count("end"))
	require.Equal(t, demuxer.created.Load(), demuxer.released.Load())
	rig.requireClosed(t)
}

func TestSessionPause(t *testing.T) {
	ctx := context.Background()

	demuxer := newFakeDemuxer(audioStream(0))
	demuxer.endless = true
	rig := newTestRig(demuxer)

	s, err := Start(ctx, rig.Components(), DefaultConfig())
	require.NoError(t, err)
	defer s.Stop(ctx)

	s.Pause(ctx)
	s.Pause(ctx)
	require.True(t, s.IsPaused())
	time.Sleep(50 * time.Millisecond)
	written := rig.audioSink.written.Load()
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, written, rig.audioSink.written.Load())

	s.Resume(ctx)
	require.False(t, s.IsPaused())
	require.Eventually(t, func() bool {
		return rig.audioSink.written.Load() > written
	}, 5*time.Second, time.Millisecond)
}

func TestSessionSetupFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("decoder", func(t *testing.T) {
		demuxer := newFakeDemuxer(videoStream(0), audioStream(1))
		demuxer.addUnits(0, 10, 40*time.Millisecond)
		rig := newTestRig(demuxer)
		openErr := errors.New("no such codec")
		rig.videoDecoder.openErr = openErr

		s, err := Start(ctx, rig.Components(), DefaultConfig())
		require.Nil(t, s)
		require.ErrorIs(t, err, openErr)
		var setupErr ErrSetup
		require.ErrorAs(t, err, &setupErr)
		require.Equal(t, types.MediaTypeVideo, setupErr.Stream.MediaType)

		rig.requireClosed(t)
		require.Zero(t, demuxer.created.Load())
		require.Empty(t, rig.callback.Events())
	})

	t.Run("sink", func(t *testing.T) {
		demuxer := newFakeDemuxer(videoStream(0))
		rig := newTestRig(demuxer)
		rig.videoSink.prepareErr = errors.New("no display")

		_, err := Start(ctx, rig.Components(), DefaultConfig())
		require.ErrorIs(t, err, rig.videoSink.prepareErr)
		rig.requireClosed(t)
	})

	t.Run("no-playable-streams", func(t *testing.T) {
		demuxer := newFakeDemuxer(types.StreamInfo{Index: 0, MediaType: types.MediaTypeData})
		rig := newTestRig(demuxer)

		_, err := Start(ctx, rig.Components(), DefaultConfig())
		require.ErrorAs(t, err, &types.ErrNoPlayableStreams{})
		rig.requireClosed(t)
	})

	t.Run("invalid-config", func(t *testing.T) {
		demuxer := newFakeDemuxer(videoStream(0))
		rig := newTestRig(demuxer)
		cfg := DefaultConfig()
		cfg.QueueCapacity = 0

		_, err := Start(ctx, rig.Components(), cfg)
		require.Error(t, err)
		rig.requireClosed(t)
	})
}
