package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/xaionaro-go/avplayer/types"
	"github.com/xaionaro-go/typing"
	"go.uber.org/atomic"
)

type fakeUnit struct {
	streamIndex int
	pts         typing.Optional[time.Duration]
	released    *atomic.Int64
}

var _ types.EncodedUnit = (*fakeUnit)(nil)

func (u *fakeUnit) StreamIndex() int                    { return u.streamIndex }
func (u *fakeUnit) PTS() typing.Optional[time.Duration] { return u.pts }
func (u *fakeUnit) Release()                            { u.released.Inc() }
func (u *fakeUnit) String() string                      { return fmt.Sprintf("#%d@%v", u.streamIndex, u.pts) }

type fakeSeek struct {
	StreamIndex int
	Position    time.Duration
}

type fakeDemuxer struct {
	streams  types.StreamInfos
	duration time.Duration

	locker   sync.Mutex
	units    []*fakeUnit
	position int
	endless  bool
	seeks    []fakeSeek
	onSeek   func(streamIndex int, position time.Duration) error
	closed   atomic.Bool
	created  atomic.Int64
	released atomic.Int64
}

var _ types.Demuxer = (*fakeDemuxer)(nil)

func newFakeDemuxer(streams ...types.StreamInfo) *fakeDemuxer {
	return &fakeDemuxer{
		streams:  streams,
		duration: time.Minute,
	}
}

// addUnits appends count units of the stream, timestamped every interval.
func (d *fakeDemuxer) addUnits(streamIndex int, count int, interval time.Duration) {
	for i := range count {
		d.units = append(d.units, &fakeUnit{
			streamIndex: streamIndex,
			pts:         typing.Opt(time.Duration(i) * interval),
			released:    &d.released,
		})
	}
}

// interleave orders the units by their timestamps, like a muxer would.
func (d *fakeDemuxer) interleave() {
	byStream := map[int][]*fakeUnit{}
	var order []int
	for _, u := range d.units {
		if _, ok := byStream[u.streamIndex]; !ok {
			order = append(order, u.streamIndex)
		}
		byStream[u.streamIndex] = append(byStream[u.streamIndex], u)
	}
	result := make([]*fakeUnit, 0, len(d.units))
	for len(result) < len(d.units) {
		bestIdx := -1
		for _, streamIndex := range order {
			q := byStream[streamIndex]
			if len(q) == 0 {
				continue
			}
			if bestIdx < 0 || q[0].pts.Get() < byStream[bestIdx][0].pts.Get() {
				bestIdx = streamIndex
			}
		}
		result = append(result, byStream[bestIdx][0])
		byStream[bestIdx] = byStream[bestIdx][1:]
	}
	d.units = result
}

func (d *fakeDemuxer) Streams() types.StreamInfos { return d.streams }
func (d *fakeDemuxer) Duration() time.Duration    { return d.duration }

func (d *fakeDemuxer) NextUnit(ctx context.Context) (types.EncodedUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.locker.Lock()
	defer d.locker.Unlock()
	if d.endless {
		d.created.Inc()
		d.position++
		return &fakeUnit{
			streamIndex: d.streams[d.position%len(d.streams)].Index,
			pts:         typing.Opt(time.Duration(d.position) * 10 * time.Millisecond),
			released:    &d.released,
		}, nil
	}
	if d.position >= len(d.units) {
		return nil, io.EOF
	}
	u := d.units[d.position]
	d.position++
	d.created.Inc()
	return u, nil
}

func (d *fakeDemuxer) Seek(ctx context.Context, streamIndex int, position time.Duration) error {
	d.locker.Lock()
	defer d.locker.Unlock()
	d.seeks = append(d.seeks, fakeSeek{StreamIndex: streamIndex, Position: position})
	if d.onSeek != nil {
		if err := d.onSeek(streamIndex, position); err != nil {
			return err
		}
	}
	target := 0
	for idx, u := range d.units {
		if u.streamIndex == streamIndex && u.pts.Get() <= position {
			target = idx
		}
	}
	d.position = target
	return nil
}

func (d *fakeDemuxer) Seeks() []fakeSeek {
	d.locker.Lock()
	defer d.locker.Unlock()
	return append([]fakeSeek(nil), d.seeks...)
}

func (d *fakeDemuxer) Close(ctx context.Context) error {
	d.closed.Store(true)
	return nil
}

type fakeFrame struct {
	pts      typing.Optional[time.Duration]
	released *atomic.Int64
}

func (f *fakeFrame) PTS() typing.Optional[time.Duration] { return f.pts }
func (f *fakeFrame) RepeatPict() int                     { return 0 }
func (f *fakeFrame) Bytes() []byte                       { return []byte{1, 2, 3, 4} }
func (f *fakeFrame) Release()                            { f.released.Inc() }

type fakeDecoder struct {
	openErr error
	failOn  func(unit types.EncodedUnit) bool

	// proceedCh, if set, makes Submit wait for a token.
	proceedCh chan struct{}

	locker         sync.Mutex
	pending        []typing.Optional[time.Duration]
	resets         atomic.Int64
	submitted      atomic.Int64
	framesReleased atomic.Int64
	closed         atomic.Bool
}

var _ types.Decoder = (*fakeDecoder)(nil)

func (d *fakeDecoder) Open(ctx context.Context, stream types.StreamInfo) error {
	return d.openErr
}

func (d *fakeDecoder) Submit(ctx context.Context, unit types.EncodedUnit) error {
	if d.proceedCh != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.proceedCh:
		}
	}
	if d.failOn != nil && d.failOn(unit) {
		return errors.New("corrupted unit")
	}
	d.submitted.Inc()
	d.locker.Lock()
	defer d.locker.Unlock()
	d.pending = append(d.pending, unit.PTS())
	return nil
}

func (d *fakeDecoder) ReceiveFrame(ctx context.Context) (types.Frame, error) {
	d.locker.Lock()
	defer d.locker.Unlock()
	if len(d.pending) == 0 {
		return nil, types.ErrWouldBlock
	}
	pts := d.pending[0]
	d.pending = d.pending[1:]
	return &fakeFrame{pts: pts, released: &d.framesReleased}, nil
}

func (d *fakeDecoder) Reset(ctx context.Context) error {
	d.resets.Inc()
	d.locker.Lock()
	defer d.locker.Unlock()
	d.pending = d.pending[:0]
	return nil
}

func (d *fakeDecoder) Close(ctx context.Context) error {
	d.closed.Store(true)
	return nil
}

type fakeVideoSink struct {
	prepareErr error
	width      int
	height     int
	presented  atomic.Int64
	closed     atomic.Bool
}

var _ types.VideoSink = (*fakeVideoSink)(nil)

func (s *fakeVideoSink) Prepare(ctx context.Context, width, height int, pixelFormat types.PixelFormat) error {
	s.width, s.height = width, height
	return s.prepareErr
}

func (s *fakeVideoSink) Present(ctx context.Context, pixels []byte) error {
	s.presented.Inc()
	return nil
}

func (s *fakeVideoSink) Close(ctx context.Context) error {
	s.closed.Store(true)
	return nil
}

type fakeAudioSink struct {
	sampleRate int
	channels   int
	written    atomic.Int64
	closed     atomic.Bool
}

var _ types.AudioSink = (*fakeAudioSink)(nil)

func (s *fakeAudioSink) Prepare(ctx context.Context, sampleRate, channels int) error {
	s.sampleRate, s.channels = sampleRate, channels
	return nil
}

func (s *fakeAudioSink) Write(ctx context.Context, pcm []byte) error {
	s.written.Inc()
	return nil
}

func (s *fakeAudioSink) Close(ctx context.Context) error {
	s.closed.Store(true)
	return nil
}

type callbackEvent struct {
	Kind    string
	Current time.Duration
}

type recordingCallback struct {
	locker sync.Mutex
	events []callbackEvent
	errors []error
}

var _ types.PlaybackCallback = (*recordingCallback)(nil)
var _ types.ErrorHandler = (*recordingCallback)(nil)

func (c *recordingCallback) add(ev callbackEvent) {
	c.locker.Lock()
	defer c.locker.Unlock()
	c.events = append(c.events, ev)
}

func (c *recordingCallback) OnStart(ctx context.Context) {
	c.add(callbackEvent{Kind: "start"})
}

func (c *recordingCallback) OnProgress(ctx context.Context, total, current time.Duration) {
	c.add(callbackEvent{Kind: "progress", Current: current})
}

func (c *recordingCallback) OnEnd(ctx context.Context) {
	c.add(callbackEvent{Kind: "end"})
}

func (c *recordingCallback) OnError(ctx context.Context, err error) {
	c.locker.Lock()
	defer c.locker.Unlock()
	c.errors = append(c.errors, err)
}

func (c *recordingCallback) Events() []callbackEvent {
	c.locker.Lock()
	defer c.locker.Unlock()
	return append([]callbackEvent(nil), c.events...)
}

func (c *recordingCallback) Errors() []error {
	c.locker.Lock()
	defer c.locker.Unlock()
	return append([]error(nil), c.errors...)
}

func (c *recordingCallback) count(kind string) int {
	result := 0
	for _, ev := range c.Events() {
		if ev.Kind == kind {
			result++
		}
	}
	return result
}

func videoStream(index int) types.StreamInfo {
	return types.StreamInfo{
		Index:            index,
		MediaType:        types.MediaTypeVideo,
		TimeBase:         types.Rational{Num: 1, Den: 90000},
		AvgFrameDuration: 40 * time.Millisecond,
		Width:            320,
		Height:           240,
	}
}

func audioStream(index int) types.StreamInfo {
	return types.StreamInfo{
		Index:      index,
		MediaType:  types.MediaTypeAudio,
		TimeBase:   types.Rational{Num: 1, Den: 48000},
		SampleRate: 48000,
		Channels:   6,
	}
}
