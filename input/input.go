// Package input is the libav demuxer of the player.
package input

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"reflect"
	"time"

	"github.com/asticode/go-astiav"
	"github.com/asticode/go-astikit"
	"github.com/davecgh/go-spew/spew"
	"github.com/xaionaro-go/avplayer/avconv"
	"github.com/xaionaro-go/avplayer/logger"
	"github.com/xaionaro-go/avplayer/packet"
	"github.com/xaionaro-go/avplayer/types"
	"github.com/xaionaro-go/secret"
	"github.com/xaionaro-go/unsafetools"
	"github.com/xaionaro-go/xsync"
)

type Config struct {
	// CustomOptions are passed to avformat_open_input, except "f"
	// which overrides the input format.
	CustomOptions types.DictionaryItems
}

type Input struct {
	URL string

	locker        xsync.Mutex
	formatContext *astiav.FormatContext
	interrupter   astiav.IOInterrupter
	streams       types.StreamInfos
	closer        *astikit.Closer
}

var _ types.Demuxer = (*Input)(nil)

func Open(
	ctx context.Context,
	urlString string,
	authKey secret.String,
	cfg Config,
) (_ret *Input, _err error) {
	logger.Debugf(ctx, "Open: %s", urlString)
	defer func() { logger.Debugf(ctx, "/Open: %s: %v", urlString, _err) }()

	if urlString == "" {
		return nil, fmt.Errorf("the provided URL is empty")
	}
	if urlParsed, err := url.Parse(urlString); err == nil && urlParsed.Scheme != "" {
		logger.Debugf(ctx, "URL: %#+v", urlParsed)
	}

	var (
		formatName string
		options    types.DictionaryItems
	)
	for _, opt := range cfg.CustomOptions {
		if opt.Key == "f" {
			formatName = opt.Value
			logger.Debugf(ctx, "overriding input format to '%s'", opt.Value)
			continue
		}
		options = append(options, opt)
	}

	var inputFormat *astiav.InputFormat
	if formatName != "" {
		inputFormat = astiav.FindInputFormat(formatName)
		if inputFormat == nil {
			return nil, fmt.Errorf("unable to find input format by name '%s'", formatName)
		}
		logger.Debugf(ctx, "using format '%s'", inputFormat.Name())
	}

	i := &Input{
		URL:    urlString,
		closer: astikit.NewCloser(),
	}

	i.formatContext = astiav.AllocFormatContext()
	if i.formatContext == nil {
		return nil, fmt.Errorf("unable to allocate a format context")
	}
	i.closer.Add(i.formatContext.Free)
	i.interrupter = i.formatContext.SetInterruptCallback()

	stopWatching := context.AfterFunc(ctx, i.interrupter.Interrupt)
	defer stopWatching()

	urlWithSecret := urlString
	if authKey.Get() != "" {
		urlWithSecret += authKey.Get()
	}
	if err := i.formatContext.OpenInput(urlWithSecret, inputFormat, avconv.DictionaryItemsToAstiav(ctx, options)); err != nil {
		i.closer.Close()
		if authKey.Get() != "" {
			return nil, fmt.Errorf("unable to open input by URL '%s/<HIDDEN>': %w", urlString, err)
		}
		return nil, fmt.Errorf("unable to open input by URL '%s': %w", urlString, err)
	}
	i.closer.Add(i.formatContext.CloseInput)

	if err := i.formatContext.FindStreamInfo(nil); err != nil {
		i.closer.Close()
		return nil, fmt.Errorf("unable to get stream info: %w", err)
	}

	for _, stream := range i.formatContext.Streams() {
		info := avconv.StreamInfo(stream)
		i.streams = append(i.streams, info)
		logger.Debugf(ctx, "input stream %s", info)
		logger.OnLevel(ctx, logger.LevelTrace, func() {
			logger.Tracef(ctx, "input stream #%d codec parameters: %s", stream.Index(), spew.Sdump(unsafetools.FieldByNameInValue(reflect.ValueOf(stream.CodecParameters()), "c").Elem().Elem().Interface()))
		})
	}

	return i, nil
}

func (i *Input) String() string {
	return fmt.Sprintf("Input(%s)", i.URL)
}

func (i *Input) Streams() types.StreamInfos {
	return i.streams
}

// Duration is zero for live sources.
func (i *Input) Duration() time.Duration {
	d := avconv.Duration(i.formatContext.Duration(), avconv.TimeBaseAV)
	if !d.IsSet() || d.Get() < 0 {
		return 0
	}
	return d.Get()
}

func (i *Input) NextUnit(
	ctx context.Context,
) (types.EncodedUnit, error) {
	return xsync.DoA1R2(ctx, &i.locker, i.nextUnitLocked, ctx)
}

func (i *Input) nextUnitLocked(
	ctx context.Context,
) (types.EncodedUnit, error) {
	if i.formatContext == nil {
		return nil, io.EOF
	}
	stopWatching := context.AfterFunc(ctx, i.interrupter.Interrupt)
	defer stopWatching()

	for {
		pkt := packet.Pool.Get()
		err := i.readIntoPacket(ctx, pkt)
		if err != nil {
			packet.Pool.Put(pkt)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}
		logger.Tracef(
			ctx,
			"received a packet (stream:%d, pos:%d, pts:%d, dts:%d, dur:%d), dataLen:%d",
			pkt.StreamIndex(),
			pkt.Pos(), pkt.Pts(), pkt.Dts(), pkt.Duration(),
			len(pkt.Data()),
		)
		stream := avconv.FindStreamByIndex(i.formatContext, pkt.StreamIndex())
		if stream == nil {
			logger.Warnf(ctx, "a packet of an unknown stream #%d", pkt.StreamIndex())
			packet.Pool.Put(pkt)
			continue
		}
		return packet.NewUnit(pkt, stream.TimeBase()), nil
	}
}

func (i *Input) readIntoPacket(
	_ context.Context,
	packet *astiav.Packet,
) error {
	err := i.formatContext.ReadFrame(packet)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, astiav.ErrEof):
		return io.EOF
	case errors.Is(err, astiav.ErrEio):
		return io.EOF
	default:
		return fmt.Errorf("unable to read a frame: %T:%w", err, err)
	}
}

func (i *Input) Seek(
	ctx context.Context,
	streamIndex int,
	position time.Duration,
) (_err error) {
	logger.Debugf(ctx, "Seek(%d, %v)", streamIndex, position)
	defer func() { logger.Debugf(ctx, "/Seek(%d, %v): %v", streamIndex, position, _err) }()

	return xsync.DoR1(ctx, &i.locker, func() error {
		if i.formatContext == nil {
			return fmt.Errorf("the input is closed")
		}
		stream := avconv.FindStreamByIndex(i.formatContext, streamIndex)
		if stream == nil {
			return fmt.Errorf("stream #%d not found", streamIndex)
		}
		ts := avconv.FromDuration(position, stream.TimeBase())
		if err := i.formatContext.SeekFrame(streamIndex, ts, astiav.NewSeekFlags(astiav.SeekFlagBackward)); err != nil {
			return fmt.Errorf("unable to seek stream #%d to %d: %w", streamIndex, ts, err)
		}
		return nil
	})
}

// Close aborts a pending read and frees the format context.
func (i *Input) Close(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "Close")
	defer func() { logger.Debugf(ctx, "/Close: %v", _err) }()

	if i.interrupter != nil {
		i.interrupter.Interrupt()
	}
	return xsync.DoR1(ctx, &i.locker, func() error {
		if i.formatContext == nil {
			return nil
		}
		i.formatContext = nil
		return i.closer.Close()
	})
}
