package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"time"

	"github.com/facebookincubator/go-belt"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/avplayer/codec"
	"github.com/xaionaro-go/avplayer/input"
	"github.com/xaionaro-go/avplayer/logger"
	"github.com/xaionaro-go/avplayer/player"
	"github.com/xaionaro-go/avplayer/sink/snapshot"
	"github.com/xaionaro-go/avplayer/types"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/secret"
	"golang.org/x/sync/errgroup"
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "syntax: %s [options] <URL>\n", os.Args[0])
		pflag.PrintDefaults()
	}

	defaultCfg := player.DefaultConfig()
	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	videoOut := pflag.String("video-out", "discard", "video output: none, discard, raw:<path>, snapshot:<dir>, window[:<title>]")
	audioOut := pflag.String("audio-out", "discard", "audio output: none, discard, raw:<path>, speaker")
	seekTo := pflag.Duration("seek", 0, "seek to this position right after the start")
	queueSize := pflag.Int("queue-size", defaultCfg.QueueCapacity, "the capacity of the per-stream unit queues")
	noClockReset := pflag.Bool("no-clock-reset", false, "do not reset the clock to the seek position on a seek")
	snapshotEvery := pflag.Uint64("snapshot-every", 25, "save every N-th frame with the snapshot output")
	snapshotSize := pflag.String("snapshot-size", "", "the size of the snapshots, for example 320x180; empty keeps the frame size")
	inputOptions := pflag.StringSlice("input-option", nil, "custom input options as key=value, for example f=matroska")
	decoderThreads := pflag.Int("decoder-threads", 0, "the amount of decoding threads per stream; 0 lets libav decide")
	statusInterval := pflag.Duration("status-interval", time.Second, "how often to print the status line; 0 disables it")
	pflag.Parse()
	if len(pflag.Args()) != 1 {
		pflag.Usage()
		os.Exit(1)
	}
	sourceURL := pflag.Arg(0)

	ctx := withLogger(context.Background(), loggerLevel)
	defer belt.Flush(ctx)
	ctx, cancelFn := signal.NotifyContext(ctx, os.Interrupt)
	defer cancelFn()

	if *netPprofAddr != "" {
		observability.Go(ctx, func(ctx context.Context) {
			logger.Errorf(ctx, "%v", http.ListenAndServe(*netPprofAddr, nil))
		})
	}

	cfg := defaultCfg
	cfg.QueueCapacity = *queueSize
	cfg.ResetClockOnSeek = !*noClockReset

	snapshotCfg := snapshot.Config{Every: *snapshotEvery}
	if *snapshotSize != "" {
		if err := snapshotCfg.Size.Parse(*snapshotSize); err != nil {
			logger.Fatalf(ctx, "%v", err)
		}
	}

	err := play(ctx, sourceURL, cfg, playOptions{
		VideoOut:       *videoOut,
		AudioOut:       *audioOut,
		SnapshotConfig: snapshotCfg,
		InputOptions:   types.DictionaryItemsFromStrings(*inputOptions),
		DecoderConfig:  codec.Config{ThreadCount: *decoderThreads},
		SeekTo:         *seekTo,
		StatusInterval: *statusInterval,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf(ctx, "%v", err)
	}
}

type playOptions struct {
	VideoOut       string
	AudioOut       string
	SnapshotConfig snapshot.Config
	InputOptions   types.DictionaryItems
	DecoderConfig  codec.Config
	SeekTo         time.Duration
	StatusInterval time.Duration
}

func play(
	ctx context.Context,
	sourceURL string,
	cfg player.Config,
	opts playOptions,
) (_err error) {
	logger.Debugf(ctx, "play('%s')", sourceURL)
	defer func() { logger.Debugf(ctx, "/play('%s'): %v", sourceURL, _err) }()

	videoSink, err := newVideoSink(opts.VideoOut, opts.SnapshotConfig)
	if err != nil {
		return fmt.Errorf("unable to initialize the video output: %w", err)
	}
	var audioSink types.AudioSink
	closeSinks := func() {
		for _, sink := range []types.Closer{videoSink, audioSink} {
			if sink == nil {
				continue
			}
			if err := sink.Close(ctx); err != nil {
				logger.Errorf(ctx, "unable to close %T: %v", sink, err)
			}
		}
	}
	audioSink, err = newAudioSink(opts.AudioOut)
	if err != nil {
		closeSinks()
		return fmt.Errorf("unable to initialize the audio output: %w", err)
	}

	logger.Debugf(ctx, "opening '%s' as the input...", sourceURL)
	demuxer, err := input.Open(ctx, sourceURL, secret.New(""), input.Config{
		CustomOptions: opts.InputOptions,
	})
	if err != nil {
		closeSinks()
		return err
	}

	ended := make(chan struct{})
	session, err := player.Start(ctx, player.Components{
		Demuxer:      demuxer,
		VideoDecoder: codec.NewDecoder(opts.DecoderConfig),
		AudioDecoder: codec.NewDecoder(opts.DecoderConfig),
		VideoSink:    videoSink,
		AudioSink:    audioSink,
		Callback: &types.CallbackFuncs{
			Start: func(ctx context.Context) {
				logger.Infof(ctx, "started")
			},
			End: func(ctx context.Context) {
				logger.Infof(ctx, "reached the end")
				close(ended)
			},
			Error: func(ctx context.Context, err error) {
				logger.Warnf(ctx, "playback error: %v", err)
			},
		},
	}, cfg)
	if err != nil {
		return err
	}

	if opts.SeekTo > 0 {
		if err := session.Seek(ctx, opts.SeekTo); err != nil {
			logger.Errorf(ctx, "unable to seek to %v: %v", opts.SeekTo, err)
		}
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-gCtx.Done():
			return session.Stop(context.Background())
		case <-session.Done():
			return session.Wait(ctx)
		}
	})
	if opts.StatusInterval > 0 {
		g.Go(func() error {
			t := time.NewTicker(opts.StatusInterval)
			defer t.Stop()
			for {
				select {
				case <-session.Done():
					printStatus(os.Stderr, session.Position(), session.Duration(), session.Statistics())
					return nil
				case <-t.C:
					printStatus(os.Stderr, session.Position(), session.Duration(), session.Statistics())
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	select {
	case <-ended:
		return nil
	default:
		return ctx.Err()
	}
}
