// Package logger is the thin layer over go-belt's logger used across avplayer.
//
// The logger travels in the context.Context: every component logs with the
// ctx it was given, so the caller decides the backend and the fields.
package logger

import (
	"context"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
)

type Logger = logger.Logger
type Level = logger.Level

const (
	LevelUndefined = logger.LevelUndefined
	LevelFatal     = logger.LevelFatal
	LevelPanic     = logger.LevelPanic
	LevelError     = logger.LevelError
	LevelWarning   = logger.LevelWarning
	LevelInfo      = logger.LevelInfo
	LevelDebug     = logger.LevelDebug
	LevelTrace     = logger.LevelTrace
)

// SetDefault sets the logger used with contexts which carry none.
func SetDefault(defaultLogger func() Logger) {
	logger.Default = defaultLogger
}

func FromCtx(ctx context.Context) Logger {
	return logger.FromCtx(ctx)
}

func CtxWithLogger(ctx context.Context, l Logger) context.Context {
	return logger.CtxWithLogger(ctx, l)
}

// CtxWithStream tags every message logged with the returned context
// with the name of the stream.
func CtxWithStream(ctx context.Context, stream string) context.Context {
	return belt.WithField(ctx, "stream", stream)
}

// Tracef is a no-op unless built with tag 'debug_trace': the playback
// loops trace every unit.
func Tracef(ctx context.Context, format string, args ...any) {
	if !traceEnabled {
		return
	}
	logger.Tracef(ctx, format, args...)
}

func Debugf(ctx context.Context, format string, args ...any) {
	logger.Debugf(ctx, format, args...)
}

func Infof(ctx context.Context, format string, args ...any) {
	logger.Infof(ctx, format, args...)
}

func Warnf(ctx context.Context, format string, args ...any) {
	logger.Warnf(ctx, format, args...)
}

func Errorf(ctx context.Context, format string, args ...any) {
	logger.Errorf(ctx, format, args...)
}

// Fatalf also calls os.Exit.
func Fatalf(ctx context.Context, format string, args ...any) {
	logger.Fatalf(ctx, format, args...)
}

func Logf(ctx context.Context, level Level, format string, args ...any) {
	logger.Logf(ctx, level, format, args...)
}

// OnLevel calls fn only if the logger in ctx would emit messages of
// the given level; used to skip building expensive debug dumps.
func OnLevel(ctx context.Context, level Level, fn func()) {
	if logger.FromCtx(ctx).Level() < level {
		return
	}
	fn()
}
