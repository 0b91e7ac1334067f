//go:build debug_trace
// +build debug_trace

package logger

const traceEnabled = true
