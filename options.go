// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"image/color"
	"log/slog"
)

// DefaultBufferCount is the number of presentation surfaces allocated per
// format negotiation.
const DefaultBufferCount = 3

// Option configures an Engine during creation.
//
// Example:
//
//	e, err := present.New(b,
//		present.WithBufferCount(4),
//		present.WithFallbackColor(color.Gray{Y: 0x20}),
//	)
type Option func(*options)

// options holds optional configuration for Engine creation.
type options struct {
	bufferCount    int
	fallbackColor  color.Color
	lockableBuffer bool
	logger         *slog.Logger
}

// defaultOptions returns the default engine options.
func defaultOptions() options {
	return options{
		bufferCount:   DefaultBufferCount,
		fallbackColor: color.Black,
	}
}

// WithBufferCount sets how many surfaces CreateFrameSamples allocates.
// Values below 1 are ignored.
func WithBufferCount(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.bufferCount = n
		}
	}
}

// WithFallbackColor sets the color used to clear new back buffers and to
// fill the destination rectangle when no hardware path is available.
func WithFallbackColor(c color.Color) Option {
	return func(o *options) {
		if c != nil {
			o.fallbackColor = c
		}
	}
}

// WithLockableBackBuffer requests CPU-lockable back buffers. Snapshots then
// read the presented surface directly instead of going through a system
// memory copy. Lockable back buffers may be slower to present.
func WithLockableBackBuffer(enabled bool) Option {
	return func(o *options) {
		o.lockableBuffer = enabled
	}
}

// WithLogger sets the engine logger. Without it the engine logs through
// the package logger configured by SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
