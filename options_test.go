// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"image/color"
	"log/slog"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.bufferCount != DefaultBufferCount {
		t.Errorf("bufferCount = %d, want %d", o.bufferCount, DefaultBufferCount)
	}
	if o.fallbackColor != color.Black {
		t.Errorf("fallbackColor = %v, want black", o.fallbackColor)
	}
	if o.lockableBuffer {
		t.Error("lockableBuffer should default to false")
	}
	if o.logger != nil {
		t.Error("logger should default to nil (package logger)")
	}
}

func TestWithBufferCount(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{1, 1},
		{5, 5},
		{0, DefaultBufferCount},
		{-2, DefaultBufferCount},
	}
	for _, tt := range tests {
		o := defaultOptions()
		WithBufferCount(tt.n)(&o)
		if o.bufferCount != tt.want {
			t.Errorf("WithBufferCount(%d): bufferCount = %d, want %d", tt.n, o.bufferCount, tt.want)
		}
	}
}

func TestWithFallbackColor(t *testing.T) {
	o := defaultOptions()
	gray := color.Gray{Y: 0x20}
	WithFallbackColor(gray)(&o)
	if o.fallbackColor != gray {
		t.Errorf("fallbackColor = %v, want %v", o.fallbackColor, gray)
	}

	// nil keeps the previous color
	WithFallbackColor(nil)(&o)
	if o.fallbackColor != gray {
		t.Errorf("WithFallbackColor(nil) changed color to %v", o.fallbackColor)
	}
}

func TestWithLockableBackBuffer(t *testing.T) {
	o := defaultOptions()
	WithLockableBackBuffer(true)(&o)
	if !o.lockableBuffer {
		t.Error("lockableBuffer = false, want true")
	}
}

func TestWithLogger(t *testing.T) {
	o := defaultOptions()
	l := slog.Default()
	WithLogger(l)(&o)
	if o.logger != l {
		t.Error("logger not stored")
	}
}
