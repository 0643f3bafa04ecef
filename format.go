// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"fmt"

	"github.com/gogpu/present/backend"
)

// PixelFormat is a surface pixel format.
// It is an alias for backend.Format.
type PixelFormat = backend.Format

// Pixel formats. Only the first three can be captured by CaptureSnapshot.
const (
	PixelFormatRGB24  = backend.FormatRGB24
	PixelFormatXRGB32 = backend.FormatXRGB32
	PixelFormatARGB32 = backend.FormatARGB32
	PixelFormatRGB565 = backend.FormatRGB565
	PixelFormatYUY2   = backend.FormatYUY2
)

// Window is the output window the engine presents to.
// It is an alias for backend.Window.
type Window = backend.Window

// FrameFormat describes the decoded frames of one format negotiation.
type FrameFormat struct {
	Width  int
	Height int
	Format PixelFormat
}

// Validate checks that the dimensions are positive and the format is known.
func (f FrameFormat) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: frame size %dx%d", ErrInvalidArgument, f.Width, f.Height)
	}
	if !f.Format.Valid() {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, f.Format)
	}
	return nil
}

func (f FrameFormat) String() string {
	return fmt.Sprintf("%dx%d %v", f.Width, f.Height, f.Format)
}
