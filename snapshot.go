// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"time"

	"golang.org/x/image/bmp"

	"github.com/gogpu/present/backend"
)

// BitmapInfoHeaderSize is the encoded size of BitmapInfoHeader.
const BitmapInfoHeaderSize = 40

// BitmapInfoHeader is the fixed header of a device-independent bitmap.
// Snapshots set Size, Width, Height, Planes, BitCount and SizeImage;
// all other fields are zero.
type BitmapInfoHeader struct {
	Size          uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

// MarshalBinary encodes the header little-endian.
func (h BitmapInfoHeader) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(BitmapInfoHeaderSize)
	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Stride returns the row size of a bitmap: width*bytesPerPixel rounded up
// to a multiple of four.
func Stride(width, bytesPerPixel int) int {
	return (width*bytesPerPixel + 3) &^ 3
}

// Snapshot is a CPU copy of the last presented frame.
// Pixels holds bottom-up rows of Stride(width, bpp) bytes.
// The caller owns Pixels.
type Snapshot struct {
	Header    BitmapInfoHeader
	Format    PixelFormat
	Pixels    []byte
	Timestamp time.Duration
}

// Image decodes the snapshot into a top-down image.
func (s *Snapshot) Image() *image.NRGBA {
	w, h := int(s.Header.Width), int(s.Header.Height)
	bpp := s.Format.BytesPerPixel()
	stride := Stride(w, bpp)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := s.Pixels[(h-1-y)*stride:]
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, s.Format.Decode(row[x*bpp:]))
		}
	}
	return img
}

// EncodeBMP writes the snapshot as a BMP file.
func (s *Snapshot) EncodeBMP(w io.Writer) error {
	return bmp.Encode(w, s.Image())
}

// snapshotFormat reports whether f can be captured.
func snapshotFormat(f PixelFormat) bool {
	switch f {
	case PixelFormatRGB24, PixelFormatXRGB32, PixelFormatARGB32:
		return true
	default:
		return false
	}
}

// CaptureSnapshot copies the last presented frame into a new bitmap.
//
// headerSize must equal BitmapInfoHeaderSize. CaptureSnapshot only takes
// the repaint lock, so it may run concurrently with Present from another
// goroutine; a slow read-back never stalls presentation.
func (e *Engine) CaptureSnapshot(headerSize uint32) (*Snapshot, error) {
	if headerSize != BitmapInfoHeaderSize {
		return nil, fmt.Errorf("%w: header size %d, want %d", ErrInvalidArgument, headerSize, BitmapInfoHeaderSize)
	}

	e.repaintMu.Lock()
	defer e.repaintMu.Unlock()

	cache := e.repaint
	if cache.surface == nil {
		return nil, ErrNoFrameAvailable
	}

	src := cache.surface.surface
	desc := src.Desc()
	e.logger().Debug("capturing snapshot", "format", desc.Format, "width", desc.Width, "height", desc.Height)
	if !snapshotFormat(desc.Format) {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, desc.Format)
	}

	readable := src
	if !desc.Lockable {
		tmp, err := cache.device.CreateOffscreenSurface(desc.Width, desc.Height, desc.Format, backend.PoolSystemMem)
		if err != nil {
			return nil, opError("CreateOffscreenPlainSurface", ErrPresentation, err)
		}
		defer tmp.Release()
		if err := cache.device.GetRenderTargetData(src, tmp); err != nil {
			return nil, opError("GetRenderTargetData", ErrPresentation, err)
		}
		readable = tmp
	}

	snap, err := readDIB(readable, desc)
	if err != nil {
		return nil, err
	}
	snap.Timestamp = cache.timestamp
	e.stats.snapshots.Add(1)
	return snap, nil
}

// readDIB locks s read-only and copies its rows bottom-up into a new
// bitmap with 4-byte aligned rows.
func readDIB(s backend.Surface, desc backend.SurfaceDesc) (*Snapshot, error) {
	locked, err := s.LockRect(true)
	if err != nil {
		return nil, opError("LockRect", ErrPresentation, err)
	}
	defer s.UnlockRect()

	bpp := desc.Format.BytesPerPixel()
	rowBytes := desc.Width * bpp
	stride := Stride(desc.Width, bpp)
	size := stride * desc.Height
	pixels := make([]byte, size)

	for y := 0; y < desc.Height; y++ {
		dst := pixels[(desc.Height-1-y)*stride:]
		src := locked.Bits[y*locked.Pitch:]
		copy(dst[:rowBytes], src[:rowBytes])
	}

	return &Snapshot{
		Header: BitmapInfoHeader{
			Size:      BitmapInfoHeaderSize,
			Width:     int32(desc.Width),
			Height:    int32(desc.Height),
			Planes:    1,
			BitCount:  uint16(bpp * 8),
			SizeImage: uint32(size),
		},
		Format: desc.Format,
		Pixels: pixels,
	}, nil
}
