package backend

import (
	"fmt"
	"image/color"

	"github.com/gogpu/gputypes"
)

// Format is a surface pixel format. Multi-byte formats are stored
// little-endian, so FormatXRGB32 is laid out B, G, R, X in memory.
type Format uint32

const (
	FormatUnknown Format = iota

	// FormatRGB24 is 24-bit B, G, R.
	FormatRGB24

	// FormatXRGB32 is 32-bit B, G, R with an unused byte.
	FormatXRGB32

	// FormatARGB32 is 32-bit B, G, R, A.
	FormatARGB32

	// FormatRGB565 is 16-bit packed 5-6-5.
	FormatRGB565

	// FormatYUY2 is packed 4:2:2 Y0 U Y1 V. Only luma is decoded.
	FormatYUY2
)

func (f Format) String() string {
	switch f {
	case FormatUnknown:
		return "unknown"
	case FormatRGB24:
		return "RGB24"
	case FormatXRGB32:
		return "XRGB32"
	case FormatARGB32:
		return "ARGB32"
	case FormatRGB565:
		return "RGB565"
	case FormatYUY2:
		return "YUY2"
	default:
		return fmt.Sprintf("Format(%d)", uint32(f))
	}
}

// ParseFormat returns the format with the given name.
func ParseFormat(name string) (Format, error) {
	for f := FormatRGB24; f <= FormatYUY2; f++ {
		if f.String() == name {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// BytesPerPixel returns the pixel size, or 0 for unknown formats.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatRGB24:
		return 3
	case FormatXRGB32, FormatARGB32:
		return 4
	case FormatRGB565, FormatYUY2:
		return 2
	default:
		return 0
	}
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	return f.BytesPerPixel() != 0
}

// TextureFormat returns the matching WebGPU texture format, or
// gputypes.TextureFormatUndefined when there is none.
func (f Format) TextureFormat() gputypes.TextureFormat {
	switch f {
	case FormatXRGB32, FormatARGB32:
		return gputypes.TextureFormatBGRA8Unorm
	default:
		return gputypes.TextureFormatUndefined
	}
}

// Encode writes c into dst using f. dst must hold BytesPerPixel bytes.
func (f Format) Encode(dst []byte, c color.Color) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	switch f {
	case FormatRGB24:
		dst[0], dst[1], dst[2] = n.B, n.G, n.R
	case FormatXRGB32:
		dst[0], dst[1], dst[2], dst[3] = n.B, n.G, n.R, 0xFF
	case FormatARGB32:
		dst[0], dst[1], dst[2], dst[3] = n.B, n.G, n.R, n.A
	case FormatRGB565:
		v := uint16(n.R>>3)<<11 | uint16(n.G>>2)<<5 | uint16(n.B>>3)
		dst[0], dst[1] = byte(v), byte(v>>8)
	case FormatYUY2:
		y := (19595*uint32(n.R) + 38470*uint32(n.G) + 7471*uint32(n.B) + 1<<15) >> 16
		dst[0], dst[1] = byte(y), 0x80
	}
}

// Decode reads one pixel of format f from src.
func (f Format) Decode(src []byte) color.NRGBA {
	switch f {
	case FormatRGB24:
		return color.NRGBA{R: src[2], G: src[1], B: src[0], A: 0xFF}
	case FormatXRGB32:
		return color.NRGBA{R: src[2], G: src[1], B: src[0], A: 0xFF}
	case FormatARGB32:
		return color.NRGBA{R: src[2], G: src[1], B: src[0], A: src[3]}
	case FormatRGB565:
		v := uint16(src[0]) | uint16(src[1])<<8
		r := byte(v>>11) & 0x1F
		g := byte(v>>5) & 0x3F
		b := byte(v) & 0x1F
		return color.NRGBA{R: r<<3 | r>>2, G: g<<2 | g>>4, B: b<<3 | b>>2, A: 0xFF}
	case FormatYUY2:
		return color.NRGBA{R: src[0], G: src[0], B: src[0], A: 0xFF}
	default:
		return color.NRGBA{}
	}
}
