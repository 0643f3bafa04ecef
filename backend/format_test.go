package backend

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestFormatBytesPerPixel(t *testing.T) {
	tests := []struct {
		f    Format
		want int
	}{
		{FormatUnknown, 0},
		{FormatRGB24, 3},
		{FormatXRGB32, 4},
		{FormatARGB32, 4},
		{FormatRGB565, 2},
		{FormatYUY2, 2},
		{Format(99), 0},
	}
	for _, tt := range tests {
		if got := tt.f.BytesPerPixel(); got != tt.want {
			t.Errorf("%v.BytesPerPixel() = %d, want %d", tt.f, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for f := FormatRGB24; f <= FormatYUY2; f++ {
		got, err := ParseFormat(f.String())
		if err != nil || got != f {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", f.String(), got, err, f)
		}
	}
	if _, err := ParseFormat("NV12"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ParseFormat(NV12) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestFormatTextureFormat(t *testing.T) {
	if got := FormatXRGB32.TextureFormat(); got != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("XRGB32.TextureFormat() = %v, want BGRA8Unorm", got)
	}
	if got := FormatRGB24.TextureFormat(); got != gputypes.TextureFormatUndefined {
		t.Errorf("RGB24.TextureFormat() = %v, want Undefined", got)
	}
}

func TestFormatByteLayout(t *testing.T) {
	c := color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44}
	tests := []struct {
		f    Format
		want []byte
	}{
		{FormatRGB24, []byte{0x33, 0x22, 0x11}},
		{FormatXRGB32, []byte{0x33, 0x22, 0x11, 0xFF}},
		{FormatARGB32, []byte{0x33, 0x22, 0x11, 0x44}},
	}
	for _, tt := range tests {
		dst := make([]byte, tt.f.BytesPerPixel())
		tt.f.Encode(dst, c)
		for i := range dst {
			if dst[i] != tt.want[i] {
				t.Errorf("%v.Encode() = % x, want % x", tt.f, dst, tt.want)
				break
			}
		}
	}
}

func TestFormatDecodeRoundTrip(t *testing.T) {
	colors := []color.NRGBA{
		{R: 0xFF, A: 0xFF},
		{G: 0xFF, A: 0xFF},
		{B: 0xFF, A: 0xFF},
		{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		{A: 0xFF},
	}
	for _, f := range []Format{FormatRGB24, FormatXRGB32, FormatARGB32, FormatRGB565} {
		buf := make([]byte, f.BytesPerPixel())
		for _, c := range colors {
			f.Encode(buf, c)
			if got := f.Decode(buf); got != c {
				t.Errorf("%v: Decode(Encode(%v)) = %v", f, c, got)
			}
		}
	}
}

func TestFormatYUY2Luma(t *testing.T) {
	buf := make([]byte, 2)
	FormatYUY2.Encode(buf, color.White)
	if buf[0] != 0xFF || buf[1] != 0x80 {
		t.Errorf("YUY2 white = % x, want ff 80", buf)
	}
	if got := FormatYUY2.Decode(buf); got != (color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}) {
		t.Errorf("YUY2 Decode = %v, want white", got)
	}
}

func TestHostBufferFillClipped(t *testing.T) {
	b := NewHostBuffer(4, 4, FormatXRGB32, 16)
	r := image.Rect(2, 2, 10, 10)
	b.Fill(&r, color.RGBA{R: 0xFF, A: 0xFF})

	img := b.Image()
	if got := img.NRGBAAt(3, 3); got.R != 0xFF {
		t.Errorf("(3,3) = %v, want red", got)
	}
	if got := img.NRGBAAt(1, 1); got.R != 0 {
		t.Errorf("(1,1) = %v, want untouched", got)
	}
}

func TestHostBufferPacked(t *testing.T) {
	b := NewHostBuffer(3, 2, FormatRGB24, 8)
	if b.Pitch != 16 {
		t.Fatalf("Pitch = %d, want 16", b.Pitch)
	}
	b.Fill(nil, color.RGBA{B: 0xFF, A: 0xFF})
	packed := b.Packed()
	if len(packed) != 3*3*2 {
		t.Fatalf("len(Packed()) = %d, want %d", len(packed), 18)
	}
	for i := 0; i < len(packed); i += 3 {
		if packed[i] != 0xFF {
			t.Fatalf("packed[%d] = %#x, want 0xff", i, packed[i])
		}
	}

	dst := NewHostBuffer(3, 2, FormatRGB24, 4)
	dst.CopyFrom(&b)
	if got := dst.Image().NRGBAAt(2, 1); got.B != 0xFF {
		t.Errorf("CopyFrom pixel = %v, want blue", got)
	}
}
