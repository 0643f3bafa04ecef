package backend

import (
	"image"
	"image/color"
)

// HostBuffer is a CPU copy of surface pixels with rows Pitch bytes apart.
// It does no locking.
type HostBuffer struct {
	Width, Height int
	Format        Format
	Pitch         int
	Bits          []byte
}

// NewHostBuffer allocates a zeroed buffer with rows aligned to align bytes.
// align must be a power of two.
func NewHostBuffer(width, height int, f Format, align int) HostBuffer {
	pitch := (width*f.BytesPerPixel() + align - 1) &^ (align - 1)
	return HostBuffer{
		Width:  width,
		Height: height,
		Format: f,
		Pitch:  pitch,
		Bits:   make([]byte, pitch*height),
	}
}

// Bounds returns the pixel rectangle of the buffer.
func (b *HostBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// Fill sets r to c. A nil r fills the whole buffer.
func (b *HostBuffer) Fill(r *image.Rectangle, c color.Color) {
	bounds := b.Bounds()
	if r != nil {
		bounds = r.Intersect(bounds)
	}
	bpp := b.Format.BytesPerPixel()
	px := make([]byte, bpp)
	b.Format.Encode(px, c)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := b.Bits[y*b.Pitch:]
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			copy(row[x*bpp:], px)
		}
	}
}

// Image decodes the buffer into a new image.
func (b *HostBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(b.Bounds())
	bpp := b.Format.BytesPerPixel()
	for y := 0; y < b.Height; y++ {
		row := b.Bits[y*b.Pitch:]
		for x := 0; x < b.Width; x++ {
			img.SetNRGBA(x, y, b.Format.Decode(row[x*bpp:]))
		}
	}
	return img
}

// CopyFrom copies the pixels of src, which must have the same size and
// format. Pitches may differ.
func (b *HostBuffer) CopyFrom(src *HostBuffer) {
	n := b.Width * b.Format.BytesPerPixel()
	for y := 0; y < b.Height; y++ {
		copy(b.Bits[y*b.Pitch:y*b.Pitch+n], src.Bits[y*src.Pitch:])
	}
}

// Packed returns the pixels with rows of exactly Width*BytesPerPixel bytes.
func (b *HostBuffer) Packed() []byte {
	n := b.Width * b.Format.BytesPerPixel()
	if n == b.Pitch {
		return b.Bits
	}
	out := make([]byte, n*b.Height)
	for y := 0; y < b.Height; y++ {
		copy(out[y*n:], b.Bits[y*b.Pitch:y*b.Pitch+n])
	}
	return out
}
