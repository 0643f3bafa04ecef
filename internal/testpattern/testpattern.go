// Package testpattern draws animated color bars into device surfaces.
package testpattern

import (
	"image"
	"image/color"

	"github.com/gogpu/present/backend"
)

// Bars are the vertical bars from left to right.
var Bars = [...]color.RGBA{
	{0xff, 0xff, 0xff, 0xff},
	{0xff, 0xff, 0x00, 0xff},
	{0x00, 0xff, 0xff, 0xff},
	{0x00, 0xff, 0x00, 0xff},
	{0xff, 0x00, 0xff, 0xff},
	{0xff, 0x00, 0x00, 0xff},
	{0x00, 0x00, 0xff, 0xff},
	{0x00, 0x00, 0x00, 0xff},
}

// Marker is the color of the block that moves one step per frame.
var Marker = color.RGBA{0x80, 0x80, 0x80, 0xff}

// BarRect returns the rectangle of bar i in a width x height surface.
func BarRect(i, width, height int) image.Rectangle {
	n := len(Bars)
	return image.Rect(i*width/n, 0, (i+1)*width/n, height)
}

// MarkerRect returns the marker block for frame. It spans the bottom eighth
// of the surface and wraps around horizontally.
func MarkerRect(width, height, frame int) image.Rectangle {
	size := max(width/16, 1)
	steps := max(width/size, 1)
	x := (frame % steps) * size
	return image.Rect(x, height-max(height/8, 1), x+size, height)
}

// Draw paints the pattern for frame into s using dev's color fill, so it
// works on surfaces that cannot be locked.
func Draw(dev backend.Device, s backend.Surface, frame int) error {
	d := s.Desc()
	for i, c := range Bars {
		r := BarRect(i, d.Width, d.Height)
		if r.Empty() {
			continue
		}
		if err := dev.ColorFill(s, &r, c); err != nil {
			return err
		}
	}
	m := MarkerRect(d.Width, d.Height, frame)
	return dev.ColorFill(s, &m, Marker)
}

// Expected returns the pattern color at (x, y) for frame.
func Expected(x, y, width, height, frame int) color.RGBA {
	if image.Pt(x, y).In(MarkerRect(width, height, frame)) {
		return Marker
	}
	for i := range Bars {
		if image.Pt(x, y).In(BarRect(i, width, height)) {
			return Bars[i]
		}
	}
	return color.RGBA{}
}
