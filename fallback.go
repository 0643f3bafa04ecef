// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// paintFallback fills the destination rectangle with c through the
// window's 2D drawing path. It keeps the window from showing stale pixels
// while no hardware path is available. Caller holds the object lock.
func (e *Engine) paintFallback(c color.Color) {
	if e.window == nil || e.dest.Empty() {
		return
	}
	canvas, err := e.window.AcquireCanvas()
	if err != nil {
		e.logger().Warn("fallback fill skipped", "error", err)
		return
	}
	draw.Draw(canvas, e.dest, image.NewUniform(c), image.Point{}, draw.Src)
	e.window.ReleaseCanvas(canvas)
	e.stats.fallbacks.Add(1)
}
