// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"fmt"
	"image/color"

	"github.com/gogpu/present/backend"
)

// surfacePool is the fixed set of swap chains of one format negotiation.
// All methods run under the engine object lock.
type surfacePool struct {
	surfaces   []*sharedSurface
	generation uint64
	params     backend.PresentParameters
}

// presentParameters derives swap chain parameters for f on w.
// Interval is immediate when desktop composition is active; backends that
// cannot answer are treated as composited.
func presentParameters(b backend.Backend, f FrameFormat, w Window, lockable bool) backend.PresentParameters {
	composited := true
	if c, ok := b.(backend.Compositor); ok {
		if enabled, err := c.CompositionEnabled(); err == nil {
			composited = enabled
		}
	}

	pp := backend.PresentParameters{
		Width:      f.Width,
		Height:     f.Height,
		Format:     f.Format,
		SwapEffect: backend.SwapEffectCopy,
		Window:     w,
		Windowed:   true,
		Flags:      backend.PresentFlagVideo,
		Interval:   backend.PresentIntervalDefault,
	}
	if lockable {
		pp.Flags |= backend.PresentFlagLockableBackBuffer
	}
	if composited {
		pp.Interval = backend.PresentIntervalImmediate
	}
	return pp
}

// allocate builds n swap chains on dev and returns them as samples in
// allocation order. New back buffers are cleared to fill. If any step
// fails, everything built so far is released and the pool stays empty.
func (p *surfacePool) allocate(dev backend.Device, pp backend.PresentParameters, n int, fill color.Color, generation uint64) (*SampleQueue, error) {
	p.release()

	q := &SampleQueue{}
	surfaces := make([]*sharedSurface, 0, n)
	discard := func() {
		for _, s := range surfaces {
			s.release()
		}
	}

	for i := 0; i < n; i++ {
		chain, err := dev.CreateSwapChain(&pp)
		if err != nil {
			discard()
			return nil, opError(fmt.Sprintf("CreateSwapChain[%d]", i), ErrAllocation, err)
		}
		back, err := chain.BackBuffer(0)
		if err != nil {
			chain.Release()
			discard()
			return nil, opError("GetBackBuffer", ErrAllocation, err)
		}
		shared := newSharedSurface(chain, back)
		surfaces = append(surfaces, shared)

		if err := dev.ColorFill(back, nil, fill); err != nil {
			discard()
			return nil, opError("ColorFill", ErrAllocation, err)
		}
		q.PushBack(&FrameSample{index: i, generation: generation, surface: shared})
	}

	p.surfaces = surfaces
	p.generation = generation
	p.params = pp
	return q, nil
}

// owns reports whether s was issued by the live pool.
func (p *surfacePool) owns(s *FrameSample) bool {
	return len(p.surfaces) > 0 && s.generation == p.generation &&
		s.index < len(p.surfaces) && p.surfaces[s.index] == s.surface
}

// release drops the pool's references. Surfaces still held by the repaint
// cache stay alive until the cache lets go. Idempotent.
func (p *surfacePool) release() {
	for _, s := range p.surfaces {
		s.release()
	}
	p.surfaces = nil
}

// size returns the number of live surfaces.
func (p *surfacePool) size() int {
	return len(p.surfaces)
}
