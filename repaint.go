// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"sync/atomic"
	"time"

	"github.com/gogpu/present/backend"
)

// sharedSurface is a reference-counted back buffer. The pool holds one
// reference for as long as it lives and the repaint cache holds another,
// so the last presented surface survives the sample that carried it.
// The swap chain is released with the last reference.
type sharedSurface struct {
	chain   backend.SwapChain
	surface backend.Surface
	refs    atomic.Int32
}

func newSharedSurface(chain backend.SwapChain, surface backend.Surface) *sharedSurface {
	s := &sharedSurface{chain: chain, surface: surface}
	s.refs.Store(1)
	return s
}

func (s *sharedSurface) acquire() *sharedSurface {
	s.refs.Add(1)
	return s
}

func (s *sharedSurface) release() {
	if s.refs.Add(-1) == 0 {
		s.chain.Release()
	}
}

// repaintCache is the last successfully presented surface. It is the only
// state shared between the present path and the snapshot path and is
// guarded by Engine.repaintMu.
type repaintCache struct {
	surface   *sharedSurface
	device    backend.Device
	timestamp time.Duration
}

// publish replaces the cached surface. Caller holds repaintMu.
func (c *repaintCache) publish(s *sharedSurface, dev backend.Device, ts time.Duration) {
	old := c.surface
	c.surface = s.acquire()
	c.device = dev
	c.timestamp = ts
	if old != nil {
		old.release()
	}
}

// clear drops the cached surface. Caller holds repaintMu.
func (c *repaintCache) clear() {
	if c.surface != nil {
		c.surface.release()
	}
	*c = repaintCache{}
}
