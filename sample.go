// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"sync"

	"github.com/gogpu/present/backend"
)

// FrameSample pairs one pooled presentation surface with an optional
// decoded-frame attachment.
//
// A sample holds a non-owning reference to its surface; it is valid only
// until the pool that produced it is released (by the next
// CreateFrameSamples, a window change, a device reset or Close).
type FrameSample struct {
	index      int
	generation uint64
	surface    *sharedSurface

	mu         sync.Mutex
	attachment any
}

// Index returns the allocation position of the sample within its pool.
func (s *FrameSample) Index() int { return s.index }

// Surface returns the back buffer the decoder renders the frame into.
func (s *FrameSample) Surface() backend.Surface { return s.surface.surface }

// Attach stores an opaque payload with the sample. The engine never
// interprets it.
func (s *FrameSample) Attach(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attachment = v
}

// Attachment returns the payload stored by Attach, or nil.
func (s *FrameSample) Attachment() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attachment
}

// SampleQueue is a FIFO of frame samples handed to the caller by
// CreateFrameSamples. The engine never takes samples out of it; the caller
// round-robins the fixed set. Methods never block.
type SampleQueue struct {
	mu      sync.Mutex
	samples []*FrameSample
}

// Len returns the number of queued samples.
func (q *SampleQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.samples)
}

// PushBack appends s.
func (q *SampleQueue) PushBack(s *FrameSample) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.samples = append(q.samples, s)
}

// PopFront removes and returns the oldest sample. The boolean is false
// when the queue is empty.
func (q *SampleQueue) PopFront() (*FrameSample, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.samples) == 0 {
		return nil, false
	}
	s := q.samples[0]
	q.samples[0] = nil
	q.samples = q.samples[1:]
	return s, true
}

// Samples returns a copy of the queued samples in order.
func (q *SampleQueue) Samples() []*FrameSample {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*FrameSample(nil), q.samples...)
}
