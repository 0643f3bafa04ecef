// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"image/color"
	"testing"

	"github.com/gogpu/present/backend"
)

func TestSurfacePoolReleaseIdempotent(t *testing.T) {
	e, sb, w := newTestEngine(t)
	dev := e.DeviceManager().Device()
	pp := presentParameters(sb, xrgb16, w, false)

	var p surfacePool
	q, err := p.allocate(dev, pp, 2, color.Black, 7)
	if err != nil {
		t.Fatalf("allocate() error = %v", err)
	}
	if p.size() != 2 || q.Len() != 2 {
		t.Fatalf("size() = %d, Len() = %d, want 2", p.size(), q.Len())
	}
	s, _ := q.PopFront()
	if !p.owns(s) {
		t.Error("pool does not own its own sample")
	}

	p.release()
	p.release()

	if p.size() != 0 {
		t.Errorf("size() after release = %d", p.size())
	}
	if p.owns(s) {
		t.Error("released pool still owns a sample")
	}
	if got := sb.LastDevice().LiveSwapChains(); got != 0 {
		t.Errorf("LiveSwapChains() = %d, want 0", got)
	}
}

func TestSurfacePoolOwnsChecksGeneration(t *testing.T) {
	e, sb, w := newTestEngine(t)
	dev := e.DeviceManager().Device()
	pp := presentParameters(sb, xrgb16, w, false)

	var a, b surfacePool
	qa, err := a.allocate(dev, pp, 1, color.Black, 1)
	if err != nil {
		t.Fatalf("allocate() error = %v", err)
	}
	defer a.release()
	qb, err := b.allocate(dev, pp, 1, color.Black, 2)
	if err != nil {
		t.Fatalf("allocate() error = %v", err)
	}
	defer b.release()

	sa, _ := qa.PopFront()
	sb2, _ := qb.PopFront()
	if a.owns(sb2) || b.owns(sa) {
		t.Error("pool owns a sample of another pool")
	}
}

func TestSharedSurfaceOutlivesPool(t *testing.T) {
	e, sb, _ := newTestEngine(t)
	samples := createSamples(t, e, xrgb16)
	if err := e.Present(samples[0], 0); err != nil {
		t.Fatalf("Present() error = %v", err)
	}

	// Drop the pool but keep the repaint cache.
	e.mu.Lock()
	e.pool.release()
	e.mu.Unlock()

	dev := sb.LastDevice()
	if got := dev.LiveSwapChains(); got != 1 {
		t.Errorf("LiveSwapChains() = %d, want 1 (held by repaint cache)", got)
	}
	if _, err := e.CaptureSnapshot(BitmapInfoHeaderSize); err != nil {
		t.Errorf("CaptureSnapshot() after pool release error = %v", err)
	}

	e.repaintMu.Lock()
	e.repaint.clear()
	e.repaintMu.Unlock()
	if got := dev.LiveSwapChains(); got != 0 {
		t.Errorf("LiveSwapChains() = %d, want 0", got)
	}
}

func TestSampleQueueFIFO(t *testing.T) {
	var q SampleQueue
	if _, ok := q.PopFront(); ok {
		t.Error("PopFront() on empty queue returned ok")
	}
	a, b := &FrameSample{index: 0}, &FrameSample{index: 1}
	q.PushBack(a)
	q.PushBack(b)

	snapshot := q.Samples()
	if len(snapshot) != 2 || snapshot[0] != a || snapshot[1] != b {
		t.Errorf("Samples() = %v", snapshot)
	}
	if got, _ := q.PopFront(); got != a {
		t.Errorf("PopFront() = %v, want first sample", got)
	}
	if q.Len() != 1 || len(snapshot) != 2 {
		t.Errorf("Len() = %d; Samples() copy changed to %d", q.Len(), len(snapshot))
	}
}

func TestPresentParametersLockable(t *testing.T) {
	sb := backend.NewSoftwareBackend()
	w := backend.NewSoftwareWindow(4, 4)
	pp := presentParameters(sb, xrgb16, w, true)
	if pp.Flags&backend.PresentFlagLockableBackBuffer == 0 {
		t.Error("lockable flag not set")
	}
	if pp.Flags&backend.PresentFlagVideo == 0 {
		t.Error("video flag not set")
	}
	if pp.Width != 16 || pp.Height != 16 || pp.Format != PixelFormatXRGB32 || pp.Window != backend.Window(w) {
		t.Errorf("pp = %+v", pp)
	}
}
