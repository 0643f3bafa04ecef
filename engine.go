// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/present/backend"
)

// Engine presents decoded frames to a window through a rendering device.
//
// Two locks guard its state. The object lock serializes configuration,
// pool recreation, health checks and presentation. The repaint lock guards
// only the last presented surface, so CaptureSnapshot never waits for
// presentation and presentation never waits for a read-back. The object
// lock is always taken before the repaint lock.
type Engine struct {
	id      uuid.UUID
	backend backend.Backend
	opts    options

	mu         sync.Mutex // object lock
	state      State
	devices    *DeviceManager
	window     Window
	dest       image.Rectangle
	pool       surfacePool
	generation uint64

	repaintMu sync.Mutex // repaint lock
	repaint   repaintCache

	stats engineStats
}

// New initializes b and creates a device on the default adapter.
// The engine owns b from then on and closes it in Close. When New fails
// after a successful Init it closes b itself, so callers never close b.
func New(b backend.Backend, opts ...Option) (*Engine, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil backend", ErrInvalidArgument)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{id: uuid.New(), backend: b, opts: o}
	e.devices = newDeviceManager(b, e.logger, e.beginRecreate)
	if err := e.devices.initialize(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.devices.createDevice(nil); err != nil {
		e.devices.close()
		return nil, err
	}
	e.state = StateReady
	e.logger().Debug("engine ready", "bufferCount", o.bufferCount)
	return e, nil
}

func (e *Engine) logger() *slog.Logger {
	l := e.opts.logger
	if l == nil {
		l = Logger()
	}
	return l.With("engine", e.id.String(), "backend", e.backend.Name())
}

// ID returns the engine instance id used in log records.
func (e *Engine) ID() uuid.UUID { return e.id }

// State returns the lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Stats returns a copy of the engine counters.
func (e *Engine) Stats() Stats { return e.stats.load() }

// DeviceManager returns the manager of the engine's device, for
// collaborators such as decoders that share the device.
func (e *Engine) DeviceManager() *DeviceManager { return e.devices }

// DisplayMode returns the adapter display mode captured when the current
// device was created.
func (e *Engine) DisplayMode() backend.DisplayMode { return e.devices.DisplayMode() }

// Window returns the bound output window, or nil.
func (e *Engine) Window() Window {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.window
}

// DestinationRect returns the clamped destination rectangle.
func (e *Engine) DestinationRect() image.Rectangle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dest
}

// usable reports why the engine cannot run device operations, if at all.
// Caller holds the object lock.
func (e *Engine) usable() error {
	switch e.state {
	case StateUninitialized:
		return fmt.Errorf("%w: engine closed", ErrInvalidState)
	case StateRemoved:
		return ErrDeviceRemoved
	default:
		return nil
	}
}

// beginRecreate runs before the device manager replaces the device.
// Caller holds the object lock.
func (e *Engine) beginRecreate() {
	e.state = StateRecreating
	e.releaseResources()
}

// releaseResources drops the pool and the repaint cache.
// Caller holds the object lock.
func (e *Engine) releaseResources() {
	e.pool.release()
	e.generation++

	e.repaintMu.Lock()
	e.repaint.clear()
	e.repaintMu.Unlock()
}

// updateDestRect clamps the destination rectangle to the client area.
// Caller holds the object lock.
func (e *Engine) updateDestRect() {
	if e.window == nil {
		return
	}
	client := e.window.ClientRect()
	if e.dest.Max.X > client.Max.X {
		e.dest.Max.X = client.Max.X
	}
	if e.dest.Max.Y > client.Max.Y {
		e.dest.Max.Y = client.Max.Y
	}
}

// SetOutputWindow binds w, reclamps the destination rectangle and
// recreates the device on the adapter showing w. All frame samples become
// invalid. w may be nil to unbind.
func (e *Engine) SetOutputWindow(w Window) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.usable(); err != nil {
		return err
	}

	e.window = w
	e.updateDestRect()

	err := e.devices.createDevice(w)
	e.state = StateReady
	return err
}

// SetDestinationRect sets where frames are drawn in the window client
// area. Only the right and bottom edges are clamped to the client area;
// the origin is kept as given, so a rectangle starting outside the client
// area is stored with that origin. The clamp is applied on every call,
// also when r equals the stored rectangle.
func (e *Engine) SetDestinationRect(r image.Rectangle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateUninitialized {
		return fmt.Errorf("%w: engine closed", ErrInvalidState)
	}
	e.dest = r
	e.updateDestRect()
	return nil
}

// CheckFormat reports whether the current adapter can present surfaces
// of format f in its display mode.
func (e *Engine) CheckFormat(f PixelFormat) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.usable(); err != nil {
		return err
	}
	b := e.devices.current.Load()
	if b == nil {
		return fmt.Errorf("%w: no device", ErrInvalidState)
	}
	if err := b.adapter.CheckDeviceFormat(b.mode.Format, f); err != nil {
		return opError("CheckDeviceType", ErrUnsupportedFormat, err)
	}
	return nil
}

// CreateFrameSamples releases the current pool and allocates a new one
// sized for f, bound to the output window. It returns the samples in
// allocation order; each has a distinct surface.
func (e *Engine) CreateFrameSamples(f *FrameFormat) (*SampleQueue, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.usable(); err != nil {
		return nil, err
	}
	if e.window == nil {
		return nil, fmt.Errorf("%w: no output window", ErrInvalidState)
	}
	if f == nil {
		return nil, fmt.Errorf("%w: nil frame format", ErrInvalidState)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	dev := e.devices.Device()
	if dev == nil {
		return nil, fmt.Errorf("%w: no device", ErrInvalidState)
	}

	e.releaseResources()

	pp := presentParameters(e.backend, *f, e.window, e.opts.lockableBuffer)
	e.updateDestRect()

	q, err := e.pool.allocate(dev, pp, e.opts.bufferCount, e.opts.fallbackColor, e.generation)
	if err != nil {
		e.releaseResources()
		return nil, err
	}
	e.logger().Debug("frame samples created",
		"format", f.String(),
		"count", q.Len(),
		"immediate", pp.Interval == backend.PresentIntervalImmediate,
	)
	return q, nil
}

// Present shows sample in the destination rectangle and remembers it for
// repaints and snapshots under target.
//
// A nil sample repaints the last presented frame. When there is nothing to
// present, or the device is lost or hung, the destination rectangle is
// filled with the fallback color and Present succeeds; CheckDeviceState
// then recovers the device.
func (e *Engine) Present(sample *FrameSample, target time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.usable(); err != nil {
		return err
	}
	if e.window == nil {
		return fmt.Errorf("%w: no output window", ErrInvalidState)
	}

	var surf *sharedSurface
	repaint := false
	if sample != nil {
		if !e.pool.owns(sample) {
			return fmt.Errorf("%w: sample belongs to a released pool", ErrInvalidState)
		}
		surf = sample.surface.acquire()
	} else {
		e.repaintMu.Lock()
		if e.repaint.surface != nil {
			surf = e.repaint.surface.acquire()
			repaint = true
		}
		e.repaintMu.Unlock()
	}

	if surf == nil {
		e.paintFallback(e.opts.fallbackColor)
		return nil
	}
	defer surf.release()

	err := e.presentSurface(surf)
	if err == nil {
		dev := e.devices.Device()
		e.repaintMu.Lock()
		e.repaint.publish(surf, dev, target)
		e.repaintMu.Unlock()
		if repaint {
			e.stats.repainted.Add(1)
		} else {
			e.stats.presented.Add(1)
		}
		return nil
	}

	switch {
	case backend.IsRecoverable(err):
		e.logger().Warn("present failed, painting fallback", "error", err)
		e.paintFallback(e.opts.fallbackColor)
		return nil
	case errors.Is(err, backend.ErrDeviceRemoved):
		e.logger().Error("device removed during present")
		e.state = StateRemoved
		e.releaseResources()
		return opError("Present", ErrDeviceRemoved, err)
	default:
		return opError("Present", ErrPresentation, err)
	}
}

// presentSurface presents the swap chain owning surf. Caller holds the
// object lock.
func (e *Engine) presentSurface(surf *sharedSurface) error {
	chain := surf.surface.Container()
	if chain == nil {
		return fmt.Errorf("%w: surface has no swap chain", backend.ErrInvalidCall)
	}
	return chain.Present(e.dest, e.window)
}

// CheckDeviceState probes the device. Lost and hung devices are recreated
// and reported as DeviceReset; the caller must then call
// CreateFrameSamples before presenting new frames. DeviceRemoved is
// terminal and returned together with ErrDeviceRemoved.
func (e *Engine) CheckDeviceState() (DeviceState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case StateUninitialized:
		return DeviceOK, fmt.Errorf("%w: engine closed", ErrInvalidState)
	case StateRemoved:
		return DeviceRemoved, ErrDeviceRemoved
	}

	state, err := e.devices.checkHealth(e.window)
	switch state {
	case DeviceRemoved:
		e.state = StateRemoved
		e.releaseResources()
	case DeviceReset:
		e.stats.resets.Add(1)
		e.state = StateReady
	default:
		e.state = StateReady
	}
	return state, err
}

// Close releases the pool, the repaint cache, the device and the backend.
// Later calls fail with ErrInvalidState. Close is idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateUninitialized {
		return nil
	}
	e.releaseResources()
	e.devices.close()
	e.window = nil
	e.state = StateUninitialized
	return nil
}
