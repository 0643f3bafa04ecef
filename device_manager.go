// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package present

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/google/uuid"

	"github.com/gogpu/present/backend"
)

// ResetToken binds devices to a DeviceManager. It is drawn once when the
// manager is initialized and reused for every device the manager adopts.
type ResetToken uint32

// DeviceManager owns the rendering device of an Engine.
//
// Mutating methods are unexported and run under the engine object lock.
// The current device is published atomically, so Device and Provider may
// be used from any goroutine, e.g. by a decoder sharing the device.
type DeviceManager struct {
	backend backend.Backend
	logger  func() *slog.Logger

	// release is called before the current device is replaced, so that
	// every resource allocated on it can be dropped first.
	release func()

	token       ResetToken
	initialized bool

	current    atomic.Pointer[boundDevice]
	generation atomic.Uint64
}

// boundDevice is a device together with facts captured when it was adopted.
type boundDevice struct {
	device  backend.Device
	adapter backend.Adapter
	mode    backend.DisplayMode
}

func newDeviceManager(b backend.Backend, logger func() *slog.Logger, release func()) *DeviceManager {
	return &DeviceManager{backend: b, logger: logger, release: release}
}

// initialize acquires the native subsystem and draws the reset token.
func (m *DeviceManager) initialize() error {
	if m.initialized {
		return fmt.Errorf("%w: device manager already initialized", ErrInvalidState)
	}
	if err := m.backend.Init(); err != nil {
		return opError("Initialize", ErrInitialization, err)
	}
	m.token = ResetToken(uuid.New().ID())
	m.initialized = true
	return nil
}

// ResetToken returns the token drawn at initialization.
func (m *DeviceManager) ResetToken() ResetToken {
	return m.token
}

// Device returns the current device, or nil before the first device was
// created or after close.
func (m *DeviceManager) Device() backend.Device {
	if b := m.current.Load(); b != nil {
		return b.device
	}
	return nil
}

// Generation returns a counter incremented every time a device is adopted.
// Consumers holding device resources compare it to detect recreation.
func (m *DeviceManager) Generation() uint64 {
	return m.generation.Load()
}

// DisplayMode returns the display mode of the current device's adapter as
// captured at device creation.
func (m *DeviceManager) DisplayMode() backend.DisplayMode {
	if b := m.current.Load(); b != nil {
		return b.mode
	}
	return backend.DisplayMode{}
}

// selectAdapter returns the adapter driving the monitor that shows w.
// Without a window, or when no adapter matches, the default adapter is used.
func (m *DeviceManager) selectAdapter(w Window) (backend.Adapter, error) {
	adapters := m.backend.Adapters()
	if len(adapters) == 0 {
		return nil, fmt.Errorf("%w: no adapters", backend.ErrBackendNotAvailable)
	}
	if w == nil {
		return adapters[0], nil
	}
	monitor := w.Monitor()
	for _, a := range adapters {
		if a.Monitor() == 0 {
			break
		}
		if a.Monitor() == monitor {
			return a, nil
		}
	}
	m.logger().Debug("no adapter drives the window monitor, using default", "monitor", monitor)
	return adapters[0], nil
}

// createDevice creates a device bound to w's adapter and adopts it,
// destroying the previous device. On failure the previous device is kept.
func (m *DeviceManager) createDevice(w Window) error {
	if !m.initialized {
		return fmt.Errorf("%w: device manager not initialized", ErrInvalidState)
	}

	adapter, err := m.selectAdapter(w)
	if err != nil {
		return opError("CreateDevice", ErrDeviceCreation, err)
	}
	caps, err := adapter.Caps()
	if err != nil {
		return opError("GetDeviceCaps", ErrDeviceCreation, err)
	}

	flags := backend.CreateNoWindowChanges | backend.CreateMultithreaded | backend.CreateFPUPreserve
	if caps.HardwareTransformAndLight {
		flags |= backend.CreateHardwareVertexProcessing
	} else {
		flags |= backend.CreateSoftwareVertexProcessing
	}

	// The device is created against the desktop with a placeholder chain;
	// real swap chains are added per format negotiation.
	pp := &backend.PresentParameters{
		Width:      1,
		Height:     1,
		Format:     backend.FormatUnknown,
		SwapEffect: backend.SwapEffectCopy,
		Windowed:   true,
		Flags:      backend.PresentFlagVideo,
	}

	if m.current.Load() != nil && m.release != nil {
		m.release()
	}

	dev, err := m.backend.CreateDevice(adapter, nil, flags, pp)
	if err != nil {
		return opError("CreateDevice", ErrDeviceCreation, err)
	}
	mode, err := adapter.DisplayMode()
	if err != nil {
		dev.Destroy()
		return opError("GetAdapterDisplayMode", ErrDeviceCreation, err)
	}
	if err := m.resetDevice(dev, adapter, mode, m.token); err != nil {
		dev.Destroy()
		return err
	}

	m.logger().Info("device created",
		"adapter", adapter.Name(),
		"ordinal", adapter.Ordinal(),
		"hardwareVertexProcessing", flags.Has(backend.CreateHardwareVertexProcessing),
		"displayMode", fmt.Sprintf("%dx%d@%d %v", mode.Width, mode.Height, mode.RefreshRate, mode.Format),
	)
	return nil
}

// resetDevice adopts dev as the current device and destroys the old one.
func (m *DeviceManager) resetDevice(dev backend.Device, adapter backend.Adapter, mode backend.DisplayMode, token ResetToken) error {
	if token != m.token {
		return fmt.Errorf("%w: reset token mismatch", ErrInvalidArgument)
	}
	if dev == nil {
		return fmt.Errorf("%w: nil device", ErrInvalidArgument)
	}
	old := m.current.Swap(&boundDevice{device: dev, adapter: adapter, mode: mode})
	m.generation.Add(1)
	if old != nil {
		old.device.Destroy()
	}
	return nil
}

// checkHealth probes the current device. Lost and hung devices are
// recreated once; removal is reported and never recovered.
func (m *DeviceManager) checkHealth(w Window) (DeviceState, error) {
	dev := m.Device()
	if dev == nil {
		return DeviceOK, fmt.Errorf("%w: no device", ErrInvalidState)
	}

	status := dev.CheckState(w)
	switch status {
	case backend.StatusOK, backend.StatusOccluded, backend.StatusModeChanged, backend.StatusInvalidCall:
		return DeviceOK, nil

	case backend.StatusLost, backend.StatusHung:
		m.logger().Warn("device unusable, recreating", "status", status)
		if err := m.createDevice(w); err != nil {
			return DeviceOK, err
		}
		return DeviceReset, nil

	case backend.StatusRemoved:
		m.logger().Error("device removed")
		return DeviceRemoved, opError("CheckDeviceState", ErrDeviceRemoved, backend.ErrDeviceRemoved)

	default:
		return DeviceOK, nil
	}
}

// close destroys the current device and the native subsystem.
func (m *DeviceManager) close() {
	if old := m.current.Swap(nil); old != nil {
		old.device.Destroy()
	}
	if m.initialized {
		m.backend.Close()
		m.initialized = false
	}
}

// Provider returns a gpucontext.DeviceProvider that always reflects the
// current device. Queue and Adapter are forwarded when the device exposes
// them and nil otherwise. AdapterInfo describes the adapter of the current
// device and is zero when there is none.
func (m *DeviceManager) Provider() gpucontext.DeviceProvider {
	return deviceProvider{m: m}
}

type deviceProvider struct {
	m *DeviceManager
}

func (p deviceProvider) Device() gpucontext.Device {
	if d := p.m.Device(); d != nil {
		return d
	}
	return nil
}

func (p deviceProvider) Queue() gpucontext.Queue {
	if q, ok := p.m.Device().(interface{ Queue() gpucontext.Queue }); ok {
		return q.Queue()
	}
	return nil
}

func (p deviceProvider) Adapter() gpucontext.Adapter {
	if a, ok := p.m.Device().(interface{ GPUAdapter() gpucontext.Adapter }); ok {
		return a.GPUAdapter()
	}
	return nil
}

func (p deviceProvider) AdapterInfo() gpucontext.AdapterInfo {
	d := p.m.Device()
	if d == nil {
		return gpucontext.AdapterInfo{}
	}
	return adapterInfo(d.Adapter())
}

func adapterInfo(a backend.Adapter) gpucontext.AdapterInfo {
	info := gpucontext.AdapterInfo{Name: a.Name(), Type: gpucontext.AdapterTypeUnknown}
	if t, ok := a.(backend.AdapterTyper); ok {
		info.Type = t.AdapterType()
	} else if caps, err := a.Caps(); err == nil && caps.HardwareTransformAndLight {
		info.Type = gpucontext.AdapterTypeDiscrete
	}
	return info
}

func (p deviceProvider) SurfaceFormat() gputypes.TextureFormat {
	return p.m.DisplayMode().Format.TextureFormat()
}
