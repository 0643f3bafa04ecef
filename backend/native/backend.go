package native

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/present/backend"
)

// init registers the native backend on package import.
func init() {
	backend.Register(backend.BackendNative, func() backend.Backend {
		return New()
	})
}

// Backend is a presentation backend on the wgpu HAL.
//
// Backend is safe for concurrent use from multiple goroutines.
type Backend struct {
	mu sync.Mutex

	api      hal.Backend
	instance hal.Instance
	adapters []*adapter
	devices  []*Device

	initialized bool
}

// New creates a backend on the Vulkan HAL. The HAL is looked up in Init.
func New() *Backend {
	return &Backend{}
}

// NewWithAPI creates a backend on the given HAL API, e.g. noop.API{} in
// tests.
func NewWithAPI(api hal.Backend) *Backend {
	return &Backend{api: api}
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return backend.BackendNative
}

// Init creates the HAL instance and enumerates its adapters.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return nil
	}

	api := b.api
	if api == nil {
		var ok bool
		api, ok = hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return fmt.Errorf("%w: %w", backend.ErrBackendNotAvailable, ErrNoHAL)
		}
	}

	instance, err := api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("%w: create instance: %w", backend.ErrBackendNotAvailable, err)
	}
	exposed := instance.EnumerateAdapters(nil)
	if len(exposed) == 0 {
		instance.Destroy()
		return fmt.Errorf("%w: %w", backend.ErrBackendNotAvailable, ErrNoGPU)
	}

	adapters := make([]*adapter, len(exposed))
	for i := range exposed {
		adapters[i] = &adapter{ordinal: i, exposed: exposed[i]}
	}

	b.api = api
	b.instance = instance
	b.adapters = adapters
	b.initialized = true
	return nil
}

// Close destroys every device and the HAL instance.
func (b *Backend) Close() {
	b.mu.Lock()
	devices := b.devices
	instance := b.instance
	b.devices = nil
	b.instance = nil
	b.adapters = nil
	b.initialized = false
	b.mu.Unlock()

	for _, d := range devices {
		d.Destroy()
	}
	if instance != nil {
		instance.Destroy()
	}
}

// Adapters returns the HAL adapters in enumeration order.
func (b *Backend) Adapters() []backend.Adapter {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]backend.Adapter, len(b.adapters))
	for i, a := range b.adapters {
		out[i] = a
	}
	return out
}

// CreateDevice opens a HAL device on a.
func (b *Backend) CreateDevice(a backend.Adapter, _ backend.Window, flags backend.CreateFlags, _ *backend.PresentParameters) (backend.Device, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	na, ok := a.(*adapter)
	if !ok {
		return nil, fmt.Errorf("%w: %w: adapter %T", backend.ErrInvalidCall, ErrForeignObject, a)
	}

	open, err := na.exposed.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return nil, fmt.Errorf("open device: %w", err)
	}
	d := &Device{
		adapter: na,
		flags:   flags,
		device:  open.Device,
		queue:   open.Queue,
	}
	b.devices = append(b.devices, d)
	return d, nil
}

type adapter struct {
	ordinal int
	exposed hal.ExposedAdapter
}

func (a *adapter) Ordinal() int { return a.ordinal }
func (a *adapter) Name() string { return a.exposed.Info.Name }

// AdapterType implements backend.AdapterTyper.
func (a *adapter) AdapterType() gpucontext.AdapterType {
	switch a.exposed.Info.DeviceType {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		return gpucontext.AdapterTypeSoftware
	default:
		return gpucontext.AdapterTypeUnknown
	}
}

// Monitor returns 0; the HAL does not report which monitor an adapter drives.
func (a *adapter) Monitor() backend.MonitorID { return 0 }

func (a *adapter) Caps() (backend.Caps, error) {
	limits := gputypes.DefaultLimits()
	t := a.exposed.Info.DeviceType
	return backend.Caps{
		HardwareTransformAndLight: t == gputypes.DeviceTypeDiscreteGPU || t == gputypes.DeviceTypeIntegratedGPU,
		MaxTextureWidth:           int(limits.MaxTextureDimension2D),
		MaxTextureHeight:          int(limits.MaxTextureDimension2D),
	}, nil
}

// DisplayMode reports the surface format only; the HAL has no notion of a
// desktop mode, so size and refresh rate are zero.
func (a *adapter) DisplayMode() (backend.DisplayMode, error) {
	return backend.DisplayMode{Format: backend.FormatXRGB32}, nil
}

func (a *adapter) CheckDeviceFormat(display, backBuffer backend.Format) error {
	if display.TextureFormat() == gputypes.TextureFormatUndefined ||
		backBuffer.TextureFormat() == gputypes.TextureFormatUndefined {
		return fmt.Errorf("%w: %v on %v", backend.ErrUnsupportedFormat, backBuffer, display)
	}
	return nil
}

var _ backend.Backend = (*Backend)(nil)
