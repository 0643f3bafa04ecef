package backend

import (
	"image"
	"image/color"

	"github.com/gogpu/gpucontext"
	"golang.org/x/image/draw"
)

// Backend is the capability interface a graphics implementation provides to
// the presentation engine. It abstracts adapter enumeration, capability
// queries and device creation so that the engine can run on a desktop GPU
// API, a compositor-integrated surface API or a pure software path.
//
// Backends are registered via Register() and are selected via
// Get() or Default().
type Backend interface {
	// Name returns the backend identifier (e.g., "software", "native").
	Name() string

	// Init acquires the native graphics subsystem.
	// It fails when no driver or supported hardware is present.
	Init() error

	// Close releases the native subsystem.
	// The backend should not be used after Close is called.
	Close()

	// Adapters returns the display adapters in ordinal order.
	// Adapter 0 is the default adapter.
	Adapters() []Adapter

	// CreateDevice creates a rendering device on the given adapter.
	// focus may be nil, in which case the desktop is used as focus window.
	CreateDevice(a Adapter, focus Window, flags CreateFlags, pp *PresentParameters) (Device, error)
}

// Compositor is an optional interface for backends that can report whether
// desktop composition is active. Backends that do not implement it are
// treated as composited.
type Compositor interface {
	CompositionEnabled() (bool, error)
}

// Adapter is one display adapter known to a backend.
type Adapter interface {
	// Ordinal returns the adapter index; 0 is the default adapter.
	Ordinal() int

	// Name returns a human readable adapter description.
	Name() string

	// Monitor returns the monitor driven by this adapter, or 0 if unknown.
	Monitor() MonitorID

	// Caps returns the hardware capabilities of the adapter.
	Caps() (Caps, error)

	// DisplayMode returns the current display mode of the adapter.
	DisplayMode() (DisplayMode, error)

	// CheckDeviceFormat reports whether back buffers of format backBuffer can
	// be presented while the display runs in format display.
	CheckDeviceFormat(display, backBuffer Format) error
}

// AdapterTyper is an optional interface for adapters that know their
// hardware class. Adapters that do not implement it are classified from
// their Caps.
type AdapterTyper interface {
	AdapterType() gpucontext.AdapterType
}

// Device is a hardware rendering context created by a Backend.
//
// Devices must be safe for concurrent use; they are created with
// CreateMultithreaded.
type Device interface {
	// Poll drives completion of submitted GPU work. When wait is true it
	// blocks until the queue is idle.
	Poll(wait bool)

	// Destroy releases the device. The device must not be used afterwards.
	Destroy()

	// Adapter returns the adapter the device was created on.
	Adapter() Adapter

	// Flags returns the creation flags of the device.
	Flags() CreateFlags

	// CheckState probes the device for loss, hang or removal relative to
	// the given window. w may be nil.
	CheckState(w Window) Status

	// CreateSwapChain allocates an additional swap chain.
	CreateSwapChain(pp *PresentParameters) (SwapChain, error)

	// CreateOffscreenSurface allocates a plain surface, typically in
	// system memory for CPU read-back.
	CreateOffscreenSurface(width, height int, f Format, pool MemoryPool) (Surface, error)

	// GetRenderTargetData copies a GPU-resident surface into a system
	// memory surface of the same size and format.
	GetRenderTargetData(src, dst Surface) error

	// ColorFill fills r of the surface with c. A nil r fills the whole surface.
	ColorFill(s Surface, r *image.Rectangle, c color.Color) error
}

// SwapChain is a presentation surface bound to a window.
type SwapChain interface {
	// BackBuffer returns the i-th back buffer of the chain.
	BackBuffer(i int) (Surface, error)

	// Present shows the back buffer in dst of w.
	Present(dst image.Rectangle, w Window) error

	// Release frees the swap chain and its back buffers.
	Release()
}

// Surface is one buffer of pixel memory owned by a device.
type Surface interface {
	// Desc describes the surface.
	Desc() SurfaceDesc

	// Container returns the swap chain owning the surface, or nil for
	// offscreen surfaces.
	Container() SwapChain

	// LockRect maps the surface for CPU access. It fails with
	// ErrNotLockable when the surface is not CPU accessible.
	LockRect(readOnly bool) (LockedRect, error)

	// UnlockRect unmaps a locked surface.
	UnlockRect() error

	// Release frees an offscreen surface. Back buffers are released with
	// their swap chain; calling Release on them is a no-op.
	Release()
}

// Window is the output window the engine presents to.
//
// AcquireCanvas and ReleaseCanvas give access to the basic 2D drawing path
// of the window system, used when no hardware path is available.
type Window interface {
	// Handle returns the native window handle.
	Handle() uintptr

	// ClientRect returns the client area, with its origin at (0, 0).
	ClientRect() image.Rectangle

	// Monitor returns the monitor currently displaying the window.
	Monitor() MonitorID

	// AcquireCanvas returns a drawable view of the client area.
	AcquireCanvas() (draw.Image, error)

	// ReleaseCanvas returns a canvas obtained from AcquireCanvas.
	ReleaseCanvas(c draw.Image)
}
