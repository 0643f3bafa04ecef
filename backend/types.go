package backend

import "fmt"

// MonitorID identifies a physical monitor.
type MonitorID uintptr

// Status is the result of a device state probe.
type Status int

const (
	// StatusOK means the device is operating normally.
	StatusOK Status = iota

	// StatusOccluded means the window is hidden; presentation can continue.
	StatusOccluded

	// StatusModeChanged means the display mode changed; it self-corrects.
	StatusModeChanged

	// StatusInvalidCall means the probe itself was not applicable.
	StatusInvalidCall

	// StatusLost means the device was lost and must be recreated.
	StatusLost

	// StatusHung means the device stopped responding and must be recreated.
	StatusHung

	// StatusRemoved means the hardware is gone.
	StatusRemoved
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusOccluded:
		return "occluded"
	case StatusModeChanged:
		return "mode-changed"
	case StatusInvalidCall:
		return "invalid-call"
	case StatusLost:
		return "lost"
	case StatusHung:
		return "hung"
	case StatusRemoved:
		return "removed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Caps describes hardware capabilities of an adapter.
type Caps struct {
	// HardwareTransformAndLight reports hardware vertex processing support.
	HardwareTransformAndLight bool

	// MaxTextureWidth and MaxTextureHeight bound surface sizes (0 = unlimited).
	MaxTextureWidth  int
	MaxTextureHeight int
}

// DisplayMode describes the current mode of an adapter's display.
type DisplayMode struct {
	Width       int
	Height      int
	RefreshRate int
	Format      Format
}

// CreateFlags control device creation.
type CreateFlags uint32

const (
	// CreateHardwareVertexProcessing selects hardware vertex processing.
	CreateHardwareVertexProcessing CreateFlags = 1 << iota

	// CreateSoftwareVertexProcessing selects software vertex processing.
	CreateSoftwareVertexProcessing

	// CreateMultithreaded makes the device safe for concurrent use.
	CreateMultithreaded

	// CreateFPUPreserve keeps the FPU control word of the calling thread.
	CreateFPUPreserve

	// CreateNoWindowChanges keeps the device from touching the focus window.
	CreateNoWindowChanges
)

// Has reports whether all bits of f2 are set in f.
func (f CreateFlags) Has(f2 CreateFlags) bool {
	return f&f2 == f2
}

// SwapEffect selects how back buffers reach the window.
type SwapEffect uint8

const (
	SwapEffectDiscard SwapEffect = iota
	SwapEffectFlip
	SwapEffectCopy
)

// PresentInterval selects vertical sync behavior.
type PresentInterval uint8

const (
	// PresentIntervalDefault waits for vertical sync.
	PresentIntervalDefault PresentInterval = iota

	// PresentIntervalImmediate presents without waiting.
	PresentIntervalImmediate
)

// PresentFlags are presentation hints.
type PresentFlags uint32

const (
	// PresentFlagVideo hints that the chain displays video.
	PresentFlagVideo PresentFlags = 1 << iota

	// PresentFlagLockableBackBuffer makes back buffers CPU lockable.
	PresentFlagLockableBackBuffer
)

// PresentParameters describe a swap chain.
type PresentParameters struct {
	Width      int
	Height     int
	Format     Format
	SwapEffect SwapEffect
	Window     Window
	Windowed   bool
	Flags      PresentFlags
	Interval   PresentInterval
}

// MemoryPool selects where a surface lives.
type MemoryPool uint8

const (
	// PoolDefault is device memory.
	PoolDefault MemoryPool = iota

	// PoolSystemMem is CPU memory, always lockable.
	PoolSystemMem
)

// SurfaceDesc describes a surface.
type SurfaceDesc struct {
	Width    int
	Height   int
	Format   Format
	Pool     MemoryPool
	Lockable bool
}

// LockedRect is a CPU mapping of a surface.
// Row y starts at Bits[y*Pitch].
type LockedRect struct {
	Pitch int
	Bits  []byte
}
