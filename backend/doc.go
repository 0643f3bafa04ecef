// Package backend provides the pluggable graphics abstraction used by the
// presentation engine.
//
// A Backend enumerates display adapters and creates devices. A Device
// allocates swap chains, offscreen surfaces and read-back copies, and
// reports its health through CheckState. Window is the host's output
// window, with a canvas used for solid fallback fills.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// The software backend is automatically registered on import:
//
//	import _ "github.com/gogpu/present/backend"
//
// # Backend Selection
//
// Use InitDefault to get the best backend that initializes, or Get to
// request a specific backend by name:
//
//	// Highest priority backend whose Init succeeds
//	b, err := backend.InitDefault()
//
//	// Or request a specific backend
//	b := backend.Get("software")
//
// # Available Backends
//
//   - software: host memory surfaces presented through the window canvas.
//     It carries fault injection hooks (SetStatus, FailNextPresent,
//     FailSwapChainAfter) for exercising device loss without hardware.
//   - native: the WebGPU HAL of gogpu/wgpu, in package backend/native.
//
// Priority order: native > software.
//
// # Pixel Formats
//
// Format describes surface pixels. Multi-byte formats are little-endian;
// Encode and Decode convert single pixels, and HostBuffer holds CPU copies
// of whole surfaces.
package backend
