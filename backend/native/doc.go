// Package native provides a presentation backend on the Pure Go WebGPU HAL
// (gogpu/wgpu).
//
// Every back buffer is a BGRA8Unorm texture with a host shadow copy. CPU
// writes through LockRect and ColorFill are uploaded to the texture with
// Queue.WriteTexture, so decoders sharing the device always see the
// current frame. Present scales the shadow into the window canvas.
// GetRenderTargetData reads the texture back through a mapped staging
// buffer, so frames rendered on the GPU by a decoder are captured too.
//
// # Registration
//
// The backend registers itself as "native" on import:
//
//	import _ "github.com/gogpu/present/backend/native"
//
// backend.InitDefault prefers it over the software backend.
//
// # Limitations
//
// The HAL reports no monitor association, so every adapter returns
// monitor 0 and the engine binds to the default adapter. Only the 32-bit
// formats (XRGB32, ARGB32) map to a texture format.
package native
