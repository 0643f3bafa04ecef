package native

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"

	"github.com/gogpu/present/backend"
)

// Device is an open HAL device.
type Device struct {
	adapter *adapter
	flags   backend.CreateFlags

	mu        sync.Mutex
	device    hal.Device
	queue     hal.Queue
	destroyed bool
}

// HAL returns the underlying device and queue for decoders that render on
// the presentation device. Both are nil after Destroy.
func (d *Device) HAL() (hal.Device, hal.Queue) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.device, d.queue
}

// Poll implements backend.Device. Uploads are submitted synchronously.
func (d *Device) Poll(bool) {}

// Destroy implements backend.Device.
func (d *Device) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return
	}
	d.destroyed = true
	d.device.Destroy()
	d.device = nil
	d.queue = nil
}

// Adapter returns the adapter the device was opened on.
func (d *Device) Adapter() backend.Adapter { return d.adapter }

// Flags returns the creation flags.
func (d *Device) Flags() backend.CreateFlags { return d.flags }

// CheckState reports StatusLost after Destroy and StatusOK otherwise.
func (d *Device) CheckState(backend.Window) backend.Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return backend.StatusLost
	}
	return backend.StatusOK
}

// CreateSwapChain allocates a swap chain with one texture-backed back buffer.
func (d *Device) CreateSwapChain(pp *backend.PresentParameters) (backend.SwapChain, error) {
	if pp == nil || pp.Width <= 0 || pp.Height <= 0 {
		return nil, fmt.Errorf("%w: bad present parameters", backend.ErrInvalidCall)
	}
	lockable := pp.Flags&backend.PresentFlagLockableBackBuffer != 0
	s, err := d.newSurface(pp.Width, pp.Height, pp.Format, backend.PoolDefault, lockable)
	if err != nil {
		return nil, err
	}
	sc := &swapChain{device: d, back: s}
	s.chain = sc
	return sc, nil
}

// CreateOffscreenSurface allocates a plain surface. System memory surfaces
// have no texture.
func (d *Device) CreateOffscreenSurface(width, height int, f backend.Format, pool backend.MemoryPool) (backend.Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: bad surface size %dx%d", backend.ErrInvalidCall, width, height)
	}
	return d.newSurface(width, height, f, pool, pool == backend.PoolSystemMem)
}

func (d *Device) newSurface(width, height int, f backend.Format, pool backend.MemoryPool, lockable bool) (*surface, error) {
	tf := f.TextureFormat()
	if tf == gputypes.TextureFormatUndefined {
		return nil, fmt.Errorf("%w: %v", backend.ErrUnsupportedFormat, f)
	}

	s := &surface{
		device:   d,
		pool:     pool,
		lockable: lockable,
		buf:      backend.NewHostBuffer(width, height, f, 4),
	}
	if pool == backend.PoolSystemMem {
		return s, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return nil, fmt.Errorf("%w: device destroyed", backend.ErrDeviceLost)
	}
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "present_back_buffer",
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        tf,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create back buffer texture: %w", err)
	}
	s.texture = tex
	return s, nil
}

// readbackPitchAlign is the bytesPerRow alignment of texture to buffer
// copies.
const readbackPitchAlign = 256

// GetRenderTargetData reads the texture of src back into the system memory
// surface dst. A source without a texture is copied from host memory.
func (d *Device) GetRenderTargetData(src, dst backend.Surface) error {
	s, ok1 := src.(*surface)
	t, ok2 := dst.(*surface)
	if !ok1 || !ok2 {
		return fmt.Errorf("%w: %w", backend.ErrInvalidCall, ErrForeignObject)
	}
	if s == t {
		return fmt.Errorf("%w: source is the destination", backend.ErrInvalidCall)
	}
	if t.pool != backend.PoolSystemMem {
		return fmt.Errorf("%w: destination not in system memory", backend.ErrInvalidCall)
	}
	if s.buf.Bounds() != t.buf.Bounds() || s.buf.Format != t.buf.Format {
		return fmt.Errorf("%w: surface mismatch", backend.ErrInvalidCall)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	t.mu.Lock()
	defer t.mu.Unlock()
	if s.texture == nil {
		if s.pool != backend.PoolSystemMem {
			return fmt.Errorf("%w: surface released", backend.ErrInvalidCall)
		}
		t.buf.CopyFrom(&s.buf)
		return nil
	}
	return d.readTexture(s.texture, &t.buf)
}

// readTexture copies tex into dst through a mapped staging buffer.
func (d *Device) readTexture(tex hal.Texture, dst *backend.HostBuffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return fmt.Errorf("%w: device destroyed", backend.ErrDeviceLost)
	}

	w, h := uint32(dst.Width), uint32(dst.Height)
	pitch := (w*4 + readbackPitchAlign - 1) &^ (readbackPitchAlign - 1)
	size := uint64(pitch) * uint64(h)

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "present_readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create readback buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	enc, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "present_readback"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := enc.BeginEncoding("present_readback"); err != nil {
		return fmt.Errorf("begin readback encoding: %w", err)
	}
	enc.CopyTextureToBuffer(tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{BytesPerRow: pitch, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: tex, Aspect: gputypes.TextureAspectAll},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	cmd, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("end readback encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmd)

	if _, err := d.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return halError("submit readback", err)
	}
	if err := d.device.WaitIdle(); err != nil {
		return halError("wait for readback", err)
	}

	m, err := d.device.MapBuffer(staging, 0, size)
	if err != nil {
		return fmt.Errorf("map readback buffer: %w", err)
	}
	mapped := backend.HostBuffer{
		Width:  dst.Width,
		Height: dst.Height,
		Format: dst.Format,
		Pitch:  int(pitch),
		Bits:   unsafe.Slice((*byte)(m.Ptr), size),
	}
	dst.CopyFrom(&mapped)
	return d.device.UnmapBuffer(staging)
}

// halError maps a lost HAL device to backend.ErrDeviceLost.
func halError(op string, err error) error {
	if errors.Is(err, hal.ErrDeviceLost) {
		return fmt.Errorf("%s: %w: %w", op, backend.ErrDeviceLost, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ColorFill fills r of s with c and uploads the result.
func (d *Device) ColorFill(s backend.Surface, r *image.Rectangle, c color.Color) error {
	ns, ok := s.(*surface)
	if !ok {
		return fmt.Errorf("%w: %w", backend.ErrInvalidCall, ErrForeignObject)
	}
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.buf.Fill(r, c)
	return ns.upload()
}

type swapChain struct {
	device *Device
	back   *surface

	mu       sync.Mutex
	released bool
}

func (sc *swapChain) BackBuffer(i int) (backend.Surface, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if i != 0 || sc.released {
		return nil, backend.ErrInvalidCall
	}
	return sc.back, nil
}

func (sc *swapChain) Present(dst image.Rectangle, w backend.Window) error {
	if w == nil {
		return fmt.Errorf("%w: no window", backend.ErrInvalidCall)
	}
	if sc.device.CheckState(w) != backend.StatusOK {
		return backend.ErrDeviceLost
	}
	sc.mu.Lock()
	released := sc.released
	sc.mu.Unlock()
	if released {
		return fmt.Errorf("%w: swap chain released", backend.ErrInvalidCall)
	}

	canvas, err := w.AcquireCanvas()
	if err != nil {
		return err
	}
	defer w.ReleaseCanvas(canvas)

	sc.back.mu.RLock()
	src := sc.back.buf.Image()
	sc.back.mu.RUnlock()
	draw.NearestNeighbor.Scale(canvas, dst, src, src.Bounds(), draw.Src, nil)
	return nil
}

func (sc *swapChain) Release() {
	sc.mu.Lock()
	if sc.released {
		sc.mu.Unlock()
		return
	}
	sc.released = true
	sc.mu.Unlock()
	sc.back.destroyTexture()
}

type surface struct {
	device   *Device
	chain    *swapChain
	pool     backend.MemoryPool
	lockable bool

	mu      sync.RWMutex
	buf     backend.HostBuffer
	texture hal.Texture
	writing bool
}

func (s *surface) Desc() backend.SurfaceDesc {
	return backend.SurfaceDesc{
		Width:    s.buf.Width,
		Height:   s.buf.Height,
		Format:   s.buf.Format,
		Pool:     s.pool,
		Lockable: s.lockable,
	}
}

func (s *surface) Container() backend.SwapChain {
	if s.chain == nil {
		return nil
	}
	return s.chain
}

// Texture returns the GPU copy of the surface, or nil for system memory
// surfaces and released back buffers.
func (s *surface) Texture() hal.Texture {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.texture
}

func (s *surface) LockRect(readOnly bool) (backend.LockedRect, error) {
	if !s.lockable {
		return backend.LockedRect{}, backend.ErrNotLockable
	}
	if readOnly {
		s.mu.RLock()
	} else {
		s.mu.Lock()
		s.writing = true
	}
	return backend.LockedRect{Pitch: s.buf.Pitch, Bits: s.buf.Bits}, nil
}

// UnlockRect ends a lock. Writes are uploaded to the texture.
func (s *surface) UnlockRect() error {
	if !s.lockable {
		return backend.ErrNotLockable
	}
	if !s.writing {
		s.mu.RUnlock()
		return nil
	}
	s.writing = false
	err := s.upload()
	s.mu.Unlock()
	return err
}

func (s *surface) Release() {
	if s.chain != nil {
		return
	}
	s.destroyTexture()
}

// upload copies the host shadow into the texture. Caller holds s.mu.
// Present scales the shadow into the window canvas, so only
// GetRenderTargetData reads the texture.
func (s *surface) upload() error {
	if s.texture == nil {
		return nil
	}
	d := s.device
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return fmt.Errorf("%w: device destroyed", backend.ErrDeviceLost)
	}
	w, h := uint32(s.buf.Width), uint32(s.buf.Height)
	err := d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  s.texture,
			MipLevel: 0,
		},
		s.buf.Packed(),
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  w * 4,
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return halError("upload back buffer", err)
	}
	return nil
}

func (s *surface) destroyTexture() {
	s.mu.Lock()
	tex := s.texture
	s.texture = nil
	s.mu.Unlock()
	if tex == nil {
		return
	}

	d := s.device
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.destroyed {
		d.device.DestroyTexture(tex)
	}
}

var _ backend.Device = (*Device)(nil)
