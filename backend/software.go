package backend

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/gogpu/gpucontext"
	"golang.org/x/image/draw"
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU-based software backend.
	BackendSoftware = "software"
	// BackendNative is the name of the Pure Go GPU backend (gogpu/wgpu).
	BackendNative = "native"
)

// softwarePitchAlign is the row alignment of software surfaces. Rows are
// wider than packed, so readers must honor Pitch.
const softwarePitchAlign = 64

// SoftwareBackend is a CPU-based presentation backend.
//
// Surfaces live in host memory and presentation scales the back buffer into
// the window canvas. The backend also exposes fault injection hooks
// (SetInitError, FailSwapChainAfter, SoftwareDevice.SetStatus, ...) used to
// exercise device loss and removal without hardware.
type SoftwareBackend struct {
	mu          sync.Mutex
	initialized bool
	adapters    []*softwareAdapter
	devices     []*SoftwareDevice

	initErr         error
	createErr       error
	swapChainBudget int // remaining successful CreateSwapChain calls, -1 = unlimited
	composition     bool
	compositionErr  error
}

// init registers the software backend on package import.
func init() {
	Register(BackendSoftware, func() Backend {
		return NewSoftwareBackend()
	})
}

// NewSoftwareBackend creates a software backend with one default adapter
// driving monitor 1.
func NewSoftwareBackend() *SoftwareBackend {
	b := &SoftwareBackend{
		swapChainBudget: -1,
		composition:     true,
	}
	b.AddAdapter("Software Adapter", 1)
	return b
}

// Name returns the backend identifier.
func (b *SoftwareBackend) Name() string {
	return BackendSoftware
}

// Init initializes the backend.
func (b *SoftwareBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initErr != nil {
		return b.initErr
	}
	b.initialized = true
	return nil
}

// Close releases all backend resources.
func (b *SoftwareBackend) Close() {
	b.mu.Lock()
	devices := b.devices
	b.devices = nil
	b.initialized = false
	b.mu.Unlock()

	for _, d := range devices {
		d.Destroy()
	}
}

// AddAdapter appends an adapter driving the given monitor.
func (b *SoftwareBackend) AddAdapter(name string, monitor MonitorID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.adapters = append(b.adapters, &softwareAdapter{
		ordinal: len(b.adapters),
		name:    name,
		monitor: monitor,
		caps:    Caps{HardwareTransformAndLight: true},
		mode:    DisplayMode{Width: 1920, Height: 1080, RefreshRate: 60, Format: FormatXRGB32},
	})
}

// SetAdapterCaps overrides the capabilities of adapter i.
func (b *SoftwareBackend) SetAdapterCaps(i int, caps Caps) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.adapters[i].caps = caps
}

// SetInitError makes Init fail with err.
func (b *SoftwareBackend) SetInitError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.initErr = err
}

// SetCreateDeviceError makes CreateDevice fail with err. Pass nil to clear.
func (b *SoftwareBackend) SetCreateDeviceError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.createErr = err
}

// FailSwapChainAfter lets n more swap chains succeed and fails the rest.
// Pass a negative n to remove the limit.
func (b *SoftwareBackend) FailSwapChainAfter(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.swapChainBudget = n
}

// SetComposition sets the answer of CompositionEnabled.
func (b *SoftwareBackend) SetComposition(enabled bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.composition = enabled
	b.compositionErr = err
}

// CompositionEnabled implements Compositor.
func (b *SoftwareBackend) CompositionEnabled() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.composition, b.compositionErr
}

// Adapters returns the configured adapters.
func (b *SoftwareBackend) Adapters() []Adapter {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Adapter, len(b.adapters))
	for i, a := range b.adapters {
		out[i] = a
	}
	return out
}

// Devices returns every device created so far, oldest first.
func (b *SoftwareBackend) Devices() []*SoftwareDevice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*SoftwareDevice(nil), b.devices...)
}

// LastDevice returns the most recently created device, or nil.
func (b *SoftwareBackend) LastDevice() *SoftwareDevice {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.devices) == 0 {
		return nil
	}
	return b.devices[len(b.devices)-1]
}

// CreateDevice creates a software device.
func (b *SoftwareBackend) CreateDevice(a Adapter, _ Window, flags CreateFlags, _ *PresentParameters) (Device, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return nil, ErrNotInitialized
	}
	if b.createErr != nil {
		return nil, b.createErr
	}
	sa, ok := a.(*softwareAdapter)
	if !ok {
		return nil, fmt.Errorf("%w: foreign adapter %T", ErrInvalidCall, a)
	}
	d := &SoftwareDevice{backend: b, adapter: sa, flags: flags}
	b.devices = append(b.devices, d)
	return d, nil
}

func (b *SoftwareBackend) takeSwapChainBudget() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.swapChainBudget < 0 {
		return true
	}
	if b.swapChainBudget == 0 {
		return false
	}
	b.swapChainBudget--
	return true
}

type softwareAdapter struct {
	ordinal int
	name    string
	monitor MonitorID
	caps    Caps
	mode    DisplayMode
}

func (a *softwareAdapter) Ordinal() int                      { return a.ordinal }
func (a *softwareAdapter) Name() string                      { return a.name }
func (a *softwareAdapter) Monitor() MonitorID                { return a.monitor }
func (a *softwareAdapter) Caps() (Caps, error)               { return a.caps, nil }
func (a *softwareAdapter) DisplayMode() (DisplayMode, error) { return a.mode, nil }

// AdapterType implements AdapterTyper.
func (a *softwareAdapter) AdapterType() gpucontext.AdapterType {
	return gpucontext.AdapterTypeSoftware
}

func (a *softwareAdapter) CheckDeviceFormat(display, backBuffer Format) error {
	if !display.Valid() || !backBuffer.Valid() {
		return ErrUnsupportedFormat
	}
	return nil
}

// SoftwareDevice is a device of the software backend.
type SoftwareDevice struct {
	backend *SoftwareBackend
	adapter *softwareAdapter
	flags   CreateFlags

	mu          sync.Mutex
	status      Status
	presentErr  error
	destroyed   bool
	presents    int
	liveChains  int
	liveOffscrn int
}

// SetStatus sets the result of subsequent CheckState calls. Non-OK
// statuses also make Present fail with the matching error.
func (d *SoftwareDevice) SetStatus(s Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = s
}

// FailNextPresent makes the next Present on any chain of d fail with err.
func (d *SoftwareDevice) FailNextPresent(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.presentErr = err
}

// Destroyed reports whether Destroy was called.
func (d *SoftwareDevice) Destroyed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.destroyed
}

// Presents returns the number of successful presents.
func (d *SoftwareDevice) Presents() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.presents
}

// LiveSwapChains returns the number of unreleased swap chains.
func (d *SoftwareDevice) LiveSwapChains() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.liveChains
}

// LiveOffscreenSurfaces returns the number of unreleased offscreen surfaces.
func (d *SoftwareDevice) LiveOffscreenSurfaces() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.liveOffscrn
}

// Poll implements Device. Software work completes synchronously.
func (d *SoftwareDevice) Poll(bool) {}

// Destroy implements Device.
func (d *SoftwareDevice) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyed = true
}

// Adapter returns the adapter of the device.
func (d *SoftwareDevice) Adapter() Adapter { return d.adapter }

// Flags returns the creation flags.
func (d *SoftwareDevice) Flags() CreateFlags { return d.flags }

// CheckState returns the injected status.
func (d *SoftwareDevice) CheckState(Window) Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return StatusLost
	}
	return d.status
}

func (d *SoftwareDevice) usable() error {
	if d.destroyed {
		return fmt.Errorf("%w: device destroyed", ErrInvalidCall)
	}
	return StatusError(d.status)
}

// CreateSwapChain allocates a swap chain with one back buffer.
func (d *SoftwareDevice) CreateSwapChain(pp *PresentParameters) (SwapChain, error) {
	if pp == nil || pp.Width <= 0 || pp.Height <= 0 {
		return nil, fmt.Errorf("%w: bad present parameters", ErrInvalidCall)
	}
	if !pp.Format.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, pp.Format)
	}
	d.mu.Lock()
	err := d.usable()
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if !d.backend.takeSwapChainBudget() {
		return nil, fmt.Errorf("%w: out of video memory", ErrInvalidCall)
	}

	sc := &softwareSwapChain{device: d, params: *pp}
	sc.back = newSoftwareSurface(pp.Width, pp.Height, pp.Format, PoolDefault,
		pp.Flags&PresentFlagLockableBackBuffer != 0)
	sc.back.chain = sc

	d.mu.Lock()
	d.liveChains++
	d.mu.Unlock()
	return sc, nil
}

// CreateOffscreenSurface allocates a plain surface.
func (d *SoftwareDevice) CreateOffscreenSurface(width, height int, f Format, pool MemoryPool) (Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: bad surface size %dx%d", ErrInvalidCall, width, height)
	}
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.usable(); err != nil {
		return nil, err
	}
	d.liveOffscrn++
	s := newSoftwareSurface(width, height, f, pool, pool == PoolSystemMem)
	s.device = d
	return s, nil
}

// GetRenderTargetData copies src into the system memory surface dst.
func (d *SoftwareDevice) GetRenderTargetData(src, dst Surface) error {
	s, ok1 := src.(*softwareSurface)
	t, ok2 := dst.(*softwareSurface)
	if !ok1 || !ok2 {
		return fmt.Errorf("%w: foreign surface", ErrInvalidCall)
	}
	if t.pool != PoolSystemMem {
		return fmt.Errorf("%w: destination not in system memory", ErrInvalidCall)
	}
	if s.buf.Width != t.buf.Width || s.buf.Height != t.buf.Height || s.buf.Format != t.buf.Format {
		return fmt.Errorf("%w: surface mismatch", ErrInvalidCall)
	}
	d.mu.Lock()
	err := d.usable()
	d.mu.Unlock()
	if err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.CopyFrom(&s.buf)
	return nil
}

// ColorFill fills r of s with c.
func (d *SoftwareDevice) ColorFill(s Surface, r *image.Rectangle, c color.Color) error {
	ss, ok := s.(*softwareSurface)
	if !ok {
		return fmt.Errorf("%w: foreign surface", ErrInvalidCall)
	}
	d.mu.Lock()
	err := d.usable()
	d.mu.Unlock()
	if err != nil {
		return err
	}
	ss.fill(r, c)
	return nil
}

type softwareSwapChain struct {
	device   *SoftwareDevice
	params   PresentParameters
	back     *softwareSurface
	released bool
}

func (sc *softwareSwapChain) BackBuffer(i int) (Surface, error) {
	if i != 0 || sc.released {
		return nil, ErrInvalidCall
	}
	return sc.back, nil
}

func (sc *softwareSwapChain) Present(dst image.Rectangle, w Window) error {
	if w == nil {
		return fmt.Errorf("%w: no window", ErrInvalidCall)
	}
	d := sc.device
	d.mu.Lock()
	if sc.released {
		d.mu.Unlock()
		return fmt.Errorf("%w: swap chain released", ErrInvalidCall)
	}
	err := d.usable()
	if err == nil && d.presentErr != nil {
		err, d.presentErr = d.presentErr, nil
	}
	d.mu.Unlock()
	if err != nil {
		return err
	}

	canvas, err := w.AcquireCanvas()
	if err != nil {
		return err
	}
	defer w.ReleaseCanvas(canvas)

	src := sc.back.image()
	draw.NearestNeighbor.Scale(canvas, dst, src, src.Bounds(), draw.Src, nil)

	d.mu.Lock()
	d.presents++
	d.mu.Unlock()
	return nil
}

func (sc *softwareSwapChain) Release() {
	d := sc.device
	d.mu.Lock()
	defer d.mu.Unlock()
	if sc.released {
		return
	}
	sc.released = true
	d.liveChains--
}

type softwareSurface struct {
	pool     MemoryPool
	lockable bool
	chain    *softwareSwapChain
	device   *SoftwareDevice // offscreen surfaces only

	mu       sync.RWMutex
	buf      HostBuffer
	locked   bool
	released bool
}

func newSoftwareSurface(w, h int, f Format, pool MemoryPool, lockable bool) *softwareSurface {
	return &softwareSurface{
		pool:     pool,
		lockable: lockable,
		buf:      NewHostBuffer(w, h, f, softwarePitchAlign),
	}
}

func (s *softwareSurface) Desc() SurfaceDesc {
	return SurfaceDesc{Width: s.buf.Width, Height: s.buf.Height, Format: s.buf.Format, Pool: s.pool, Lockable: s.lockable}
}

func (s *softwareSurface) Container() SwapChain {
	if s.chain == nil {
		return nil
	}
	return s.chain
}

func (s *softwareSurface) LockRect(readOnly bool) (LockedRect, error) {
	if !s.lockable {
		return LockedRect{}, ErrNotLockable
	}
	if readOnly {
		s.mu.RLock()
	} else {
		s.mu.Lock()
		s.locked = true
	}
	return LockedRect{Pitch: s.buf.Pitch, Bits: s.buf.Bits}, nil
}

func (s *softwareSurface) UnlockRect() error {
	if !s.lockable {
		return ErrNotLockable
	}
	if s.locked {
		s.locked = false
		s.mu.Unlock()
		return nil
	}
	s.mu.RUnlock()
	return nil
}

func (s *softwareSurface) Release() {
	if s.chain != nil || s.device == nil {
		return
	}
	s.device.mu.Lock()
	defer s.device.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	s.device.liveOffscrn--
}

func (s *softwareSurface) fill(r *image.Rectangle, c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Fill(r, c)
}

func (s *softwareSurface) image() *image.NRGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buf.Image()
}

var (
	_ Backend    = (*SoftwareBackend)(nil)
	_ Compositor = (*SoftwareBackend)(nil)
	_ Device     = (*SoftwareDevice)(nil)
)
