package backend

import (
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"golang.org/x/image/draw"
)

var nextWindowHandle atomic.Uintptr

// SoftwareWindow is an in-memory Window. Its canvas is an RGBA image the
// size of the client area; resizing keeps the overlapping pixels.
type SoftwareWindow struct {
	handle uintptr

	mu        sync.Mutex
	monitor   MonitorID
	canvas    *image.RGBA
	canvasErr error
}

// NewSoftwareWindow creates a window with the given client size on monitor 1.
func NewSoftwareWindow(width, height int) *SoftwareWindow {
	return &SoftwareWindow{
		handle:  nextWindowHandle.Add(1),
		monitor: 1,
		canvas:  image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// Handle returns a process-unique handle.
func (w *SoftwareWindow) Handle() uintptr { return w.handle }

// ClientRect returns the client area.
func (w *SoftwareWindow) ClientRect() image.Rectangle {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canvas.Bounds()
}

// Monitor returns the monitor displaying the window.
func (w *SoftwareWindow) Monitor() MonitorID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.monitor
}

// MoveToMonitor moves the window to monitor m.
func (w *SoftwareWindow) MoveToMonitor(m MonitorID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.monitor = m
}

// Resize changes the client size.
func (w *SoftwareWindow) Resize(width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	next := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(next, next.Bounds(), w.canvas, image.Point{}, draw.Src)
	w.canvas = next
}

// SetCanvasError makes AcquireCanvas fail with err.
func (w *SoftwareWindow) SetCanvasError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.canvasErr = err
}

// AcquireCanvas locks the window and returns its canvas. Every successful
// call must be paired with ReleaseCanvas.
func (w *SoftwareWindow) AcquireCanvas() (draw.Image, error) {
	w.mu.Lock()
	if w.canvasErr != nil {
		err := w.canvasErr
		w.mu.Unlock()
		return nil, err
	}
	return w.canvas, nil
}

// ReleaseCanvas unlocks the window.
func (w *SoftwareWindow) ReleaseCanvas(draw.Image) {
	w.mu.Unlock()
}

// At returns the canvas pixel at (x, y).
func (w *SoftwareWindow) At(x, y int) color.RGBA {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canvas.RGBAAt(x, y)
}

// Snapshot returns a copy of the canvas.
func (w *SoftwareWindow) Snapshot() *image.RGBA {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := image.NewRGBA(w.canvas.Bounds())
	copy(out.Pix, w.canvas.Pix)
	return out
}

var _ Window = (*SoftwareWindow)(nil)
