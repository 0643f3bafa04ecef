package playback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gogpu/present"
	"github.com/gogpu/present/backend"
	"github.com/gogpu/present/internal/testpattern"
)

var format = present.FrameFormat{Width: 16, Height: 8, Format: present.PixelFormatXRGB32}

func newPlayer(t *testing.T) (*Player, *present.Engine, *backend.SoftwareBackend, *backend.SoftwareWindow) {
	t.Helper()
	sb := backend.NewSoftwareBackend()
	e, err := present.New(sb)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })

	w := backend.NewSoftwareWindow(64, 32)
	if err := e.SetOutputWindow(w); err != nil {
		t.Fatal(err)
	}
	if err := e.SetDestinationRect(w.ClientRect()); err != nil {
		t.Fatal(err)
	}
	p, err := New(e, format, 40*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("playback.New() error = %v", err)
	}
	return p, e, sb, w
}

func TestRunPresentsPattern(t *testing.T) {
	p, e, _, w := newPlayer(t)
	const frames = 10
	if err := p.Run(context.Background(), frames, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if p.Frame() != frames {
		t.Errorf("Frame() = %d, want %d", p.Frame(), frames)
	}
	if got := e.Stats().Presented; got != frames {
		t.Errorf("Presented = %d, want %d", got, frames)
	}

	// The window scales the frame by 4 in both directions.
	for y := 0; y < format.Height; y++ {
		for x := 0; x < format.Width; x++ {
			want := testpattern.Expected(x, y, format.Width, format.Height, frames-1)
			if got := w.At(x*4+1, y*4+1); got != want {
				t.Fatalf("window pixel for (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}

	snap, err := e.CaptureSnapshot(present.BitmapInfoHeaderSize)
	if err != nil {
		t.Fatalf("CaptureSnapshot() error = %v", err)
	}
	if snap.Timestamp != p.Timestamp(frames-1) {
		t.Errorf("Timestamp = %v, want %v", snap.Timestamp, p.Timestamp(frames-1))
	}
}

func TestRunRecoversLostDevice(t *testing.T) {
	p, e, sb, _ := newPlayer(t)
	hook := func(frame int) {
		if frame == 3 {
			sb.LastDevice().SetStatus(backend.StatusLost)
		}
	}
	if err := p.Run(context.Background(), 10, hook); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	st := e.Stats()
	if p.Resets() != 1 || st.DeviceResets != 1 {
		t.Errorf("Resets() = %d, DeviceResets = %d, want 1", p.Resets(), st.DeviceResets)
	}
	if st.Presented != 9 || st.Fallbacks != 1 {
		t.Errorf("Presented = %d, Fallbacks = %d, want 9 and 1", st.Presented, st.Fallbacks)
	}
}

func TestRunStopsOnRemoval(t *testing.T) {
	p, e, sb, _ := newPlayer(t)
	hook := func(frame int) {
		if frame == 5 {
			sb.LastDevice().SetStatus(backend.StatusRemoved)
		}
	}
	err := p.Run(context.Background(), 10, hook)
	if !errors.Is(err, present.ErrDeviceRemoved) {
		t.Fatalf("Run() error = %v, want ErrDeviceRemoved", err)
	}
	if p.Frame() != 5 {
		t.Errorf("Frame() = %d, want 5", p.Frame())
	}
	if e.State() != present.StateRemoved {
		t.Errorf("State() = %v, want removed", e.State())
	}
}

func TestRunHonorsContext(t *testing.T) {
	p, _, _, _ := newPlayer(t)
	ctx, cancel := context.WithCancel(context.Background())
	hook := func(frame int) {
		if frame == 2 {
			cancel()
		}
	}
	p.SetRealtime(true)
	if err := p.Run(ctx, 0, hook); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if p.Frame() != 3 {
		t.Errorf("Frame() = %d, want 3", p.Frame())
	}
}
