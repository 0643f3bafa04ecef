package main

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"

	"github.com/gogpu/present"
	"github.com/gogpu/present/backend"
	"github.com/gogpu/present/internal/playback"
)

// viewer is the ebiten game. The engine presents into an in-memory window
// whose canvas is uploaded to the screen on every Draw.
type viewer struct {
	engine  *present.Engine
	backend backend.Backend
	player  *playback.Player
	window  *backend.SoftwareWindow
	logger  *slog.Logger

	screen *ebiten.Image
	saved  int

	clipboardOnce sync.Once
	clipboardOK   bool
}

func newViewer(e *present.Engine, b backend.Backend, p *playback.Player, w *backend.SoftwareWindow, logger *slog.Logger) *viewer {
	return &viewer{engine: e, backend: b, player: p, window: w, logger: logger}
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		v.loseDevice()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if path, err := v.saveSnapshot(outDir); err != nil {
			v.logger.Warn("snapshot failed", "error", err)
		} else {
			v.logger.Info("snapshot saved", "path", path)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		if err := v.copySnapshot(); err != nil {
			v.logger.Warn("clipboard copy failed", "error", err)
		}
	}

	if err := v.player.Step(); err != nil {
		v.logger.Error("presentation stopped", "frame", v.player.Frame(), "error", err)
		return err
	}
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	canvas := v.window.Snapshot()
	b := canvas.Bounds()
	if v.screen == nil || v.screen.Bounds().Size() != b.Size() {
		if v.screen != nil {
			v.screen.Deallocate()
		}
		v.screen = ebiten.NewImage(b.Dx(), b.Dy())
	}
	v.screen.WritePixels(canvas.Pix)
	screen.DrawImage(v.screen, nil)
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.resize(outsideWidth, outsideHeight)
	r := v.window.ClientRect()
	return r.Dx(), r.Dy()
}

// resize follows the host window. The engine scales frames into the new
// client area from the next Present on.
func (v *viewer) resize(w, h int) {
	if w < 1 || h < 1 || v.window.ClientRect() == image.Rect(0, 0, w, h) {
		return
	}
	v.window.Resize(w, h)
	if err := v.engine.SetDestinationRect(v.window.ClientRect()); err != nil {
		v.logger.Warn("destination update failed", "error", err)
	}
}

func (v *viewer) loseDevice() {
	sb, ok := v.backend.(*backend.SoftwareBackend)
	if !ok {
		v.logger.Warn("device loss simulation needs the software backend", "backend", v.backend.Name())
		return
	}
	v.logger.Info("simulating device loss", "frame", v.player.Frame())
	sb.LastDevice().SetStatus(backend.StatusLost)
}

func (v *viewer) saveSnapshot(dir string) (string, error) {
	snap, err := v.engine.CaptureSnapshot(present.BitmapInfoHeaderSize)
	if err != nil {
		return "", err
	}
	v.saved++
	path := filepath.Join(dir, fmt.Sprintf("presentview-%03d.bmp", v.saved))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := snap.EncodeBMP(f); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

func (v *viewer) copySnapshot() error {
	v.clipboardOnce.Do(func() {
		v.clipboardOK = clipboard.Init() == nil
	})
	if !v.clipboardOK {
		return fmt.Errorf("clipboard unavailable")
	}
	snap, err := v.engine.CaptureSnapshot(present.BitmapInfoHeaderSize)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, snap.Image()); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtImage, buf.Bytes())
	return nil
}
