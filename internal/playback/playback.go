// Package playback drives an engine the way a decoder does: it fills frame
// samples with a test pattern, presents them in order and renegotiates the
// samples after a device reset.
package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/present"
	"github.com/gogpu/present/backend"
	"github.com/gogpu/present/internal/testpattern"
)

// Hook runs before frame is drawn. Tools use it to inject device faults.
type Hook func(frame int)

// Player presents generated frames through an engine.
type Player struct {
	engine   *present.Engine
	format   present.FrameFormat
	interval time.Duration
	logger   *slog.Logger

	samples  *present.SampleQueue
	frame    int
	resets   int
	realtime bool
}

// New negotiates f with e. interval is the presentation time between
// frames.
func New(e *present.Engine, f present.FrameFormat, interval time.Duration, logger *slog.Logger) (*Player, error) {
	if logger == nil {
		logger = present.Logger()
	}
	p := &Player{engine: e, format: f, interval: interval, logger: logger}
	if err := p.negotiate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Player) negotiate() error {
	q, err := p.engine.CreateFrameSamples(&p.format)
	if err != nil {
		return fmt.Errorf("negotiate %v: %w", p.format, err)
	}
	p.samples = q
	return nil
}

// Frame returns the number of frames stepped so far.
func (p *Player) Frame() int { return p.frame }

// Resets returns how many times the samples were renegotiated after a
// device reset.
func (p *Player) Resets() int { return p.resets }

// SetRealtime makes Run wait one interval between frames.
func (p *Player) SetRealtime(on bool) { p.realtime = on }

// Timestamp returns the presentation time of frame.
func (p *Player) Timestamp(frame int) time.Duration {
	return time.Duration(frame) * p.interval
}

// Step draws, presents and recycles one sample, then polls the device.
func (p *Player) Step() error {
	s, ok := p.samples.PopFront()
	if !ok {
		return fmt.Errorf("frame %d: no free sample", p.frame)
	}
	defer p.samples.PushBack(s)

	if dev := p.engine.DeviceManager().Device(); dev != nil {
		err := testpattern.Draw(dev, s.Surface(), p.frame)
		switch {
		case err == nil:
		case backend.IsRecoverable(err), errors.Is(err, backend.ErrDeviceRemoved):
			// Present reports the device condition.
			p.logger.Debug("draw skipped", "frame", p.frame, "error", err)
		default:
			return fmt.Errorf("frame %d: draw: %w", p.frame, err)
		}
	}

	if err := p.engine.Present(s, p.Timestamp(p.frame)); err != nil {
		return fmt.Errorf("frame %d: %w", p.frame, err)
	}
	p.frame++

	state, err := p.engine.CheckDeviceState()
	if err != nil {
		return fmt.Errorf("frame %d: %w", p.frame-1, err)
	}
	if state == present.DeviceReset {
		p.resets++
		p.logger.Info("device reset, renegotiating samples", "frame", p.frame)
		return p.negotiate()
	}
	return nil
}

// Run steps until frames have been presented, ctx is done or a step
// fails. frames <= 0 runs until ctx is done.
func (p *Player) Run(ctx context.Context, frames int, hook Hook) error {
	var tick <-chan time.Time
	if p.realtime && p.interval > 0 {
		t := time.NewTicker(p.interval)
		defer t.Stop()
		tick = t.C
	}
	for frames <= 0 || p.frame < frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		if hook != nil {
			hook(p.frame)
		}
		if err := p.Step(); err != nil {
			return err
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		}
	}
	return nil
}
