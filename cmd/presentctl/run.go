package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/present"
	"github.com/gogpu/present/backend"
	"github.com/gogpu/present/internal/playback"
)

type frameFlags struct {
	width, height int
	format        string
	fps           float64
}

func (f *frameFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.width, "width", 320, "frame width")
	cmd.Flags().IntVar(&f.height, "height", 180, "frame height")
	cmd.Flags().StringVar(&f.format, "format", "XRGB32", "frame pixel format")
	cmd.Flags().Float64Var(&f.fps, "fps", 25, "frame rate used for timestamps")
}

func (f *frameFlags) frameFormat() (present.FrameFormat, error) {
	pf, err := backend.ParseFormat(f.format)
	if err != nil {
		return present.FrameFormat{}, err
	}
	ff := present.FrameFormat{Width: f.width, Height: f.height, Format: pf}
	return ff, ff.Validate()
}

func (f *frameFlags) interval() time.Duration {
	if f.fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / f.fps)
}

// session is an engine presenting into an in-memory window.
type session struct {
	backend backend.Backend
	engine  *present.Engine
	window  *backend.SoftwareWindow
	player  *playback.Player
}

func openSession(ff frameFlags) (*session, error) {
	format, err := ff.frameFormat()
	if err != nil {
		return nil, err
	}
	b, err := cfg.OpenBackend()
	if err != nil {
		return nil, err
	}
	e, err := present.New(b, cfg.Options(logger)...)
	if err != nil {
		return nil, err
	}
	s := &session{backend: b, engine: e, window: backend.NewSoftwareWindow(format.Width, format.Height)}
	if err := e.SetOutputWindow(s.window); err != nil {
		s.close()
		return nil, err
	}
	if err := e.SetDestinationRect(s.window.ClientRect()); err != nil {
		s.close()
		return nil, err
	}
	s.player, err = playback.New(e, format, ff.interval(), logger)
	if err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

// close tears the session down. The engine closes the backend.
func (s *session) close() {
	_ = s.engine.Close()
}

var (
	runFrames  frameFlags
	frameCount int
	loseAt     int
	hangAt     int
	removeAt   int
	realtime   bool
	reportPath string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Present generated frames and print a report",
	Long: `Present a moving test pattern through the engine and print a YAML
report of the engine counters. The fault flags inject device loss, hang
or removal at a given frame; they need the software backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFramesCmd(cmd.Context())
	},
}

func init() {
	runFrames.register(runCmd)
	runCmd.Flags().IntVar(&frameCount, "frames", 250, "number of frames (0 runs until interrupted)")
	runCmd.Flags().IntVar(&loseAt, "lose-at", -1, "report the device lost at this frame")
	runCmd.Flags().IntVar(&hangAt, "hang-at", -1, "report the device hung at this frame")
	runCmd.Flags().IntVar(&removeAt, "remove-at", -1, "remove the device at this frame")
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "pace frames at --fps")
	runCmd.Flags().StringVar(&reportPath, "report", "", "write the report to this file instead of stdout")
}

// runReport is the YAML document printed by run.
type runReport struct {
	Engine   string        `yaml:"engine"`
	Backend  string        `yaml:"backend"`
	Format   string        `yaml:"format"`
	Frames   int           `yaml:"frames"`
	Resets   int           `yaml:"renegotiations"`
	State    string        `yaml:"state"`
	Duration time.Duration `yaml:"duration"`
	Error    string        `yaml:"error,omitempty"`
	Stats    present.Stats `yaml:"stats"`
}

func faultHook(b backend.Backend) (playback.Hook, error) {
	if loseAt < 0 && hangAt < 0 && removeAt < 0 {
		return nil, nil
	}
	sb, ok := b.(*backend.SoftwareBackend)
	if !ok {
		return nil, fmt.Errorf("fault injection needs the software backend, have %s", b.Name())
	}
	return func(frame int) {
		var st backend.Status
		switch frame {
		case loseAt:
			st = backend.StatusLost
		case hangAt:
			st = backend.StatusHung
		case removeAt:
			st = backend.StatusRemoved
		default:
			return
		}
		logger.Info("injecting device fault", "frame", frame, "status", st)
		sb.LastDevice().SetStatus(st)
	}, nil
}

func runFramesCmd(ctx context.Context) error {
	s, err := openSession(runFrames)
	if err != nil {
		return err
	}
	defer s.close()

	hook, err := faultHook(s.backend)
	if err != nil {
		return err
	}
	s.player.SetRealtime(realtime)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	runErr := s.player.Run(ctx, frameCount, hook)
	format, _ := runFrames.frameFormat()
	report := runReport{
		Engine:   s.engine.ID().String(),
		Backend:  s.backend.Name(),
		Format:   format.String(),
		Frames:   s.player.Frame(),
		Resets:   s.player.Resets(),
		State:    s.engine.State().String(),
		Duration: time.Since(start).Round(time.Millisecond),
		Stats:    s.engine.Stats(),
	}
	if runErr != nil && ctx.Err() == nil {
		report.Error = runErr.Error()
	}

	var out io.Writer = os.Stdout
	if reportPath != "" {
		f, err := os.Create(reportPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if report.Error != "" {
		return runErr
	}
	return nil
}
