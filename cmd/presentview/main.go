// Command presentview shows the present engine's output in a desktop
// window.
//
// Keys: S saves the last presented frame as a BMP file, C copies it to the
// clipboard, L simulates a lost device and Esc quits.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gogpu/present"
	"github.com/gogpu/present/backend"
	"github.com/gogpu/present/internal/config"
	"github.com/gogpu/present/internal/playback"
)

var (
	cfgFile string
	width   int
	height  int
	format  string
	fps     int
	outDir  string
)

var rootCmd = &cobra.Command{
	Use:          "presentview",
	Short:        "Show the present test pattern in a window",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return view()
	},
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is ./present.yaml)")
	rootCmd.Flags().IntVar(&width, "width", 640, "frame width")
	rootCmd.Flags().IntVar(&height, "height", 360, "frame height")
	rootCmd.Flags().StringVar(&format, "format", "XRGB32", "frame pixel format")
	rootCmd.Flags().IntVar(&fps, "fps", 30, "frames per second")
	rootCmd.Flags().StringVar(&outDir, "out", ".", "directory for saved snapshots")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "presentview:", err)
		os.Exit(1)
	}
}

func view() error {
	envErr := godotenv.Load()
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	present.SetLogger(logger)
	if envErr != nil && !os.IsNotExist(envErr) {
		logger.Warn("could not load .env", "error", envErr)
	}

	pf, err := backend.ParseFormat(format)
	if err != nil {
		return err
	}
	ff := present.FrameFormat{Width: width, Height: height, Format: pf}
	if err := ff.Validate(); err != nil {
		return err
	}
	if fps < 1 {
		return fmt.Errorf("--fps %d must be at least 1", fps)
	}

	b, err := cfg.OpenBackend()
	if err != nil {
		return err
	}
	e, err := present.New(b, cfg.Options(logger)...)
	if err != nil {
		return err
	}
	defer e.Close()

	win := backend.NewSoftwareWindow(width, height)
	if err := e.SetOutputWindow(win); err != nil {
		return err
	}
	if err := e.SetDestinationRect(win.ClientRect()); err != nil {
		return err
	}
	p, err := playback.New(e, ff, time.Second/time.Duration(fps), logger)
	if err != nil {
		return err
	}

	v := newViewer(e, b, p, win, logger)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("presentview - " + ff.String())
	ebiten.SetWindowResizable(true)
	ebiten.SetTPS(fps)
	return ebiten.RunGame(v)
}
