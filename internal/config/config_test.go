package config

import (
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/present"
	"github.com/gogpu/present/backend"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "present.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, Default())
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
backend: software
buffer_count: 5
fallback_color: "#102030"
lockable_back_buffer: true
log_level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Config{
		Backend:            "software",
		BufferCount:        5,
		FallbackColor:      "#102030",
		LockableBackBuffer: true,
		LogLevel:           "debug",
	}
	if *cfg != want {
		t.Errorf("Load() = %+v, want %+v", *cfg, want)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level() = %v", cfg.Level())
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "buffer_count: 5\n")
	t.Setenv("PRESENT_BUFFER_COUNT", "2")
	t.Setenv("PRESENT_LOCKABLE_BACK_BUFFER", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BufferCount != 2 || !cfg.LockableBackBuffer {
		t.Errorf("Load() = %+v, want env values", *cfg)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() of a missing explicit file should fail")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "buffer_count: 0\nlog_level: loud\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() error = nil")
	}
	for _, field := range []string{"buffer_count", "log_level"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not mention %s", err, field)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero buffers", func(c *Config) { c.BufferCount = 0 }, "buffer_count"},
		{"bad color", func(c *Config) { c.FallbackColor = "red" }, "fallback_color"},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
		{"unknown backend", func(c *Config) { c.Backend = "vulkan9" }, "backend"},
		{"software backend", func(c *Config) { c.Backend = "software" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.edit(cfg)
			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.field)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"#000000", color.RGBA{A: 0xff}, true},
		{"#ff8000", color.RGBA{R: 0xff, G: 0x80, A: 0xff}, true},
		{"10a0FF", color.RGBA{R: 0x10, G: 0xa0, B: 0xff, A: 0xff}, true},
		{"#fff", color.RGBA{}, false},
		{"#gggggg", color.RGBA{}, false},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseColor(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		if got, err := ParseLevel(in); err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("ParseLevel(verbose) error = nil")
	}
}

func TestOptionsConfigureEngine(t *testing.T) {
	cfg := Default()
	cfg.BufferCount = 2
	cfg.FallbackColor = "#00ff00"

	sb := backend.NewSoftwareBackend()
	if err := sb.Init(); err != nil {
		t.Fatal(err)
	}
	e, err := present.New(sb, cfg.Options(nil)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	w := backend.NewSoftwareWindow(8, 8)
	if err := e.SetOutputWindow(w); err != nil {
		t.Fatal(err)
	}
	e.SetDestinationRect(w.ClientRect())
	q, err := e.CreateFrameSamples(&present.FrameFormat{Width: 4, Height: 4, Format: present.PixelFormatXRGB32})
	if err != nil {
		t.Fatalf("CreateFrameSamples() error = %v", err)
	}
	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}

	// No frame yet: Present paints the fallback color.
	if err := e.Present(nil, 0); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	if got := w.At(3, 3); got != (color.RGBA{G: 0xff, A: 0xff}) {
		t.Errorf("fallback pixel = %v, want green", got)
	}
}

func TestOpenBackend(t *testing.T) {
	cfg := Default()
	cfg.Backend = "software"
	b, err := cfg.OpenBackend()
	if err != nil {
		t.Fatalf("OpenBackend() error = %v", err)
	}
	defer b.Close()
	if b.Name() != "software" {
		t.Errorf("Name() = %q", b.Name())
	}

	cfg.Backend = "missing"
	if _, err := cfg.OpenBackend(); err == nil {
		t.Error("OpenBackend() of an unregistered backend should fail")
	}
}
