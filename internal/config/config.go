// Package config loads settings for the present tools from a YAML file
// and PRESENT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/gogpu/present"
	"github.com/gogpu/present/backend"
)

// EnvPrefix is the prefix of environment overrides, as in PRESENT_BACKEND.
const EnvPrefix = "PRESENT"

// Config holds the settings shared by the present commands. Keys map to
// present.yaml entries and to PRESENT_* environment variables.
type Config struct {
	Backend            string `mapstructure:"backend"`
	BufferCount        int    `mapstructure:"buffer_count"`
	FallbackColor      string `mapstructure:"fallback_color"`
	LockableBackBuffer bool   `mapstructure:"lockable_back_buffer"`
	LogLevel           string `mapstructure:"log_level"`
}

// Default returns the settings used when neither a file nor the
// environment sets a key.
func Default() *Config {
	return &Config{
		BufferCount:   present.DefaultBufferCount,
		FallbackColor: "#000000",
		LogLevel:      "warn",
	}
}

// Load reads cfgFile, or present.yaml from the working directory when
// cfgFile is empty. A missing default file is not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("present")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// AutomaticEnv only resolves keys viper already knows about.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("backend", d.Backend)
	v.SetDefault("buffer_count", d.BufferCount)
	v.SetDefault("fallback_color", d.FallbackColor)
	v.SetDefault("lockable_back_buffer", d.LockableBackBuffer)
	v.SetDefault("log_level", d.LogLevel)
}

// Validate returns every invalid field joined into one error.
func (c *Config) Validate() error {
	var errs []error
	if c.BufferCount < 1 {
		errs = append(errs, fmt.Errorf("buffer_count %d must be at least 1", c.BufferCount))
	}
	if _, err := ParseColor(c.FallbackColor); err != nil {
		errs = append(errs, fmt.Errorf("fallback_color: %w", err))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.Backend != "" && !backend.IsRegistered(c.Backend) {
		errs = append(errs, fmt.Errorf("backend %q is not registered (available: %s)",
			c.Backend, strings.Join(backend.Available(), ", ")))
	}
	return errors.Join(errs...)
}

// Options converts the config to engine options. The config must be valid.
func (c *Config) Options(logger *slog.Logger) []present.Option {
	fill, _ := ParseColor(c.FallbackColor)
	opts := []present.Option{
		present.WithBufferCount(c.BufferCount),
		present.WithFallbackColor(fill),
		present.WithLockableBackBuffer(c.LockableBackBuffer),
	}
	if logger != nil {
		opts = append(opts, present.WithLogger(logger))
	}
	return opts
}

// Level returns the configured log level, or warn if it is invalid.
func (c *Config) Level() slog.Level {
	l, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return l
}

// OpenBackend initializes the configured backend, or the best available
// one when none is named.
func (c *Config) OpenBackend() (backend.Backend, error) {
	if c.Backend == "" {
		return backend.InitDefault()
	}
	b := backend.Get(c.Backend)
	if b == nil {
		return nil, fmt.Errorf("backend %q is not registered", c.Backend)
	}
	if err := b.Init(); err != nil {
		return nil, fmt.Errorf("init %s: %w", c.Backend, err)
	}
	return b, nil
}

// ParseColor parses "#rrggbb" or "rrggbb".
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("color %q is not #rrggbb", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q is not #rrggbb", s)
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
}

// ParseLevel accepts debug, info, warn, warning and error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown level %q", s)
}
