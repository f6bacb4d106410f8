// Package config holds the settings of a visualizer session.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/olivier-w/dotmeter/internal/bridge"
	"github.com/olivier-w/dotmeter/internal/render"
	"github.com/olivier-w/dotmeter/internal/visualizer"
	"gopkg.in/yaml.v3"
)

// LogLevel is a slog level name.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l names a known level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level converts l to a slog level, defaulting to warn.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogInfo:
		return slog.LevelInfo
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Config describes one visualizer session.
type Config struct {
	// Mode is "peak" or "spectrum".
	Mode string `yaml:"mode"`
	// Cells is the display width in glyphs; 0 uses the mode default.
	Cells     int           `yaml:"cells"`
	Interval  time.Duration `yaml:"interval"`
	Hold      time.Duration `yaml:"hold"`
	FFTSize   int           `yaml:"fft_size"`
	Transform string        `yaml:"transform"`
	Capacity  int           `yaml:"capacity"`

	// Device selects a capture device by name; File replaces the capture
	// device with a decoded audio file.
	Device       string `yaml:"device"`
	SampleRate   int    `yaml:"sample_rate"`
	PeriodFrames int    `yaml:"period_frames"`
	File         string `yaml:"file"`
	Play         bool   `yaml:"play"`

	TUI      bool     `yaml:"tui"`
	LogLevel LogLevel `yaml:"log_level"`
	LogFile  string   `yaml:"log_file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Mode:      visualizer.ModePeak,
		Interval:  render.DefaultInterval,
		Hold:      visualizer.DefaultHold,
		FFTSize:   visualizer.DefaultFFTSize,
		Transform: visualizer.TransformGoDSP,
		Capacity:  bridge.DefaultCapacity,
		LogLevel:  LogWarn,
	}
}

// Load reads the YAML file at path over the defaults and validates it.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over the defaults and validates it.
func LoadFromReader(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate returns every problem found in cfg, joined.
func Validate(cfg Config) error {
	var errs []error

	if !slices.Contains(visualizer.Modes(), cfg.Mode) {
		errs = append(errs, fmt.Errorf("mode %q is invalid; valid values: %v", cfg.Mode, visualizer.Modes()))
	}
	if cfg.Cells < 0 {
		errs = append(errs, fmt.Errorf("cells must not be negative, got %d", cfg.Cells))
	}
	if cfg.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %v", cfg.Interval))
	}
	if cfg.Hold <= 0 {
		errs = append(errs, fmt.Errorf("hold must be positive, got %v", cfg.Hold))
	}
	if cfg.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("capacity must be positive, got %d", cfg.Capacity))
	}
	if cfg.Mode == visualizer.ModeSpectrum {
		if _, err := visualizer.NewTransform(cfg.Transform, cfg.FFTSize, false); err != nil {
			errs = append(errs, err)
		}
	}
	if cfg.SampleRate < 0 {
		errs = append(errs, fmt.Errorf("sample_rate must not be negative, got %d", cfg.SampleRate))
	}
	if cfg.PeriodFrames < 0 {
		errs = append(errs, fmt.Errorf("period_frames must not be negative, got %d", cfg.PeriodFrames))
	}
	if cfg.File != "" && cfg.Device != "" {
		errs = append(errs, errors.New("device and file are mutually exclusive"))
	}
	if cfg.Play && cfg.File == "" {
		errs = append(errs, errors.New("play requires file"))
	}
	if !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	return errors.Join(errs...)
}

// VisualizerOptions returns the options for visualizer.New.
func (c Config) VisualizerOptions() visualizer.Options {
	return visualizer.Options{
		Cells:     c.Cells,
		Hold:      c.Hold,
		FFTSize:   c.FFTSize,
		Transform: c.Transform,
	}
}
