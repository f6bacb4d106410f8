package main

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/olivier-w/dotmeter/internal/config"
	"github.com/olivier-w/dotmeter/internal/media"
	"github.com/olivier-w/dotmeter/internal/visualizer"
)

// options holds the parsed command line.
type options struct {
	configPath  string
	listDevices bool

	// set records the flags given explicitly, so only those override the
	// config file.
	set map[string]bool

	mode         string
	cells        int
	interval     time.Duration
	hold         time.Duration
	fftSize      int
	transform    string
	capacity     int
	device       string
	sampleRate   int
	periodFrames int
	file         string
	play         bool
	tui          bool
	logLevel     string
	logFile      string

	// arg is the optional positional argument: an audio file when its
	// extension is decodable, a capture device name otherwise.
	arg string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	def := config.Default()

	fs := flag.NewFlagSet("dotmeter", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: dotmeter [flags] [device|file]\n\n")
		fmt.Fprintf(stderr, "Shows the level or spectrum of an audio input as a line of Braille dots.\n\n")
		fs.PrintDefaults()
	}

	fs.StringVar(&o.configPath, "config", "", "path to a YAML config file")
	fs.BoolVar(&o.listDevices, "list-devices", false, "list capture devices and exit")
	fs.StringVar(&o.mode, "mode", def.Mode, fmt.Sprintf("visualizer mode %v", visualizer.Modes()))
	fs.IntVar(&o.cells, "cells", def.Cells, "display width in glyphs (0 uses the mode default)")
	fs.DurationVar(&o.interval, "interval", def.Interval, "minimum time between frames")
	fs.DurationVar(&o.hold, "hold", def.Hold, "peak hold time")
	fs.IntVar(&o.fftSize, "fft", def.FFTSize, "spectrum transform size (power of two)")
	fs.StringVar(&o.transform, "transform", def.Transform, "spectrum transform: go-dsp or radix2")
	fs.IntVar(&o.capacity, "capacity", def.Capacity, "capture queue capacity in blocks")
	fs.StringVar(&o.device, "device", def.Device, "capture device name (substring match)")
	fs.IntVar(&o.sampleRate, "rate", def.SampleRate, "capture sample rate (0 uses the device default)")
	fs.IntVar(&o.periodFrames, "period", def.PeriodFrames, "capture period in frames (0 uses the backend default)")
	fs.StringVar(&o.file, "file", def.File, "visualize an audio file instead of a capture device ("+media.SupportedExtsList()+")")
	fs.BoolVar(&o.play, "play", def.Play, "play the file while visualizing it")
	fs.BoolVar(&o.tui, "tui", def.TUI, "full-screen interface")
	fs.StringVar(&o.logLevel, "log-level", string(def.LogLevel), "log level: debug, info, warn, error")
	fs.StringVar(&o.logFile, "log-file", def.LogFile, "write logs to this file instead of stderr")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 1 {
		return options{}, fmt.Errorf("expected at most one argument, got %d", fs.NArg())
	}
	o.arg = fs.Arg(0)

	o.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

// apply overlays the explicitly given flags on cfg.
func (o options) apply(cfg config.Config) config.Config {
	if o.set["mode"] {
		cfg.Mode = o.mode
	}
	if o.set["cells"] {
		cfg.Cells = o.cells
	}
	if o.set["interval"] {
		cfg.Interval = o.interval
	}
	if o.set["hold"] {
		cfg.Hold = o.hold
	}
	if o.set["fft"] {
		cfg.FFTSize = o.fftSize
	}
	if o.set["transform"] {
		cfg.Transform = o.transform
	}
	if o.set["capacity"] {
		cfg.Capacity = o.capacity
	}
	if o.set["device"] {
		cfg.Device = o.device
	}
	if o.set["rate"] {
		cfg.SampleRate = o.sampleRate
	}
	if o.set["period"] {
		cfg.PeriodFrames = o.periodFrames
	}
	if o.set["file"] {
		cfg.File = o.file
	}
	if o.set["play"] {
		cfg.Play = o.play
	}
	if o.set["tui"] {
		cfg.TUI = o.tui
	}
	if o.set["log-level"] {
		cfg.LogLevel = config.LogLevel(o.logLevel)
	}
	if o.set["log-file"] {
		cfg.LogFile = o.logFile
	}

	if o.arg != "" {
		if media.IsSupportedExt(filepath.Ext(o.arg)) {
			cfg.File = o.arg
			cfg.Device = ""
		} else {
			cfg.Device = o.arg
			cfg.File = ""
		}
	}
	return cfg
}

// loadConfig resolves the session settings from the config file and flags.
func loadConfig(o options) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		cfg, err = config.Load(o.configPath)
		if err != nil {
			return config.Config{}, err
		}
	}
	cfg = o.apply(cfg)
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
