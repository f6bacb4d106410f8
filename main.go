package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/dotmeter/internal/bridge"
	"github.com/olivier-w/dotmeter/internal/capture"
	"github.com/olivier-w/dotmeter/internal/config"
	"github.com/olivier-w/dotmeter/internal/render"
	"github.com/olivier-w/dotmeter/internal/ui"
	"github.com/olivier-w/dotmeter/internal/visualizer"
	"golang.org/x/sync/errgroup"
)

const banner = "⣿ Press return to quit ⣿"

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}

	if opts.listDevices {
		names, err := capture.ListDevices()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg, log); err != nil {
		closeLog()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the session logger. The full-screen interface owns the
// terminal, so without a log file its logs are discarded.
func newLogger(cfg config.Config) (*slog.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closeFn := func() {}

	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	case cfg.TUI:
		w = io.Discard
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel.Level()})
	return slog.New(handler), closeFn, nil
}

func openSource(cfg config.Config, events capture.EventHandler) (capture.Source, error) {
	if cfg.File != "" {
		return capture.OpenFile(cfg.File, capture.FileOptions{
			Play:         cfg.Play,
			PeriodFrames: cfg.PeriodFrames,
			Events:       events,
		})
	}
	return capture.OpenDevice(capture.DeviceOptions{
		Name:         cfg.Device,
		SampleRate:   cfg.SampleRate,
		PeriodFrames: cfg.PeriodFrames,
		Events:       events,
	})
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	vis, err := visualizer.New(cfg.Mode, cfg.VisualizerOptions())
	if err != nil {
		return err
	}

	src, err := openSource(cfg, capture.LogEvents{Log: log})
	if err != nil {
		return err
	}

	b := bridge.New[[]float32](cfg.Capacity)
	pool := bridge.PoolFor(b, capture.DefaultBlockSize)

	log.Info("starting",
		"source", src.Name(),
		"mode", vis.Name(),
		"capacity", b.Cap(),
		"interval", cfg.Interval)

	if cfg.TUI {
		err = runTUI(ctx, cfg, log, src, vis, b, pool)
	} else {
		err = runPlain(ctx, cfg, log, src, vis, b, pool)
	}

	if dropped := b.Dropped(); dropped > 0 {
		log.Warn("capture blocks dropped", "count", dropped)
	}
	return err
}

// session runs the render loop against src until quit is closed, the
// context is done, the source ends or the loop fails. The source is
// stopped before the bridge is closed so no block is sent afterwards, and
// the loop drains whatever is still queued. Only a loop failure cancels
// the loop itself.
func session(ctx context.Context, log *slog.Logger, src capture.Source, loop *render.Loop, b *bridge.Bridge[[]float32], pool *bridge.Pool, quit <-chan struct{}) error {
	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	g.Go(func() error { return loop.Run(gctx) })

	if err := src.Start(b, pool); err != nil {
		b.Close()
		g.Wait()
		return fmt.Errorf("starting %s: %w", src.Name(), err)
	}

	select {
	case <-quit:
	case <-ctx.Done():
		log.Info("interrupted", "source", src.Name())
	case <-gctx.Done():
	case <-src.Done():
		log.Info("source finished", "source", src.Name())
	}

	stopErr := src.Stop()
	b.Close()
	if err := g.Wait(); err != nil {
		return err
	}
	if stopErr != nil {
		return fmt.Errorf("stopping %s: %w", src.Name(), stopErr)
	}
	return nil
}

func runPlain(ctx context.Context, cfg config.Config, log *slog.Logger, src capture.Source, vis visualizer.Visualizer, b *bridge.Bridge[[]float32], pool *bridge.Pool) error {
	loop := render.NewLoop(b, pool, vis, render.NewTerminal(os.Stdout),
		render.WithInterval(cfg.Interval),
		render.WithLogger(log))

	fmt.Println(banner)
	err := session(ctx, log, src, loop, b, pool, waitForLine(os.Stdin))
	fmt.Println("\nthxbye!")
	return err
}

// waitForLine returns a channel closed when a line is read from r. At end
// of input it stays open, so a detached process runs until signalled.
func waitForLine(r io.Reader) <-chan struct{} {
	quit := make(chan struct{})
	go func() {
		if _, err := bufio.NewReader(r).ReadString('\n'); err == nil {
			close(quit)
		}
	}()
	return quit
}

func runTUI(ctx context.Context, cfg config.Config, log *slog.Logger, src capture.Source, vis visualizer.Visualizer, b *bridge.Bridge[[]float32], pool *bridge.Pool) error {
	program := tea.NewProgram(ui.New(src.Name(), vis.Name(), src.Done()),
		tea.WithAltScreen(),
		tea.WithContext(ctx))

	loop := render.NewLoop(b, pool, vis, ui.NewSink(program),
		render.WithInterval(cfg.Interval),
		render.WithLogger(log))

	quit := make(chan struct{})
	var sessionErr error
	sessionDone := make(chan struct{})
	go func() {
		defer close(sessionDone)
		sessionErr = session(ctx, log, src, loop, b, pool, quit)
		program.Quit()
	}()

	_, err := program.Run()
	close(quit)
	<-sessionDone

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return sessionErr
}
