package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/olivier-w/dotmeter/internal/bridge"
	"github.com/olivier-w/dotmeter/internal/config"
	"github.com/olivier-w/dotmeter/internal/render"
	"github.com/olivier-w/dotmeter/internal/visualizer"
)

func TestParseFlagsOnlyOverridesGivenFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-mode", "spectrum", "-cells", "40"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}

	base := config.Default()
	base.Hold = 3 * time.Second
	base.Device = "USB"

	cfg := opts.apply(base)
	if cfg.Mode != visualizer.ModeSpectrum || cfg.Cells != 40 {
		t.Fatalf("expected flags to apply, got mode=%q cells=%d", cfg.Mode, cfg.Cells)
	}
	if cfg.Hold != 3*time.Second || cfg.Device != "USB" {
		t.Fatalf("expected file values to survive, got hold=%v device=%q", cfg.Hold, cfg.Device)
	}
}

func TestPositionalArgument(t *testing.T) {
	tests := []struct {
		arg        string
		wantFile   string
		wantDevice string
	}{
		{arg: "song.MP3", wantFile: "song.MP3"},
		{arg: "track.flac", wantFile: "track.flac"},
		{arg: "Scarlett 2i2", wantDevice: "Scarlett 2i2"},
	}
	for _, tt := range tests {
		opts, err := parseFlags([]string{tt.arg}, io.Discard)
		if err != nil {
			t.Fatalf("parseFlags(%q): %v", tt.arg, err)
		}
		cfg := opts.apply(config.Default())
		if cfg.File != tt.wantFile || cfg.Device != tt.wantDevice {
			t.Fatalf("%q: got file=%q device=%q", tt.arg, cfg.File, cfg.Device)
		}
	}
}

func TestParseFlagsRejectsExtraArguments(t *testing.T) {
	if _, err := parseFlags([]string{"a", "b"}, io.Discard); err == nil {
		t.Fatal("expected error for two arguments")
	}
}

func TestLoadConfigValidates(t *testing.T) {
	opts, err := parseFlags([]string{"-mode", "waveform"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if _, err := loadConfig(opts); err == nil || !strings.Contains(err.Error(), "waveform") {
		t.Fatalf("expected invalid mode error, got %v", err)
	}
}

func TestWaitForLine(t *testing.T) {
	select {
	case <-waitForLine(strings.NewReader("\n")):
	case <-time.After(time.Second):
		t.Fatal("expected quit after a line")
	}

	select {
	case <-waitForLine(strings.NewReader("")):
		t.Fatal("expected end of input to keep running")
	case <-time.After(20 * time.Millisecond):
	}
}

// blockSource sends a fixed number of full-scale blocks and then reports
// that it finished, unless open is set.
type blockSource struct {
	blocks  int
	open    bool
	done    chan struct{}
	wg      sync.WaitGroup
	stopped bool
}

func (s *blockSource) Start(b *bridge.Bridge[[]float32], pool *bridge.Pool) error {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for i := 0; i < s.blocks; i++ {
			blk, ok := pool.Get()
			if !ok {
				continue
			}
			blk = blk[:4]
			for j := range blk {
				blk[j] = 1
			}
			if !b.TrySend(blk) {
				pool.Put(blk)
			}
		}
		if !s.open {
			close(s.done)
		}
	}()
	return nil
}

func (s *blockSource) Stop() error {
	s.wg.Wait()
	s.stopped = true
	return nil
}

func (s *blockSource) Done() <-chan struct{} { return s.done }
func (s *blockSource) Name() string          { return "test" }

func TestSessionDrainsSourceUntilDone(t *testing.T) {
	b := bridge.New[[]float32](8)
	pool := bridge.PoolFor(b, 16)
	vis, err := visualizer.New(visualizer.ModePeak, visualizer.Options{Cells: 4})
	if err != nil {
		t.Fatalf("visualizer.New: %v", err)
	}

	var mu sync.Mutex
	var lines []string
	sink := render.SinkFunc(func(line string) error {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, line)
		return nil
	})
	start := time.Unix(0, 0)
	loop := render.NewLoop(b, pool, vis, sink,
		render.WithInterval(time.Nanosecond),
		render.WithClock(func() time.Time {
			start = start.Add(time.Millisecond)
			return start
		}))

	src := &blockSource{blocks: 5, done: make(chan struct{})}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := session(context.Background(), log, src, loop, b, pool, nil); err != nil {
		t.Fatalf("session: %v", err)
	}

	if !src.stopped {
		t.Fatal("expected source to be stopped")
	}
	if loop.Blocks()+int(b.Dropped()) != 5 {
		t.Fatalf("expected 5 blocks delivered or dropped, got %d delivered %d dropped", loop.Blocks(), b.Dropped())
	}
	mu.Lock()
	defer mu.Unlock()
	if len(lines) == 0 {
		t.Fatal("expected at least one frame")
	}
	if !strings.Contains(lines[0], " 0 dB") {
		t.Fatalf("expected full-scale readout, got %q", lines[0])
	}
}

func TestSessionInterruptDrainsQueuedBlocks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	for i := range 50 {
		b := bridge.New[[]float32](8)
		pool := bridge.PoolFor(b, 16)
		vis, err := visualizer.New(visualizer.ModePeak, visualizer.Options{Cells: 4})
		if err != nil {
			t.Fatalf("visualizer.New: %v", err)
		}
		loop := render.NewLoop(b, pool, vis, render.SinkFunc(func(string) error { return nil }))

		src := &blockSource{blocks: 5, open: true, done: make(chan struct{})}
		if err := session(ctx, log, src, loop, b, pool, nil); err != nil {
			t.Fatalf("session: %v", err)
		}
		if !src.stopped {
			t.Fatal("expected source to be stopped on interrupt")
		}
		if got := loop.Blocks() + int(b.Dropped()); got != 5 {
			t.Fatalf("run %d: expected 5 blocks delivered or dropped, got %d delivered %d dropped", i, loop.Blocks(), b.Dropped())
		}
	}
}
