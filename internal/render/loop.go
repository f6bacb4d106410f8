// Package render drives a visualizer from a bridge of sample blocks and
// writes throttled frames to a sink.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/olivier-w/dotmeter/internal/bridge"
	"github.com/olivier-w/dotmeter/internal/visualizer"
)

// Loop is the consumer side of the capture pipeline.
type Loop struct {
	bridge   *bridge.Bridge[[]float32]
	pool     *bridge.Pool
	vis      visualizer.Visualizer
	sink     Sink
	throttle *Throttle
	now      func() time.Time
	log      *slog.Logger

	frames int
	blocks int
}

// Option customises a Loop.
type Option func(*Loop)

// WithInterval sets the minimum time between frames.
func WithInterval(d time.Duration) Option {
	return func(l *Loop) { l.throttle.interval = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) {
		l.now = now
		l.throttle.last = now()
	}
}

// WithLogger sets the logger used for sink errors and the exit summary.
func WithLogger(log *slog.Logger) Option {
	return func(l *Loop) { l.log = log }
}

// NewLoop creates a render loop. pool may be nil when blocks do not come
// from a Pool.
func NewLoop(b *bridge.Bridge[[]float32], pool *bridge.Pool, vis visualizer.Visualizer, sink Sink, opts ...Option) *Loop {
	l := &Loop{
		bridge:   b,
		pool:     pool,
		vis:      vis,
		sink:     sink,
		throttle: NewThrottle(DefaultInterval, time.Now()),
		now:      time.Now,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.throttle.interval <= 0 {
		l.throttle.interval = DefaultInterval
	}
	return l
}

// Run consumes blocks until the bridge reaches end of stream or ctx is
// done. Frames are only drawn when a block arrives and the throttle
// interval has passed, so an idle input produces no output.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		l.log.Debug("render loop stopped",
			"visualizer", l.vis.Name(),
			"blocks", l.blocks,
			"frames", l.frames,
			"dropped", l.bridge.Dropped())
	}()

	for {
		blk, ok := l.bridge.Recv(ctx)
		if !ok {
			return nil
		}
		l.blocks++
		l.vis.Update(blk)
		if l.pool != nil {
			l.pool.Put(blk)
		}

		now := l.now()
		if !l.throttle.Due(now) {
			continue
		}
		line, ok := l.vis.Frame(now)
		if !ok {
			continue
		}
		if err := l.sink.WriteLine(line); err != nil {
			return fmt.Errorf("writing frame: %w", err)
		}
		l.frames++
		l.throttle.Mark(now)
	}
}

// Frames returns the number of frames written.
func (l *Loop) Frames() int { return l.frames }

// Blocks returns the number of blocks consumed.
func (l *Loop) Blocks() int { return l.blocks }
