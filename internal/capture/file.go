package capture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/olivier-w/dotmeter/internal/bridge"
	"github.com/olivier-w/dotmeter/internal/media"
)

// DefaultPeriodFrames is the block length used when a file is not played
// back and has to be paced by a timer.
const DefaultPeriodFrames = 1024

// FileOptions configures a file source.
type FileOptions struct {
	// Play sends the audio to the default output device. Blocks are then
	// produced as the output pulls samples, so the display follows what is
	// heard. Without Play, blocks are paced by a timer at real-time speed.
	Play         bool
	PeriodFrames int
	Events       EventHandler
}

// File feeds a decoded audio file into the bridge at real-time speed.
type File struct {
	path  string
	title string
	dec   Decoder
	opts  FileOptions

	player *oto.Player
	tap    *tap

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	doneOnce sync.Once
	wg       sync.WaitGroup
}

// OpenFile opens path for decoding.
func OpenFile(path string, opts FileOptions) (*File, error) {
	dec, err := OpenDecoder(path)
	if err != nil {
		return nil, err
	}
	if opts.PeriodFrames <= 0 {
		opts.PeriodFrames = DefaultPeriodFrames
	}
	return newFile(path, media.Title(path), dec, opts), nil
}

func newFile(path, title string, dec Decoder, opts FileOptions) *File {
	return &File{
		path:  path,
		title: title,
		dec:   dec,
		opts:  opts,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

func (f *File) Name() string          { return f.title }
func (f *File) Done() <-chan struct{} { return f.done }

// Start begins decoding into b.
func (f *File) Start(b *bridge.Bridge[[]float32], pool *bridge.Pool) error {
	feed := feeder{bridge: b, pool: pool}
	if f.opts.Play {
		if err := f.startPlayback(feed); err != nil {
			return err
		}
	}

	notify(f.opts.Events, Event{
		Kind:       EventStarted,
		Source:     f.title,
		SampleRate: f.dec.SampleRate(),
		Channels:   f.dec.Channels(),
	})

	if !f.opts.Play {
		f.wg.Add(1)
		go f.pace(feed)
	}
	return nil
}

func (f *File) startPlayback(feed feeder) error {
	ctx, err := otoContext(f.dec.SampleRate(), f.dec.Channels())
	if err != nil {
		return err
	}
	f.tap = &tap{dec: f.dec, feed: feed}
	f.player = ctx.NewPlayer(f.tap)
	f.player.Play()

	f.wg.Add(1)
	go f.monitor()
	return nil
}

// monitor polls until playback drains or the source is stopped.
func (f *File) monitor() {
	defer f.wg.Done()
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-f.stop:
			return
		case <-ticker.C:
		}
		if f.tap.eof.Load() && !f.player.IsPlaying() {
			f.endOfStream(f.tap.err())
			return
		}
	}
}

// pace reads one period per tick, standing in for a capture callback.
func (f *File) pace(feed feeder) {
	defer f.wg.Done()

	rate := f.dec.SampleRate()
	channels := f.dec.Channels()
	frames := f.opts.PeriodFrames
	if rate <= 0 || channels <= 0 {
		f.endOfStream(fmt.Errorf("invalid stream format: %d Hz, %d channels", rate, channels))
		return
	}
	period := time.Duration(float64(frames) / float64(rate) * float64(time.Second))
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	buf := make([]float32, frames*channels)
	for {
		select {
		case <-f.stop:
			return
		case <-ticker.C:
		}
		n, err := f.dec.Read(buf)
		if n > 0 {
			feed.pushInterleaved(buf[:n], channels)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
			}
			f.endOfStream(err)
			return
		}
	}
}

func (f *File) endOfStream(err error) {
	e := Event{Kind: EventEndOfStream, Source: f.title}
	if err != nil {
		e.Message = err.Error()
	}
	notify(f.opts.Events, e)
	f.doneOnce.Do(func() { close(f.done) })
}

// Stop halts decoding and playback and closes the file.
func (f *File) Stop() error {
	var err error
	f.stopOnce.Do(func() {
		close(f.stop)
		if f.tap != nil {
			f.tap.halt()
		}
		if f.player != nil {
			f.player.Pause()
			if closeErr := f.player.Close(); closeErr != nil {
				err = fmt.Errorf("closing player: %w", closeErr)
			}
		}
		f.wg.Wait()
		if closeErr := f.dec.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", f.path, closeErr)
		}
		notify(f.opts.Events, Event{Kind: EventStopped, Source: f.title})
		f.doneOnce.Do(func() { close(f.done) })
	})
	return err
}

// tap is the reader oto pulls playback audio from. Every read is also
// downmixed and queued for display.
type tap struct {
	dec     Decoder
	feed    feeder
	mu      sync.Mutex
	halted  bool
	scratch []float32
	eof     atomic.Bool
	readErr error
}

func (t *tap) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.halted {
		return 0, io.EOF
	}

	channels := t.dec.Channels()
	want := len(p) / 4
	want -= want % channels
	if want == 0 {
		return 0, nil
	}
	if cap(t.scratch) < want {
		t.scratch = make([]float32, want)
	}

	n, err := t.dec.Read(t.scratch[:want])
	for i, s := range t.scratch[:n] {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	if n > 0 {
		t.feed.pushInterleaved(t.scratch[:n], channels)
	}
	if err != nil {
		if !errors.Is(err, io.EOF) {
			t.readErr = err
		}
		t.eof.Store(true)
	}
	return n * 4, err
}

// halt makes further reads return EOF without queuing anything.
func (t *tap) halt() {
	t.mu.Lock()
	t.halted = true
	t.mu.Unlock()
}

func (t *tap) err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readErr
}

var (
	otoCtx     *oto.Context
	otoOnce    sync.Once
	otoInitErr error
	otoFormat  [2]int
)

// otoContext returns the process-wide output context. oto allows a single
// context per process, so later files must share the first file's format.
func otoContext(sampleRate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatFloat32LE,
		}
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
		otoFormat = [2]int{sampleRate, channels}
	})
	if otoInitErr != nil {
		return nil, fmt.Errorf("initializing audio output: %w", otoInitErr)
	}
	if otoFormat != [2]int{sampleRate, channels} {
		return nil, fmt.Errorf("audio output already open at %d Hz, %d channels", otoFormat[0], otoFormat[1])
	}
	return otoCtx, nil
}
