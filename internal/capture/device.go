package capture

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/olivier-w/dotmeter/internal/bridge"
)

// DeviceOptions configures a capture device. Zero values let the backend
// choose.
type DeviceOptions struct {
	// Name selects the first capture device whose name contains it,
	// case-insensitively. Empty selects the system default.
	Name         string
	SampleRate   int
	PeriodFrames int
	Events       EventHandler
}

// Device captures mono float32 audio from a system input via miniaudio.
type Device struct {
	opts     DeviceOptions
	ctx      *malgo.AllocatedContext
	device   *malgo.Device
	info     *malgo.DeviceInfo
	done     chan struct{}
	doneOnce sync.Once
	mu       sync.Mutex
	stopping bool
}

// OpenDevice initialises the audio backend and resolves the input device.
func OpenDevice(opts DeviceOptions) (*Device, error) {
	d := &Device{opts: opts, done: make(chan struct{})}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		notify(opts.Events, Event{
			Kind:    EventBackendLog,
			Source:  "device",
			Message: strings.TrimSpace(message),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("initializing audio backend: %w", err)
	}
	d.ctx = ctx

	if opts.Name != "" {
		info, err := findDevice(ctx, opts.Name)
		if err != nil {
			d.freeContext()
			return nil, err
		}
		d.info = info
	}
	return d, nil
}

func findDevice(ctx *malgo.AllocatedContext, name string) (*malgo.DeviceInfo, error) {
	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("listing capture devices: %w", err)
	}
	want := strings.ToLower(name)
	for i := range infos {
		if strings.Contains(strings.ToLower(infos[i].Name()), want) {
			return &infos[i], nil
		}
	}
	return nil, fmt.Errorf("no capture device matching %q", name)
}

// ListDevices returns the names of the available capture devices.
func ListDevices() ([]string, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing audio backend: %w", err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("listing capture devices: %w", err)
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		if info.IsDefault != 0 {
			name += " (default)"
		}
		names = append(names, name)
	}
	return names, nil
}

func (d *Device) Name() string {
	if d.info != nil {
		return d.info.Name()
	}
	return "default input"
}

func (d *Device) Done() <-chan struct{} { return d.done }

// Start opens the device and begins streaming into b. The data callback
// only copies samples into pool blocks and hands them to the bridge.
func (d *Device) Start(b *bridge.Bridge[[]float32], pool *bridge.Pool) error {
	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatF32
	cfg.Capture.Channels = 1
	cfg.Alsa.NoMMap = 1
	if d.opts.SampleRate > 0 {
		cfg.SampleRate = uint32(d.opts.SampleRate)
	}
	if d.opts.PeriodFrames > 0 {
		cfg.PeriodSizeInFrames = uint32(d.opts.PeriodFrames)
	}
	if d.info != nil {
		cfg.Capture.DeviceID = d.info.ID.Pointer()
	}

	feed := feeder{bridge: b, pool: pool}
	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			feed.pushFloat32LE(input)
		},
		Stop: d.onStop,
	}

	device, err := malgo.InitDevice(d.ctx.Context, cfg, callbacks)
	if err != nil {
		return fmt.Errorf("initializing capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("starting capture device: %w", err)
	}

	d.mu.Lock()
	d.device = device
	d.mu.Unlock()

	rate := int(device.SampleRate())
	notify(d.opts.Events, Event{
		Kind:       EventStarted,
		Source:     d.Name(),
		SampleRate: rate,
		Channels:   1,
	})
	if e, changed := formatChange(d.Name(), d.opts.SampleRate, rate); changed {
		notify(d.opts.Events, e)
	}
	return nil
}

// formatChange reports the backend settling on a different sample rate
// than the one requested.
func formatChange(source string, requested, actual int) (Event, bool) {
	if requested <= 0 || requested == actual {
		return Event{}, false
	}
	return Event{
		Kind:       EventFormat,
		Source:     source,
		Message:    fmt.Sprintf("requested %d Hz", requested),
		SampleRate: actual,
		Channels:   1,
	}, true
}

// onStop runs when the backend stops the device, either because Stop was
// called or because the device went away.
func (d *Device) onStop() {
	d.mu.Lock()
	stopping := d.stopping
	d.mu.Unlock()
	if stopping {
		return
	}
	if notify(d.opts.Events, Event{Kind: EventShutdown, Source: d.Name(), Message: "device stopped"}) == Quit {
		d.finish()
	}
}

func (d *Device) finish() {
	d.doneOnce.Do(func() { close(d.done) })
}

// Stop stops the device and releases the backend.
func (d *Device) Stop() error {
	d.mu.Lock()
	d.stopping = true
	device := d.device
	d.device = nil
	d.mu.Unlock()

	var err error
	if device != nil {
		if stopErr := device.Stop(); stopErr != nil {
			err = fmt.Errorf("stopping capture device: %w", stopErr)
		}
		device.Uninit()
		notify(d.opts.Events, Event{Kind: EventStopped, Source: d.Name()})
	}
	d.freeContext()
	d.finish()
	return err
}

func (d *Device) freeContext() {
	if d.ctx == nil {
		return
	}
	_ = d.ctx.Uninit()
	d.ctx.Free()
	d.ctx = nil
}
