package visualizer

import (
	"fmt"
	"time"
)

// Visualizer accumulates sample blocks and renders them as one line of
// Braille glyphs.
type Visualizer interface {
	Name() string
	// Update merges a block of mono samples into the visualizer state.
	Update(samples []float32)
	// Frame builds the next output line. It returns false when there is
	// nothing to draw yet.
	Frame(now time.Time) (string, bool)
}

// Mode names accepted by New.
const (
	ModePeak     = "peak"
	ModeSpectrum = "spectrum"
)

// Options configures a visualizer built by New. Zero values pick the
// defaults of the selected mode.
type Options struct {
	Cells     int
	Hold      time.Duration
	FFTSize   int
	Transform string
}

// New returns the visualizer for mode.
func New(mode string, opts Options) (Visualizer, error) {
	switch mode {
	case ModePeak, "":
		cells := opts.Cells
		if cells <= 0 {
			cells = DefaultMeterCells
		}
		return NewPeakMeter(cells, opts.Hold), nil
	case ModeSpectrum:
		cells := opts.Cells
		if cells <= 0 {
			cells = DefaultSpectrumCells
		}
		size := opts.FFTSize
		if size <= 0 {
			size = DefaultFFTSize
		}
		tr, err := NewTransform(opts.Transform, size, false)
		if err != nil {
			return nil, err
		}
		return NewSpectrum(cells, tr), nil
	default:
		return nil, fmt.Errorf("unknown mode %q (supported: %s, %s)", mode, ModePeak, ModeSpectrum)
	}
}

// Modes returns the supported mode names.
func Modes() []string {
	return []string{ModePeak, ModeSpectrum}
}
