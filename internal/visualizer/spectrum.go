package visualizer

import (
	"math"
	"math/cmplx"
	"strings"
	"time"
)

// DefaultSpectrumCells is the spectrum width in glyphs.
const DefaultSpectrumCells = 78

// Bin magnitude thresholds in dB; a bin lights one more row for each
// threshold it reaches.
var spectrumThresholds = [canvasRows]float64{-40, -30, -20, -10}

// Spectrum renders the magnitude of the lowest transform bins, one bin per
// dot column, with four discrete heights.
type Spectrum struct {
	canvas    *Canvas
	transform Transform
	window    *Window
	samples   []float32
	signal    []complex128
	bins      []complex128
	sb        strings.Builder
}

// NewSpectrum creates a spectrum of the given number of cells fed through t.
func NewSpectrum(cells int, t Transform) *Spectrum {
	n := t.Size()
	return &Spectrum{
		canvas:    NewCanvas(cells),
		transform: t,
		window:    NewWindow(n),
		samples:   make([]float32, n),
		signal:    make([]complex128, n),
		bins:      make([]complex128, n),
	}
}

func (s *Spectrum) Name() string { return "spectrum" }

// Update appends samples to the analysis window.
func (s *Spectrum) Update(samples []float32) {
	s.window.Write(samples)
}

// Frame transforms the current window. It draws nothing until the window
// has filled up once.
func (s *Spectrum) Frame(time.Time) (string, bool) {
	if !s.window.Full() {
		return "", false
	}

	n := s.window.CopyTo(s.samples)
	for i := range n {
		s.signal[i] = complex(float64(s.samples[i]), 0)
	}
	s.transform.Process(s.signal, s.bins)

	s.canvas.Reset()
	cols := min(s.canvas.Width(), len(s.bins))
	for x := range cols {
		height := binHeight(s.bins[x], n)
		for y := range height {
			s.canvas.Set(x, canvasRows-1-y)
		}
	}

	s.sb.Reset()
	s.canvas.writeTo(&s.sb)
	return s.sb.String(), true
}

// binHeight quantizes a bin of an n-point transform to 0..4 rows.
func binHeight(bin complex128, n int) int {
	mag := amplitudeToDB(2 * cmplx.Abs(bin) / float64(n))
	if math.IsNaN(mag) {
		return 0
	}
	height := 0
	for _, threshold := range spectrumThresholds {
		if mag < threshold {
			break
		}
		height++
	}
	return height
}
