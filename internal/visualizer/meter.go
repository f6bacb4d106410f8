package visualizer

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultMeterCells is the peak meter width in glyphs.
const DefaultMeterCells = 68

// Reference marks drawn on the top row of the peak meter, in dB.
var meterMarks = []float64{0, -5, -10, -15, -20, -25, -30, -35, -40, -50, -60}

// PeakMeter renders a peak programme meter with peak hold. The bar follows
// the loudest sample seen since the previous frame.
type PeakMeter struct {
	canvas *Canvas
	hold   *PeakHold
	peak   float64
	level  float64 // dB of the last frame
	sb     strings.Builder
}

// NewPeakMeter creates a meter of the given number of cells. A hold of zero
// uses DefaultHold.
func NewPeakMeter(cells int, hold time.Duration) *PeakMeter {
	return &PeakMeter{
		canvas: NewCanvas(cells),
		hold:   NewPeakHold(hold, time.Time{}),
		level:  math.Inf(-1),
	}
}

func (m *PeakMeter) Name() string { return "peak meter" }

// Update folds the block's absolute peak into the running peak.
func (m *PeakMeter) Update(samples []float32) {
	for _, s := range samples {
		if a := math.Abs(float64(s)); a > m.peak {
			m.peak = a
		}
	}
}

// Frame draws the current peak and starts a new measurement period.
func (m *PeakMeter) Frame(now time.Time) (string, bool) {
	m.level = amplitudeToDB(m.peak)
	width := m.canvas.Width()

	m.canvas.Reset()
	for _, mark := range meterMarks {
		if x := IECScale(mark, width); x > 0 {
			m.canvas.Set(x-1, 0)
		}
	}

	size := IECScale(m.level, width)
	held := m.hold.Update(size, now)

	for x := range size {
		m.canvas.Set(x, 2)
		m.canvas.Set(x, 3)
	}
	if held > 0 {
		for y := 1; y < canvasRows; y++ {
			m.canvas.Set(held-1, y)
		}
	}

	m.peak = 0

	m.sb.Reset()
	m.canvas.writeTo(&m.sb)
	m.sb.WriteByte(' ')
	m.sb.WriteString(formatDB(m.level))
	m.sb.WriteString(" dB   ")
	return m.sb.String(), true
}

// Level returns the dB value of the last frame.
func (m *PeakMeter) Level() float64 { return m.level }

// Held returns the held marker position in dot columns.
func (m *PeakMeter) Held() int { return m.hold.Position() }

// formatDB rounds a level for the numeric readout.
func formatDB(db float64) string {
	switch {
	case math.IsNaN(db), math.IsInf(db, -1):
		return "-inf"
	case math.IsInf(db, 1):
		return "inf"
	}
	r := math.Round(db)
	if r == 0 {
		r = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(r, 'f', 0, 64)
}
