package visualizer

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func meterGlyphs(t *testing.T, line string, cells int) []rune {
	t.Helper()
	runes := []rune(line)
	if len(runes) < cells {
		t.Fatalf("line %q shorter than %d cells", line, cells)
	}
	return runes[:cells]
}

func TestPeakMeterSilentFrame(t *testing.T) {
	m := NewPeakMeter(DefaultMeterCells, 0)
	line, ok := m.Frame(time.Unix(0, 0))
	if !ok {
		t.Fatal("expected peak meter to always draw")
	}
	if !strings.HasSuffix(line, " -inf dB   ") {
		t.Fatalf("expected -inf readout, got %q", line)
	}
	glyphs := meterGlyphs(t, line, DefaultMeterCells)
	for i, r := range glyphs {
		// Only the reference ticks on row 0 may be lit.
		if mask := r - brailleBase; mask&^(1<<0|1<<3) != 0 {
			t.Fatalf("cell %d lit beyond the tick row: %U", i, r)
		}
	}
	if m.Held() != 0 {
		t.Fatalf("expected no held marker, got %d", m.Held())
	}
}

func TestPeakMeterDrawsTickMarks(t *testing.T) {
	m := NewPeakMeter(DefaultMeterCells, 0)
	line, _ := m.Frame(time.Unix(0, 0))
	glyphs := meterGlyphs(t, line, DefaultMeterCells)
	width := DefaultMeterCells * 2
	for _, mark := range meterMarks {
		x := IECScale(mark, width) - 1
		mask := glyphs[x/2] - brailleBase
		if mask&(1<<brailleBits[x%2][0]) == 0 {
			t.Fatalf("expected tick for %v dB at column %d", mark, x)
		}
	}
}

func TestPeakMeterBarAndReadout(t *testing.T) {
	m := NewPeakMeter(DefaultMeterCells, 0)
	m.Update([]float32{0.05, -0.5})
	m.Update([]float32{0.1})
	line, _ := m.Frame(time.Unix(0, 0))
	if !strings.HasSuffix(line, " -6 dB   ") {
		t.Fatalf("expected -6 dB readout, got %q", line)
	}

	size := IECScale(amplitudeToDB(0.5), DefaultMeterCells*2)
	if m.Held() != size {
		t.Fatalf("expected held %d, got %d", size, m.Held())
	}
	glyphs := meterGlyphs(t, line, DefaultMeterCells)
	for x := range size {
		mask := glyphs[x/2] - brailleBase
		if mask&(1<<brailleBits[x%2][2]) == 0 || mask&(1<<brailleBits[x%2][3]) == 0 {
			t.Fatalf("expected bar dots at column %d", x)
		}
	}
	for x := size; x < DefaultMeterCells*2; x++ {
		mask := glyphs[x/2] - brailleBase
		if mask&(1<<brailleBits[x%2][3]) != 0 {
			t.Fatalf("unexpected bar dot at column %d", x)
		}
	}
	marker := glyphs[(size-1)/2] - brailleBase
	if marker&(1<<brailleBits[(size-1)%2][1]) == 0 {
		t.Fatal("expected hold marker on row 1")
	}
}

func TestPeakMeterResetsPeakEachFrame(t *testing.T) {
	start := time.Unix(0, 0)
	m := NewPeakMeter(10, 100*time.Millisecond)
	m.Update([]float32{1})
	m.Frame(start)
	if m.Level() != 0 {
		t.Fatalf("expected 0 dB, got %v", m.Level())
	}
	m.Frame(start.Add(50 * time.Millisecond))
	if m.Level() > -1000 {
		t.Fatalf("expected silence after reset, got %v", m.Level())
	}
	if m.Held() != 20 {
		t.Fatalf("expected marker held at full scale, got %d", m.Held())
	}
	m.Frame(start.Add(200 * time.Millisecond))
	if m.Held() != 0 {
		t.Fatalf("expected marker to fall after hold, got %d", m.Held())
	}
}

func TestPeakMeterFullScaleStaysInBounds(t *testing.T) {
	m := NewPeakMeter(4, 0)
	m.Update([]float32{3})
	line, _ := m.Frame(time.Unix(0, 0))
	glyphs := meterGlyphs(t, line, 4)
	// Everything but row 1 of the second to last dot column, which only
	// the hold marker in the last column could light.
	if glyphs[3] != 0x28FD {
		t.Fatalf("expected last cell lit by bar, ticks and marker, got %U", glyphs[3])
	}
	if utf8.RuneCountInString(line) != 4+len(" 10 dB   ") {
		t.Fatalf("unexpected line %q", line)
	}
}

func TestFormatDB(t *testing.T) {
	tests := map[float64]string{
		-0.2:  "0",
		-6.02: "-6",
		3.5:   "4",
	}
	for in, want := range tests {
		if got := formatDB(in); got != want {
			t.Fatalf("formatDB(%v) = %q, want %q", in, got, want)
		}
	}
}
