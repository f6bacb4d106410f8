package visualizer

import (
	"testing"
	"time"
)

func TestPeakHoldRisesImmediatelyAndFallsAfterHold(t *testing.T) {
	start := time.Unix(1000, 0)
	width := 136
	h := NewPeakHold(1600*time.Millisecond, start)

	p1 := IECScale(amplitudeToDB(0.1), width)
	p2 := IECScale(amplitudeToDB(0.9), width)
	p3 := IECScale(amplitudeToDB(0.2), width)

	if got := h.Update(p1, start); got != p1 {
		t.Fatalf("tick 1: expected held %d, got %d", p1, got)
	}
	if got := h.Update(p2, start.Add(50*time.Millisecond)); got != p2 {
		t.Fatalf("tick 2: expected held to rise to %d, got %d", p2, got)
	}
	if got := h.Update(p3, start.Add(1000*time.Millisecond)); got != p2 {
		t.Fatalf("within hold: expected held %d, got %d", p2, got)
	}
	if got := h.Update(p3, start.Add(1700*time.Millisecond)); got != p3 {
		t.Fatalf("tick 3: expected held to fall to %d, got %d", p3, got)
	}
}

func TestPeakHoldFollowsBarAfterExpiry(t *testing.T) {
	start := time.Unix(1000, 0)
	h := NewPeakHold(time.Second, start)
	h.Update(100, start)
	h.Update(40, start.Add(2*time.Second))
	if got := h.Update(20, start.Add(2100*time.Millisecond)); got != 20 {
		t.Fatalf("expected held to follow the bar after expiry, got %d", got)
	}
	if got := h.Update(30, start.Add(2200*time.Millisecond)); got != 30 {
		t.Fatalf("expected rise to 30, got %d", got)
	}
	if got := h.Update(10, start.Add(2300*time.Millisecond)); got != 30 {
		t.Fatalf("expected fresh hold at 30, got %d", got)
	}
}

func TestNewPeakHoldDefaultsHold(t *testing.T) {
	h := NewPeakHold(0, time.Time{})
	if h.hold != DefaultHold {
		t.Fatalf("expected default hold %v, got %v", DefaultHold, h.hold)
	}
}
