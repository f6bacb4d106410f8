package visualizer

import "math"

// IECScale maps a level in dB onto [0, width] following the IEC 60268-18
// style meter curve: compressed below -40 dB, expanded towards 0 dB.
// Levels below -70 dB and NaN map to 0; levels at or above 0 dB map to width.
func IECScale(db float64, width int) int {
	if width <= 0 || math.IsNaN(db) {
		return 0
	}

	var deflection float64
	switch {
	case db < -70:
		deflection = 0
	case db < -60:
		deflection = (db + 70) * 0.25
	case db < -50:
		deflection = (db+60)*0.5 + 2.5
	case db < -40:
		deflection = (db+50)*0.75 + 7.5
	case db < -30:
		deflection = (db+40)*1.5 + 15
	case db < -20:
		deflection = (db+30)*2.0 + 30
	case db < 0:
		deflection = (db+20)*2.5 + 50
	default:
		deflection = 100
	}

	pos := int(deflection / 100 * float64(width))
	if pos > width {
		pos = width
	}
	return pos
}

// amplitudeToDB converts a linear amplitude to dB. Zero gives -Inf, which
// IECScale treats as silence.
func amplitudeToDB(v float64) float64 {
	return 20 * math.Log10(v)
}
