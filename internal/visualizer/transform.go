package visualizer

import (
	"fmt"

	dspfft "github.com/mjibson/go-dsp/fft"
)

// DefaultFFTSize is the spectrum transform length.
const DefaultFFTSize = 4096

// Transform names accepted by NewTransform.
const (
	TransformGoDSP  = "go-dsp"
	TransformRadix2 = "radix2"
)

// Transform is a fixed-size discrete Fourier transform.
type Transform interface {
	Size() int
	// Process transforms signal into spectrum. Both must be Size() long;
	// signal may be modified.
	Process(signal, spectrum []complex128)
}

// NewTransform returns the named transform of the given size. An empty name
// selects go-dsp.
func NewTransform(name string, size int, inverse bool) (Transform, error) {
	if size <= 0 {
		return nil, fmt.Errorf("transform size must be positive, got %d", size)
	}
	switch name {
	case TransformGoDSP, "":
		return &dspTransform{size: size, inverse: inverse}, nil
	case TransformRadix2:
		if !isPowerOfTwo(size) {
			return nil, fmt.Errorf("radix2 transform size must be a power of 2, got %d", size)
		}
		return &radix2Transform{size: size, inverse: inverse}, nil
	default:
		return nil, fmt.Errorf("unknown transform %q (supported: %s, %s)", name, TransformGoDSP, TransformRadix2)
	}
}

type dspTransform struct {
	size    int
	inverse bool
}

func (t *dspTransform) Size() int { return t.size }

func (t *dspTransform) Process(signal, spectrum []complex128) {
	var out []complex128
	if t.inverse {
		out = dspfft.IFFT(signal)
		// go-dsp scales its inverse by 1/N, radix2 does not.
		for i := range out {
			out[i] *= complex(float64(t.size), 0)
		}
	} else {
		out = dspfft.FFT(signal)
	}
	copy(spectrum, out)
}

type radix2Transform struct {
	size    int
	inverse bool
}

func (t *radix2Transform) Size() int { return t.size }

func (t *radix2Transform) Process(signal, spectrum []complex128) {
	copy(spectrum, signal)
	fft(spectrum[:t.size], t.inverse)
}
