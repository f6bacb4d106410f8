package visualizer

import "math"

// fft performs an in-place radix-2 Cooley-Tukey transform on x.
// len(x) must be a power of 2. inverse selects the sign of the exponent;
// no 1/N scaling is applied in either direction.
func fft(x []complex128, inverse bool) {
	n := len(x)
	if n <= 1 {
		return
	}

	// Bit-reversal permutation
	j := 0
	for i := 1; i < n; i++ {
		bit := n >> 1
		for j&bit != 0 {
			j ^= bit
			bit >>= 1
		}
		j ^= bit
		if i < j {
			x[i], x[j] = x[j], x[i]
		}
	}

	sign := -1.0
	if inverse {
		sign = 1.0
	}

	// Butterfly operations
	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		angleStep := sign * 2.0 * math.Pi / float64(size)
		for i := 0; i < n; i += size {
			for k := range half {
				angle := angleStep * float64(k)
				w := complex(math.Cos(angle), math.Sin(angle))
				a := i + k
				b := a + half
				t := w * x[b]
				x[b] = x[a] - t
				x[a] += t
			}
		}
	}
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
