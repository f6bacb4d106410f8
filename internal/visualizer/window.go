package visualizer

// Window keeps the most recent samples of a stream in a fixed-size circular
// buffer. It is owned by a single goroutine.
type Window struct {
	buf  []float32
	size int
	w    int // write position
	len  int // current fill level
}

// NewWindow creates a window holding size samples.
func NewWindow(size int) *Window {
	return &Window{
		buf:  make([]float32, size),
		size: size,
	}
}

// Write appends samples, discarding the oldest once the window is full.
func (w *Window) Write(p []float32) {
	if w.size == 0 {
		return
	}
	if len(p) > w.size {
		p = p[len(p)-w.size:]
	}
	for _, s := range p {
		w.buf[w.w] = s
		w.w = (w.w + 1) % w.size
	}
	w.len += len(p)
	if w.len > w.size {
		w.len = w.size
	}
}

// Full reports whether the window holds size samples.
func (w *Window) Full() bool { return w.size > 0 && w.len == w.size }

// Len returns the number of samples held.
func (w *Window) Len() int { return w.len }

// Size returns the window capacity.
func (w *Window) Size() int { return w.size }

// CopyTo writes the held samples into dst oldest first and returns the
// number copied.
func (w *Window) CopyTo(dst []float32) int {
	if w.size == 0 {
		return 0
	}
	n := min(len(dst), w.len)
	start := (w.w - w.len + w.size) % w.size
	for i := range n {
		dst[i] = w.buf[(start+i)%w.size]
	}
	return n
}

// Reset empties the window.
func (w *Window) Reset() {
	w.w = 0
	w.len = 0
}
