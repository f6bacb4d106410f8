// Package capture provides the audio inputs that feed the render bridge:
// a live capture device and a decoded media file.
package capture

import (
	"encoding/binary"
	"math"

	"github.com/olivier-w/dotmeter/internal/bridge"
)

// Source produces mono sample blocks into a bridge.
type Source interface {
	// Start begins producing blocks taken from pool into b.
	Start(b *bridge.Bridge[[]float32], pool *bridge.Pool) error
	// Stop halts production. No block is sent once Stop returns.
	Stop() error
	// Done is closed when the source ends on its own.
	Done() <-chan struct{}
	// Name describes the source for logs and headers.
	Name() string
}

// DefaultBlockSize bounds the number of frames carried by one block.
const DefaultBlockSize = 4096

// feeder copies audio into pool blocks and queues them. It never blocks
// and never allocates, so it is safe to call from an audio callback.
type feeder struct {
	bridge *bridge.Bridge[[]float32]
	pool   *bridge.Pool
}

// pushFloat32LE queues mono little-endian float32 samples.
func (f feeder) pushFloat32LE(p []byte) {
	frames := len(p) / 4
	for off := 0; off < frames; {
		blk, ok := f.pool.Get()
		if !ok {
			return
		}
		n := min(frames-off, len(blk))
		for i := range n {
			blk[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[(off+i)*4:]))
		}
		f.send(blk[:n])
		off += n
	}
}

// pushInterleaved downmixes interleaved frames to mono and queues them.
func (f feeder) pushInterleaved(samples []float32, channels int) {
	if channels < 1 {
		return
	}
	frames := len(samples) / channels
	for off := 0; off < frames; {
		blk, ok := f.pool.Get()
		if !ok {
			return
		}
		n := min(frames-off, len(blk))
		for i := range n {
			frame := samples[(off+i)*channels : (off+i+1)*channels]
			var sum float32
			for _, s := range frame {
				sum += s
			}
			blk[i] = sum / float32(channels)
		}
		f.send(blk[:n])
		off += n
	}
}

func (f feeder) send(blk []float32) {
	if !f.bridge.TrySend(blk) {
		f.pool.Put(blk)
	}
}
