package bridge

// Pool is a fixed set of preallocated sample blocks. The producer takes a
// block with Get, fills it and sends it; the consumer hands it back with Put.
// Neither side allocates once the pool is built.
type Pool struct {
	free      chan []float32
	blockSize int
}

// NewPool allocates count blocks of blockSize samples each.
func NewPool(count, blockSize int) *Pool {
	p := &Pool{
		free:      make(chan []float32, count),
		blockSize: blockSize,
	}
	for range count {
		p.free <- make([]float32, blockSize)
	}
	return p
}

// PoolFor sizes a pool for a bridge of the given capacity: one block per
// queue slot, one in the consumer's hands and one being filled.
func PoolFor[T any](b *Bridge[T], blockSize int) *Pool {
	return NewPool(b.Cap()+2, blockSize)
}

// Get returns a full-length block, or false when every block is in use.
func (p *Pool) Get() ([]float32, bool) {
	select {
	case blk := <-p.free:
		return blk[:cap(blk)], true
	default:
		return nil, false
	}
}

// Put returns a block to the pool. Blocks that did not come from the pool
// or would overflow it are discarded.
func (p *Pool) Put(blk []float32) {
	if cap(blk) != p.blockSize {
		return
	}
	select {
	case p.free <- blk[:cap(blk)]:
	default:
	}
}

// Available returns the number of free blocks.
func (p *Pool) Available() int { return len(p.free) }
