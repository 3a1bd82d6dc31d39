// Package bufpool provides tiered byte-slice pools to keep the frame
// codec's scratch allocations (decompression chunks, payload staging)
// off the GC's hot path.
package bufpool

import "sync"

// DefaultSize is the size of the pool used for typical frame payloads.
const DefaultSize = 64 * 1024

// Pool is a size-class buffer pool.
type Pool struct {
	pool sync.Pool
}

// NewPool creates a pool whose buffers are all of the given size.
func NewPool(size int) *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() interface{} {
				buf := make([]byte, size)
				return &buf
			},
		},
	}
}

// Get returns a buffer sized for this pool's class.
func (p *Pool) Get() []byte {
	bufPtr := p.pool.Get().(*[]byte)
	return *bufPtr
}

// Put returns a buffer to the pool, zeroing it first since frame
// payloads may carry packet data from another connection's session.
func (p *Pool) Put(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	p.pool.Put(&buf)
}

var (
	// SmallPool serves small control frames (4 KiB).
	SmallPool = NewPool(4 * 1024)
	// MediumPool serves typical packets (16 KiB).
	MediumPool = NewPool(16 * 1024)
	// LargePool serves large frames, matching the default ring buffer (64 KiB).
	LargePool = NewPool(DefaultSize)
	// HugePool serves oversized frames such as chunk data (128 KiB).
	HugePool = NewPool(128 * 1024)
)

// Get returns a buffer of exactly size bytes, backed by the smallest
// pool able to satisfy it.
func Get(size int) []byte {
	switch {
	case size <= 4*1024:
		return SmallPool.Get()[:size]
	case size <= 16*1024:
		return MediumPool.Get()[:size]
	case size <= 64*1024:
		return LargePool.Get()[:size]
	default:
		if size > 128*1024 {
			return make([]byte, size)
		}
		return HugePool.Get()[:size]
	}
}

// Put returns buf to the pool matching its capacity.
func Put(buf []byte) {
	c := cap(buf)
	switch {
	case c <= 4*1024:
		SmallPool.Put(buf[:c])
	case c <= 16*1024:
		MediumPool.Put(buf[:c])
	case c <= 64*1024:
		LargePool.Put(buf[:c])
	default:
		HugePool.Put(buf[:c])
	}
}
