// Package buffers pools scratch byte buffers for the snapshot codecs.
package buffers

import (
	"bytes"
	"sync"
)

// DefaultMaxRetain is the largest buffer capacity a pool keeps. Bigger buffers
// are left to the garbage collector so one huge value does not pin memory.
const DefaultMaxRetain = 1 << 20

// BufferPool maintains a pool of bytes.Buffer to reduce GC pressure
type BufferPool struct {
	pool      sync.Pool
	maxRetain int
}

func NewBufferPool(maxRetain int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() any { return new(bytes.Buffer) },
		},
		maxRetain: maxRetain,
	}
}

// Get returns an empty buffer.
func (p *BufferPool) Get() *bytes.Buffer {
	b := p.pool.Get().(*bytes.Buffer)
	b.Reset()
	return b
}

// Put returns b to the pool. The caller must not use b afterwards.
func (p *BufferPool) Put(b *bytes.Buffer) {
	if b == nil || b.Cap() > p.maxRetain {
		return
	}
	p.pool.Put(b)
}

// ScratchPool is shared by the compression transforms.
var ScratchPool = NewBufferPool(DefaultMaxRetain)
