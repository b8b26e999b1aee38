package buffers

import "testing"

func TestGetIsEmpty(t *testing.T) {
	p := NewBufferPool(64)
	b := p.Get()
	b.WriteString("leftover")
	p.Put(b)
	if got := p.Get(); got.Len() != 0 {
		t.Errorf("expected empty buffer, got %q", got.String())
	}
}

func TestPutDropsLargeBuffers(t *testing.T) {
	p := NewBufferPool(16)
	b := p.Get()
	b.Grow(1024)
	p.Put(b) // dropped, must not panic
	p.Put(nil)
	if p.Get() == nil {
		t.Fatal("Get returned nil")
	}
}
