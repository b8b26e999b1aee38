package xhash

import (
	"strconv"
	"testing"
)

func BenchmarkIntPut(b *testing.B) {
	h := NewIntMap[int]()
	for i := 0; i < b.N; i++ {
		it, _, _ := h.Put(uint32(i))
		h.SetValue(it, i)
	}
}

func BenchmarkIntGet(b *testing.B) {
	h := NewIntMap[int](WithPresize(1 << 16))
	for i := 0; i < 1<<16; i++ {
		h.Put(uint32(i))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Get(uint32(i & 0xffff))
	}
}

func BenchmarkStringPutDel(b *testing.B) {
	keys := make([]string, 1024)
	for i := range keys {
		keys[i] = "key-" + strconv.Itoa(i)
	}
	h := NewStringSet()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k := keys[i&1023]
		if it := h.Get(k); it != h.End() {
			h.Del(it)
		} else {
			h.Put(k)
		}
	}
}

func BenchmarkGoMap(b *testing.B) {
	m := make(map[uint32]int)
	for i := 0; i < b.N; i++ {
		m[uint32(i)] = i
	}
}
