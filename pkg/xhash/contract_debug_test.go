//go:build xhashdebug

package xhash

import "testing"

func TestContractViolationPanics(t *testing.T) {
	h := NewStringMap[int](WithFailureHook(func(string) {}))
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for an out-of-range iterator")
		}
	}()
	h.Value(h.End())
}
