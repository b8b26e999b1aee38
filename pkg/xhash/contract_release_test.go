//go:build !xhashdebug

package xhash

import (
	"strings"
	"testing"
)

func TestContractViolationsReported(t *testing.T) {
	var msgs []string
	hook := WithFailureHook(func(msg string) { msgs = append(msgs, msg) })

	s := NewStringSet(hook)
	it, _, _ := s.Put("x")
	s.Value(it)
	s.SetValue(it, struct{}{})
	if p := s.ValuePtr(it); p != nil {
		t.Error("ValuePtr on a set should return nil")
	}
	if len(msgs) != 3 || !strings.Contains(msgs[0], "set") {
		t.Fatalf("expected 3 set violations, got %q", msgs)
	}

	msgs = nil
	m := NewStringMap[int](hook)
	m.Put("y")
	if k := m.Key(m.End()); k != "" {
		t.Errorf("Key(End()) = %q, want zero", k)
	}
	m.Del(m.End() + 5)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 range violations, got %q", msgs)
	}
	if m.Size() != 1 {
		t.Error("violations must not change the table")
	}
}
