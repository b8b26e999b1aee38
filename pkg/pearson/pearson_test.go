package pearson

import (
	"testing"
)

func TestTableIsPermutation(t *testing.T) {
	var seen [256]bool
	for _, v := range table {
		if seen[v] {
			t.Fatalf("value %d appears twice in table", v)
		}
		seen[v] = true
	}
}

func TestHashEmpty(t *testing.T) {
	if h := Hash([]byte{}); h != 0 {
		t.Errorf("Expected hash of empty slice to be 0, got %d", h)
	}
	if h := Hash32(nil); h != 0 {
		t.Errorf("Expected Hash32 of empty slice to be 0, got %d", h)
	}
	if h := Hash64(nil); h != 0 {
		t.Errorf("Expected Hash64 of empty slice to be 0, got %d", h)
	}
}

func TestHashConsistency(t *testing.T) {
	data := []byte("The quick brown fox jumps over the lazy dog")
	if h1, h2 := Hash(data), Hash(data); h1 != h2 {
		t.Errorf("Hash is inconsistent: %d vs %d", h1, h2)
	}
	if h1, h2 := Hash32(data), String32(string(data)); h1 != h2 {
		t.Errorf("Hash32 and String32 disagree: %x vs %x", h1, h2)
	}
}

func TestHash64LanesMatchHash32(t *testing.T) {
	data := []byte("Pearson hashing in Go!")
	h64 := Hash64(data)
	if h64 == 0 {
		t.Fatalf("Expected non-zero 64-bit hash, got %d", h64)
	}
	if uint32(h64>>32) != Hash32(data) {
		t.Errorf("first four lanes of Hash64 (%x) should equal Hash32 (%x)", h64>>32, Hash32(data))
	}
	if uint8(h64>>56) != Hash(data) {
		t.Errorf("lane 0 of Hash64 should equal Hash")
	}
}

func TestString32Spread(t *testing.T) {
	seen := make(map[uint32]struct{})
	for i := 0; i < 1000; i++ {
		seen[String32("foo_"+string(rune('a'+i%26))+string(rune('A'+i/26)))] = struct{}{}
	}
	if len(seen) < 900 {
		t.Errorf("too many collisions: %d distinct hashes for 1000 keys", len(seen))
	}
}
