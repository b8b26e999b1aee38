package fn

import "testing"

func TestT(t *testing.T) {
	if got := T(true, "a", "b"); got != "a" {
		t.Errorf("T(true) = %q, want a", got)
	}
	if got := T(false, 1, 2); got != 2 {
		t.Errorf("T(false) = %d, want 2", got)
	}
}

func TestOr(t *testing.T) {
	if got := Or("", "", "zstd", "gzip"); got != "zstd" {
		t.Errorf("Or = %q, want zstd", got)
	}
	if got := Or(0, 0); got != 0 {
		t.Errorf("Or of zeros = %d, want 0", got)
	}
}
