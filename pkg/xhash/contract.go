package xhash

import "fmt"

// violate reports a broken caller contract through the failure hook. Builds
// tagged xhashdebug panic afterwards; release builds carry on and the caller
// gets a zero result.
func (t *Table[K, V]) violate(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	var hook FailureFunc
	if t != nil {
		hook = t.onFailure
	}
	if hook == nil {
		hook = defaultFailure
	}
	hook(msg)
	if contractChecks {
		panic("xhash: " + msg)
	}
}
