// Package xhash implements a generic open-addressing hash table with lazy
// tombstone deletion and an in-place rehash.
//
// A Table is parameterized by its key and value types plus a hash function and
// an equality predicate fixed at construction. Buckets are addressed through
// iterators, which are plain bucket indices: Get and Put return one, End marks
// "absent", and Key/Value/SetValue/Del operate on one. An iterator stays valid
// across Del but not across any operation that changes the bucket count.
//
//	t := xhash.NewStringMap[int]()
//	it, st, err := t.Put("apples")
//	if err != nil {
//		return err
//	}
//	if st != xhash.Present {
//		t.SetValue(it, 0)
//	}
//	*t.ValuePtr(it) += 3
//	if it := t.Get("pears"); it == t.End() {
//		// absent
//	}
//
// Each bucket carries a 2-bit state (empty, deleted) packed sixteen to a 32-bit
// word. Deletion only flips the deleted bit; the slot stays part of every probe
// chain running through it and is reused by a later Put on the same chain.
// Tombstones are purged when the table rehashes, which Put triggers once live
// plus deleted buckets reach 77% of capacity.
//
// Tables do no locking. Concurrent use of one table must be serialized by the
// caller.
package xhash
