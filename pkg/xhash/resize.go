package xhash

// Resize rehashes the table into roundUp(n) buckets (at least 4). The same
// bucket count is a valid request and drops every tombstone. Entries are moved
// in place by kicking each displaced key on to its own new bucket, so only the
// new flag array is allocated besides any key and value growth.
//
// Resize returns ErrTooSmall if a shrink request would leave the live entries
// above the load factor and ErrAlloc if the bucket cap forbids the request. In both cases the
// table is unchanged. Every iterator is invalidated on success.
func (t *Table[K, V]) Resize(n uint32) error {
	if n > t.maxBuckets {
		return ErrAlloc
	}
	n = max(roundUp(n), minBuckets)
	if n > t.maxBuckets {
		return ErrAlloc
	}
	if n < t.nBuckets && t.size >= upperBound(n) {
		return ErrTooSmall
	}

	newFlags := newFlags(n)
	if t.nBuckets < n {
		t.keys = grow(t.keys, n)
		if t.isMap {
			t.vals = grow(t.vals, n)
		}
	}
	t.rehash(newFlags, n)
	if t.nBuckets > n {
		t.keys = shrink(t.keys, n)
		if t.isMap {
			t.vals = shrink(t.vals, n)
		}
	}

	t.flags = newFlags
	t.nBuckets = n
	t.nOccupied = t.size
	t.upperBound = upperBound(n)
	return nil
}

func (t *Table[K, V]) rehash(newFlags []uint32, n uint32) {
	mask := n - 1
	old := t.nBuckets
	for j := uint32(0); j < old; j++ {
		if isEither(t.flags, j) {
			continue
		}
		key := t.keys[j]
		var val V
		if t.isMap {
			val = t.vals[j]
		}
		setDelTrue(t.flags, j)
		for {
			i := t.hash(key) & mask
			var step uint32
			for !isEmpty(newFlags, i) {
				step++
				i = (i + step) & mask
			}
			setEmptyFalse(newFlags, i)
			if i < old && !isEither(t.flags, i) {
				// bucket i still holds an entry that has not moved yet
				key, t.keys[i] = t.keys[i], key
				if t.isMap {
					val, t.vals[i] = t.vals[i], val
				}
				setDelTrue(t.flags, i)
				continue
			}
			t.keys[i] = key
			if t.isMap {
				t.vals[i] = val
			}
			break
		}
	}
	// slots left behind by the move hold stale copies
	for j := uint32(0); j < n && j < old; j++ {
		if isEmpty(newFlags, j) {
			var zk K
			t.keys[j] = zk
			t.clearValue(j)
		}
	}
}

// Trim shrinks the table to the smallest bucket count that holds the live
// entries under the load factor, dropping tombstones on the way. A table with
// no buckets is left alone.
func (t *Table[K, V]) Trim() error {
	if t.nBuckets == 0 {
		return nil
	}
	return t.Resize(min(bucketsFor(t.size), t.nBuckets))
}

func grow[T any](s []T, n uint32) []T {
	out := make([]T, n)
	copy(out, s)
	return out
}

func shrink[T any](s []T, n uint32) []T {
	out := make([]T, n)
	copy(out, s[:n])
	return out
}
