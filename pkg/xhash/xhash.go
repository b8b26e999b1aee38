package xhash

import (
	"errors"
	"fmt"
	"iter"
)

var (
	// ErrAlloc is returned when a resize would exceed the bucket limit. The
	// table is left as it was.
	ErrAlloc = errors.New("xhash: bucket allocation refused")
	// ErrTooSmall is returned by Resize when the requested bucket count cannot
	// hold the live entries under the load factor. The table is left as it was.
	ErrTooSmall = errors.New("xhash: requested bucket count too small")
	// ErrFull is returned by Put if a probe cycle finds neither the key nor a
	// free bucket. The load factor bound makes this unreachable in a table that
	// has not been corrupted.
	ErrFull = errors.New("xhash: probe cycle exhausted")
)

// Iter is a bucket index. Valid iterators are in [0, BucketCount()); End()
// equals BucketCount().
type Iter uint32

// Status tells how Put resolved the key.
type Status int

const (
	// Failed means the table could not make room; see the returned error.
	Failed Status = -1
	// Present means the key was already live. Its value is untouched.
	Present Status = 0
	// Inserted means the key went into a never-used bucket.
	Inserted Status = 1
	// Reclaimed means the key went into a tombstoned bucket.
	Reclaimed Status = 2
)

func (s Status) String() string {
	switch s {
	case Failed:
		return "failed"
	case Present:
		return "present"
	case Inserted:
		return "inserted"
	case Reclaimed:
		return "reclaimed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Table is an open-addressing hash table. Create one with New, NewMap, NewSet
// or one of the typed constructors. A nil *Table reads as an empty table with
// no buckets; Put, Resize and the value setters need a real one.
type Table[K, V any] struct {
	nBuckets   uint32
	size       uint32
	nOccupied  uint32 // live plus deleted
	upperBound uint32
	flags      []uint32
	keys       []K
	vals       []V // nil for sets

	hash       HashFunc[K]
	equal      EqualFunc[K]
	isMap      bool
	maxBuckets uint32
	onFailure  FailureFunc
}

// New returns an empty map from K to V. No buckets are allocated until the
// first Put unless WithPresize is given.
func New[K, V any](hash HashFunc[K], equal EqualFunc[K], options ...func(*Config)) *Table[K, V] {
	return newTable[K, V](hash, equal, true, options)
}

// NewMap is New with == as the equality predicate.
func NewMap[K comparable, V any](hash HashFunc[K], options ...func(*Config)) *Table[K, V] {
	return New[K, V](hash, Equal[K], options...)
}

// NewSet returns an empty set of K. Sets keep no value array; value accessors
// report a contract violation.
func NewSet[K any](hash HashFunc[K], equal EqualFunc[K], options ...func(*Config)) *Table[K, struct{}] {
	return newTable[K, struct{}](hash, equal, false, options)
}

// NewStringMap returns a string-keyed map using the X31 hash.
func NewStringMap[V any](options ...func(*Config)) *Table[string, V] {
	return NewMap[string, V](StringHash, options...)
}

// NewStringSet returns a string set using the X31 hash.
func NewStringSet(options ...func(*Config)) *Table[string, struct{}] {
	return NewSet[string](StringHash, Equal[string], options...)
}

// NewIntMap returns a uint32-keyed map using the identity hash.
func NewIntMap[V any](options ...func(*Config)) *Table[uint32, V] {
	return NewMap[uint32, V](Int32Hash, options...)
}

// NewInt64Map returns a uint64-keyed map.
func NewInt64Map[V any](options ...func(*Config)) *Table[uint64, V] {
	return NewMap[uint64, V](Int64Hash, options...)
}

func newTable[K, V any](hash HashFunc[K], equal EqualFunc[K], isMap bool, options []func(*Config)) *Table[K, V] {
	var cfg Config
	for _, opt := range options {
		opt(&cfg)
	}
	t := &Table[K, V]{
		hash:       hash,
		equal:      equal,
		isMap:      isMap,
		maxBuckets: normalizeMax(cfg.MaxBuckets),
		onFailure:  cfg.OnFailure,
	}
	if t.onFailure == nil {
		t.onFailure = defaultFailure
	}
	if cfg.SizeHint > 0 {
		n := min(bucketsFor(uint32(min(cfg.SizeHint, maxBucketLimit))), t.maxBuckets)
		if err := t.Resize(n); err != nil {
			t.violate("presize to %d entries: %v", cfg.SizeHint, err)
		}
	}
	return t
}

// Destroy releases the bucket arrays. The table is empty afterwards and may be
// reused. Keys and values referenced from the arrays are not touched. Destroy
// is safe on a nil table and may be called more than once.
func (t *Table[K, V]) Destroy() {
	if t == nil {
		return
	}
	t.flags, t.keys, t.vals = nil, nil, nil
	t.nBuckets, t.size, t.nOccupied, t.upperBound = 0, 0, 0, 0
}

// Clear marks every bucket empty without changing the bucket count.
func (t *Table[K, V]) Clear() {
	if t == nil || t.flags == nil {
		return
	}
	for i := range t.flags {
		t.flags[i] = allEmpty
	}
	clear(t.keys)
	clear(t.vals)
	t.size, t.nOccupied = 0, 0
}

// Get returns the bucket holding key, or End() if key is absent.
func (t *Table[K, V]) Get(key K) Iter {
	if t == nil || t.nBuckets == 0 {
		return 0
	}
	mask := t.nBuckets - 1
	i := t.hash(key) & mask
	last := i
	var step uint32
	for !isEmpty(t.flags, i) && (isDel(t.flags, i) || !t.equal(t.keys[i], key)) {
		step++
		i = (i + step) & mask
		if i == last {
			return Iter(t.nBuckets)
		}
	}
	if isEither(t.flags, i) {
		return Iter(t.nBuckets)
	}
	return Iter(i)
}

// Found reports whether key is live in the table.
func (t *Table[K, V]) Found(key K) bool {
	return t.Get(key) != t.End()
}

// Put inserts key if it is absent and returns its bucket. When the key was
// already live the status is Present and the stored key and value are left
// alone; otherwise the value slot is zeroed and the caller assigns it.
//
// Put may resize the table first, which invalidates every iterator. On failure
// it returns End(), Failed and the resize error, with the table unchanged.
func (t *Table[K, V]) Put(key K) (Iter, Status, error) {
	if t.nOccupied >= t.upperBound {
		var err error
		if t.nBuckets > t.size<<1 {
			err = t.Resize(t.nBuckets - 1) // same size, drops tombstones
		} else {
			err = t.Resize(t.nBuckets + 1)
		}
		if err != nil {
			return t.End(), Failed, err
		}
	}

	mask := t.nBuckets - 1
	site, x := t.nBuckets, t.nBuckets
	i := t.hash(key) & mask
	if isEmpty(t.flags, i) {
		x = i
	} else {
		last := i
		var step uint32
		for !isEmpty(t.flags, i) && (isDel(t.flags, i) || !t.equal(t.keys[i], key)) {
			if site == t.nBuckets && isDel(t.flags, i) {
				site = i
			}
			step++
			i = (i + step) & mask
			if i == last {
				if site == t.nBuckets {
					return t.End(), Failed, ErrFull
				}
				x = site
				break
			}
		}
		if x == t.nBuckets {
			if isEmpty(t.flags, i) && site != t.nBuckets {
				x = site
			} else {
				x = i
			}
		}
	}

	switch {
	case isEmpty(t.flags, x):
		t.keys[x] = key
		t.clearValue(x)
		setBothFalse(t.flags, x)
		t.size++
		t.nOccupied++
		return Iter(x), Inserted, nil
	case isDel(t.flags, x):
		t.keys[x] = key
		t.clearValue(x)
		setBothFalse(t.flags, x)
		t.size++
		return Iter(x), Reclaimed, nil
	}
	return Iter(x), Present, nil
}

func (t *Table[K, V]) clearValue(x uint32) {
	if t.isMap {
		var zero V
		t.vals[x] = zero
	}
}

// Del tombstones the bucket at it if it holds a live entry. Del(End()) and
// deleting an empty or already deleted bucket are no-ops.
func (t *Table[K, V]) Del(it Iter) {
	x := uint32(it)
	if x > t.buckets() {
		t.violate("Del: iterator %d out of range [0,%d]", x, t.buckets())
		return
	}
	if t == nil || x == t.nBuckets || isEither(t.flags, x) {
		return
	}
	setDelTrue(t.flags, x)
	var zk K
	t.keys[x] = zk
	t.clearValue(x)
	t.size--
}

// Size returns the number of live entries.
func (t *Table[K, V]) Size() int {
	if t == nil {
		return 0
	}
	return int(t.size)
}

// BucketCount returns the capacity, always zero or a power of two >= 4.
func (t *Table[K, V]) BucketCount() int {
	if t == nil {
		return 0
	}
	return int(t.nBuckets)
}

// Occupied returns live plus tombstoned buckets.
func (t *Table[K, V]) Occupied() int {
	if t == nil {
		return 0
	}
	return int(t.nOccupied)
}

// UpperBound returns the Occupied value at which the next Put resizes.
func (t *Table[K, V]) UpperBound() int {
	if t == nil {
		return 0
	}
	return int(t.upperBound)
}

// Begin returns the first bucket index; use with Exists to walk buckets.
func (t *Table[K, V]) Begin() Iter { return 0 }

// End returns the past-the-end iterator, which also signals "absent".
func (t *Table[K, V]) End() Iter {
	if t == nil {
		return 0
	}
	return Iter(t.nBuckets)
}

// Exists reports whether the bucket at it holds a live entry.
func (t *Table[K, V]) Exists(it Iter) bool {
	x := uint32(it)
	return t != nil && x < t.nBuckets && !isEither(t.flags, x)
}

func (t *Table[K, V]) check(op string, it Iter, value bool) bool {
	if t == nil {
		t.violate("%s: iterator %d on a nil table", op, uint32(it))
		return false
	}
	if value && !t.isMap {
		t.violate("%s: value access on a set", op)
		return false
	}
	if uint32(it) >= t.nBuckets {
		t.violate("%s: iterator %d out of range [0,%d)", op, uint32(it), t.nBuckets)
		return false
	}
	return true
}

// Key returns the key stored at it.
func (t *Table[K, V]) Key(it Iter) K {
	if !t.check("Key", it, false) {
		var zero K
		return zero
	}
	return t.keys[it]
}

// Value returns the value stored at it.
func (t *Table[K, V]) Value(it Iter) V {
	if !t.check("Value", it, true) {
		var zero V
		return zero
	}
	return t.vals[it]
}

// SetValue stores v at it.
func (t *Table[K, V]) SetValue(it Iter, v V) {
	if t.check("SetValue", it, true) {
		t.vals[it] = v
	}
}

// ValuePtr returns a pointer to the value slot at it, valid until the next
// resize. It returns nil on a contract violation.
func (t *Table[K, V]) ValuePtr(it Iter) *V {
	if !t.check("ValuePtr", it, true) {
		return nil
	}
	return &t.vals[it]
}

// All yields every live key and value in bucket order. The table must not be
// modified during the walk, except for Del of the current entry.
func (t *Table[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i := uint32(0); i < t.buckets(); i++ {
			if isEither(t.flags, i) {
				continue
			}
			var v V
			if t.isMap {
				v = t.vals[i]
			}
			if !yield(t.keys[i], v) {
				return
			}
		}
	}
}

// Keys yields every live key in bucket order.
func (t *Table[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for i := uint32(0); i < t.buckets(); i++ {
			if !isEither(t.flags, i) && !yield(t.keys[i]) {
				return
			}
		}
	}
}

func (t *Table[K, V]) buckets() uint32 {
	if t == nil {
		return 0
	}
	return t.nBuckets
}
