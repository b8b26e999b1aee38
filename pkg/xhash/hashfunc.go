package xhash

import "xlib-go/pkg/pearson"

// HashFunc maps a key to a 32-bit hash. Only the low bits selected by the
// bucket mask pick the home bucket, so identity hashes work for keys whose low
// bits are well distributed.
type HashFunc[K any] func(K) uint32

// EqualFunc reports whether two keys are the same key.
type EqualFunc[K any] func(a, b K) bool

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Equal is the == predicate for comparable keys.
func Equal[K comparable](a, b K) bool { return a == b }

// Int32Hash is the identity hash.
func Int32Hash(key uint32) uint32 { return key }

// Int64Hash folds a 64-bit key into 32 bits.
func Int64Hash(key uint64) uint32 { return uint32(key>>33 ^ key ^ key<<11) }

// IntHash hashes any integer type through Int64Hash.
func IntHash[K integer](key K) uint32 { return Int64Hash(uint64(key)) }

// WangHash is Thomas Wang's 32-bit integer mix, for integer keys whose low bits
// are poorly distributed.
func WangHash(key uint32) uint32 {
	key += ^(key << 15)
	key ^= key >> 10
	key += key << 3
	key ^= key >> 6
	key += ^(key << 11)
	key ^= key >> 16
	return key
}

// StringHash is the X31 string hash: h = h*31 + c.
func StringHash(s string) uint32 {
	if len(s) == 0 {
		return 0
	}
	h := uint32(s[0])
	for i := 1; i < len(s); i++ {
		h = (h << 5) - h + uint32(s[i])
	}
	return h
}

// PearsonHash hashes s with four Pearson lanes.
func PearsonHash(s string) uint32 { return pearson.String32(s) }
