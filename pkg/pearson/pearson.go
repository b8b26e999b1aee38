// Package pearson implements Pearson hashing as described in
// Peter K. Pearson's 1990 paper "Fast Hashing of Variable-Length Data".
// Hash produces the classic 8-bit digest. Wider digests run several independent
// Pearson lanes, each started from a different seed, and concatenate them:
// Hash32 uses four lanes and is the width xhash tables consume, Hash64 uses eight.
package pearson

// table is a permutation of 0..255, built once by a seeded Fisher-Yates shuffle
// so that every byte value appears exactly once.
var table [256]uint8

func init() {
	for i := range table {
		table[i] = uint8(i)
	}
	x := uint32(11)
	for i := len(table) - 1; i > 0; i-- {
		x = 1664525*x + 1013904223
		j := int(x>>8) % (i + 1)
		table[i], table[j] = table[j], table[i]
	}
}

func lane(seed uint8, data []byte) uint8 {
	h := table[seed^data[0]]
	for _, c := range data[1:] {
		h = table[h^c]
	}
	return h
}

// Hash computes the 8-bit Pearson hash of data. Empty input hashes to 0.
func Hash(data []byte) uint8 {
	if len(data) == 0 {
		return 0
	}
	return lane(0, data)
}

// Hash32 concatenates four lanes seeded 0..3. Empty input hashes to 0.
func Hash32(data []byte) uint32 {
	if len(data) == 0 {
		return 0
	}
	var h uint32
	for seed := uint8(0); seed < 4; seed++ {
		h = h<<8 | uint32(lane(seed, data))
	}
	return h
}

// Hash64 concatenates eight lanes seeded 0..7. Empty input hashes to 0.
func Hash64(data []byte) uint64 {
	if len(data) == 0 {
		return 0
	}
	var h uint64
	for seed := uint8(0); seed < 8; seed++ {
		h = h<<8 | uint64(lane(seed, data))
	}
	return h
}

// String32 is Hash32 over the bytes of s without copying them.
func String32(s string) uint32 {
	if len(s) == 0 {
		return 0
	}
	var h uint32
	for seed := uint8(0); seed < 4; seed++ {
		l := table[seed^s[0]]
		for i := 1; i < len(s); i++ {
			l = table[l^s[i]]
		}
		h = h<<8 | uint32(l)
	}
	return h
}
