package xhash

import (
	"math/bits"

	"xlib-go/pkg/log"
)

const (
	minBuckets = 4
	// maxBucketLimit is the largest power of two an Iter can index.
	maxBucketLimit = 1 << 31
	upperLoad      = 0.77
)

// FailureFunc receives a diagnostic when a caller breaks the table contract,
// for example by passing an out-of-range iterator.
type FailureFunc func(msg string)

// Config holds construction options. Use the With* functions to set them.
type Config struct {
	// SizeHint presizes the table to hold this many entries without resizing.
	SizeHint int
	// MaxBuckets caps the bucket count. A resize past it fails with ErrAlloc.
	MaxBuckets uint32
	// OnFailure is called on contract violations.
	OnFailure FailureFunc
}

// WithPresize configures the table to hold sizeHint entries before its first
// resize. The presized bucket count is capped by WithMaxBuckets.
func WithPresize(sizeHint int) func(*Config) {
	return func(c *Config) {
		c.SizeHint = sizeHint
	}
}

// WithMaxBuckets caps the bucket array. The cap is rounded down to a power of
// two and never below 4.
func WithMaxBuckets(n uint32) func(*Config) {
	return func(c *Config) {
		c.MaxBuckets = n
	}
}

// WithFailureHook replaces the default contract-violation reporter, which logs
// through pkg/log at error level.
func WithFailureHook(fn FailureFunc) func(*Config) {
	return func(c *Config) {
		c.OnFailure = fn
	}
}

func defaultFailure(msg string) {
	log.Error().Str("component", "xhash").Msg(msg)
}

func normalizeMax(n uint32) uint32 {
	if n == 0 || n > maxBucketLimit {
		return maxBucketLimit
	}
	if n < minBuckets {
		return minBuckets
	}
	return 1 << (bits.Len32(n) - 1)
}

// roundUp returns the smallest power of two >= n. n must not exceed 1<<31.
func roundUp(n uint32) uint32 {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len32(n-1)
}

func upperBound(n uint32) uint32 {
	return uint32(float64(n)*upperLoad + 0.5)
}

// bucketsFor returns the smallest valid bucket count whose upper bound exceeds size.
func bucketsFor(size uint32) uint32 {
	n := roundUp(max(size, minBuckets))
	for upperBound(n) <= size && n < maxBucketLimit {
		n <<= 1
	}
	return n
}
