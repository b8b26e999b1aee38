// Package kvstore is a string-keyed byte store built on an xhash table, with
// snapshots to a bbolt file.
package kvstore

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"xlib-go/pkg/transform"
	"xlib-go/pkg/xhash"
)

var (
	ErrNoSnapshot    = errors.New("kvstore: no snapshot in file")
	ErrCodecMismatch = errors.New("kvstore: snapshot written with a different compression")
)

// Config selects the table and snapshot settings of a Store.
type Config struct {
	Hash        string // "x31" (default) or "pearson"
	Presize     int
	MaxBuckets  uint32
	Compression string // transform.FromName syntax
	Passphrase  string // encrypts snapshot values when set
}

type Store struct {
	mu    sync.RWMutex
	table *xhash.Table[string, []byte]
	proc  *transform.Processor
	cfg   Config
	hash  xhash.HashFunc[string]
}

// HashByName returns the string hash called name.
func HashByName(name string) (xhash.HashFunc[string], error) {
	switch strings.ToLower(name) {
	case "", "x31":
		return xhash.StringHash, nil
	case "pearson":
		return xhash.PearsonHash, nil
	}
	return nil, fmt.Errorf("kvstore: unknown hash %q", name)
}

func New(cfg Config) (*Store, error) {
	hash, err := HashByName(cfg.Hash)
	if err != nil {
		return nil, err
	}
	proc, err := transform.NewPipeline(cfg.Compression, cfg.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("kvstore: %w", err)
	}
	cfg.Hash = strings.ToLower(cfg.Hash)
	if cfg.Hash == "" {
		cfg.Hash = "x31"
	}
	s := &Store{proc: proc, cfg: cfg, hash: hash}
	s.table = s.newTable()
	return s, nil
}

func (s *Store) newTable() *xhash.Table[string, []byte] {
	return xhash.NewMap[string, []byte](s.hash,
		xhash.WithPresize(s.cfg.Presize),
		xhash.WithMaxBuckets(s.cfg.MaxBuckets))
}

func set(t *xhash.Table[string, []byte], key string, value []byte) error {
	it, _, err := t.Put(key)
	if err != nil {
		return fmt.Errorf("kvstore: set %q: %w", key, err)
	}
	t.SetValue(it, slices.Clone(value))
	return nil
}

// Set stores a copy of value under key.
func (s *Store) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return set(s.table, key, value)
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it := s.table.Get(key)
	if it == s.table.End() {
		return nil, false
	}
	return slices.Clone(s.table.Value(it)), true
}

// Delete removes key and reports whether it was present.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.table.Get(key)
	if it == s.table.End() {
		return false
	}
	s.table.Del(it)
	return true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Size()
}

// Keys returns every key in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(s.table.Keys())
}

type Stats struct {
	Size       int    `json:"size"`
	Buckets    int    `json:"buckets"`
	Occupied   int    `json:"occupied"`
	UpperBound int    `json:"upper_bound"`
	Hash       string `json:"hash"`
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Size:       s.table.Size(),
		Buckets:    s.table.BucketCount(),
		Occupied:   s.table.Occupied(),
		UpperBound: s.table.UpperBound(),
		Hash:       s.cfg.Hash,
	}
}

// Compact shrinks the table to fit its entries and drops tombstones.
func (s *Store) Compact() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.table.Trim(); err != nil {
		return fmt.Errorf("kvstore: compact: %w", err)
	}
	return nil
}
