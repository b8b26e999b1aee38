package kvstore

import (
	"fmt"
	"os"
	"strings"
	"time"

	"xlib-go/pkg/log"

	"go.etcd.io/bbolt"
)

const (
	kvBucket   = "kv"
	metaBucket = "meta"
	metaCodec  = "compression"
)

var (
	dbOpenAttempts = 3
	dbRetryDelay   = 100 * time.Millisecond
)

func openDB(path string, readOnly bool) (*bbolt.DB, error) {
	options := &bbolt.Options{Timeout: 1 * time.Second, ReadOnly: readOnly}
	var err error
	for i := 0; i < dbOpenAttempts; i++ {
		var db *bbolt.DB
		db, err = bbolt.Open(path, 0600, options)
		if err == nil {
			return db, nil
		}
		log.Warn().Str("component", "kvstore").Err(err).Int("attempt", i+1).Msg("open snapshot failed, retrying")
		time.Sleep(dbRetryDelay)
	}
	return nil, fmt.Errorf("kvstore: open %s after %d attempts: %w", path, dbOpenAttempts, err)
}

func (s *Store) codecName() string {
	name := strings.ToLower(strings.TrimSpace(s.cfg.Compression))
	if s.cfg.Passphrase != "" {
		name += "+aes"
	}
	return name
}

// Save replaces the snapshot in the bbolt file at path with the current
// contents. Values go through the configured transform pipeline.
func (s *Store) Save(path string) error {
	db, err := openDB(path, false)
	if err != nil {
		return err
	}
	defer db.Close()

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	err = db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(kvBucket)) != nil {
			if err := tx.DeleteBucket([]byte(kvBucket)); err != nil {
				return fmt.Errorf("failed to clear %s bucket: %w", kvBucket, err)
			}
		}
		b, err := tx.CreateBucket([]byte(kvBucket))
		if err != nil {
			return fmt.Errorf("failed to create %s bucket: %w", kvBucket, err)
		}
		for k, v := range s.table.All() {
			enc, err := s.proc.Encode(v)
			if err != nil {
				return fmt.Errorf("failed to encode %q: %w", k, err)
			}
			if err := b.Put([]byte(k), enc); err != nil {
				return fmt.Errorf("failed to put %q: %w", k, err)
			}
			n++
		}
		meta, err := tx.CreateBucketIfNotExists([]byte(metaBucket))
		if err != nil {
			return fmt.Errorf("failed to create %s bucket: %w", metaBucket, err)
		}
		return meta.Put([]byte(metaCodec), []byte(s.codecName()))
	})
	if err != nil {
		return fmt.Errorf("kvstore: save %s: %w", path, err)
	}
	log.Info().Str("component", "kvstore").Str("path", path).Int("keys", n).Msg("snapshot saved")
	return nil
}

// Load replaces the store contents with the snapshot at path. On error the
// store is unchanged.
func (s *Store) Load(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("kvstore: load: %w", err)
	}
	db, err := openDB(path, true)
	if err != nil {
		return err
	}
	defer db.Close()

	next := s.newTable()
	err = db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(kvBucket))
		if b == nil {
			return ErrNoSnapshot
		}
		if meta := tx.Bucket([]byte(metaBucket)); meta != nil {
			if codec := string(meta.Get([]byte(metaCodec))); codec != s.codecName() {
				return fmt.Errorf("%w: file has %q, store uses %q", ErrCodecMismatch, codec, s.codecName())
			}
		}
		return b.ForEach(func(k, v []byte) error {
			dec, err := s.proc.Decode(v)
			if err != nil {
				return fmt.Errorf("failed to decode %q: %w", k, err)
			}
			return set(next, string(k), dec)
		})
	})
	if err != nil {
		return fmt.Errorf("kvstore: load %s: %w", path, err)
	}

	s.mu.Lock()
	s.table = next
	s.mu.Unlock()
	log.Info().Str("component", "kvstore").Str("path", path).Int("keys", next.Size()).Msg("snapshot loaded")
	return nil
}
