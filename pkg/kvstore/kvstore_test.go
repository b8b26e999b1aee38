package kvstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"xlib-go/pkg/kson"
	"xlib-go/pkg/xhash"

	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, cfg Config) *Store {
	t.Helper()
	s, err := New(cfg)
	require.NoError(t, err)
	return s
}

func TestSetGetDelete(t *testing.T) {
	s := newStore(t, Config{})

	v := []byte("value")
	require.NoError(t, s.Set("k", v))
	v[0] = 'X'
	got, ok := s.Get("k")
	require.True(t, ok)
	require.Equal(t, "value", string(got), "Set must copy the value")

	got[0] = 'Y'
	again, _ := s.Get("k")
	require.Equal(t, "value", string(again), "Get must return a copy")

	require.True(t, s.Delete("k"))
	require.False(t, s.Delete("k"))
	_, ok = s.Get("k")
	require.False(t, ok)
	require.Equal(t, 0, s.Len())
}

func TestKeysSortedAndStats(t *testing.T) {
	s := newStore(t, Config{Hash: "pearson"})
	for _, k := range []string{"b", "c", "a"} {
		require.NoError(t, s.Set(k, nil))
	}
	require.Equal(t, []string{"a", "b", "c"}, s.Keys())

	st := s.Stats()
	require.Equal(t, 3, st.Size)
	require.Equal(t, "pearson", st.Hash)
	require.GreaterOrEqual(t, st.Buckets, 4)
	require.LessOrEqual(t, st.Occupied, st.UpperBound)
}

func TestUnknownHash(t *testing.T) {
	_, err := New(Config{Hash: "md5"})
	require.Error(t, err)
	_, err = New(Config{Compression: "brotli"})
	require.Error(t, err)
}

func TestCompact(t *testing.T) {
	s := newStore(t, Config{})
	for i := 0; i < 100; i++ {
		require.NoError(t, s.Set(fmt.Sprint(i), []byte("x")))
	}
	for i := 2; i < 100; i++ {
		s.Delete(fmt.Sprint(i))
	}
	require.NoError(t, s.Compact())
	st := s.Stats()
	require.Equal(t, 4, st.Buckets)
	require.Equal(t, 2, st.Occupied)
}

func TestCompactFullSmallTable(t *testing.T) {
	s := newStore(t, Config{})
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, s.Set(k, []byte(k)))
	}
	require.NoError(t, s.Compact())
	require.Equal(t, 3, s.Len())
	v, ok := s.Get("b")
	require.True(t, ok)
	require.Equal(t, []byte("b"), v)
}

func TestMaxBuckets(t *testing.T) {
	s := newStore(t, Config{MaxBuckets: 8})
	for i := 0; i < 6; i++ {
		require.NoError(t, s.Set(fmt.Sprint(i), nil))
	}
	err := s.Set("overflow", nil)
	require.True(t, errors.Is(err, xhash.ErrAlloc), "got %v", err)
	require.Equal(t, 6, s.Len())
}

func TestImportKSON(t *testing.T) {
	a, err := kson.Parse(`{'a':1,'b':[0,'isn\'t',true],'d':[{}],'e':{"f":"g"}}`)
	require.NoError(t, err)

	s := newStore(t, Config{})
	require.NoError(t, s.Set("keep", []byte("me")))
	n, err := s.ImportKSON(a, "doc")
	require.NoError(t, err)
	require.Equal(t, 5, n)

	want := map[string]string{
		"doc.a":   "1",
		"doc.b.0": "0",
		"doc.b.1": "isn't",
		"doc.b.2": "true",
		"doc.e.f": "g",
		"keep":    "me",
	}
	require.Equal(t, len(want), s.Len())
	for k, v := range want {
		got, ok := s.Get(k)
		require.True(t, ok, "missing %s", k)
		require.Equal(t, v, string(got))
	}

	scalar, err := kson.Parse("name:'x'")
	require.NoError(t, err)
	n, err = s.ImportKSON(scalar, "")
	require.NoError(t, err)
	require.Equal(t, 1, n)
	got, _ := s.Get("name")
	require.Equal(t, "x", string(got))

	n, err = s.ImportKSON(nil, "p")
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestImportIsAllOrNothing(t *testing.T) {
	s := newStore(t, Config{MaxBuckets: 8})
	require.NoError(t, s.Set("a", []byte("1")))
	a, err := kson.Parse("[1,2,3,4,5,6,7,8,9]")
	require.NoError(t, err)
	_, err = s.ImportKSON(a, "x")
	require.ErrorIs(t, err, xhash.ErrAlloc)
	require.Equal(t, []string{"a"}, s.Keys())
}

func TestSnapshotRoundTrip(t *testing.T) {
	for _, codec := range []string{"none", "gzip", "zstd", "zstd:fastest"} {
		t.Run(codec, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "kv.db")
			src := newStore(t, Config{Compression: codec})
			for i := 0; i < 50; i++ {
				require.NoError(t, src.Set(fmt.Sprintf("key-%02d", i), []byte(fmt.Sprintf("value %d value %d", i, i))))
			}
			require.NoError(t, src.Set("empty", []byte{}))
			require.NoError(t, src.Save(path))

			dst := newStore(t, Config{Compression: codec})
			require.NoError(t, dst.Set("stale", []byte("gone")))
			require.NoError(t, dst.Load(path))
			require.Equal(t, src.Keys(), dst.Keys())
			for _, k := range src.Keys() {
				a, _ := src.Get(k)
				b, _ := dst.Get(k)
				require.Equal(t, string(a), string(b))
			}

			// a second save replaces the first
			src.Delete("key-00")
			require.NoError(t, src.Save(path))
			require.NoError(t, dst.Load(path))
			require.Equal(t, src.Len(), dst.Len())
		})
	}
}

func TestSnapshotEncrypted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	src := newStore(t, Config{Compression: "zstd", Passphrase: "pw"})
	require.NoError(t, src.Set("secret", []byte("plans")))
	require.NoError(t, src.Save(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "plans")

	dst := newStore(t, Config{Compression: "zstd", Passphrase: "pw"})
	require.NoError(t, dst.Load(path))
	got, _ := dst.Get("secret")
	require.Equal(t, "plans", string(got))
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	s := newStore(t, Config{Compression: "gzip"})
	require.Error(t, s.Load(filepath.Join(dir, "missing.db")))

	path := filepath.Join(dir, "kv.db")
	require.NoError(t, s.Set("a", []byte("b")))
	require.NoError(t, s.Save(path))

	other := newStore(t, Config{Compression: "zstd"})
	require.NoError(t, other.Set("untouched", nil))
	err := other.Load(path)
	require.ErrorIs(t, err, ErrCodecMismatch)
	require.Equal(t, []string{"untouched"}, other.Keys())
}

func TestConcurrentAccess(t *testing.T) {
	s := newStore(t, Config{})
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := fmt.Sprintf("%d-%d", w, i)
				_ = s.Set(k, []byte(k))
				if v, ok := s.Get(k); !ok || string(v) != k {
					t.Errorf("lost %s", k)
				}
				if i%3 == 0 {
					s.Delete(k)
				}
			}
		}(w)
	}
	wg.Wait()
	require.Equal(t, 8*(200-67), s.Len())
}
