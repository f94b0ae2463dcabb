package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QudsLab/pqchub-go/internal/platform"
)

const tag = platform.TagLinuxX8664

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func commitBytes(t *testing.T, s *Store, filename string, data []byte) Entry {
	t.Helper()
	f, err := s.TempFile(tag)
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	e, err := s.Commit(tag, filename, f.Name(), int64(len(data)))
	require.NoError(t, err)
	return e
}

func TestProbeAbsent(t *testing.T) {
	s := newStore(t)
	_, ok := s.Probe(tag, "libpqc.so", 42)
	assert.False(t, ok)
}

func TestCommitThenProbe(t *testing.T) {
	s := newStore(t)
	data := bytes.Repeat([]byte{0xab}, 1024)
	e := commitBytes(t, s, "libpqc.so", data)

	assert.Equal(t, filepath.Join(s.Root(), string(tag), "libpqc.so"), e.Path)
	assert.Equal(t, int64(1024), e.Size)

	got, ok := s.Probe(tag, "libpqc.so", 1024)
	require.True(t, ok)
	assert.Equal(t, e.Path, got.Path)

	// A size mismatch invalidates the hit.
	_, ok = s.Probe(tag, "libpqc.so", 1023)
	assert.False(t, ok)

	// No transient files remain in the slot directory after commit.
	entries, err := os.ReadDir(filepath.Dir(e.Path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestProbeRejectsTruncated(t *testing.T) {
	s := newStore(t)
	commitBytes(t, s, "libpqc.so", bytes.Repeat([]byte{1}, 100))

	path := filepath.Join(s.Root(), string(tag), "libpqc.so")
	require.NoError(t, os.Truncate(path, 10))
	_, ok := s.Probe(tag, "libpqc.so", 100)
	assert.False(t, ok)

	require.NoError(t, os.Truncate(path, 0))
	_, ok = s.Probe(tag, "libpqc.so", 0)
	assert.False(t, ok, "zero-byte files are never usable")
}

func TestCommitSizeMismatch(t *testing.T) {
	s := newStore(t)
	f, err := s.TempFile(tag)
	require.NoError(t, err)
	_, err = f.Write([]byte("short"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = s.Commit(tag, "libpqc.so", f.Name(), 425984)
	assert.ErrorIs(t, err, ErrCacheWrite)

	// Neither the final path nor the temp file survives a failed commit.
	_, ok := s.Probe(tag, "libpqc.so", 0)
	assert.False(t, ok)
	_, statErr := os.Stat(f.Name())
	assert.True(t, os.IsNotExist(statErr))
}

func TestConcurrentCommitters(t *testing.T) {
	s := newStore(t)
	data := bytes.Repeat([]byte{0x5a}, 4096)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f, err := s.TempFile(tag)
			if err != nil {
				errs[i] = err
				return
			}
			if _, err := f.Write(data); err != nil {
				errs[i] = err
				return
			}
			if err := f.Close(); err != nil {
				errs[i] = err
				return
			}
			_, errs[i] = s.Commit(tag, "libpqc.so", f.Name(), int64(len(data)))
		}(i)
	}

	// Probe continuously while the committers race. A hit must never expose
	// a partial file.
	done := make(chan struct{})
	go func() {
		defer close(done)
		wg.Wait()
	}()
	for {
		if e, ok := s.Probe(tag, "libpqc.so", 0); ok {
			assert.Equal(t, int64(len(data)), e.Size)
		}
		select {
		case <-done:
			for i, err := range errs {
				require.NoError(t, err, "committer %d", i)
			}
			got, err := os.ReadFile(filepath.Join(s.Root(), string(tag), "libpqc.so"))
			require.NoError(t, err)
			assert.Equal(t, data, got)
			return
		default:
		}
	}
}

func TestNewDefaultsToUserCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	s, err := New("")
	require.NoError(t, err)
	assert.Contains(t, s.Root(), "pqchub")
}
