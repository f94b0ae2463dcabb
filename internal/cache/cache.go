// Package cache is the content-addressed local store for downloaded native
// libraries. Files live under one subdirectory per platform tag:
//
//	<root>/<tag>/<filename>
//
// Publishing goes through a temp file in the tag directory followed by an
// atomic rename, so a concurrent Probe never observes a partially written
// library. Concurrent committers for the same slot write byte-identical
// content from the same manifest entry; the last rename wins.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/QudsLab/pqchub-go/internal/platform"
)

// ErrCacheWrite reports that a downloaded artifact could not be published
// into the cache (rename denied, size mismatch, unwritable directory).
var ErrCacheWrite = errors.New("cache: write failed")

// Entry describes one cached library file.
type Entry struct {
	Tag  platform.Tag
	Path string
	Size int64
}

// Store is a cache rooted at a single directory.
type Store struct {
	root string
}

// New returns a Store rooted at dir. An empty dir selects the per-user
// default (os.UserCacheDir()/pqchub).
func New(dir string) (*Store, error) {
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("cache: no user cache dir: %w", err)
		}
		dir = filepath.Join(base, "pqchub")
	}
	return &Store{root: dir}, nil
}

// Root returns the cache root directory.
func (s *Store) Root() string { return s.root }

func (s *Store) slot(tag platform.Tag, filename string) string {
	return filepath.Join(s.root, string(tag), filename)
}

// Probe reports whether a usable copy of filename exists for tag. It stats
// the file only; no network. wantSize <= 0 accepts any non-empty file, which
// covers the manifest-unreachable fallback.
func (s *Store) Probe(tag platform.Tag, filename string, wantSize int64) (Entry, bool) {
	path := s.slot(tag, filename)
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return Entry{}, false
	}
	if fi.Size() == 0 {
		return Entry{}, false
	}
	if wantSize > 0 && fi.Size() != wantSize {
		return Entry{}, false
	}
	return Entry{Tag: tag, Path: path, Size: fi.Size()}, true
}

// TempFile creates the download target inside the tag directory, so the
// rename in Commit stays on one filesystem and therefore atomic. The caller
// owns the file and must remove it if Commit is never reached.
func (s *Store) TempFile(tag platform.Tag) (*os.File, error) {
	dir := filepath.Join(s.root, string(tag))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: mkdir %s: %v", ErrCacheWrite, dir, err)
	}
	f, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return nil, fmt.Errorf("%w: temp file in %s: %v", ErrCacheWrite, dir, err)
	}
	return f, nil
}

// Commit atomically publishes tmpPath as the cached copy of filename for
// tag. The temp file's size is verified against wantSize first; on any
// failure the temp file is removed and nothing becomes visible under the
// final path.
func (s *Store) Commit(tag platform.Tag, filename, tmpPath string, wantSize int64) (Entry, error) {
	fi, err := os.Stat(tmpPath)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: stat %s: %v", ErrCacheWrite, tmpPath, err)
	}
	if wantSize > 0 && fi.Size() != wantSize {
		_ = os.Remove(tmpPath)
		return Entry{}, fmt.Errorf("%w: size mismatch: got %d bytes, want %d", ErrCacheWrite, fi.Size(), wantSize)
	}

	final := s.slot(tag, filename)
	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		_ = os.Remove(tmpPath)
		return Entry{}, fmt.Errorf("%w: mkdir: %v", ErrCacheWrite, err)
	}
	if err := os.Rename(tmpPath, final); err != nil {
		_ = os.Remove(tmpPath)
		return Entry{}, fmt.Errorf("%w: rename into place: %v", ErrCacheWrite, err)
	}
	return Entry{Tag: tag, Path: final, Size: fi.Size()}, nil
}
