package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QudsLab/pqchub-go/internal/cache"
	"github.com/QudsLab/pqchub-go/internal/fetch"
	"github.com/QudsLab/pqchub-go/internal/platform"
)

const tag = platform.TagLinuxX8664

// binServer serves a manifest plus the binary it describes and counts
// artifact fetches.
type binServer struct {
	*httptest.Server
	body    []byte
	fetches atomic.Int64
}

func newBinServer(t *testing.T, size int) *binServer {
	t.Helper()
	s := &binServer{body: bytes.Repeat([]byte{0x7f}, size)}
	mux := http.NewServeMux()
	mux.HandleFunc("/binaries.json", func(w http.ResponseWriter, r *http.Request) {
		doc := map[string]any{
			"version": 1,
			"binaries": map[string]any{
				string(tag): map[string]any{
					"filename": "libpqc.so",
					"size":     len(s.body),
					"url":      s.URL + "/bins/libpqc.so",
				},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(doc))
	})
	mux.HandleFunc("/bins/libpqc.so", func(w http.ResponseWriter, r *http.Request) {
		s.fetches.Add(1)
		_, _ = w.Write(s.body)
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func newResolver(t *testing.T, srv *binServer) *Resolver {
	t.Helper()
	store, err := cache.New(t.TempDir())
	require.NoError(t, err)
	return &Resolver{
		Tag:         tag,
		Cache:       store,
		Downloader:  &fetch.Downloader{Client: srv.Client()},
		ManifestURL: srv.URL + "/binaries.json",
	}
}

func TestResolveFetchesOnceThenHitsCache(t *testing.T) {
	// The concrete scenario: empty cache, 425984-byte linux-x86_64 entry.
	srv := newBinServer(t, 425984)
	r := newResolver(t, srv)
	ctx := context.Background()

	path, err := r.Resolve(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), srv.fetches.Load())

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(425984), fi.Size())

	// Exactly one file in the slot, no leftover temp files.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	again, err := r.Resolve(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.Equal(t, int64(1), srv.fetches.Load(), "second resolve must not touch the network")
}

func TestResolveCacheSharedAcrossProcessesShape(t *testing.T) {
	// A fresh Resolver over the same cache directory (a new process, in
	// effect) must also skip the download.
	srv := newBinServer(t, 4096)
	r := newResolver(t, srv)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "")
	require.NoError(t, err)

	r2 := &Resolver{
		Tag:         tag,
		Cache:       r.Cache,
		Downloader:  r.Downloader,
		ManifestURL: r.ManifestURL,
	}
	_, err = r2.Resolve(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), srv.fetches.Load())
}

func TestResolveOverrideWins(t *testing.T) {
	srv := newBinServer(t, 64)
	r := newResolver(t, srv)

	custom := filepath.Join(t.TempDir(), "libpqc-custom.so")
	require.NoError(t, os.WriteFile(custom, []byte("local build"), 0o644))

	path, err := r.Resolve(context.Background(), custom)
	require.NoError(t, err)
	assert.Equal(t, custom, path)
	assert.Zero(t, srv.fetches.Load())
}

func TestResolveOverrideMissing(t *testing.T) {
	srv := newBinServer(t, 64)
	r := newResolver(t, srv)

	_, err := r.Resolve(context.Background(), filepath.Join(t.TempDir(), "nope.so"))
	assert.ErrorIs(t, err, ErrOverrideNotFound)

	_, err = r.Resolve(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrOverrideNotFound, "directories are not libraries")
}

func TestResolveUnsupportedPlatform(t *testing.T) {
	srv := newBinServer(t, 64)
	r := newResolver(t, srv)
	r.Tag = platform.TagUnsupported

	_, err := r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrPlatformUnsupported)
}

func TestResolveNoManifestEntry(t *testing.T) {
	srv := newBinServer(t, 64)
	r := newResolver(t, srv)
	r.Tag = platform.TagWindowsX64 // served manifest only lists linux-x86_64

	_, err := r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrLibraryNotFound)
}

func TestResolveManifestDownCacheUp(t *testing.T) {
	srv := newBinServer(t, 2048)
	r := newResolver(t, srv)
	ctx := context.Background()

	path, err := r.Resolve(ctx, "")
	require.NoError(t, err)

	// Same cache dir, unreachable manifest: the cached copy still resolves.
	srv.Close()
	r2 := &Resolver{
		Tag:         tag,
		Cache:       r.Cache,
		Downloader:  r.Downloader,
		ManifestURL: srv.URL + "/binaries.json",
	}
	got, err := r2.Resolve(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestResolveManifestDownEmptyCache(t *testing.T) {
	srv := newBinServer(t, 2048)
	r := newResolver(t, srv)
	srv.Close()

	_, err := r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrLibraryNotFound)
}

func TestResolveRefetchesCorruptedCacheEntry(t *testing.T) {
	srv := newBinServer(t, 1024)
	r := newResolver(t, srv)
	ctx := context.Background()

	path, err := r.Resolve(ctx, "")
	require.NoError(t, err)

	// Truncate the cached file; the size check against the manifest must
	// force one more fetch.
	require.NoError(t, os.Truncate(path, 10))
	got, err := r.Resolve(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, int64(2), srv.fetches.Load())

	fi, err := os.Stat(got)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), fi.Size())
}

func TestResolveDownloadFailure(t *testing.T) {
	store, err := cache.New(t.TempDir())
	require.NoError(t, err)

	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("/binaries.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"version":1,"binaries":{"%s":{"filename":"libpqc.so","size":100,"url":"%s/bins/libpqc.so"}}}`, tag, srvURL)
	})
	mux.HandleFunc("/bins/libpqc.so", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	r := &Resolver{
		Tag:         tag,
		Cache:       store,
		Downloader:  &fetch.Downloader{Client: srv.Client(), Retries: 1},
		ManifestURL: srv.URL + "/binaries.json",
	}
	_, err = r.Resolve(context.Background(), "")
	require.ErrorIs(t, err, fetch.ErrDownload)

	// The failed download left nothing behind in the cache.
	slot := filepath.Join(store.Root(), string(tag))
	entries, readErr := os.ReadDir(slot)
	if readErr == nil {
		assert.Empty(t, entries)
	}
}
