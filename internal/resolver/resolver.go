// Package resolver turns "a process is running on some platform" into "a
// validated local path to the native library". Resolution order, each step
// short-circuiting on success:
//
//  1. explicit override path (custom or locally built libraries)
//  2. platform identification (unsupported is terminal)
//  3. local cache probe
//  4. manifest lookup + bounded download, committed atomically to the cache
//
// A manifest that cannot be fetched is recoverable as long as an intact
// cached copy exists; it only becomes fatal when there is nothing to fall
// back to.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/QudsLab/pqchub-go/internal/cache"
	"github.com/QudsLab/pqchub-go/internal/fetch"
	"github.com/QudsLab/pqchub-go/internal/manifest"
	"github.com/QudsLab/pqchub-go/internal/platform"
	"github.com/QudsLab/pqchub-go/pkg/pqc/logging"
)

var (
	// ErrPlatformUnsupported reports that the host OS/arch has no published
	// binary. Callers must not retry.
	ErrPlatformUnsupported = errors.New("resolver: platform unsupported")

	// ErrLibraryNotFound reports that no manifest entry, cached copy, or
	// local file exists for the current platform.
	ErrLibraryNotFound = errors.New("resolver: native library not found")

	// ErrOverrideNotFound reports that an explicitly supplied library path
	// does not point at a readable regular file.
	ErrOverrideNotFound = errors.New("resolver: override path not usable")
)

// Resolver locates the native library for one platform tag.
type Resolver struct {
	// Tag overrides platform identification; zero value means Identify().
	Tag platform.Tag

	// Cache is the local binary store. Required.
	Cache *cache.Store

	// Downloader fetches artifacts; nil selects fetch.New().
	Downloader *fetch.Downloader

	// ManifestPath names a local manifest document. When set it takes
	// precedence over ManifestURL.
	ManifestPath string

	// ManifestURL is the remote metadata location; empty selects
	// manifest.DefaultURL.
	ManifestURL string

	// Client is used for the manifest fetch; nil selects the downloader's
	// client.
	Client *http.Client

	// Log receives cache/download decisions; nil disables logging.
	Log logging.Logger

	mu sync.Mutex
	m  *manifest.Manifest
}

// Resolve returns a validated local path to the native library. override,
// when non-empty, bypasses manifest and cache entirely.
func (r *Resolver) Resolve(ctx context.Context, override string) (string, error) {
	if override != "" {
		fi, err := os.Stat(override)
		if err != nil || !fi.Mode().IsRegular() {
			return "", fmt.Errorf("%w: %s", ErrOverrideNotFound, override)
		}
		return override, nil
	}

	tag := r.Tag
	if tag == "" {
		tag = platform.Identify()
	}
	if !tag.Supported() {
		return "", fmt.Errorf("%w: %s/%s", ErrPlatformUnsupported, tag.OS(), tag.Arch())
	}
	filename := tag.LibraryFilename()

	m, merr := r.loadManifest(ctx)

	var entry *manifest.Entry
	if m != nil {
		entry, _ = m.Lookup(tag)
	}

	wantSize := int64(0)
	if entry != nil {
		wantSize = entry.Size
	}
	if e, ok := r.Cache.Probe(tag, filename, wantSize); ok {
		r.debug(ctx, "using cached library", "tag", tag, "path", e.Path, "size", e.Size)
		return e.Path, nil
	}

	if merr != nil {
		return "", fmt.Errorf("%w: %s: manifest unavailable and no cached copy: %v", ErrLibraryNotFound, tag, merr)
	}
	if entry == nil {
		return "", fmt.Errorf("%w: %s: no manifest entry", ErrLibraryNotFound, tag)
	}

	return r.download(ctx, tag, entry)
}

func (r *Resolver) download(ctx context.Context, tag platform.Tag, entry *manifest.Entry) (string, error) {
	d := r.Downloader
	if d == nil {
		d = fetch.New()
	}

	tmp, err := r.Cache.TempFile(tag)
	if err != nil {
		return "", err
	}
	defer func() {
		tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	r.debug(ctx, "downloading library", "tag", tag, "url", entry.URL, "size", entry.Size)
	if err := d.Download(ctx, entry.URL, tmp, entry.Size, entry.Checksum); err != nil {
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: close temp file: %v", cache.ErrCacheWrite, err)
	}

	e, err := r.Cache.Commit(tag, entry.Filename, tmp.Name(), entry.Size)
	if err != nil {
		return "", err
	}
	r.debug(ctx, "library cached", "tag", tag, "path", e.Path)
	return e.Path, nil
}

// loadManifest fetches the manifest at most once per Resolver. Failures are
// not cached; the next call retries, since they may be transient.
func (r *Resolver) loadManifest(ctx context.Context) (*manifest.Manifest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.m != nil {
		return r.m, nil
	}

	var m *manifest.Manifest
	var err error
	switch {
	case r.ManifestPath != "":
		m, err = manifest.LoadFile(r.ManifestPath)
	default:
		url := r.ManifestURL
		if url == "" {
			url = manifest.DefaultURL
		}
		m, err = manifest.Fetch(ctx, r.manifestClient(), url)
	}
	if err != nil {
		return nil, err
	}
	r.m = m
	return m, nil
}

func (r *Resolver) manifestClient() *http.Client {
	if r.Client != nil {
		return r.Client
	}
	if r.Downloader != nil && r.Downloader.Client != nil {
		return r.Downloader.Client
	}
	return &http.Client{Timeout: fetch.DefaultTimeout}
}

func (r *Resolver) debug(ctx context.Context, msg string, args ...any) {
	if r.Log != nil {
		r.Log.Debug(ctx, msg, args...)
	}
}
