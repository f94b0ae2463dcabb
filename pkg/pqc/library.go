package pqc

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/QudsLab/pqchub-go/internal/cache"
	"github.com/QudsLab/pqchub-go/internal/fetch"
	"github.com/QudsLab/pqchub-go/internal/loader"
	"github.com/QudsLab/pqchub-go/internal/native"
	"github.com/QudsLab/pqchub-go/internal/resolver"
	"github.com/QudsLab/pqchub-go/pkg/pqc/logging"
)

// Config carries the knobs for resolving and loading the native library.
// The zero value resolves the published binary for the host platform into
// the per-user cache.
type Config struct {
	// LibraryPath, when set, bypasses manifest and cache entirely and loads
	// this exact file. Intended for tests and locally built libraries.
	LibraryPath string

	// CacheDir overrides the cache root; empty selects the per-user default.
	CacheDir string

	// ManifestPath names a local manifest document, taking precedence over
	// ManifestURL.
	ManifestPath string

	// ManifestURL overrides the published metadata location.
	ManifestURL string

	// DownloadTimeout bounds each transfer attempt; zero selects the
	// default.
	DownloadTimeout time.Duration

	// DownloadRetries is the number of re-attempts after a failed transfer;
	// nil selects the default, an explicit zero disables retries.
	DownloadRetries *uint64

	// Logger receives resolution and cache decisions; nil binds to
	// slog.Default().
	Logger logging.Logger
}

func (c Config) retries() uint64 {
	if c.DownloadRetries != nil {
		return *c.DownloadRetries
	}
	return fetch.DefaultRetries
}

// Library is an opened handle to the native library plus the descriptor
// binding machinery. It is immutable after creation, safe for concurrent
// use, and lives until process exit; there is no teardown beyond that.
type Library struct {
	api  native.API
	log  logging.Logger
	path string
}

// Open resolves, loads, and wraps the native library described by cfg.
func Open(ctx context.Context, cfg Config) (*Library, error) {
	log := cfg.Logger
	if log == nil {
		log = logging.New(nil)
	}

	store, err := cache.New(cfg.CacheDir)
	if err != nil {
		return nil, &Error{Op: "Open", Err: err}
	}

	timeout := cfg.DownloadTimeout
	if timeout == 0 {
		timeout = fetch.DefaultTimeout
	}

	r := &resolver.Resolver{
		Cache:        store,
		Downloader:   &fetch.Downloader{Client: &http.Client{Timeout: timeout}, Retries: cfg.retries()},
		ManifestPath: cfg.ManifestPath,
		ManifestURL:  cfg.ManifestURL,
		Log:          log,
	}

	path, err := r.Resolve(ctx, cfg.LibraryPath)
	if err != nil {
		return nil, &Error{Op: "Open", Err: err}
	}

	h, err := loader.Open(path)
	if err != nil {
		return nil, &Error{Op: "Open", Err: err}
	}

	log.Debug(ctx, "native library loaded", "path", path)
	return &Library{api: native.NewLib(h), log: log, path: path}, nil
}

// newLibrary wires a Library directly onto a native API implementation.
// Tests use it to substitute an in-memory native layer.
func newLibrary(api native.API) *Library {
	return &Library{api: api, log: logging.New(nil)}
}

// Path returns the local file the library was loaded from; empty when the
// library was constructed directly on an API implementation.
func (l *Library) Path() string { return l.path }

// Version reports the version string exported by the native library. A
// library missing the symbol surfaces ErrSymbolNotFound rather than a
// placeholder, so callers can tell "absent" from "degraded".
func (l *Library) Version() (string, error) {
	v, err := l.api.Version()
	if err != nil {
		return "", &Error{Op: "Version", Err: err}
	}
	return v, nil
}

// AlgorithmList reports the comma-separated algorithm list exported by the
// native library.
func (l *Library) AlgorithmList() (string, error) {
	a, err := l.api.Algorithms()
	if err != nil {
		return "", &Error{Op: "AlgorithmList", Err: err}
	}
	return a, nil
}

var (
	defaultMu  sync.Mutex
	defaultLib *Library
)

// Default returns the process-wide library, resolving and loading it on
// first use. Initialization is synchronized: concurrent first callers
// trigger exactly one resolve-and-load and all observe the same handle. A
// failed initialization is not cached; the next call retries.
func Default(ctx context.Context) (*Library, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLib != nil {
		return defaultLib, nil
	}
	lib, err := Open(ctx, Config{})
	if err != nil {
		return nil, err
	}
	defaultLib = lib
	return defaultLib, nil
}
