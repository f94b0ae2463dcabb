// Package loader loads resolved native library files into the process and
// exposes raw symbol lookup. Loading is idempotent per path: the process
// keeps one handle per resolved library and never unloads it; the OS
// reclaims everything at exit.
package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
)

var (
	// ErrLibraryLoad reports that the resolved file could not be loaded
	// (bad format, architecture mismatch, missing OS dependency). Fatal for
	// the resolution attempt; the path was already validated, so there is
	// nothing to retry with.
	ErrLibraryLoad = errors.New("loader: cannot load native library")

	// ErrSymbolNotFound reports a missing exported function. Raised at bind
	// time so misconfigured builds fail before any cryptographic call.
	ErrSymbolNotFound = errors.New("loader: symbol not found")
)

// Handle is an opened native library. Handles are shared process-wide and
// immutable after creation.
type Handle struct {
	path string
	ref  uintptr
}

var (
	mu     sync.Mutex
	opened = map[string]*Handle{}
)

// dlopen and dlsym are the platform loading primitives. Package variables so
// tests can substitute them; everything else goes through these two.
var (
	dlopen = dlopenNative
	dlsym  = dlsymNative
)

// Open loads the library at path, memoized on the cleaned absolute path:
// opening the same file twice returns the identical handle.
func Open(path string) (*Handle, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLibraryLoad, path, err)
	}

	mu.Lock()
	defer mu.Unlock()
	if h, ok := opened[abs]; ok {
		return h, nil
	}

	ref, err := dlopen(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLibraryLoad, abs, err)
	}
	h := &Handle{path: abs, ref: ref}
	opened[abs] = h
	return h, nil
}

// Path returns the absolute path the handle was loaded from.
func (h *Handle) Path() string { return h.path }

// Lookup resolves an exported symbol to its address.
func (h *Handle) Lookup(symbol string) (uintptr, error) {
	addr, err := dlsym(h.ref, symbol)
	if err != nil || addr == 0 {
		return 0, fmt.Errorf("%w: %q in %s", ErrSymbolNotFound, symbol, h.path)
	}
	return addr, nil
}
