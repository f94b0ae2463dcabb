//go:build linux || darwin

package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "libpqc.so"))
	assert.ErrorIs(t, err, ErrLibraryLoad)
}

func TestOpenInvalidLibrary(t *testing.T) {
	// A file that exists but is not a loadable object must surface as a
	// load error, not a crash.
	path := filepath.Join(t.TempDir(), "libpqc.so")
	require.NoError(t, os.WriteFile(path, []byte("not an ELF or Mach-O"), 0o755))

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrLibraryLoad)
	assert.Contains(t, err.Error(), path)
}
