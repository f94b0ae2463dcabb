// Package manifest loads and queries the binary metadata document that maps
// platform tags to downloadable native library artifacts. The document is
// JSON of the form:
//
//	{
//	  "version": 1,
//	  "binaries": {
//	    "linux-x86_64": {
//	      "filename": "libpqc.so",
//	      "size": 425984,
//	      "url": "https://.../linux-x86_64/libpqc.so",
//	      "checksum": "hex sha-256, optional"
//	    }
//	  }
//	}
//
// The manifest is read-only input for the lifetime of the process. Beyond
// the fields it consumes the loader does not validate the schema.
package manifest

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/QudsLab/pqchub-go/internal/platform"
)

// DefaultURL is the published location of the release metadata.
const DefaultURL = "https://github.com/QudsLab/PQChub/raw/refs/heads/main/bins/binaries.json"

// ErrEntryNotFound reports that the manifest has no artifact for the
// requested platform tag.
var ErrEntryNotFound = errors.New("manifest: no entry for platform")

// Entry describes one downloadable artifact.
type Entry struct {
	Tag      platform.Tag `json:"-"`
	Filename string       `json:"filename"`
	Size     int64        `json:"size"`
	URL      string       `json:"url"`
	Checksum string       `json:"checksum,omitempty"`
}

// Manifest is a validated, immutable tag-to-artifact mapping.
type Manifest struct {
	Version  int                     `json:"version"`
	Binaries map[platform.Tag]*Entry `json:"binaries"`
}

// Parse decodes and validates a manifest document.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: decode: %w", err)
	}
	if len(m.Binaries) == 0 {
		return nil, errors.New("manifest: no binaries listed")
	}
	for tag, e := range m.Binaries {
		e.Tag = tag
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("manifest: entry %q: %w", tag, err)
		}
	}
	return &m, nil
}

func (e *Entry) validate() error {
	if e.Filename == "" {
		return errors.New("missing filename")
	}
	if e.URL == "" {
		return errors.New("missing url")
	}
	if e.Size <= 0 {
		return fmt.Errorf("invalid size %d", e.Size)
	}
	if e.Checksum != "" {
		raw, err := hex.DecodeString(e.Checksum)
		if err != nil {
			return fmt.Errorf("checksum is not hex: %w", err)
		}
		if len(raw) != 32 {
			return fmt.Errorf("checksum is %d bytes, want 32", len(raw))
		}
	}
	return nil
}

// Lookup returns the artifact entry for tag. The lookup is deterministic and
// O(1); a missing tag yields ErrEntryNotFound.
func (m *Manifest) Lookup(tag platform.Tag) (*Entry, error) {
	if e, ok := m.Binaries[tag]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, tag)
}

// LoadFile reads a manifest from the local filesystem.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	return Parse(data)
}

// Fetch retrieves a manifest over HTTP with a single bounded GET. The caller
// controls timeouts through ctx and the supplied client. Fetch failures are
// recoverable: the resolver prefers an intact cached binary over a fresh
// manifest.
func Fetch(ctx context.Context, client *http.Client, url string) (*Manifest, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("manifest: build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("manifest: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("manifest: fetch %s: unexpected status %s", url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("manifest: read body: %w", err)
	}
	return Parse(data)
}
