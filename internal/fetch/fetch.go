// Package fetch downloads native library artifacts. Transfers are bounded
// by an explicit timeout and a fixed retry budget; data is only ever written
// to the caller-supplied temp file, so a failed or timed-out download never
// becomes visible in the cache.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrDownload reports a failed artifact transfer: network error, timeout,
// bad HTTP status, size mismatch, or checksum mismatch.
var ErrDownload = errors.New("fetch: download failed")

const (
	// DefaultTimeout bounds a single download attempt.
	DefaultTimeout = 2 * time.Minute

	// DefaultRetries is the number of additional attempts after the first.
	DefaultRetries = 2

	retryInterval = 500 * time.Millisecond
)

// Downloader fetches artifacts over HTTP.
type Downloader struct {
	// Client used for transfers; nil selects a client with DefaultTimeout.
	Client *http.Client

	// Retries is the number of re-attempts after a failed transfer. Zero
	// means a single attempt. Retries are explicit and bounded; there is no
	// implicit indefinite retry anywhere in the pipeline.
	Retries uint64
}

// New returns a Downloader with the default timeout and retry budget.
func New() *Downloader {
	return &Downloader{
		Client:  &http.Client{Timeout: DefaultTimeout},
		Retries: DefaultRetries,
	}
}

// Download fetches url into dst, then verifies the byte count against
// wantSize and, when wantChecksum is non-empty, the body's hex SHA-256
// against it. dst is truncated at the start of every attempt.
func (d *Downloader) Download(ctx context.Context, url string, dst *os.File, wantSize int64, wantChecksum string) error {
	client := d.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	attempt := func() error {
		if err := truncate(dst); err != nil {
			return backoff.Permanent(err)
		}
		return d.fetchOnce(ctx, client, url, dst)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(retryInterval), d.Retries),
		ctx,
	)
	if err := backoff.Retry(attempt, policy); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDownload, url, err)
	}

	return verify(dst, url, wantSize, wantChecksum)
}

func truncate(dst *os.File) error {
	if err := dst.Truncate(0); err != nil {
		return fmt.Errorf("truncate %s: %w", dst.Name(), err)
	}
	if _, err := dst.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind %s: %w", dst.Name(), err)
	}
	return nil
}

func (d *Downloader) fetchOnce(ctx context.Context, client *http.Client, url string, dst *os.File) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500:
		return fmt.Errorf("status %s", resp.Status)
	default:
		// 4xx will not improve on retry.
		return backoff.Permanent(fmt.Errorf("status %s", resp.Status))
	}

	n, err := io.Copy(dst, resp.Body)
	if err != nil {
		return fmt.Errorf("read body after %d bytes: %w", n, err)
	}
	if resp.ContentLength >= 0 && n != resp.ContentLength {
		return fmt.Errorf("short body: got %d bytes, content-length %d", n, resp.ContentLength)
	}
	return nil
}

func verify(dst *os.File, url string, wantSize int64, wantChecksum string) error {
	fi, err := dst.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat: %w", ErrDownload, err)
	}
	if wantSize > 0 && fi.Size() != wantSize {
		return fmt.Errorf("%w: %s: size mismatch: got %d bytes, manifest declares %d", ErrDownload, url, fi.Size(), wantSize)
	}

	if wantChecksum == "" {
		return nil
	}
	if _, err := dst.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: rewind for checksum: %w", ErrDownload, err)
	}
	h := sha256.New()
	if _, err := io.Copy(h, dst); err != nil {
		return fmt.Errorf("%w: hash: %w", ErrDownload, err)
	}
	got := hex.EncodeToString(h.Sum(nil))
	if got != wantChecksum {
		return fmt.Errorf("%w: %s: checksum mismatch: got %s, manifest declares %s", ErrDownload, url, got, wantChecksum)
	}
	return nil
}
