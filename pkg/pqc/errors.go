package pqc

import (
	"errors"
	"fmt"

	"github.com/QudsLab/pqchub-go/internal/cache"
	"github.com/QudsLab/pqchub-go/internal/fetch"
	"github.com/QudsLab/pqchub-go/internal/loader"
	"github.com/QudsLab/pqchub-go/internal/resolver"
)

// Resolution and loading errors, re-exported so callers can match them with
// errors.Is without reaching into internal packages.
var (
	// ErrPlatformUnsupported indicates the host OS/arch has no published
	// binary. Terminal; retrying cannot help.
	ErrPlatformUnsupported = resolver.ErrPlatformUnsupported

	// ErrLibraryNotFound indicates no manifest entry, cached copy, or local
	// file exists for the current platform.
	ErrLibraryNotFound = resolver.ErrLibraryNotFound

	// ErrOverrideNotFound indicates an explicitly configured library path
	// does not point at a readable file.
	ErrOverrideNotFound = resolver.ErrOverrideNotFound

	// ErrDownload indicates a failed artifact transfer (network, timeout,
	// size or checksum mismatch). Recoverable by a caller-level retry.
	ErrDownload = fetch.ErrDownload

	// ErrCacheWrite indicates the filesystem denied the atomic cache
	// publish. The resolver never falls back to an unverified partial file.
	ErrCacheWrite = cache.ErrCacheWrite

	// ErrLibraryLoad indicates the resolved file is not loadable in this
	// process (bad format, architecture mismatch, missing OS dependency).
	ErrLibraryLoad = loader.ErrLibraryLoad

	// ErrSymbolNotFound indicates an expected exported function is missing
	// from the loaded library. Raised at bind time, naming the symbol.
	ErrSymbolNotFound = loader.ErrSymbolNotFound
)

// Call-time errors.
var (
	// ErrInvalidBufferLength indicates a caller-supplied buffer does not
	// match the algorithm's fixed length. The native function is never
	// invoked with a wrong-sized buffer.
	ErrInvalidBufferLength = errors.New("pqc: invalid buffer length")

	// ErrWrongKind indicates a descriptor of the wrong family was passed,
	// e.g. a signature algorithm to Library.KEM.
	ErrWrongKind = errors.New("pqc: algorithm kind mismatch")

	// ErrKeyGeneration indicates the native keypair call reported failure.
	ErrKeyGeneration = errors.New("pqc: key generation failed")

	// ErrEncapsulation indicates the native encapsulate call reported failure.
	ErrEncapsulation = errors.New("pqc: encapsulation failed")

	// ErrDecapsulation indicates the native decapsulate call reported failure.
	ErrDecapsulation = errors.New("pqc: decapsulation failed")

	// ErrSigning indicates the native sign call reported failure.
	ErrSigning = errors.New("pqc: signing failed")

	// ErrVerificationFailed indicates the signature did not verify. The
	// upstream libraries do not consistently distinguish malformed from
	// invalid signatures, so every non-zero verify code maps here.
	ErrVerificationFailed = errors.New("pqc: signature verification failed")
)

// Error wraps an underlying error with the operation that produced it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pqc.%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NativeCallError carries a non-zero return code that no documented mapping
// covers. The raw code is preserved for diagnostics.
type NativeCallError struct {
	Op   string
	Code int32
}

func (e *NativeCallError) Error() string {
	return fmt.Sprintf("native %s returned code %d", e.Op, e.Code)
}

func lengthError(op, field string, want, got int) error {
	return &Error{
		Op:  op,
		Err: fmt.Errorf("%w: %s must be exactly %d bytes, got %d", ErrInvalidBufferLength, field, want, got),
	}
}
