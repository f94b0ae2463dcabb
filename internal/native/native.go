// Package native binds typed Go function values onto the symbols exported
// by the loaded library. The symbol convention, fixed by the upstream
// binary builds, is <PREFIX>_crypto_kem_{keypair,enc,dec} for KEMs and
// <PREFIX>_crypto_sign_{keypair,signature,verify} for signature schemes,
// all returning a C int status code where zero means success.
//
// The interfaces here are the seam between the public wrapper and the FFI:
// everything above this package works with byte slices and never sees a raw
// address. All bound functions are stateless and reentrant by contract with
// the wrapped library, so a single table may be called concurrently.
package native

// API exposes the loaded library to the public wrapper.
type API interface {
	// KEM binds the key-encapsulation symbol table for prefix. Every
	// required symbol is resolved eagerly; a missing one fails here, at
	// bind time, naming the symbol.
	KEM(prefix string) (KEM, error)

	// Signer binds the signature symbol table for prefix, with the same
	// eager-validation contract as KEM.
	Signer(prefix string) (Signer, error)

	// Version reports the string returned by pqchub_get_version.
	Version() (string, error)

	// Algorithms reports the comma-separated list returned by
	// pqchub_get_algorithms.
	Algorithms() (string, error)
}

// KEM is the raw key-encapsulation function table. Buffers must already be
// sized to the algorithm's contract; callers above this layer are
// responsible for that validation.
type KEM interface {
	Keypair(pk, sk []byte) int32
	Encapsulate(ct, ss, pk []byte) int32
	Decapsulate(ss, ct, sk []byte) int32
}

// Signer is the raw signature function table. Sign writes at most cap(sig)
// bytes and reports the actual signature length through sigLen.
type Signer interface {
	Keypair(pk, sk []byte) int32
	Sign(sig []byte, sigLen *uint64, msg, sk []byte) int32
	Verify(sig, msg, pk []byte) int32
}

// Symbol suffixes appended to an algorithm's prefix.
const (
	symKEMKeypair  = "_crypto_kem_keypair"
	symKEMEnc      = "_crypto_kem_enc"
	symKEMDec      = "_crypto_kem_dec"
	symSignKeypair = "_crypto_sign_keypair"
	symSignSign    = "_crypto_sign_signature"
	symSignVerify  = "_crypto_sign_verify"

	symVersion    = "pqchub_get_version"
	symAlgorithms = "pqchub_get_algorithms"
)
