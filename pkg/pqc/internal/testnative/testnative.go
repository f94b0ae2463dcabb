// Package testnative is an in-memory stand-in for the loaded native
// library. Its KEM encapsulate/decapsulate are exact inverses and its
// signatures are keyed digests that break on any single-byte change, so the
// wrapper's contract machinery can be exercised without a real binary.
// Every table counts its calls and can be forced to return arbitrary codes,
// which the tests use to prove that rejected inputs never reach this layer
// and that unknown codes translate faithfully.
package testnative

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/QudsLab/pqchub-go/internal/loader"
	"github.com/QudsLab/pqchub-go/internal/native"
)

// Operation keys for call counters and forced return codes.
const (
	OpKEMKeypair  = "kem_keypair"
	OpEncapsulate = "kem_enc"
	OpDecapsulate = "kem_dec"
	OpSignKeypair = "sign_keypair"
	OpSign        = "sign_signature"
	OpVerify      = "sign_verify"
)

// Lib implements native.API in pure Go.
type Lib struct {
	mu      sync.Mutex
	calls   map[string]int
	forced  map[string]int32
	missing map[string]bool

	// LibVersion and LibAlgorithms are what the info symbols report.
	LibVersion    string
	LibAlgorithms string
}

// New returns an empty mock library exporting every symbol.
func New() *Lib {
	return &Lib{
		calls:         map[string]int{},
		forced:        map[string]int32{},
		missing:       map[string]bool{},
		LibVersion:    "1.0.0-test",
		LibAlgorithms: "kyber512,kyber768,kyber1024,dilithium2,dilithium3,dilithium5,falcon512,falcon1024",
	}
}

// Calls returns how many times op reached the native layer.
func (l *Lib) Calls(op string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[op]
}

// ForceCode makes op return code instead of doing any work.
func (l *Lib) ForceCode(op string, code int32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.forced[op] = code
}

// DropSymbol simulates a build missing the named exported function.
func (l *Lib) DropSymbol(symbol string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.missing[symbol] = true
}

func (l *Lib) enter(op string) (int32, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[op]++
	code, ok := l.forced[op]
	return code, ok
}

func (l *Lib) checkSymbols(symbols ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range symbols {
		if l.missing[s] {
			return fmt.Errorf("%w: %q", loader.ErrSymbolNotFound, s)
		}
	}
	return nil
}

// KEM implements native.API.
func (l *Lib) KEM(prefix string) (native.KEM, error) {
	if err := l.checkSymbols(
		prefix+"_crypto_kem_keypair",
		prefix+"_crypto_kem_enc",
		prefix+"_crypto_kem_dec",
	); err != nil {
		return nil, err
	}
	return &mockKEM{lib: l}, nil
}

// Signer implements native.API.
func (l *Lib) Signer(prefix string) (native.Signer, error) {
	if err := l.checkSymbols(
		prefix+"_crypto_sign_keypair",
		prefix+"_crypto_sign_signature",
		prefix+"_crypto_sign_verify",
	); err != nil {
		return nil, err
	}
	return &mockSigner{lib: l}, nil
}

// Version implements native.API.
func (l *Lib) Version() (string, error) {
	if err := l.checkSymbols("pqchub_get_version"); err != nil {
		return "", err
	}
	return l.LibVersion, nil
}

// Algorithms implements native.API.
func (l *Lib) Algorithms() (string, error) {
	if err := l.checkSymbols("pqchub_get_algorithms"); err != nil {
		return "", err
	}
	return l.LibAlgorithms, nil
}

// expand derives len(dst) deterministic bytes from a label and seed.
func expand(dst []byte, label string, seed []byte) {
	var counter [4]byte
	off := 0
	for i := 0; off < len(dst); i++ {
		binary.BigEndian.PutUint32(counter[:], uint32(i))
		h := sha256.New()
		h.Write([]byte(label))
		h.Write(counter[:])
		h.Write(seed)
		off += copy(dst[off:], h.Sum(nil))
	}
}

// publicFromSecret derives the public key bytes a secret key corresponds
// to, which is what makes encapsulate and decapsulate exact inverses.
func publicFromSecret(pk, sk []byte) {
	seed := sha256.Sum256(sk)
	expand(pk, "pk", seed[:])
}

type mockKEM struct {
	lib *Lib
}

func (m *mockKEM) Keypair(pk, sk []byte) int32 {
	if code, ok := m.lib.enter(OpKEMKeypair); ok {
		return code
	}
	if _, err := rand.Read(sk); err != nil {
		return -1
	}
	publicFromSecret(pk, sk)
	return 0
}

func (m *mockKEM) Encapsulate(ct, ss, pk []byte) int32 {
	if code, ok := m.lib.enter(OpEncapsulate); ok {
		return code
	}
	var nonce [32]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return -1
	}
	copy(ct, nonce[:])
	expand(ct[len(nonce):], "ctpad", nonce[:])

	pkDigest := sha256.Sum256(pk)
	expand(ss, "ss", append(pkDigest[:], nonce[:]...))
	return 0
}

func (m *mockKEM) Decapsulate(ss, ct, sk []byte) int32 {
	if code, ok := m.lib.enter(OpDecapsulate); ok {
		return code
	}
	pk := make([]byte, publicKeyLen(len(sk)))
	publicFromSecret(pk, sk)
	pkDigest := sha256.Sum256(pk)
	expand(ss, "ss", append(pkDigest[:], ct[:32]...))
	return 0
}

// publicKeyLen recovers the matching public key length from a secret key
// length. Decapsulate and Sign receive only the secret key, so the mock
// rebuilds the public key to agree with what Keypair produced; the pairs
// mirror the descriptor table.
func publicKeyLen(skLen int) int {
	switch skLen {
	case 1632:
		return 800 // kyber512
	case 2400:
		return 1184 // kyber768
	case 3168:
		return 1568 // kyber1024
	case 2528:
		return 1312 // dilithium2
	case 4000:
		return 1952 // dilithium3
	case 4864:
		return 2592 // dilithium5
	case 1281:
		return 897 // falcon512
	case 2305:
		return 1793 // falcon1024
	default:
		return skLen
	}
}

type mockSigner struct {
	lib *Lib
}

func (m *mockSigner) Keypair(pk, sk []byte) int32 {
	if code, ok := m.lib.enter(OpSignKeypair); ok {
		return code
	}
	if _, err := rand.Read(sk); err != nil {
		return -1
	}
	publicFromSecret(pk, sk)
	return 0
}

func (m *mockSigner) Sign(sig []byte, sigLen *uint64, msg, sk []byte) int32 {
	if code, ok := m.lib.enter(OpSign); ok {
		return code
	}
	pk := make([]byte, publicKeyLen(len(sk)))
	publicFromSecret(pk, sk)
	pkDigest := sha256.Sum256(pk)

	h := sha256.New()
	h.Write(pkDigest[:])
	h.Write(msg)
	tag := h.Sum(nil)

	// Vary the length a little so truncation to the reported length is
	// actually exercised.
	n := len(sig) - int(tag[0]%7)
	copy(sig, tag)
	expand(sig[len(tag):n], "sigpad", tag)
	*sigLen = uint64(n)
	return 0
}

func (m *mockSigner) Verify(sig, msg, pk []byte) int32 {
	if code, ok := m.lib.enter(OpVerify); ok {
		return code
	}
	if len(sig) < sha256.Size {
		return -1
	}
	pkDigest := sha256.Sum256(pk)
	h := sha256.New()
	h.Write(pkDigest[:])
	h.Write(msg)
	tag := h.Sum(nil)

	want := make([]byte, len(sig))
	copy(want, tag)
	expand(want[len(tag):], "sigpad", tag)

	for i := range sig {
		if sig[i] != want[i] {
			return -1
		}
	}
	return 0
}
