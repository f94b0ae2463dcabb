package pqc

import (
	"context"
	"fmt"

	"github.com/QudsLab/pqchub-go/internal/native"
	"github.com/QudsLab/pqchub-go/pkg/pqc/logging"
)

// KEM is a bound key encapsulation mechanism: one algorithm descriptor
// paired with its resolved native symbols. The native functions are
// stateless and reentrant, so a KEM may be shared and called concurrently.
type KEM struct {
	alg Algorithm
	fns native.KEM
	log logging.Logger
}

// KEM binds the key-encapsulation operations for alg. Every required symbol
// is validated here; a missing one fails now, naming the symbol, instead of
// on first use.
func (l *Library) KEM(alg Algorithm) (*KEM, error) {
	if alg.Kind != KindKEM {
		return nil, &Error{Op: "KEM", Err: fmt.Errorf("%w: %s is a %s algorithm", ErrWrongKind, alg.Name, alg.Kind)}
	}
	fns, err := l.api.KEM(alg.Prefix)
	if err != nil {
		return nil, &Error{Op: "KEM", Err: err}
	}
	l.log.Debug(context.Background(), "bound KEM", "algorithm", alg.Name)
	return &KEM{alg: alg, fns: fns, log: l.log}, nil
}

// Algorithm returns the descriptor this KEM was bound with.
func (k *KEM) Algorithm() Algorithm { return k.alg }

// Keypair generates a fresh key pair.
func (k *KEM) Keypair() (publicKey, secretKey []byte, err error) {
	publicKey = make([]byte, k.alg.PublicKeySize)
	secretKey = make([]byte, k.alg.SecretKeySize)
	if err := translate(KindKEM, opKeypair, k.fns.Keypair(publicKey, secretKey)); err != nil {
		return nil, nil, err
	}
	k.log.Debug(context.Background(), "generated key pair", "algorithm", k.alg.Name, logging.Redacted("secret_key"))
	return publicKey, secretKey, nil
}

// Encapsulate produces a ciphertext and shared secret for publicKey.
func (k *KEM) Encapsulate(publicKey []byte) (ciphertext, sharedSecret []byte, err error) {
	if len(publicKey) != k.alg.PublicKeySize {
		return nil, nil, lengthError(opEncapsulate, "public key", k.alg.PublicKeySize, len(publicKey))
	}
	ciphertext = make([]byte, k.alg.CiphertextSize)
	sharedSecret = make([]byte, k.alg.SharedSecretSize)
	if err := translate(KindKEM, opEncapsulate, k.fns.Encapsulate(ciphertext, sharedSecret, publicKey)); err != nil {
		return nil, nil, err
	}
	return ciphertext, sharedSecret, nil
}

// Decapsulate recovers the shared secret from ciphertext using secretKey.
func (k *KEM) Decapsulate(ciphertext, secretKey []byte) (sharedSecret []byte, err error) {
	if len(ciphertext) != k.alg.CiphertextSize {
		return nil, lengthError(opDecapsulate, "ciphertext", k.alg.CiphertextSize, len(ciphertext))
	}
	if len(secretKey) != k.alg.SecretKeySize {
		return nil, lengthError(opDecapsulate, "secret key", k.alg.SecretKeySize, len(secretKey))
	}
	sharedSecret = make([]byte, k.alg.SharedSecretSize)
	if err := translate(KindKEM, opDecapsulate, k.fns.Decapsulate(sharedSecret, ciphertext, secretKey)); err != nil {
		return nil, err
	}
	return sharedSecret, nil
}
