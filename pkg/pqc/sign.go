package pqc

import (
	"context"
	"errors"
	"fmt"

	"github.com/QudsLab/pqchub-go/internal/native"
	"github.com/QudsLab/pqchub-go/pkg/pqc/logging"
)

// SignatureScheme is a bound digital signature algorithm. Like KEM it is
// immutable after binding and safe for concurrent use.
type SignatureScheme struct {
	alg Algorithm
	fns native.Signer
	log logging.Logger
}

// Signer binds the signature operations for alg, validating every required
// symbol at bind time.
func (l *Library) Signer(alg Algorithm) (*SignatureScheme, error) {
	if alg.Kind != KindSignature {
		return nil, &Error{Op: "Signer", Err: fmt.Errorf("%w: %s is a %s algorithm", ErrWrongKind, alg.Name, alg.Kind)}
	}
	fns, err := l.api.Signer(alg.Prefix)
	if err != nil {
		return nil, &Error{Op: "Signer", Err: err}
	}
	l.log.Debug(context.Background(), "bound signature scheme", "algorithm", alg.Name)
	return &SignatureScheme{alg: alg, fns: fns, log: l.log}, nil
}

// Algorithm returns the descriptor this scheme was bound with.
func (s *SignatureScheme) Algorithm() Algorithm { return s.alg }

// Keypair generates a fresh signing key pair.
func (s *SignatureScheme) Keypair() (publicKey, secretKey []byte, err error) {
	publicKey = make([]byte, s.alg.PublicKeySize)
	secretKey = make([]byte, s.alg.SecretKeySize)
	if err := translate(KindSignature, opKeypair, s.fns.Keypair(publicKey, secretKey)); err != nil {
		return nil, nil, err
	}
	s.log.Debug(context.Background(), "generated key pair", "algorithm", s.alg.Name, logging.Redacted("secret_key"))
	return publicKey, secretKey, nil
}

// Sign produces a signature over message. The buffer is allocated at the
// algorithm's signature bound and truncated to the actual length the native
// call reports, which varies for Falcon.
func (s *SignatureScheme) Sign(message, secretKey []byte) ([]byte, error) {
	if len(secretKey) != s.alg.SecretKeySize {
		return nil, lengthError(opSign, "secret key", s.alg.SecretKeySize, len(secretKey))
	}
	sig := make([]byte, s.alg.SignatureSize)
	var sigLen uint64
	if err := translate(KindSignature, opSign, s.fns.Sign(sig, &sigLen, message, secretKey)); err != nil {
		return nil, err
	}
	if sigLen > uint64(len(sig)) {
		return nil, &Error{Op: opSign, Err: fmt.Errorf("native reported %d signature bytes, bound is %d", sigLen, len(sig))}
	}
	return sig[:sigLen], nil
}

// Verify reports whether signature is valid for message under publicKey.
// An invalid signature is a normal outcome, not an error: the returned
// error is non-nil only for contract violations detected before the native
// call. Signatures longer than the algorithm's bound cannot be valid and
// are rejected the same way.
func (s *SignatureScheme) Verify(message, signature, publicKey []byte) (bool, error) {
	if len(publicKey) != s.alg.PublicKeySize {
		return false, lengthError(opVerify, "public key", s.alg.PublicKeySize, len(publicKey))
	}
	if len(signature) > s.alg.SignatureSize {
		return false, &Error{
			Op:  opVerify,
			Err: fmt.Errorf("%w: signature is %d bytes, bound is %d", ErrInvalidBufferLength, len(signature), s.alg.SignatureSize),
		}
	}

	err := translate(KindSignature, opVerify, s.fns.Verify(signature, message, publicKey))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrVerificationFailed) {
		return false, nil
	}
	return false, err
}
