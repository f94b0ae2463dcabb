package pqc

import "fmt"

// Operation names used in wrapped errors.
const (
	opKeypair     = "Keypair"
	opEncapsulate = "Encapsulate"
	opDecapsulate = "Decapsulate"
	opSign        = "Sign"
	opVerify      = "Verify"
)

// documentedCodes lists the non-zero return codes the wrapped library
// family is known to emit, per algorithm kind. The PQClean builds signal
// failure with 1 or -1; anything else is treated as undocumented and
// surfaces as a NativeCallError carrying the raw code.
var documentedCodes = map[Kind]map[int32]bool{
	KindKEM:       {1: true, -1: true},
	KindSignature: {1: true, -1: true},
}

// opFailures maps each operation to its taxonomy sentinel.
var opFailures = map[string]error{
	opKeypair:     ErrKeyGeneration,
	opEncapsulate: ErrEncapsulation,
	opDecapsulate: ErrDecapsulation,
	opSign:        ErrSigning,
	opVerify:      ErrVerificationFailed,
}

// translate maps a native return code onto the error taxonomy. Zero is
// success. Verify is special-cased: the upstream variants disagree on the
// exact non-zero code for an invalid signature, so every non-zero verify
// code means verification failure.
func translate(kind Kind, op string, code int32) error {
	if code == 0 {
		return nil
	}
	if op == opVerify {
		return &Error{Op: op, Err: fmt.Errorf("%w (code %d)", ErrVerificationFailed, code)}
	}
	if documentedCodes[kind][code] {
		return &Error{Op: op, Err: fmt.Errorf("%w (code %d)", opFailures[op], code)}
	}
	return &Error{Op: op, Err: &NativeCallError{Op: op, Code: code}}
}
