// Package pqc exposes the post-quantum algorithms shipped as prebuilt
// native libraries: Kyber key encapsulation and Dilithium/Falcon signatures
// from the PQClean builds. The package resolves the correct binary for the
// running platform (override path, local cache, or manifest download),
// loads it, binds the exported symbols against a static descriptor table,
// and validates every buffer length before a native call is made.
//
// Typical use goes through the process-wide library:
//
//	lib, err := pqc.Default(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	kem, err := lib.KEM(pqc.Kyber768)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pk, sk, err := kem.Keypair()
//	ct, ss, err := kem.Encapsulate(pk)
//	ss2, err := kem.Decapsulate(ct, sk)
//
//	signer, err := lib.Signer(pqc.Dilithium3)
//	pk, sk, err = signer.Keypair()
//	sig, err := signer.Sign(message, sk)
//	ok, err := signer.Verify(message, sig, pk)
//
// Bound operations are stateless and safe for concurrent use. All errors
// are typed: resolution and binding problems fail eagerly, before any
// cryptographic call, and call-time contract violations never reach the
// native boundary.
package pqc
