package native

import (
	"github.com/ebitengine/purego"

	"github.com/QudsLab/pqchub-go/internal/loader"
)

// Lib implements API on top of a loaded library handle. Function values are
// registered with purego against symbol addresses resolved through the
// handle, so every table is validated before it can be called.
type Lib struct {
	h *loader.Handle
}

// NewLib wraps a loaded handle. The handle is shared and never owned; it
// lives until process exit.
func NewLib(h *loader.Handle) *Lib {
	return &Lib{h: h}
}

// register resolves symbol and binds fptr (a pointer to a Go func value) to
// its address. Lookup failures surface as loader.ErrSymbolNotFound.
func (l *Lib) register(fptr any, symbol string) error {
	addr, err := l.h.Lookup(symbol)
	if err != nil {
		return err
	}
	purego.RegisterFunc(fptr, addr)
	return nil
}

type kemFuncs struct {
	keypair func(pk, sk []byte) int32
	enc     func(ct, ss, pk []byte) int32
	dec     func(ss, ct, sk []byte) int32
}

// KEM binds the three KEM entry points for prefix.
func (l *Lib) KEM(prefix string) (KEM, error) {
	f := &kemFuncs{}
	bindings := []struct {
		fptr   any
		suffix string
	}{
		{&f.keypair, symKEMKeypair},
		{&f.enc, symKEMEnc},
		{&f.dec, symKEMDec},
	}
	for _, b := range bindings {
		if err := l.register(b.fptr, prefix+b.suffix); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *kemFuncs) Keypair(pk, sk []byte) int32 { return f.keypair(pk, sk) }

func (f *kemFuncs) Encapsulate(ct, ss, pk []byte) int32 { return f.enc(ct, ss, pk) }

func (f *kemFuncs) Decapsulate(ss, ct, sk []byte) int32 { return f.dec(ss, ct, sk) }

type signFuncs struct {
	keypair func(pk, sk []byte) int32
	sign    func(sig []byte, sigLen *uint64, msg []byte, msgLen uint64, sk []byte) int32
	verify  func(sig []byte, sigLen uint64, msg []byte, msgLen uint64, pk []byte) int32
}

// Signer binds the three signature entry points for prefix.
func (l *Lib) Signer(prefix string) (Signer, error) {
	f := &signFuncs{}
	bindings := []struct {
		fptr   any
		suffix string
	}{
		{&f.keypair, symSignKeypair},
		{&f.sign, symSignSign},
		{&f.verify, symSignVerify},
	}
	for _, b := range bindings {
		if err := l.register(b.fptr, prefix+b.suffix); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *signFuncs) Keypair(pk, sk []byte) int32 { return f.keypair(pk, sk) }

func (f *signFuncs) Sign(sig []byte, sigLen *uint64, msg, sk []byte) int32 {
	return f.sign(sig, sigLen, msg, uint64(len(msg)), sk)
}

func (f *signFuncs) Verify(sig, msg, pk []byte) int32 {
	return f.verify(sig, uint64(len(sig)), msg, uint64(len(msg)), pk)
}

// Version binds and calls pqchub_get_version. A library without the symbol
// reports the lookup error; the caller decides how loud to be about it.
func (l *Lib) Version() (string, error) {
	var fn func() string
	if err := l.register(&fn, symVersion); err != nil {
		return "", err
	}
	return fn(), nil
}

// Algorithms binds and calls pqchub_get_algorithms.
func (l *Lib) Algorithms() (string, error) {
	var fn func() string
	if err := l.register(&fn, symAlgorithms); err != nil {
		return "", err
	}
	return fn(), nil
}
