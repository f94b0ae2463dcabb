package pqc

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QudsLab/pqchub-go/pkg/pqc/internal/testnative"
	"github.com/QudsLab/pqchub-go/pkg/pqc/logging"
)

func TestLibraryVersionAndAlgorithmList(t *testing.T) {
	lib, mock := newTestLibrary(t)

	v, err := lib.Version()
	require.NoError(t, err)
	assert.Equal(t, "1.0.0-test", v)

	a, err := lib.AlgorithmList()
	require.NoError(t, err)
	assert.Contains(t, a, "kyber768")

	// A library without the info symbols reports the absence instead of a
	// placeholder string.
	mock.DropSymbol("pqchub_get_version")
	_, err = lib.Version()
	assert.ErrorIs(t, err, ErrSymbolNotFound)

	mock.DropSymbol("pqchub_get_algorithms")
	_, err = lib.AlgorithmList()
	assert.ErrorIs(t, err, ErrSymbolNotFound)
}

func TestBoundOperationsConcurrentUse(t *testing.T) {
	lib, _ := newTestLibrary(t)
	kem, err := lib.KEM(Kyber768)
	require.NoError(t, err)

	pk, sk, err := kem.Keypair()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				ct, ss, err := kem.Encapsulate(pk)
				if !assert.NoError(t, err) {
					return
				}
				got, err := kem.Decapsulate(ct, sk)
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, ss, got)
			}
		}()
	}
	wg.Wait()
}

func TestDownloadRetriesConfig(t *testing.T) {
	// Unset selects the default, an explicit zero means a single attempt.
	assert.Equal(t, uint64(2), Config{}.retries())

	zero := uint64(0)
	assert.Equal(t, uint64(0), Config{DownloadRetries: &zero}.retries())

	five := uint64(5)
	assert.Equal(t, uint64(5), Config{DownloadRetries: &five}.retries())
}

func TestKeypairLogsRedactSecrets(t *testing.T) {
	var buf bytes.Buffer
	lib := &Library{
		api: testnative.New(),
		log: logging.New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	}

	kem, err := lib.KEM(Kyber512)
	require.NoError(t, err)
	_, sk, err := kem.Keypair()
	require.NoError(t, err)

	signer, err := lib.Signer(Dilithium2)
	require.NoError(t, err)
	_, ssk, err := signer.Keypair()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "bound KEM")
	assert.Contains(t, out, "bound signature scheme")
	assert.Contains(t, out, "generated key pair")
	assert.Contains(t, out, "secret_key=[redacted]")
	assert.NotContains(t, out, fmt.Sprintf("%x", sk))
	assert.NotContains(t, out, fmt.Sprintf("%x", ssk))
}

func TestAlgorithmTable(t *testing.T) {
	algs := Algorithms()
	assert.Len(t, algs, 8)

	seen := map[string]bool{}
	for _, a := range algs {
		assert.False(t, seen[a.Name], "duplicate name %s", a.Name)
		seen[a.Name] = true

		assert.NotEmpty(t, a.Prefix)
		assert.Positive(t, a.PublicKeySize)
		assert.Positive(t, a.SecretKeySize)
		switch a.Kind {
		case KindKEM:
			assert.Positive(t, a.CiphertextSize)
			assert.Equal(t, 32, a.SharedSecretSize, "all Kyber variants use 32-byte shared secrets")
			assert.Zero(t, a.SignatureSize)
		case KindSignature:
			assert.Positive(t, a.SignatureSize)
			assert.Zero(t, a.CiphertextSize)
		default:
			t.Fatalf("algorithm %s has unknown kind", a.Name)
		}
	}

	got, ok := AlgorithmByName("falcon512")
	require.True(t, ok)
	assert.Equal(t, Falcon512, got)

	_, ok = AlgorithmByName("rsa2048")
	assert.False(t, ok)
}
