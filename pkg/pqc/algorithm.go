package pqc

// Kind distinguishes the two primitive families the native library exports.
type Kind int

const (
	// KindKEM is a key encapsulation mechanism: keypair, encapsulate,
	// decapsulate.
	KindKEM Kind = iota + 1

	// KindSignature is a digital signature scheme: keypair, sign, verify.
	KindSignature
)

func (k Kind) String() string {
	switch k {
	case KindKEM:
		return "kem"
	case KindSignature:
		return "signature"
	default:
		return "unknown"
	}
}

// Algorithm is the static descriptor for one primitive variant: its symbol
// prefix and the fixed byte lengths of every buffer crossing the FFI
// boundary. Descriptors are compile-time constants of the wrapper and are
// never derived from the native library at runtime.
//
// For signature schemes SignatureSize is an upper bound; the native sign
// call reports the actual length, which matters for Falcon's
// variable-length signatures.
type Algorithm struct {
	Name             string
	Kind             Kind
	Prefix           string
	PublicKeySize    int
	SecretKeySize    int
	CiphertextSize   int
	SharedSecretSize int
	SignatureSize    int
}

func (a Algorithm) String() string { return a.Name }

// The descriptor table mirrors the PQClean "clean" parameter sets shipped
// in the prebuilt binaries.
var (
	Kyber512 = Algorithm{
		Name:             "kyber512",
		Kind:             KindKEM,
		Prefix:           "PQCLEAN_KYBER512_CLEAN",
		PublicKeySize:    800,
		SecretKeySize:    1632,
		CiphertextSize:   768,
		SharedSecretSize: 32,
	}

	Kyber768 = Algorithm{
		Name:             "kyber768",
		Kind:             KindKEM,
		Prefix:           "PQCLEAN_KYBER768_CLEAN",
		PublicKeySize:    1184,
		SecretKeySize:    2400,
		CiphertextSize:   1088,
		SharedSecretSize: 32,
	}

	Kyber1024 = Algorithm{
		Name:             "kyber1024",
		Kind:             KindKEM,
		Prefix:           "PQCLEAN_KYBER1024_CLEAN",
		PublicKeySize:    1568,
		SecretKeySize:    3168,
		CiphertextSize:   1568,
		SharedSecretSize: 32,
	}

	Dilithium2 = Algorithm{
		Name:          "dilithium2",
		Kind:          KindSignature,
		Prefix:        "PQCLEAN_DILITHIUM2_CLEAN",
		PublicKeySize: 1312,
		SecretKeySize: 2528,
		SignatureSize: 2420,
	}

	Dilithium3 = Algorithm{
		Name:          "dilithium3",
		Kind:          KindSignature,
		Prefix:        "PQCLEAN_DILITHIUM3_CLEAN",
		PublicKeySize: 1952,
		SecretKeySize: 4000,
		SignatureSize: 3293,
	}

	Dilithium5 = Algorithm{
		Name:          "dilithium5",
		Kind:          KindSignature,
		Prefix:        "PQCLEAN_DILITHIUM5_CLEAN",
		PublicKeySize: 2592,
		SecretKeySize: 4864,
		SignatureSize: 4595,
	}

	Falcon512 = Algorithm{
		Name:          "falcon512",
		Kind:          KindSignature,
		Prefix:        "PQCLEAN_FALCON512_CLEAN",
		PublicKeySize: 897,
		SecretKeySize: 1281,
		SignatureSize: 690,
	}

	Falcon1024 = Algorithm{
		Name:          "falcon1024",
		Kind:          KindSignature,
		Prefix:        "PQCLEAN_FALCON1024_CLEAN",
		PublicKeySize: 1793,
		SecretKeySize: 2305,
		SignatureSize: 1330,
	}
)

var algorithms = []Algorithm{
	Kyber512, Kyber768, Kyber1024,
	Dilithium2, Dilithium3, Dilithium5,
	Falcon512, Falcon1024,
}

// Algorithms returns the full descriptor table in a fixed order.
func Algorithms() []Algorithm {
	out := make([]Algorithm, len(algorithms))
	copy(out, algorithms)
	return out
}

// AlgorithmByName looks up a descriptor by its lowercase name.
func AlgorithmByName(name string) (Algorithm, bool) {
	for _, a := range algorithms {
		if a.Name == name {
			return a, true
		}
	}
	return Algorithm{}, false
}
