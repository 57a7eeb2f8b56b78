// Package crypto provides the signing primitives behind attestation
// events: key generation, signers, signature verification, and keystores.
//
// Nothing in this package is consulted by the trust kernel. Whether a
// signature is required, and whether it is trusted, is host policy; the
// kernel only gives the resulting attestation a tamper-evident identity.
package crypto

// Algorithm represents a supported signing algorithm.
type Algorithm string

const (
	// AlgorithmEd25519 is the Ed25519 signature algorithm.
	// Key size: 32 bytes public, signature size: 64 bytes.
	// Primary recommended algorithm.
	AlgorithmEd25519 Algorithm = "ed25519"

	// AlgorithmSecp256k1 is the secp256k1 ECDSA algorithm.
	// Key size: 33 bytes (compressed), DER-encoded signatures.
	// Provided for ecosystems standardized on that curve.
	AlgorithmSecp256k1 Algorithm = "secp256k1"
)

// String returns the string representation of the algorithm.
func (a Algorithm) String() string {
	return string(a)
}

// IsValid returns true if the algorithm is a recognized type.
func (a Algorithm) IsValid() bool {
	switch a {
	case AlgorithmEd25519, AlgorithmSecp256k1:
		return true
	default:
		return false
	}
}
