package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// PublicKey represents a public key for any supported algorithm.
type PublicKey struct {
	Algorithm Algorithm
	Bytes     []byte
}

// PrivateKey represents a private key for any supported algorithm.
// Private keys should be wiped from memory when no longer needed.
type PrivateKey struct {
	Algorithm Algorithm
	Bytes     []byte
}

// Wipe zeroes the private key bytes to reduce exposure in memory.
func (pk *PrivateKey) Wipe() {
	for i := range pk.Bytes {
		pk.Bytes[i] = 0
	}
}

// GenerateKey creates a fresh key pair for the algorithm.
func GenerateKey(algo Algorithm) (PrivateKey, PublicKey, error) {
	switch algo {
	case AlgorithmEd25519:
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return PrivateKey{}, PublicKey{}, fmt.Errorf("generate ed25519 key: %w", err)
		}
		return PrivateKey{Algorithm: algo, Bytes: priv},
			PublicKey{Algorithm: algo, Bytes: pub}, nil

	case AlgorithmSecp256k1:
		priv, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			return PrivateKey{}, PublicKey{}, fmt.Errorf("generate secp256k1 key: %w", err)
		}
		return PrivateKey{Algorithm: algo, Bytes: priv.Serialize()},
			PublicKey{Algorithm: algo, Bytes: priv.PubKey().SerializeCompressed()}, nil

	default:
		return PrivateKey{}, PublicKey{}, fmt.Errorf("%w: %q", ErrInvalidAlgorithm, algo)
	}
}

// DerivePublicKey recovers the public key from a private key.
func DerivePublicKey(priv PrivateKey) (PublicKey, error) {
	switch priv.Algorithm {
	case AlgorithmEd25519:
		if len(priv.Bytes) != ed25519.PrivateKeySize {
			return PublicKey{}, fmt.Errorf("%w: ed25519 private key has %d bytes", ErrInvalidKey, len(priv.Bytes))
		}
		pub := ed25519.PrivateKey(priv.Bytes).Public().(ed25519.PublicKey)
		return PublicKey{Algorithm: priv.Algorithm, Bytes: []byte(pub)}, nil

	case AlgorithmSecp256k1:
		if len(priv.Bytes) != 32 {
			return PublicKey{}, fmt.Errorf("%w: secp256k1 private key has %d bytes", ErrInvalidKey, len(priv.Bytes))
		}
		k := secp256k1.PrivKeyFromBytes(priv.Bytes)
		return PublicKey{Algorithm: priv.Algorithm, Bytes: k.PubKey().SerializeCompressed()}, nil

	default:
		return PublicKey{}, fmt.Errorf("%w: %q", ErrInvalidAlgorithm, priv.Algorithm)
	}
}
