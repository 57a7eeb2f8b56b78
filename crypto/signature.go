package crypto

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/Northroot-Labs/northroot/types"
)

// Verify checks a signature over a message under the given public key.
// The boolean is false for a well-formed but non-matching signature; the
// error is reserved for malformed inputs.
func Verify(pub PublicKey, message, sig []byte) (bool, error) {
	switch pub.Algorithm {
	case AlgorithmEd25519:
		if len(pub.Bytes) != ed25519.PublicKeySize {
			return false, fmt.Errorf("%w: ed25519 public key has %d bytes", ErrInvalidKey, len(pub.Bytes))
		}
		return ed25519.Verify(ed25519.PublicKey(pub.Bytes), message, sig), nil

	case AlgorithmSecp256k1:
		key, err := secp256k1.ParsePubKey(pub.Bytes)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		parsed, err := secpecdsa.ParseDERSignature(sig)
		if err != nil {
			return false, nil
		}
		hash := sha256.Sum256(message)
		return parsed.Verify(hash[:], key), nil

	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidAlgorithm, pub.Algorithm)
	}
}

// VerifyDigest checks a signature over the raw hash bytes behind a digest.
func VerifyDigest(pub PublicKey, d types.Digest, sig []byte) (bool, error) {
	if err := d.Validate(); err != nil {
		return false, err
	}
	raw, err := base64.RawURLEncoding.DecodeString(d.B64)
	if err != nil {
		return false, fmt.Errorf("decode digest: %w", err)
	}
	return Verify(pub, raw, sig)
}
