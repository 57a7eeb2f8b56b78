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

// Signer is the interface for signing operations.
// Implementations must never expose private key material.
type Signer interface {
	// Algorithm returns the signing algorithm.
	Algorithm() Algorithm

	// PublicKey returns the public key.
	PublicKey() PublicKey

	// Sign signs the message and returns the signature. Ed25519 signs the
	// message directly; secp256k1 signs its SHA-256 hash and returns a
	// DER-encoded signature.
	Sign(message []byte) ([]byte, error)
}

// LocalSigner signs with an in-process private key.
type LocalSigner struct {
	priv PrivateKey
	pub  PublicKey
}

// NewLocalSigner wraps a private key in a signer, validating the key on
// the way in.
func NewLocalSigner(priv PrivateKey) (*LocalSigner, error) {
	pub, err := DerivePublicKey(priv)
	if err != nil {
		return nil, err
	}
	keyCopy := make([]byte, len(priv.Bytes))
	copy(keyCopy, priv.Bytes)
	return &LocalSigner{
		priv: PrivateKey{Algorithm: priv.Algorithm, Bytes: keyCopy},
		pub:  pub,
	}, nil
}

// Algorithm returns the signing algorithm.
func (s *LocalSigner) Algorithm() Algorithm { return s.priv.Algorithm }

// PublicKey returns a copy of the public key.
func (s *LocalSigner) PublicKey() PublicKey {
	out := make([]byte, len(s.pub.Bytes))
	copy(out, s.pub.Bytes)
	return PublicKey{Algorithm: s.pub.Algorithm, Bytes: out}
}

// Sign signs the message.
func (s *LocalSigner) Sign(message []byte) ([]byte, error) {
	switch s.priv.Algorithm {
	case AlgorithmEd25519:
		return ed25519.Sign(ed25519.PrivateKey(s.priv.Bytes), message), nil

	case AlgorithmSecp256k1:
		hash := sha256.Sum256(message)
		key := secp256k1.PrivKeyFromBytes(s.priv.Bytes)
		return secpecdsa.Sign(key, hash[:]).Serialize(), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidAlgorithm, s.priv.Algorithm)
	}
}

// SignDigest signs the raw hash bytes behind a digest, the message form
// attestation events commit to.
func (s *LocalSigner) SignDigest(d types.Digest) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	raw, err := base64.RawURLEncoding.DecodeString(d.B64)
	if err != nil {
		return nil, fmt.Errorf("decode digest: %w", err)
	}
	return s.Sign(raw)
}

// Wipe zeroes the signer's private key. The signer is unusable afterwards.
func (s *LocalSigner) Wipe() {
	s.priv.Wipe()
}
