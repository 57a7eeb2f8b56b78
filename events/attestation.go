package events

import (
	"encoding/hex"
	"time"

	"github.com/Northroot-Labs/northroot/canonical"
	"github.com/Northroot-Labs/northroot/types"
)

// Attestation records a signature over a subject digest. The kernel never
// verifies signatures — that policy belongs to the host — but the
// attestation itself is content-addressed like any other event, so the
// claim cannot be altered after the fact.
type Attestation struct {
	ProfileID   string
	OccurredAt  time.Time
	PrincipalID string

	// Algorithm names the signature algorithm (e.g. "ed25519").
	Algorithm string

	// PublicKey is the signer's public key.
	PublicKey []byte

	// Signature is the signature over the subject digest's raw bytes.
	Signature []byte

	// Subject is the digest being attested.
	Subject types.Digest
}

// NewAttestation builds an attestation event under the v1 profile.
func NewAttestation(principalID, algorithm string, publicKey, signature []byte, subject types.Digest, occurredAt time.Time) *Attestation {
	return &Attestation{
		ProfileID:   canonical.ProfileV1ID,
		OccurredAt:  occurredAt,
		PrincipalID: principalID,
		Algorithm:   algorithm,
		PublicKey:   publicKey,
		Signature:   signature,
		Subject:     subject,
	}
}

// ValidateBasic performs stateless validation.
func (a *Attestation) ValidateBasic() error {
	if err := requireLabel("principal_id", a.PrincipalID); err != nil {
		return err
	}
	if err := requireLabel("canonical_profile_id", a.ProfileID); err != nil {
		return err
	}
	if err := requireLabel("algorithm", a.Algorithm); err != nil {
		return err
	}
	if len(a.PublicKey) == 0 {
		return errInvalid("public_key", []string{"empty"})
	}
	if len(a.Signature) == 0 {
		return errInvalid("signature", []string{"empty"})
	}
	if err := a.Subject.Validate(); err != nil {
		return err
	}
	return requireTime("occurred_at", a.OccurredAt)
}

// MarshalCanonical returns canonical JSON bytes, members in code-point
// order of their names. Key and signature bytes are hex-encoded.
func (a *Attestation) MarshalCanonical(id *types.Digest) ([]byte, error) {
	w := newMemberWriter()
	w.str("algorithm", a.Algorithm)
	w.str("canonical_profile_id", a.ProfileID)
	if id != nil {
		w.digest("event_id", *id)
	}
	w.str("event_type", TypeAttestation)
	w.str("event_version", Version)
	w.str("occurred_at", formatTime(a.OccurredAt))
	w.str("principal_id", a.PrincipalID)
	w.str("public_key", hex.EncodeToString(a.PublicKey))
	w.str("signature", hex.EncodeToString(a.Signature))
	w.digest("subject", a.Subject)
	return w.finish(), nil
}
