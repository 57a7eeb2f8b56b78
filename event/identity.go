// Package event computes and verifies the content-addressed identity of
// journal events.
//
// The identity of an event is the SHA-256 hash of a fixed domain separator
// followed by the canonical bytes of the event with its top-level event_id
// member removed, encoded as base64url without padding. Any two conforming
// implementations, in any language, agree byte-for-byte on this identity
// for semantically equal events.
package event

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/Northroot-Labs/northroot/canonical"
	"github.com/Northroot-Labs/northroot/types"
)

// DomainSeparator is prepended to the canonical bytes before hashing. It
// prevents cross-protocol collisions: canonical JSON always begins with
// '{' or '[', which cannot occur inside the separator. The trailing NUL is
// part of the separator.
const DomainSeparator = "northroot:event:v1\x00"

// IDField is the top-level member carrying an event's identity.
const IDField = "event_id"

// Identifier computes event identities under a fixed canonicalizer. It is
// stateless and safe for concurrent use.
type Identifier struct {
	canon *canonical.Canonicalizer
}

// NewIdentifier returns an identifier over the given canonicalizer.
func NewIdentifier(c *canonical.Canonicalizer) *Identifier {
	return &Identifier{canon: c}
}

// NewV1Identifier returns an identifier over the frozen v1 profile.
func NewV1Identifier() *Identifier {
	return NewIdentifier(canonical.New(canonical.V1()))
}

// Compute derives the identity digest of an event value.
//
// The value must be a JSON object. A top-level event_id member, whatever
// its shape, is excluded from hashing; nested members of the same name are
// payload and stay in. Hygiene must review as Ok — Lossy or Ambiguous input
// has no audit-grade identity.
func (id *Identifier) Compute(v *types.Value) (types.Digest, error) {
	if !v.IsObject() {
		return types.Digest{}, fmt.Errorf("%w: events are JSON objects", types.ErrNotAnObject)
	}
	stripped := v.Without(IDField)

	result, err := id.canon.Canonicalize(&stripped)
	if err != nil {
		var cerr *canonical.Error
		if errors.As(err, &cerr) {
			return types.Digest{}, fmt.Errorf("%w: %v", types.ErrHygieneFailed, reportSummary(cerr.Report))
		}
		return types.Digest{}, err
	}
	if !result.Hygiene.Ok() {
		return types.Digest{}, fmt.Errorf("%w: status %s", types.ErrHygieneFailed, result.Hygiene.Status)
	}

	h := sha256.New()
	h.Write([]byte(DomainSeparator))
	h.Write(result.Bytes)
	sum := h.Sum(nil)

	return types.Digest{
		Alg: types.DigestAlgSHA256,
		B64: base64.RawURLEncoding.EncodeToString(sum),
	}, nil
}

// ComputeBytes parses an event document and computes its identity.
func (id *Identifier) ComputeBytes(data []byte) (types.Digest, error) {
	v, err := canonical.Parse(data)
	if err != nil {
		return types.Digest{}, err
	}
	return id.Compute(v)
}

// Verify recomputes the identity of an event and compares it byte-for-byte
// with the event_id the event carries.
//
// Every failure path is an error: a missing event_id, an event_id that is
// not a digest object, an unsupported algorithm, hygiene failure, or a
// mismatching hash. There is no partial credit.
func (id *Identifier) Verify(v *types.Value) error {
	if !v.IsObject() {
		return fmt.Errorf("%w: events are JSON objects", types.ErrNotAnObject)
	}
	carried, ok := v.Lookup(IDField)
	if !ok {
		return fmt.Errorf("%w: missing %s", types.ErrMalformedEventID, IDField)
	}
	claimed, err := types.DigestFromValue(carried)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrMalformedEventID, err)
	}

	computed, err := id.Compute(v)
	if err != nil {
		return err
	}
	if !computed.Equal(claimed) {
		return fmt.Errorf("%w: computed %s, event carries %s", types.ErrDigestMismatch, computed.B64, claimed.B64)
	}
	return nil
}

// VerifyBytes parses an event document and verifies its identity.
func (id *Identifier) VerifyBytes(data []byte) error {
	v, err := canonical.Parse(data)
	if err != nil {
		return err
	}
	return id.Verify(v)
}

// Inject returns the event with the given digest installed as its
// event_id, replacing any existing one. The input value is not modified.
func Inject(v *types.Value, d types.Digest) (types.Value, error) {
	if !v.IsObject() {
		return types.Value{}, fmt.Errorf("%w: events are JSON objects", types.ErrNotAnObject)
	}
	out := v.Without(IDField)
	out.Set(IDField, d.ToValue())
	return out, nil
}

func reportSummary(r types.HygieneReport) string {
	if len(r.Warnings) == 0 {
		return string(r.Status)
	}
	return fmt.Sprintf("%s (%v)", r.Status, r.Warnings)
}
