package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Northroot-Labs/northroot/canonical"
	"github.com/Northroot-Labs/northroot/types"
)

// Authorization decisions.
const (
	DecisionAllow = "allow"
	DecisionDeny  = "deny"
)

// Authorization records a policy decision about a principal acting on a
// resource. The decision itself is made elsewhere; this event only gives
// it a tamper-evident identity.
type Authorization struct {
	// ProfileID is the canonicalization profile the event commits to.
	ProfileID string

	// OccurredAt is the caller-supplied decision time.
	OccurredAt time.Time

	// PrincipalID identifies the acting principal (e.g. "service:example").
	PrincipalID string

	// RequestID correlates the decision with the request that triggered it.
	RequestID string

	// Action is the operation that was decided (e.g. "journal.append").
	Action string

	// Resource is what the action targets.
	Resource string

	// Decision is DecisionAllow or DecisionDeny.
	Decision string
}

// NewAuthorization builds an authorization event with a fresh request id
// under the v1 profile.
func NewAuthorization(principalID, action, resource, decision string, occurredAt time.Time) *Authorization {
	return &Authorization{
		ProfileID:   canonical.ProfileV1ID,
		OccurredAt:  occurredAt,
		PrincipalID: principalID,
		RequestID:   uuid.NewString(),
		Action:      action,
		Resource:    resource,
		Decision:    decision,
	}
}

// ValidateBasic performs stateless validation.
func (a *Authorization) ValidateBasic() error {
	if err := requireLabel("principal_id", a.PrincipalID); err != nil {
		return err
	}
	if err := requireLabel("request_id", a.RequestID); err != nil {
		return err
	}
	if err := requireLabel("action", a.Action); err != nil {
		return err
	}
	if err := requireLabel("resource", a.Resource); err != nil {
		return err
	}
	if err := requireLabel("canonical_profile_id", a.ProfileID); err != nil {
		return err
	}
	if a.Decision != DecisionAllow && a.Decision != DecisionDeny {
		return fmt.Errorf("%w: decision %q", ErrInvalidEvent, a.Decision)
	}
	return requireTime("occurred_at", a.OccurredAt)
}

// MarshalCanonical returns canonical JSON bytes, members in code-point
// order of their names.
func (a *Authorization) MarshalCanonical(id *types.Digest) ([]byte, error) {
	w := newMemberWriter()
	w.str("action", a.Action)
	w.str("canonical_profile_id", a.ProfileID)
	w.str("decision", a.Decision)
	if id != nil {
		w.digest("event_id", *id)
	}
	w.str("event_type", TypeAuthorization)
	w.str("event_version", Version)
	w.str("occurred_at", formatTime(a.OccurredAt))
	w.str("principal_id", a.PrincipalID)
	w.str("request_id", a.RequestID)
	w.str("resource", a.Resource)
	return w.finish(), nil
}
