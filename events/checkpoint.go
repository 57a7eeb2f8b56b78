package events

import (
	"time"

	"github.com/Northroot-Labs/northroot/canonical"
	"github.com/Northroot-Labs/northroot/types"
)

// Checkpoint seals a prefix of a journal: it names the last event identity
// observed and how many events precede it. Verifying a checkpoint is a
// matter of re-reading the journal up to SealedCount and comparing the
// final identity — no aggregate hash structure is involved, keeping the
// container index-free.
type Checkpoint struct {
	ProfileID   string
	OccurredAt  time.Time
	PrincipalID string

	// Sequence numbers this checkpoint within its journal, starting at 1.
	Sequence uint64

	// SealedCount is the number of events the checkpoint covers.
	SealedCount uint64

	// LastEventID is the identity of the last covered event.
	LastEventID types.Digest
}

// NewCheckpoint builds a checkpoint event under the v1 profile.
func NewCheckpoint(principalID string, sequence, sealedCount uint64, lastEventID types.Digest, occurredAt time.Time) *Checkpoint {
	return &Checkpoint{
		ProfileID:   canonical.ProfileV1ID,
		OccurredAt:  occurredAt,
		PrincipalID: principalID,
		Sequence:    sequence,
		SealedCount: sealedCount,
		LastEventID: lastEventID,
	}
}

// ValidateBasic performs stateless validation.
func (c *Checkpoint) ValidateBasic() error {
	if err := requireLabel("principal_id", c.PrincipalID); err != nil {
		return err
	}
	if err := requireLabel("canonical_profile_id", c.ProfileID); err != nil {
		return err
	}
	if c.Sequence == 0 {
		return errInvalid("sequence", []string{"must start at 1"})
	}
	if c.SealedCount == 0 {
		return errInvalid("sealed_count", []string{"empty checkpoint"})
	}
	if err := c.LastEventID.Validate(); err != nil {
		return err
	}
	return requireTime("occurred_at", c.OccurredAt)
}

// MarshalCanonical returns canonical JSON bytes, members in code-point
// order of their names.
func (c *Checkpoint) MarshalCanonical(id *types.Digest) ([]byte, error) {
	w := newMemberWriter()
	w.str("canonical_profile_id", c.ProfileID)
	if id != nil {
		w.digest("event_id", *id)
	}
	w.str("event_type", TypeCheckpoint)
	w.str("event_version", Version)
	w.digest("last_event_id", c.LastEventID)
	w.str("occurred_at", formatTime(c.OccurredAt))
	w.str("principal_id", c.PrincipalID)
	w.uint("sealed_count", c.SealedCount)
	w.uint("sequence", c.Sequence)
	return w.finish(), nil
}
