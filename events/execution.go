package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/Northroot-Labs/northroot/canonical"
	"github.com/Northroot-Labs/northroot/types"
)

// Execution outcomes.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// Cost is a decimal quantity: Mantissa * 10^-Scale. It serializes as a
// {"t":"dec"} object so the amount survives every language identically.
type Cost struct {
	Mantissa string
	Scale    int
}

// Validate checks the cost against the v1 quantity bounds.
func (c Cost) Validate() error {
	q := types.Object()
	q.Set("t", types.String(types.QuantityDec))
	q.Set("m", types.String(c.Mantissa))
	q.Set("s", types.Number(float64(c.Scale)))
	if codes := types.ValidateQuantity(&q, types.QuantityDec, types.DefaultQuantityBounds); len(codes) > 0 {
		return errInvalid("cost", codes)
	}
	return nil
}

// Execution records one step of a run: what was executed, by whom, with
// what outcome, and at what metered cost.
type Execution struct {
	ProfileID   string
	OccurredAt  time.Time
	PrincipalID string

	// RunID groups the steps of one run; TraceID links the run to an
	// external trace.
	RunID   string
	TraceID string

	// Step names the executed operation.
	Step string

	// Outcome is OutcomeSucceeded or OutcomeFailed.
	Outcome string

	// Cost is the metered cost of the step.
	Cost Cost
}

// NewExecution builds an execution event with fresh run and trace ids
// under the v1 profile.
func NewExecution(principalID, step, outcome string, cost Cost, occurredAt time.Time) *Execution {
	return &Execution{
		ProfileID:   canonical.ProfileV1ID,
		OccurredAt:  occurredAt,
		PrincipalID: principalID,
		RunID:       uuid.NewString(),
		TraceID:     uuid.NewString(),
		Step:        step,
		Outcome:     outcome,
		Cost:        cost,
	}
}

// ValidateBasic performs stateless validation.
func (e *Execution) ValidateBasic() error {
	if err := requireLabel("principal_id", e.PrincipalID); err != nil {
		return err
	}
	if err := requireLabel("run_id", e.RunID); err != nil {
		return err
	}
	if err := requireLabel("trace_id", e.TraceID); err != nil {
		return err
	}
	if err := requireLabel("step", e.Step); err != nil {
		return err
	}
	if err := requireLabel("canonical_profile_id", e.ProfileID); err != nil {
		return err
	}
	if e.Outcome != OutcomeSucceeded && e.Outcome != OutcomeFailed {
		return errInvalid("outcome", []string{e.Outcome})
	}
	if err := e.Cost.Validate(); err != nil {
		return err
	}
	return requireTime("occurred_at", e.OccurredAt)
}

// MarshalCanonical returns canonical JSON bytes, members in code-point
// order of their names.
func (e *Execution) MarshalCanonical(id *types.Digest) ([]byte, error) {
	w := newMemberWriter()
	w.str("canonical_profile_id", e.ProfileID)
	w.quantityDec("cost", e.Cost.Mantissa, e.Cost.Scale)
	if id != nil {
		w.digest("event_id", *id)
	}
	w.str("event_type", TypeExecution)
	w.str("event_version", Version)
	w.str("occurred_at", formatTime(e.OccurredAt))
	w.str("outcome", e.Outcome)
	w.str("principal_id", e.PrincipalID)
	w.str("run_id", e.RunID)
	w.str("step", e.Step)
	w.str("trace_id", e.TraceID)
	return w.finish(), nil
}
