// Package events provides typed views over the untyped trust kernel:
// authorization, execution, checkpoint and attestation events with
// hand-written canonical serialization.
//
// The kernel itself never sees these types. Each view serializes to JSON
// whose bytes are already canonical — members emitted in code-point order,
// deterministic string escaping, no native numbers for protocol-meaningful
// quantities — so the canonicalizer accepts them verbatim and their
// identity is stable across implementations. Schema churn in this package
// can never invalidate the canonicalizer or the journal format.
package events

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/blockberries/cramberry/pkg/cramberry"

	"github.com/Northroot-Labs/northroot/event"
	"github.com/Northroot-Labs/northroot/types"
)

// Version is the current version of every typed event schema. Changing a
// schema invalidates recorded identities, so bumps are deliberate.
const Version = "1"

// Event type identifiers.
const (
	TypeAuthorization = "authorization"
	TypeExecution     = "execution"
	TypeCheckpoint    = "checkpoint"
	TypeAttestation   = "attestation"
)

var (
	// ErrInvalidEvent indicates a typed event that fails basic validation.
	ErrInvalidEvent = errors.New("invalid event")
)

// Sealable is a typed event that can serialize itself canonically, with or
// without an event identity installed.
type Sealable interface {
	// ValidateBasic performs stateless validation of the event fields.
	ValidateBasic() error

	// MarshalCanonical returns canonical JSON bytes. A nil digest omits
	// the event_id member; a non-nil digest is emitted in place.
	MarshalCanonical(id *types.Digest) ([]byte, error)
}

// Seal validates the event, computes its identity over the unsealed bytes,
// and returns the sealed canonical bytes together with the digest. The
// sealed bytes verify as-is and are ready for a journal frame.
func Seal(e Sealable, ident *event.Identifier) ([]byte, types.Digest, error) {
	if err := e.ValidateBasic(); err != nil {
		return nil, types.Digest{}, err
	}
	unsealed, err := e.MarshalCanonical(nil)
	if err != nil {
		return nil, types.Digest{}, err
	}
	digest, err := ident.ComputeBytes(unsealed)
	if err != nil {
		return nil, types.Digest{}, err
	}
	sealed, err := e.MarshalCanonical(&digest)
	if err != nil {
		return nil, types.Digest{}, err
	}
	return sealed, digest, nil
}

// memberWriter emits object members in the order the caller supplies them.
// Callers list members in code-point order of their names, which is what
// makes the output canonical without a sort pass.
type memberWriter struct {
	buf   bytes.Buffer
	first bool
}

func newMemberWriter() *memberWriter {
	w := &memberWriter{first: true}
	w.buf.Grow(256)
	w.buf.WriteByte('{')
	return w
}

func (w *memberWriter) name(n string) {
	if !w.first {
		w.buf.WriteByte(',')
	}
	w.first = false
	w.buf.WriteString(cramberry.EscapeJSONString(n))
	w.buf.WriteByte(':')
}

// str writes a string-valued member.
func (w *memberWriter) str(n, v string) {
	w.name(n)
	w.buf.WriteString(cramberry.EscapeJSONString(v))
}

// uint writes an unsigned integer as a quoted decimal string, keeping
// native JSON numbers out of protocol-meaningful positions.
func (w *memberWriter) uint(n string, v uint64) {
	w.str(n, strconv.FormatUint(v, 10))
}

// digest writes a digest-valued member ({"alg":...,"b64":...}).
func (w *memberWriter) digest(n string, d types.Digest) {
	w.name(n)
	w.buf.WriteString(`{"alg":`)
	w.buf.WriteString(cramberry.EscapeJSONString(d.Alg))
	w.buf.WriteString(`,"b64":`)
	w.buf.WriteString(cramberry.EscapeJSONString(d.B64))
	w.buf.WriteByte('}')
}

// quantityDec writes a decimal quantity member ({"m":...,"s":...,"t":"dec"}).
func (w *memberWriter) quantityDec(n string, mantissa string, scale int) {
	w.name(n)
	w.buf.WriteString(`{"m":`)
	w.buf.WriteString(cramberry.EscapeJSONString(mantissa))
	w.buf.WriteString(`,"s":`)
	w.buf.WriteString(strconv.Itoa(scale))
	w.buf.WriteString(`,"t":"dec"}`)
}

func (w *memberWriter) finish() []byte {
	w.buf.WriteByte('}')
	return w.buf.Bytes()
}

// requireLabel validates a short identifying string: non-empty, bounded,
// and free of control characters so hand-written serialization can never
// disagree with the canonical escaper.
func requireLabel(field, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s must not be empty", ErrInvalidEvent, field)
	}
	if len(value) > 256 {
		return fmt.Errorf("%w: %s exceeds 256 bytes", ErrInvalidEvent, field)
	}
	for _, r := range value {
		if r < 0x20 {
			return fmt.Errorf("%w: %s contains control characters", ErrInvalidEvent, field)
		}
	}
	return nil
}

func errInvalid(field string, details []string) error {
	return fmt.Errorf("%w: %s %v", ErrInvalidEvent, field, details)
}

func requireTime(field string, v time.Time) error {
	if v.IsZero() {
		return fmt.Errorf("%w: %s must be set", ErrInvalidEvent, field)
	}
	return nil
}

// formatTime renders the caller-supplied instant the way every typed event
// records it. The kernel never reads a clock; the instant always arrives
// as an argument.
func formatTime(v time.Time) string {
	return v.UTC().Format(time.RFC3339)
}
