// Package canonical turns untyped JSON values into deterministic UTF-8
// bytes under the hygiene rules of the Northroot trust kernel.
//
// The output encoding follows RFC 8785 (JSON Canonicalization Scheme):
// object members sorted by the UTF-16 code units of their keys, minimal
// string escaping, ECMA-262 number formatting, no insignificant whitespace.
// On top of that, the canonicalizer enforces structural hygiene (duplicate
// key rejection) and lossless quantity encodings, and it never repairs
// input: a value either canonicalizes exactly as given or is rejected with
// a precise code.
package canonical

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Northroot-Labs/northroot/types"
)

// ProfileV1ID is the canonical profile shipped with the v1 format. Any
// change to numeric bounds, escaping, or sorting rules requires a new id.
const ProfileV1ID = "northroot-canonical-v1"

// Profile selects the hygiene options and numeric bounds in force for one
// canonicalization run. It never changes the output encoding for a fixed
// accepted value.
type Profile struct {
	// ID is the opaque profile identifier recorded in every result.
	ID string

	// Bounds are the quantity limits enforced during review.
	Bounds types.QuantityBounds

	// EnforceNumericFields rejects native JSON numbers found in values
	// marked as schema-typed numeric fields.
	EnforceNumericFields bool

	// WarnNonNFC probes strings for non-NFC forms and downgrades the
	// hygiene status to Ambiguous when one is found. No normalization is
	// ever performed; v1 leaves the probe off.
	WarnNonNFC bool
}

// V1 returns the frozen v1 profile.
func V1() Profile {
	return Profile{
		ID:     ProfileV1ID,
		Bounds: types.DefaultQuantityBounds,
	}
}

// Registry maps profile ids to profiles. It is a plain value with its own
// lock; the package keeps no process-wide registry, so hosts that need one
// construct and share it explicitly.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewRegistry returns a registry with the v1 profile pre-registered.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]Profile)}
	r.profiles[ProfileV1ID] = V1()
	return r
}

// Register adds a profile. Re-registering an existing id fails: a profile
// id names one immutable rule set forever.
func (r *Registry) Register(p Profile) error {
	if p.ID == "" {
		return fmt.Errorf("profile id must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.profiles[p.ID]; exists {
		return fmt.Errorf("profile %q already registered", p.ID)
	}
	r.profiles[p.ID] = p
	return nil
}

// Get returns the profile registered under id.
func (r *Registry) Get(id string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", types.ErrUnknownProfile, id)
	}
	return p, nil
}

// IDs returns the registered profile ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
