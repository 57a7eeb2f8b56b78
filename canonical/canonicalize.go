package canonical

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/Northroot-Labs/northroot/types"
)

// Error carries the hygiene report of a rejected canonicalization. The
// report's status is always Invalid and its warning list names the exact
// rules that failed.
type Error struct {
	Report types.HygieneReport
}

func (e *Error) Error() string {
	return fmt.Sprintf("canonicalization rejected: %s", strings.Join(e.Report.Warnings, ", "))
}

// Unwrap lets callers match errors.Is(err, types.ErrHygieneFailed).
func (e *Error) Unwrap() error { return types.ErrHygieneFailed }

// Canonicalizer produces canonical bytes under one profile. It holds no
// mutable state and may be shared freely across goroutines.
type Canonicalizer struct {
	profile Profile
}

// New returns a canonicalizer for the given profile.
func New(profile Profile) *Canonicalizer {
	return &Canonicalizer{profile: profile}
}

// Profile returns the profile in force.
func (c *Canonicalizer) Profile() Profile { return c.profile }

// Canonicalize reviews the value against the profile's hygiene rules and,
// if review passes, serializes it to canonical UTF-8 bytes: no BOM, no
// trailing newline, members sorted, arrays preserved.
//
// On rejection the returned error is *Error carrying the full report; the
// result still carries the report (with nil bytes) so callers can surface
// metrics either way.
func (c *Canonicalizer) Canonicalize(v *types.Value) (types.CanonicalResult, error) {
	report := types.NewHygieneReport()
	c.review(v, &report)

	result := types.CanonicalResult{ProfileID: c.profile.ID, Hygiene: report}
	if report.Status == types.HygieneInvalid {
		return result, &Error{Report: report}
	}

	buf, err := appendValue(make([]byte, 0, 256), v)
	if err != nil {
		return result, err
	}
	result.Bytes = buf
	return result, nil
}

// CanonicalizeBytes parses a JSON document and canonicalizes it. Parse
// failures that are hygiene matters (duplicate keys) come back as *Error
// with the matching code; syntax failures come back unchanged.
func (c *Canonicalizer) CanonicalizeBytes(data []byte) (types.CanonicalResult, error) {
	v, err := Parse(data)
	if err != nil {
		if errors.Is(err, types.ErrDuplicateKey) {
			report := types.NewHygieneReport()
			report.Invalidate(types.CodeDuplicateKeys)
			report.Metrics.DuplicateKeys++
			return types.CanonicalResult{ProfileID: c.profile.ID, Hygiene: report}, &Error{Report: report}
		}
		return types.CanonicalResult{}, err
	}
	return c.Canonicalize(v)
}

// Canonicalize is the convenience form for one-off use: it builds a
// canonicalizer for the profile and runs it.
func Canonicalize(v *types.Value, profile Profile) (types.CanonicalResult, error) {
	return New(profile).Canonicalize(v)
}

// review walks the tree accumulating the hygiene report. It performs the
// structural checks (duplicate keys, UTF-8), quantity validation, the
// numeric-field policy, and the optional NFC probe. It never mutates the
// tree.
func (c *Canonicalizer) review(v *types.Value, report *types.HygieneReport) {
	switch v.Kind {
	case types.KindString:
		c.reviewString(v.Str, report)

	case types.KindNumber:
		if v.Num == 0 && isNegZero(v) {
			report.Invalidate(types.CodeNegativeZero)
			report.Metrics.BoundViolations++
		}
		if v.NumericField && c.profile.EnforceNumericFields {
			report.Invalidate(types.CodeFloatInNumericField)
			report.Metrics.NumericCoercions++
		}

	case types.KindArray:
		for i := range v.Elems {
			c.review(&v.Elems[i], report)
		}

	case types.KindObject:
		seen := make(map[string]struct{}, len(v.Members))
		for i := range v.Members {
			m := &v.Members[i]
			if _, dup := seen[m.Key]; dup {
				report.Invalidate(types.CodeDuplicateKeys)
				report.Metrics.DuplicateKeys++
			}
			seen[m.Key] = struct{}{}
			c.reviewString(m.Key, report)
		}
		if tag, ok := types.QuantityTag(v); ok {
			for _, code := range types.ValidateQuantity(v, tag, c.profile.Bounds) {
				report.Invalidate(code)
				report.Metrics.BoundViolations++
			}
		}
		for i := range v.Members {
			c.review(&v.Members[i].Value, report)
		}
	}
}

func (c *Canonicalizer) reviewString(s string, report *types.HygieneReport) {
	if !utf8.ValidString(s) {
		report.Invalidate(types.CodeInvalidUTF8)
		return
	}
	if c.profile.WarnNonNFC && !norm.NFC.IsNormalString(s) {
		report.Warn(types.HygieneAmbiguous, types.CodeNonNFCString)
	}
}

// isNegZero reports whether a zero-valued number is IEEE negative zero,
// either by bit pattern or by source literal. Parsed "-0" keeps its sign
// bit, but a programmatic Value could lose it, so the raw literal is
// consulted as well.
func isNegZero(v *types.Value) bool {
	if len(v.Raw) > 0 && v.Raw[0] == '-' {
		return true
	}
	return math.Signbit(v.Num)
}
