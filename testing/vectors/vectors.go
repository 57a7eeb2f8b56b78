// Package vectors provides cross-implementation test vectors for the
// canonicalization engine and the event identity function.
//
// Any conforming implementation, in any language, must reproduce these
// outcomes byte for byte. The vectors pin the observable contract: member
// sorting, string escaping, number formatting, quantity hygiene, and the
// rejection codes for malformed input.
package vectors

// Categories group related vectors.
const (
	CategorySerialization = "serialization"
	CategoryHygiene       = "hygiene"
	CategoryIdentity      = "identity"
)

// VectorFile is the root structure of the exported vector file.
type VectorFile struct {
	// Version of the vector format.
	Version string `json:"version"`

	// Description of this vector file.
	Description string `json:"description"`

	// Vectors is the list of test vectors.
	Vectors []Vector `json:"vectors"`
}

// Vector is a single cross-implementation test case.
type Vector struct {
	// Name is a unique identifier for this vector.
	Name string `json:"name"`

	// Description explains what the vector pins.
	Description string `json:"description"`

	// Category is one of the Category constants.
	Category string `json:"category"`

	// Input is the JSON document text fed to the canonicalizer.
	Input string `json:"input"`

	// CanonicalOutput is the expected canonical byte sequence, as a
	// string. Empty when the input must be rejected.
	CanonicalOutput string `json:"canonical_output,omitempty"`

	// RejectionCode is the expected hygiene code for rejected input.
	RejectionCode string `json:"rejection_code,omitempty"`
}

// File returns the built-in vectors wrapped for export.
func File() VectorFile {
	return VectorFile{
		Version:     "1",
		Description: "Northroot canonicalization and event identity vectors",
		Vectors:     BuiltIn(),
	}
}

// BuiltIn returns the canonical vector set.
func BuiltIn() []Vector {
	return []Vector{
		{
			Name:            "empty_object",
			Description:     "the empty object is two bytes",
			Category:        CategorySerialization,
			Input:           `{}`,
			CanonicalOutput: `{}`,
		},
		{
			Name:            "member_sort",
			Description:     "members sort by key, recursively",
			Category:        CategorySerialization,
			Input:           `{"z":1,"a":{"y":2,"x":3}}`,
			CanonicalOutput: `{"a":{"x":3,"y":2},"z":1}`,
		},
		{
			Name:            "array_order_preserved",
			Description:     "arrays are never reordered",
			Category:        CategorySerialization,
			Input:           `[3,1,2]`,
			CanonicalOutput: `[3,1,2]`,
		},
		{
			Name:            "string_escaping",
			Description:     "short escapes, lowercase hex escapes, verbatim non-ASCII",
			Category:        CategorySerialization,
			Input:           `{"s":"A\n\u0001€"}`,
			CanonicalOutput: `{"s":"A\n\u0001€"}`,
		},
		{
			Name:            "number_formats",
			Description:     "ECMA-262 number formatting",
			Category:        CategorySerialization,
			Input:           `[0,1,0.1,1e-7,1e21,9007199254740992]`,
			CanonicalOutput: `[0,1,0.1,1e-7,1e+21,9007199254740992]`,
		},
		{
			Name:            "quantity_preserved",
			Description:     "a valid quantity passes through with members sorted",
			Category:        CategorySerialization,
			Input:           `{"amount":{"t":"dec","m":"1234","s":2}}`,
			CanonicalOutput: `{"amount":{"m":"1234","s":2,"t":"dec"}}`,
		},
		{
			Name:          "duplicate_keys",
			Description:   "duplicate member names are rejected, never merged",
			Category:      CategoryHygiene,
			Input:         `{"a":1,"a":2}`,
			RejectionCode: "DuplicateKeys",
		},
		{
			Name:          "non_minimal_mantissa",
			Description:   "leading zeros in a mantissa are rejected, never stripped",
			Category:      CategoryHygiene,
			Input:         `{"q":{"t":"dec","m":"01","s":0}}`,
			RejectionCode: "NonMinimalInteger",
		},
		{
			Name:          "negative_zero_mantissa",
			Description:   "negative zero has no canonical meaning",
			Category:      CategoryHygiene,
			Input:         `{"q":{"t":"dec","m":"-0","s":0}}`,
			RejectionCode: "NegativeZero",
		},
		{
			Name:          "scale_out_of_range",
			Description:   "scale beyond the profile bound is rejected, never rounded",
			Category:      CategoryHygiene,
			Input:         `{"q":{"t":"dec","m":"1","s":19}}`,
			RejectionCode: "ScaleOutOfRange",
		},
		{
			Name:          "unreduced_rational",
			Description:   "rationals must arrive in lowest terms",
			Category:      CategoryHygiene,
			Input:         `{"q":{"t":"rat","n":"2","d":"4"}}`,
			RejectionCode: "RationalNotReduced",
		},
		{
			Name:          "negative_zero_number",
			Description:   "IEEE negative zero is rejected, never folded to zero",
			Category:      CategoryHygiene,
			Input:         `{"x":-0}`,
			RejectionCode: "NegativeZero",
		},
		{
			Name:            "identity_sample",
			Description:     "reference event for the identity function",
			Category:        CategoryIdentity,
			Input:           `{"canonical_profile_id":"northroot-canonical-v1","event_type":"test","event_version":"1","occurred_at":"2024-01-01T00:00:00Z","principal_id":"service:example"}`,
			CanonicalOutput: `{"canonical_profile_id":"northroot-canonical-v1","event_type":"test","event_version":"1","occurred_at":"2024-01-01T00:00:00Z","principal_id":"service:example"}`,
		},
	}
}
