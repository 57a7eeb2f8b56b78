package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validB64() string {
	return strings.Repeat("A", 42) + "_"
}

func TestDigestValidate(t *testing.T) {
	d := Digest{Alg: DigestAlgSHA256, B64: validB64()}
	require.NoError(t, d.Validate())

	tests := []struct {
		name string
		d    Digest
	}{
		{name: "wrong alg", d: Digest{Alg: "sha-512", B64: validB64()}},
		{name: "empty alg", d: Digest{B64: validB64()}},
		{name: "too short", d: Digest{Alg: DigestAlgSHA256, B64: strings.Repeat("A", 42)}},
		{name: "too long", d: Digest{Alg: DigestAlgSHA256, B64: strings.Repeat("A", 44)}},
		{name: "padding char", d: Digest{Alg: DigestAlgSHA256, B64: strings.Repeat("A", 42) + "="}},
		{name: "standard alphabet plus", d: Digest{Alg: DigestAlgSHA256, B64: strings.Repeat("A", 42) + "+"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.d.Validate()
			assert.ErrorIs(t, err, ErrMalformedDigest)
		})
	}
}

func TestDigestFromValue(t *testing.T) {
	d := Digest{Alg: DigestAlgSHA256, B64: validB64()}
	v := d.ToValue()

	got, err := DigestFromValue(&v)
	require.NoError(t, err)
	assert.True(t, got.Equal(d))

	// Extra member makes the digest malformed.
	extra := d.ToValue()
	extra.Set("note", String("x"))
	_, err = DigestFromValue(&extra)
	assert.ErrorIs(t, err, ErrMalformedDigest)

	// Missing b64.
	partial := Object()
	partial.Set("alg", String(DigestAlgSHA256))
	_, err = DigestFromValue(&partial)
	assert.ErrorIs(t, err, ErrMalformedDigest)

	// Non-string alg.
	bad := Object()
	bad.Set("alg", Number(256))
	bad.Set("b64", String(validB64()))
	_, err = DigestFromValue(&bad)
	assert.ErrorIs(t, err, ErrMalformedDigest)

	// Not an object at all.
	s := String("digest")
	_, err = DigestFromValue(&s)
	assert.ErrorIs(t, err, ErrMalformedDigest)
}

func TestDigestEqualNoPartialCredit(t *testing.T) {
	d := Digest{Alg: DigestAlgSHA256, B64: validB64()}
	assert.True(t, d.Equal(d))
	assert.False(t, d.Equal(Digest{Alg: "sha-512", B64: d.B64}))
	assert.False(t, d.Equal(Digest{Alg: d.Alg, B64: strings.Repeat("B", 43)}))
}
