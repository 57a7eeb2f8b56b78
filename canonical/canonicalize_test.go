package canonical

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Northroot-Labs/northroot/types"
)

func mustCanonical(t *testing.T, input string) []byte {
	t.Helper()
	res, err := New(V1()).CanonicalizeBytes([]byte(input))
	require.NoError(t, err)
	require.True(t, res.Hygiene.Ok())
	return res.Bytes
}

func TestCanonicalizeBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty object", input: `{}`, want: `{}`},
		{name: "key sort", input: `{"b":2,"a":1}`, want: `{"a":1,"b":2}`},
		{name: "array order preserved", input: `[3,1,2]`, want: `[3,1,2]`},
		{name: "nested key sort", input: `{"z":1,"a":{"y":2,"x":3}}`, want: `{"a":{"x":3,"y":2},"z":1}`},
		{name: "whitespace stripped", input: " {\n\t\"a\" : [ 1 , 2 ] }", want: `{"a":[1,2]}`},
		{name: "literals", input: `[true,false,null]`, want: `[true,false,null]`},
		{name: "quantity intact with inner sort", input: `{"amount":{"t":"dec","m":"1234","s":2}}`, want: `{"amount":{"m":"1234","s":2,"t":"dec"}}`},
		{name: "non ascii verbatim", input: `{"name":"Grüße 😀"}`, want: `{"name":"Grüße 😀"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, string(mustCanonical(t, tc.input)))
		})
	}
}

func TestCanonicalizeStringEscaping(t *testing.T) {
	// Short escapes for the named controls, lowercase \u00xx for the rest,
	// no escaping of the solidus or of printable non-ASCII.
	input := `{"s":"\b\t\n\f\r\"\\\/\u0001\u001f€"}`
	want := `{"s":"\b\t\n\f\r\"\\/\u0001\u001f€"}`
	assert.Equal(t, want, string(mustCanonical(t, input)))
}

func TestCanonicalizeSortsByUTF16CodeUnits(t *testing.T) {
	// U+1D306 encodes as the surrogate pair D834 DF06 in UTF-16, which
	// sorts before U+FB33 — the opposite of their UTF-8 byte order.
	input := "{\"דּ\":1,\"\U0001D306\":2}"
	want := "{\"\U0001D306\":2,\"דּ\":1}"
	assert.Equal(t, want, string(mustCanonical(t, input)))
}

func TestCanonicalFormIdempotence(t *testing.T) {
	inputs := []string{
		`{"z":1,"a":{"y":2,"x":3},"arr":[3,1,2],"q":{"t":"dec","m":"-5","s":1}}`,
		`{"n":[0.1,1e-7,1e21,9007199254740992]}`,
		`{"s":"line\nbreak  😀","empty":{},"nul":null}`,
	}
	c := New(V1())
	for _, input := range inputs {
		first, err := c.CanonicalizeBytes([]byte(input))
		require.NoError(t, err)
		second, err := c.CanonicalizeBytes(first.Bytes)
		require.NoError(t, err)
		assert.Equal(t, first.Bytes, second.Bytes, "input %q", input)
	}
}

func TestCanonicalizeDeterministicAcrossRuns(t *testing.T) {
	c := New(V1())
	input := []byte(`{"b":{"y":1,"x":[1,2,3]},"a":"text","q":{"t":"rat","n":"3","d":"4"}}`)
	first, err := c.CanonicalizeBytes(input)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		res, err := c.CanonicalizeBytes(input)
		require.NoError(t, err)
		assert.Equal(t, first.Bytes, res.Bytes, "iteration %d", i)
	}
}

func TestCanonicalizeRejectsDuplicateKeys(t *testing.T) {
	res, err := New(V1()).CanonicalizeBytes([]byte(`{"a":1,"a":2}`))
	require.Error(t, err)

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, types.HygieneInvalid, cerr.Report.Status)
	assert.True(t, cerr.Report.HasCode(types.CodeDuplicateKeys))
	assert.Equal(t, 1, cerr.Report.Metrics.DuplicateKeys)
	assert.True(t, errors.Is(err, types.ErrHygieneFailed))
	assert.Nil(t, res.Bytes)
}

func TestCanonicalizeRejectsInvalidQuantity(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  string
	}{
		{name: "non minimal mantissa", input: `{"q":{"t":"dec","m":"01","s":0}}`, code: types.CodeNonMinimalInteger},
		{name: "negative zero mantissa", input: `{"q":{"t":"dec","m":"-0","s":0}}`, code: types.CodeNegativeZero},
		{name: "scale out of range", input: `{"q":{"t":"dec","m":"1","s":19}}`, code: types.CodeScaleOutOfRange},
		{name: "unreduced rational", input: `{"q":{"t":"rat","n":"2","d":"4"}}`, code: types.CodeRationalNotReduced},
		{name: "bad float bits", input: `{"q":{"t":"f64","bits":"zz"}}`, code: types.CodeBadFloatBits},
		{name: "missing member", input: `{"q":{"t":"int"}}`, code: types.CodeMalformedQuantity},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(V1()).CanonicalizeBytes([]byte(tc.input))
			var cerr *Error
			require.True(t, errors.As(err, &cerr))
			assert.True(t, cerr.Report.HasCode(tc.code))
			assert.GreaterOrEqual(t, cerr.Report.Metrics.BoundViolations, 1)
		})
	}
}

func TestCanonicalizeRejectsNegativeZeroNumber(t *testing.T) {
	for _, input := range []string{`{"x":-0}`, `{"x":-0.0}`, `[-0]`} {
		_, err := New(V1()).CanonicalizeBytes([]byte(input))
		var cerr *Error
		require.True(t, errors.As(err, &cerr), "input %q", input)
		assert.True(t, cerr.Report.HasCode(types.CodeNegativeZero))
	}

	// Plain zero is fine.
	assert.Equal(t, `{"x":0}`, string(mustCanonical(t, `{"x":0}`)))
}

func TestNumericFieldPolicy(t *testing.T) {
	v := types.Object()
	amount := types.Number(1.5)
	amount.NumericField = true
	v.Set("amount", amount)

	// The v1 profile is schema-agnostic: numbers pass through.
	res, err := Canonicalize(&v, V1())
	require.NoError(t, err)
	assert.Equal(t, `{"amount":1.5}`, string(res.Bytes))

	// An enforcing profile rejects the same tree.
	strict := V1()
	strict.ID = "test-enforcing"
	strict.EnforceNumericFields = true
	_, err = Canonicalize(&v, strict)
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.True(t, cerr.Report.HasCode(types.CodeFloatInNumericField))
	assert.Equal(t, 1, cerr.Report.Metrics.NumericCoercions)
}

func TestNonNFCProbe(t *testing.T) {
	// The accent is written as e plus combining acute, which is not NFC.
	decomposed := "{\"name\":\"cafe\u0301\"}"
	input := []byte(decomposed)

	// Off by default: clean pass, bytes verbatim.
	res, err := New(V1()).CanonicalizeBytes(input)
	require.NoError(t, err)
	assert.True(t, res.Hygiene.Ok())
	assert.Equal(t, decomposed, string(res.Bytes))

	// Opting in downgrades to Ambiguous but still never rewrites.
	probing := V1()
	probing.ID = "test-nfc-probe"
	probing.WarnNonNFC = true
	res, err = New(probing).CanonicalizeBytes(input)
	require.NoError(t, err)
	assert.Equal(t, types.HygieneAmbiguous, res.Hygiene.Status)
	assert.True(t, res.Hygiene.HasCode(types.CodeNonNFCString))
	assert.Equal(t, decomposed, string(res.Bytes))
}

func TestProfileRegistry(t *testing.T) {
	r := NewRegistry()
	p, err := r.Get(ProfileV1ID)
	require.NoError(t, err)
	assert.Equal(t, ProfileV1ID, p.ID)
	assert.Equal(t, 18, p.Bounds.MaxScale)
	assert.Equal(t, 39, p.Bounds.MaxMantissaDigits)

	_, err = r.Get("no-such-profile")
	assert.ErrorIs(t, err, types.ErrUnknownProfile)

	// A profile id names one rule set forever.
	err = r.Register(V1())
	assert.Error(t, err)

	custom := V1()
	custom.ID = "custom-1"
	require.NoError(t, r.Register(custom))
	assert.Equal(t, []string{"custom-1", ProfileV1ID}, r.IDs())
}

func FuzzCanonicalFormIdempotence(f *testing.F) {
	f.Add([]byte(`{}`))
	f.Add([]byte(`{"b":2,"a":1}`))
	f.Add([]byte(`[3,1,2,{"k":"v"}]`))
	f.Add([]byte(`{"s":" text","n":[0.1,1e21]}`))
	f.Fuzz(func(t *testing.T, data []byte) {
		c := New(V1())
		first, err := c.CanonicalizeBytes(data)
		if err != nil {
			return
		}
		second, err := c.CanonicalizeBytes(first.Bytes)
		if err != nil {
			t.Fatalf("canonical output failed to re-canonicalize: %v", err)
		}
		if string(first.Bytes) != string(second.Bytes) {
			t.Fatalf("not idempotent: %q vs %q", first.Bytes, second.Bytes)
		}
	})
}
