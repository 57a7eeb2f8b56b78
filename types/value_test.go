package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectSetPreservesInsertionOrder(t *testing.T) {
	v := Object()
	v.Set("z", Number(1))
	v.Set("a", Number(2))
	v.Set("m", Number(3))

	require.Len(t, v.Members, 3)
	assert.Equal(t, "z", v.Members[0].Key)
	assert.Equal(t, "a", v.Members[1].Key)
	assert.Equal(t, "m", v.Members[2].Key)

	// Replacing an existing key keeps its position.
	v.Set("a", Number(9))
	require.Len(t, v.Members, 3)
	assert.Equal(t, "a", v.Members[1].Key)
	assert.Equal(t, float64(9), v.Members[1].Value.Num)
}

func TestLookup(t *testing.T) {
	v := Object()
	v.Set("k", String("val"))

	got, ok := v.Lookup("k")
	require.True(t, ok)
	assert.Equal(t, "val", got.Str)

	_, ok = v.Lookup("missing")
	assert.False(t, ok)
}

func TestWithout(t *testing.T) {
	inner := Object()
	inner.Set("event_id", String("nested stays"))

	v := Object()
	v.Set("event_id", String("top goes"))
	v.Set("payload", inner)

	out := v.Without("event_id")
	_, ok := out.Lookup("event_id")
	assert.False(t, ok)

	// The receiver is untouched and nested members survive.
	_, ok = v.Lookup("event_id")
	assert.True(t, ok)
	payload, ok := out.Lookup("payload")
	require.True(t, ok)
	_, ok = payload.Lookup("event_id")
	assert.True(t, ok)
}

func TestHygieneReportSeverity(t *testing.T) {
	r := NewHygieneReport()
	assert.True(t, r.Ok())

	r.Warn(HygieneAmbiguous, CodeNonNFCString)
	assert.Equal(t, HygieneAmbiguous, r.Status)
	assert.False(t, r.Ok())

	// A lower severity never downgrades the status.
	r.Warn(HygieneLossy, "SomethingLossy")
	assert.Equal(t, HygieneAmbiguous, r.Status)

	r.Invalidate(CodeDuplicateKeys)
	assert.Equal(t, HygieneInvalid, r.Status)
	assert.True(t, r.HasCode(CodeDuplicateKeys))

	// Codes are deduplicated.
	r.Invalidate(CodeDuplicateKeys)
	count := 0
	for _, w := range r.Warnings {
		if w == CodeDuplicateKeys {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
