package integration

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// flipPayloadByte mutates one byte of the first occurrence of marker in
// the journal file, leaving the framing intact.
func flipPayloadByte(t *testing.T, path, marker string) {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	idx := bytes.Index(raw, []byte(marker))
	require.Greater(t, idx, 0, "marker %q not found", marker)
	raw[idx+1] ^= 0x01
	require.NoError(t, os.WriteFile(path, raw, 0o644))
}
