// Package journal reads and writes the .nrj container: an append-only,
// tamper-evident file holding content-addressed events.
//
// A journal is a fixed 16-byte header followed by zero or more frames.
// Each frame is a kind tag, a reserved byte, a little-endian u32 payload
// length, and the payload. Once a frame's bytes are flushed they are
// immutable; frames are never rewritten, reordered, or deleted. The
// container carries no index and no per-frame checksum — integrity comes
// entirely from event-level identity, framing catches truncation.
package journal

import (
	"encoding/binary"
	"fmt"

	"github.com/Northroot-Labs/northroot/types"
)

const (
	// Magic opens every journal file.
	Magic = "NRJ1"

	// FormatVersion is the container version this package reads and writes.
	FormatVersion uint16 = 0x0001

	// HeaderSize is the fixed size of the file header in bytes.
	HeaderSize = 16

	// FramePrefixSize is the fixed size of a frame's prefix: kind,
	// reserved, and payload length.
	FramePrefixSize = 6

	// MaxFramePayload is the largest permitted frame payload (16 MiB).
	MaxFramePayload = 1 << 24

	// KindEventJSON is the sole payload kind of the v1 format. Readers
	// skip frames of any other kind.
	KindEventJSON byte = 0x01
)

// encodeHeader writes the 16-byte header into a fresh buffer:
// magic, version (LE u16), flags (LE u16, zero), eight reserved zero bytes.
func encodeHeader() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], Magic)
	binary.LittleEndian.PutUint16(buf[4:6], FormatVersion)
	// flags and reserved bytes stay zero
	return buf
}

// validateHeader checks a 16-byte header. Wrong magic, an unknown version,
// non-zero flags, or non-zero reserved bytes all reject the file.
func validateHeader(buf []byte) error {
	if len(buf) != HeaderSize {
		return fmt.Errorf("%w: header is %d bytes, want %d", types.ErrInvalidHeader, len(buf), HeaderSize)
	}
	if string(buf[0:4]) != Magic {
		return fmt.Errorf("%w: magic %q", types.ErrInvalidHeader, buf[0:4])
	}
	if v := binary.LittleEndian.Uint16(buf[4:6]); v != FormatVersion {
		return fmt.Errorf("%w: version %d", types.ErrInvalidHeader, v)
	}
	if flags := binary.LittleEndian.Uint16(buf[6:8]); flags != 0 {
		return fmt.Errorf("%w: flags %#04x", types.ErrInvalidHeader, flags)
	}
	for i := 8; i < HeaderSize; i++ {
		if buf[i] != 0 {
			return fmt.Errorf("%w: reserved byte %d is %#02x", types.ErrInvalidHeader, i, buf[i])
		}
	}
	return nil
}

// encodeFramePrefix writes a frame prefix for the given kind and payload
// length. The length must already be within MaxFramePayload.
func encodeFramePrefix(kind byte, length int) []byte {
	buf := make([]byte, FramePrefixSize)
	buf[0] = kind
	buf[1] = 0x00
	binary.LittleEndian.PutUint32(buf[2:6], uint32(length))
	return buf
}
