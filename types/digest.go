package types

import "fmt"

const (
	// DigestAlgSHA256 identifies SHA-256 in digest objects.
	DigestAlgSHA256 = "sha-256"

	// DigestB64Len is the length of a base64url-no-pad encoding of a
	// 32-byte hash.
	DigestB64Len = 43
)

// Digest identifies content by hash. The v1 format fixes the algorithm to
// SHA-256 and the encoding to base64url without padding (RFC 4648 §5).
type Digest struct {
	Alg string `json:"alg"`
	B64 string `json:"b64"`
}

// Validate checks that the digest is a well-formed v1 digest.
func (d Digest) Validate() error {
	if d.Alg != DigestAlgSHA256 {
		return fmt.Errorf("%w: unsupported algorithm %q", ErrMalformedDigest, d.Alg)
	}
	if len(d.B64) != DigestB64Len {
		return fmt.Errorf("%w: encoded hash has length %d, want %d", ErrMalformedDigest, len(d.B64), DigestB64Len)
	}
	for i := 0; i < len(d.B64); i++ {
		if !isBase64URLByte(d.B64[i]) {
			return fmt.Errorf("%w: byte %q at position %d outside base64url alphabet", ErrMalformedDigest, d.B64[i], i)
		}
	}
	return nil
}

// Equal reports byte-for-byte digest equality. There is no partial credit:
// any difference in algorithm or encoding is unequal.
func (d Digest) Equal(other Digest) bool {
	return d.Alg == other.Alg && d.B64 == other.B64
}

// ToValue returns the digest as an object value, suitable for injection
// into an event under the event_id member.
func (d Digest) ToValue() Value {
	v := Object()
	v.Set("alg", String(d.Alg))
	v.Set("b64", String(d.B64))
	return v
}

// DigestFromValue extracts a digest from an object value of the shape
// {"alg":..., "b64":...}. Extra members, missing members or non-string
// members make the value malformed.
func DigestFromValue(v *Value) (Digest, error) {
	if v == nil || v.Kind != KindObject {
		return Digest{}, fmt.Errorf("%w: not an object", ErrMalformedDigest)
	}
	if len(v.Members) != 2 {
		return Digest{}, fmt.Errorf("%w: want exactly alg and b64 members, have %d members", ErrMalformedDigest, len(v.Members))
	}
	var d Digest
	for i := range v.Members {
		m := &v.Members[i]
		switch m.Key {
		case "alg":
			if m.Value.Kind != KindString {
				return Digest{}, fmt.Errorf("%w: alg is not a string", ErrMalformedDigest)
			}
			d.Alg = m.Value.Str
		case "b64":
			if m.Value.Kind != KindString {
				return Digest{}, fmt.Errorf("%w: b64 is not a string", ErrMalformedDigest)
			}
			d.B64 = m.Value.Str
		default:
			return Digest{}, fmt.Errorf("%w: unexpected member %q", ErrMalformedDigest, m.Key)
		}
	}
	if err := d.Validate(); err != nil {
		return Digest{}, err
	}
	return d, nil
}

func isBase64URLByte(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z':
		return true
	case b >= 'a' && b <= 'z':
		return true
	case b >= '0' && b <= '9':
		return true
	case b == '-' || b == '_':
		return true
	default:
		return false
	}
}
