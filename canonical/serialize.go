package canonical

import (
	"fmt"
	"sort"
	"unicode/utf16"

	"github.com/Northroot-Labs/northroot/types"
)

// appendValue serializes a reviewed value tree to canonical bytes. The tree
// is never mutated: member sorting happens on a scratch slice of indices,
// array order is preserved as-is, and nothing is dropped or rewritten.
func appendValue(buf []byte, v *types.Value) ([]byte, error) {
	switch v.Kind {
	case types.KindNull:
		return append(buf, "null"...), nil
	case types.KindBool:
		if v.Bool {
			return append(buf, "true"...), nil
		}
		return append(buf, "false"...), nil
	case types.KindNumber:
		return appendNumber(buf, v.Num)
	case types.KindString:
		return appendString(buf, v.Str), nil
	case types.KindArray:
		return appendArray(buf, v)
	case types.KindObject:
		return appendObject(buf, v)
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.Kind)
	}
}

// appendString applies RFC 8785 string escaping: the two-character escapes
// for quote, backslash, backspace, form feed, newline, carriage return and
// tab; \u00xx lowercase hex for the remaining control characters; every
// other code point verbatim as UTF-8, non-ASCII included. The solidus is
// not escaped.
func appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	start := 0
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b >= 0x20 && b != '"' && b != '\\' {
			continue
		}
		buf = append(buf, s[start:i]...)
		switch b {
		case '"':
			buf = append(buf, '\\', '"')
		case '\\':
			buf = append(buf, '\\', '\\')
		case '\b':
			buf = append(buf, '\\', 'b')
		case '\f':
			buf = append(buf, '\\', 'f')
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		default:
			buf = append(buf, '\\', 'u', '0', '0', hexDigit(b>>4), hexDigit(b&0x0f))
		}
		start = i + 1
	}
	buf = append(buf, s[start:]...)
	return append(buf, '"')
}

func hexDigit(b byte) byte {
	if b < 10 {
		return '0' + b
	}
	return 'a' + (b - 10)
}

func appendArray(buf []byte, v *types.Value) ([]byte, error) {
	buf = append(buf, '[')
	var err error
	for i := range v.Elems {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf, err = appendValue(buf, &v.Elems[i])
		if err != nil {
			return nil, err
		}
	}
	return append(buf, ']'), nil
}

// appendObject emits members sorted by the UTF-16 code-unit sequence of
// their keys. A byte sort of the UTF-8 keys is not equivalent once keys
// contain supplementary-plane characters, so each key is transcoded once
// and compared unit by unit. Ties cannot occur: duplicate keys are rejected
// before serialization.
func appendObject(buf []byte, v *types.Value) ([]byte, error) {
	keys := make([]sortKey, len(v.Members))
	for i := range v.Members {
		keys[i] = sortKey{index: i, units: utf16.Encode([]rune(v.Members[i].Key))}
	}
	sort.Slice(keys, func(i, j int) bool {
		return compareUTF16(keys[i].units, keys[j].units) < 0
	})

	buf = append(buf, '{')
	var err error
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		m := &v.Members[k.index]
		buf = appendString(buf, m.Key)
		buf = append(buf, ':')
		buf, err = appendValue(buf, &m.Value)
		if err != nil {
			return nil, err
		}
	}
	return append(buf, '}'), nil
}

type sortKey struct {
	index int
	units []uint16
}

func compareUTF16(a, b []uint16) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
