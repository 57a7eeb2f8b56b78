package canonical

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// appendNumber emits a binary64 value using the ECMA-262 "Number to String"
// algorithm as profiled by RFC 8785: shortest round-trip form, plain
// notation for magnitudes in [1e-6, 1e21), exponential notation outside it
// with a signed exponent free of leading zeros.
//
// Negative zero never reaches this function; hygiene review rejects it
// before serialization, so a zero here is always plain "0". NaN and the
// infinities cannot appear in a parsed document and are refused.
func appendNumber(buf []byte, f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite number %v cannot be serialized", f)
	}
	if f == 0 {
		return append(buf, '0'), nil
	}

	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}

	format := byte('e')
	if f < 1e21 && f >= 1e-6 {
		format = 'f'
	}
	s := strconv.FormatFloat(f, format, -1, 64)

	if format == 'e' {
		// Go writes at least two exponent digits ("1e+09"); ECMA-262 writes
		// the minimal exponent ("1e+9").
		if i := strings.IndexByte(s, 'e'); i >= 0 && i+2 < len(s) {
			exp := s[i+2:]
			for len(exp) > 1 && exp[0] == '0' {
				exp = exp[1:]
			}
			s = s[:i+2] + exp
		}
	}
	return append(append(buf, sign...), s...), nil
}
