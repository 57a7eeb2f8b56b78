package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/Northroot-Labs/northroot/types"
)

// Parse decodes a JSON document into the ordered value tree.
//
// Rejected outright: input that is not valid UTF-8, objects with duplicate
// member names, number literals outside the binary64 range, and any bytes
// after the end of the document. Member order and byte offsets are recorded
// so duplicate detection and error reporting are deterministic.
func Parse(data []byte) (*types.Value, error) {
	if !utf8.Valid(data) {
		return nil, types.ErrInvalidUTF8
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w at offset %d", types.ErrTrailingData, dec.InputOffset())
	}
	return &v, nil
}

func parseValue(dec *json.Decoder) (types.Value, error) {
	origin := int(dec.InputOffset())
	tok, err := dec.Token()
	if err != nil {
		return types.Value{}, wrapSyntax(err)
	}
	return parseToken(dec, tok, origin)
}

func parseToken(dec *json.Decoder, tok json.Token, origin int) (types.Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec, origin)
		case '[':
			return parseArray(dec, origin)
		default:
			return types.Value{}, fmt.Errorf("%w: unexpected %q", types.ErrInvalidJSON, t.String())
		}
	case string:
		return types.Value{Kind: types.KindString, Str: t, Origin: origin}, nil
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			// Literals like 1e999 overflow binary64; NaN and Infinity are
			// not valid JSON in the first place.
			return types.Value{}, fmt.Errorf("%w: number %q outside binary64 range", types.ErrInvalidJSON, t.String())
		}
		return types.Value{Kind: types.KindNumber, Num: f, Raw: t.String(), Origin: origin}, nil
	case bool:
		return types.Value{Kind: types.KindBool, Bool: t, Origin: origin}, nil
	case nil:
		return types.Value{Kind: types.KindNull, Origin: origin}, nil
	default:
		return types.Value{}, fmt.Errorf("%w: unexpected token %v", types.ErrInvalidJSON, tok)
	}
}

func parseObject(dec *json.Decoder, origin int) (types.Value, error) {
	obj := types.Value{Kind: types.KindObject, Origin: origin}
	seen := make(map[string]struct{})
	for dec.More() {
		keyOrigin := int(dec.InputOffset())
		keyTok, err := dec.Token()
		if err != nil {
			return types.Value{}, wrapSyntax(err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return types.Value{}, fmt.Errorf("%w: object key is not a string", types.ErrInvalidJSON)
		}
		if _, dup := seen[key]; dup {
			return types.Value{}, fmt.Errorf("%w: %q at offset %d", types.ErrDuplicateKey, key, keyOrigin)
		}
		seen[key] = struct{}{}

		val, err := parseValue(dec)
		if err != nil {
			return types.Value{}, err
		}
		obj.Members = append(obj.Members, types.Member{Key: key, Value: val, Origin: keyOrigin})
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return types.Value{}, wrapSyntax(err)
	}
	return obj, nil
}

func parseArray(dec *json.Decoder, origin int) (types.Value, error) {
	arr := types.Value{Kind: types.KindArray, Origin: origin}
	for dec.More() {
		elem, err := parseValue(dec)
		if err != nil {
			return types.Value{}, err
		}
		arr.Elems = append(arr.Elems, elem)
	}
	if _, err := dec.Token(); err != nil { // consume ']'
		return types.Value{}, wrapSyntax(err)
	}
	return arr, nil
}

func wrapSyntax(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: unexpected end of input", types.ErrInvalidJSON)
	}
	return fmt.Errorf("%w: %v", types.ErrInvalidJSON, err)
}
