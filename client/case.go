package client

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"
)

// The platform API speaks snake_case on the wire while every record type
// in this package carries camelCase JSON tags. Translation happens once
// at the transport boundary, in both directions, so neither side ever
// sees the other's convention.

func snakeToCamel(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(rs))
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		// An underscore is a separator only between word characters;
		// leading or doubled underscores are part of the key itself.
		if r == '_' && i > 0 && rs[i-1] != '_' && i+1 < len(rs) && unicode.IsLower(rs[i+1]) {
			i++
			b.WriteRune(unicode.ToUpper(rs[i]))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func camelToSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// translateKeys rewrites every map key in a decoded JSON value, walking
// nested objects and arrays. Values are never touched.
func translateKeys(v any, convert func(string) string) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[convert(k)] = translateKeys(item, convert)
		}
		return out
	case []any:
		for i, item := range val {
			val[i] = translateKeys(item, convert)
		}
		return val
	default:
		return v
	}
}

// translateJSON re-keys a JSON document. Numbers decode as json.Number so
// re-encoding reproduces them digit for digit.
func translateJSON(raw []byte, convert func(string) string) ([]byte, error) {
	if len(raw) == 0 {
		return raw, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return json.Marshal(translateKeys(v, convert))
}

// toWire encodes a record and converts its keys to the wire convention.
func toWire(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return translateJSON(raw, camelToSnake)
}

// fromWire converts a wire payload's keys back to the caller convention.
func fromWire(raw []byte) ([]byte, error) {
	return translateJSON(raw, snakeToCamel)
}

// unmarshalLoose decodes JSON preserving numeric fidelity via json.Number.
func unmarshalLoose(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}
