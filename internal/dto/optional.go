package dto

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// NullableString distinguishes the three states of a PATCH field: key absent
// (leave unchanged), explicit null (clear), and a string value (set). Plain
// *string cannot tell the first two apart, which corrupts editor clears.
type NullableString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON records that the key appeared and captures null vs value.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}

	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	n.Value = &value
	return nil
}

// MarshalJSON round-trips the captured value.
func (n NullableString) MarshalJSON() ([]byte, error) {
	if !n.Present || n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// LenientFloat coerces a JSON value to a finite float64. Numbers and numeric
// strings are accepted; anything else (including null, NaN and infinities) is
// treated as unset rather than rejected, so admin forms never hard-fail on
// sloppy input. Callers needing strict validation must check after binding.
type LenientFloat struct {
	Present bool
	Value   float64
}

// UnmarshalJSON performs the lenient coercion. It never returns an error for
// non-numeric input; the field simply stays unset.
func (f *LenientFloat) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	raw := string(trimmed)
	if strings.HasPrefix(raw, `"`) {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil
		}
		raw = strings.TrimSpace(text)
	}

	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil
	}

	f.Present = true
	f.Value = parsed
	return nil
}

// Ptr returns the coerced value or nil when unset.
func (f LenientFloat) Ptr() *float64 {
	if !f.Present {
		return nil
	}
	value := f.Value
	return &value
}
