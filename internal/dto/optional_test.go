package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type nullableStringCarrier struct {
	Description NullableString `json:"description"`
}

func TestNullableStringThreeStates(t *testing.T) {
	var absent nullableStringCarrier
	require.NoError(t, json.Unmarshal([]byte(`{}`), &absent))
	require.False(t, absent.Description.Present)

	var null nullableStringCarrier
	require.NoError(t, json.Unmarshal([]byte(`{"description":null}`), &null))
	require.True(t, null.Description.Present)
	require.Nil(t, null.Description.Value)

	var value nullableStringCarrier
	require.NoError(t, json.Unmarshal([]byte(`{"description":"hello"}`), &value))
	require.True(t, value.Description.Present)
	require.Equal(t, "hello", *value.Description.Value)
}

func TestNullableStringMarshal(t *testing.T) {
	text := "hello"

	out, err := json.Marshal(NullableString{Present: true, Value: &text})
	require.NoError(t, err)
	require.JSONEq(t, `"hello"`, string(out))

	out, err = json.Marshal(NullableString{Present: true})
	require.NoError(t, err)
	require.Equal(t, "null", string(out))

	out, err = json.Marshal(NullableString{})
	require.NoError(t, err)
	require.Equal(t, "null", string(out))
}

type lenientFloatCarrier struct {
	Weight LenientFloat `json:"weight"`
}

func TestLenientFloatCoercion(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		present bool
		value   float64
	}{
		{"number", `{"weight":2.5}`, true, 2.5},
		{"numeric string", `{"weight":"3"}`, true, 3},
		{"padded numeric string", `{"weight":" 4.5 "}`, true, 4.5},
		{"garbage string", `{"weight":"heavy"}`, false, 0},
		{"null", `{"weight":null}`, false, 0},
		{"absent", `{}`, false, 0},
		{"boolean", `{"weight":true}`, false, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var carrier lenientFloatCarrier
			require.NoError(t, json.Unmarshal([]byte(tc.payload), &carrier))
			require.Equal(t, tc.present, carrier.Weight.Present)
			if tc.present {
				require.Equal(t, tc.value, carrier.Weight.Value)
			}
		})
	}
}

func TestLenientFloatPtr(t *testing.T) {
	require.Nil(t, LenientFloat{}.Ptr())

	set := LenientFloat{Present: true, Value: 7}
	ptr := set.Ptr()
	require.NotNil(t, ptr)
	require.Equal(t, float64(7), *ptr)
}
