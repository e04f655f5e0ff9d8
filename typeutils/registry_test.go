package typeutils

import (
	"math/big"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/datazip-inc/bqsink/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_DefaultsProduceTargetTypes(t *testing.T) {
	registry := NewRegistry(nil)

	tests := []struct {
		tag      types.DataType
		input    any
		expected any
	}{
		{tag: types.String, input: "hello", expected: "hello"},
		{tag: types.Bytes, input: []byte{0x1}, expected: []byte{0x1}},
		{tag: types.Bool, input: true, expected: true},
		{tag: types.Integer, input: int64(42), expected: int64(42)},
		{tag: types.Float, input: 3.5, expected: 3.5},
		{tag: types.Time, input: civil.Time{Hour: 1, Minute: 2, Second: 3}, expected: "01:02:03.000000"},
		{tag: types.DateTime, input: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), expected: "2024-01-02 03:04:05.000"},
		{tag: types.Date, input: civil.Date{Year: 1970, Month: 1, Day: 2}, expected: int32(1)},
		{tag: types.Timestamp, input: time.Unix(1, 0), expected: int64(1_000_000)},
		{tag: types.JSON, input: `{"k":"v"}`, expected: `{"k":"v"}`},
		{tag: types.Geography, input: "POINT(1 2)", expected: "POINT(1 2)"},
		{tag: types.Numeric, input: big.NewRat(5, 2), expected: "2.500000000"},
	}

	for _, tc := range tests {
		t.Run(string(tc.tag), func(t *testing.T) {
			converter, err := registry.Lookup(tc.tag)
			require.NoError(t, err)

			out, err := converter.Fn(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, out)
		})
	}
}

func TestRegistry_AliasesResolve(t *testing.T) {
	registry := NewRegistry(nil)

	for _, alias := range []types.DataType{"BOOLEAN", "INT64", "FLOAT64", "DECIMAL"} {
		_, err := registry.Lookup(alias)
		assert.NoError(t, err, "alias %s", alias)
	}
}

func TestRegistry_UnknownType(t *testing.T) {
	registry := NewRegistry(nil)

	_, err := registry.Lookup(types.RecordType)
	require.Error(t, err)

	var unknownErr *UnknownTypeError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, types.RecordType, unknownErr.Type)
}

func TestRegistry_CustomOverrides(t *testing.T) {
	upper := Converter{Recommended: "string", Fn: func(v any) (any, error) {
		return "custom:" + v.(string), nil
	}}

	registry := NewRegistry(map[types.DataType]Converter{types.String: upper})
	converter, err := registry.Lookup(types.String)
	require.NoError(t, err)

	out, err := converter.Fn("x")
	require.NoError(t, err)
	assert.Equal(t, "custom:x", out)

	// Register extends the table after construction
	registry.Register("GEOJSON", Converter{Recommended: "string", Fn: func(v any) (any, error) { return v, nil }})
	_, err = registry.Lookup("GEOJSON")
	assert.NoError(t, err)
}
