package jsonkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractStringRoundTrip(t *testing.T) {
	cases := []string{"hello", "with \"quotes\"", "line\nbreak", "tab\there", "back\\slash"}
	for _, v := range cases {
		w := NewWriter(32)
		w.Byte('{').Str("k").Byte(':').Str(v).Byte('}')
		got, ok := ExtractString(w.Bytes(), "k")
		require.True(t, ok)
		assert.Equal(t, v, Unescape(got))
	}
}

func TestExtractStringFirstOccurrenceAtAnyDepth(t *testing.T) {
	data := []byte(`{"outer":{"k":"inner"},"k":"top"}`)
	got, ok := ExtractString(data, "k")
	require.True(t, ok)
	assert.Equal(t, "inner", got)
}

func TestExtractIntAndBool(t *testing.T) {
	data := []byte(`{"count": 42, "ok" : true, "bad":false}`)
	n, ok := ExtractInt(data, "count")
	require.True(t, ok)
	assert.EqualValues(t, 42, n)

	b, ok := ExtractBool(data, "ok")
	require.True(t, ok)
	assert.True(t, b)

	b, ok = ExtractBool(data, "bad")
	require.True(t, ok)
	assert.False(t, b)
}

func TestExtractFloatSignedAndExponent(t *testing.T) {
	data := []byte(`{"x":-12.5,"y":0,"z":3e2,"name":"x"}`)
	x, ok := ExtractFloat(data, "x")
	require.True(t, ok)
	assert.Equal(t, -12.5, x)

	y, ok := ExtractFloat(data, "y")
	require.True(t, ok)
	assert.Equal(t, 0.0, y)

	z, ok := ExtractFloat(data, "z")
	require.True(t, ok)
	assert.Equal(t, 300.0, z)

	_, ok = ExtractFloat(data, "missing")
	assert.False(t, ok)
}

func TestExtractRawObjectAndArray(t *testing.T) {
	data := []byte(`{"tool_input":{"a":1,"b":[1,2,{"c":3}]},"rest":true}`)
	got, ok := ExtractRaw(data, "tool_input")
	require.True(t, ok)
	assert.Equal(t, `{"a":1,"b":[1,2,{"c":3}]}`, got)
}

func TestExtractRawIgnoresBracesInsideStrings(t *testing.T) {
	data := []byte(`{"input":{"command":"echo {not a brace}"}}`)
	got, ok := ExtractRaw(data, "input")
	require.True(t, ok)
	assert.Equal(t, `{"command":"echo {not a brace}"}`, got)
}

func TestExtractMissingKey(t *testing.T) {
	_, ok := ExtractString([]byte(`{"a":"b"}`), "missing")
	assert.False(t, ok)
}

func TestWriterRawPassesThroughUnescaped(t *testing.T) {
	w := NewWriter(16)
	w.Byte('{').Str("schema").Byte(':').RawString(`{"type":"object"}`).Byte('}')
	got, ok := ExtractRaw(w.Bytes(), "schema")
	require.True(t, ok)
	assert.Equal(t, `{"type":"object"}`, got)
}
