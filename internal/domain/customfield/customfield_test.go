package customfield

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField_DecodeEachKind(t *testing.T) {
	raw := `[
		{"name":"Nickname","kind":"text","value":"Sam"},
		{"name":"Kids","kind":"number","value":2},
		{"name":"Birthday","kind":"date","value":"1990-04-12"},
		{"name":"Mentor","kind":"boolean","value":true},
		{"name":"Stage","kind":"select","value":{"choice":"warm","options":["cold","warm","hot"]}},
		{"name":"LinkedIn","kind":"url","value":"https://linkedin.com/in/sam"}
	]`

	var fields []Field
	require.NoError(t, json.Unmarshal([]byte(raw), &fields))
	require.Len(t, fields, 6)

	assert.Equal(t, "Sam", Format(fields[0].Value))
	assert.Equal(t, "2", Format(fields[1].Value))
	assert.Equal(t, "Apr 12, 1990", Format(fields[2].Value))
	assert.Equal(t, "Yes", Format(fields[3].Value))
	assert.Equal(t, "warm", Format(fields[4].Value))
	assert.Equal(t, "https://linkedin.com/in/sam", Format(fields[5].Value))
	assert.Equal(t, KindDate, fields[2].Value.Kind())
}

func TestField_RejectsUnknownKind(t *testing.T) {
	var f Field
	err := json.Unmarshal([]byte(`{"name":"x","kind":"color","value":"red"}`), &f)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestField_RejectsMismatchedValue(t *testing.T) {
	var f Field
	assert.Error(t, json.Unmarshal([]byte(`{"name":"x","kind":"number","value":"ten"}`), &f))
	assert.Error(t, json.Unmarshal([]byte(`{"name":"x","kind":"select","value":{"choice":"z","options":["a"]}}`), &f))
	assert.Error(t, json.Unmarshal([]byte(`{"name":"x","kind":"url","value":"not a url"}`), &f))
}

func TestField_RoundTripPreservesKind(t *testing.T) {
	in := Field{Name: "Met", Value: Date(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Met","kind":"date","value":"2024-01-05"}`, string(raw))

	var out Field
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}
