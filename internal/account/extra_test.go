package account

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSetExtraRoundTrip(t *testing.T) {
	a := &Account{}

	require.NoError(t, a.SetExtra("foo", 42))

	assert.Equal(t, 42, a.GetExtra("foo", nil))
	assert.Equal(t, "fallback", a.GetExtra("bar", "fallback"))
}

func TestSetExtraSerializesOnWrite(t *testing.T) {
	a := &Account{}

	require.NoError(t, a.SetExtra("foo", 42))
	require.NoError(t, a.SetExtra("flag", true))

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(a.ExtraData), &m))
	assert.Equal(t, float64(42), m["foo"])
	assert.Equal(t, true, m["flag"])

	// A fresh account parsing the serialized payload sees JSON numbers.
	reloaded := &Account{ExtraData: a.ExtraData}
	assert.Equal(t, float64(42), reloaded.GetExtra("foo", nil))
	assert.Equal(t, true, reloaded.GetExtra("flag", nil))
}

func TestExtraDictMalformedPayload(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"garbage":     "{not json",
		"json_null":   "null",
		"json_array":  "[1,2]",
		"json_number": "42",
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			a := &Account{ExtraData: payload}

			m := a.ExtraDict()
			require.NotNil(t, m)
			assert.Empty(t, m)
			assert.Equal(t, "default", a.GetExtra("missing", "default"))
		})
	}
}

func TestSetExtraNestedValues(t *testing.T) {
	a := &Account{}

	require.NoError(t, a.SetExtra("nested", map[string]interface{}{"list": []interface{}{1, "two", nil}}))

	got, ok := a.GetExtra("nested", nil).(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, got, "list")
}
