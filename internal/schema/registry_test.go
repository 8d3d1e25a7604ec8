package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcceptsMatchesExactAndMinorVersions(t *testing.T) {
	assert.True(t, Accepts(DiagnosticV1, DiagnosticV1))
	assert.True(t, Accepts(DiagnosticV1+".1", DiagnosticV1))
	assert.False(t, Accepts("pluto.other/v1", DiagnosticV1))
}

func TestMarshalDeterministicSortsKeys(t *testing.T) {
	v := map[string]any{"b": 1, "a": 2}
	data, err := MarshalDeterministic(v)
	assert.NoError(t, err)
	assert.Equal(t, `{"a":2,"b":1}`, string(data))
}

func TestFormatJSONCompactMode(t *testing.T) {
	SetCompactMode(true)
	defer SetCompactMode(false)

	out, err := FormatJSON([]byte(`{"a": 1}`))
	assert.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(out))
}
