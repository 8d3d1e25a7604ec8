package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeRoundTripsCodeAndMessage(t *testing.T) {
	r := New(CyclicDependency, "digraph", "A -> B -> A")
	e := Encode(r)
	data, err := e.ToJSON()
	assert.NoError(t, err)
	assert.Contains(t, string(data), CyclicDependency)
	assert.Contains(t, string(data), "A -> B -> A")
}

func TestReportToJSONCompactOmitsIndentation(t *testing.T) {
	r := New(TypeMismatch, "infer", "expected int, got string")
	out, err := r.ToJSON(true)
	assert.NoError(t, err)
	assert.NotContains(t, out, "\n")
}
