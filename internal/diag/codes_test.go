package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupKnownCode(t *testing.T) {
	info, ok := Lookup(CyclicDependency)
	assert.True(t, ok)
	assert.Equal(t, "digraph", info.Phase)
}

func TestLookupUnknownCode(t *testing.T) {
	_, ok := Lookup("E-NotReal")
	assert.False(t, ok)
}

func TestIsPhase(t *testing.T) {
	assert.True(t, IsPhase(UnhandledError, "infer"))
	assert.False(t, IsPhase(UnhandledError, "digraph"))
}
