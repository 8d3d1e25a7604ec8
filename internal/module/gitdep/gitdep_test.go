package gitdep

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plutolang/pluto/internal/manifest"
)

func TestCacheKeyDeterministic(t *testing.T) {
	dep := manifest.Dependency{Git: "https://example.com/vecmath.git", Tag: "v1.2.0"}
	k1, err := CacheKey(dep)
	assert.NoError(t, err)
	k2, err := CacheKey(dep)
	assert.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestCacheKeyDiffersByRef(t *testing.T) {
	dep1 := manifest.Dependency{Git: "https://example.com/vecmath.git", Tag: "v1.2.0"}
	dep2 := manifest.Dependency{Git: "https://example.com/vecmath.git", Tag: "v1.3.0"}
	k1, _ := CacheKey(dep1)
	k2, _ := CacheKey(dep2)
	assert.NotEqual(t, k1, k2)
}

func TestCacheKeyRequiresRef(t *testing.T) {
	dep := manifest.Dependency{Git: "https://example.com/vecmath.git"}
	_, err := CacheKey(dep)
	assert.Error(t, err)
}
