package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNullableDoesNotNest(t *testing.T) {
	once := Nullable(Int)
	twice := Nullable(once)
	assert.Same(t, once, twice)
	assert.Equal(t, "int?", once.String())
}

func TestAssignableToWrapsPlainIntoNullable(t *testing.T) {
	assert.True(t, Int.AssignableTo(Nullable(Int)))
	assert.False(t, Nullable(Int).AssignableTo(Int))
	assert.True(t, Int.AssignableTo(Int))
}

func TestEqualsIsNominal(t *testing.T) {
	assert.True(t, Array(Int).Equals(Array(Int)))
	assert.False(t, Array(Int).Equals(Array(Float)))
	assert.True(t, ClassRef("pkg.Box").Equals(ClassRef("pkg.Box")))
	assert.False(t, ClassRef("pkg.Box").Equals(ClassRef("pkg.Crate")))
}

func TestStringRendersSurfaceSyntax(t *testing.T) {
	assert.Equal(t, "[int]", Array(Int).String())
	assert.Equal(t, "[string: int]", MapOf(String, Int).String())
	assert.Equal(t, "fn(int, string) bool", Func([]*Type{Int, String}, Bool).String())
	assert.Equal(t, "fn(int) void", Func([]*Type{Int}, nil).String())
}

func TestSubstituteReplacesGenericLeaves(t *testing.T) {
	boxed := Array(GenericParam("T"))
	subst := map[string]*Type{"T": Int}
	assert.Equal(t, Array(Int), boxed.Substitute(subst))
}

func TestPrintableOnlyPrimitives(t *testing.T) {
	assert.True(t, Int.Printable())
	assert.False(t, Array(Int).Printable())
	assert.False(t, ClassRef("pkg.Box").Printable())
}
