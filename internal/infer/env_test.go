package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefineLocalRejectsSameScopeRedeclaration(t *testing.T) {
	env := NewTypeEnv()
	assert.True(t, env.DefineLocal("x", Int))
	assert.False(t, env.DefineLocal("x", String))
}

func TestChildScopeShadowsWithoutRedeclaration(t *testing.T) {
	outer := NewTypeEnv()
	outer.DefineLocal("x", Int)
	inner := outer.Child()
	assert.True(t, inner.DefineLocal("x", String))
	typ, ok := inner.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, String, typ)

	outerType, ok := outer.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, Int, outerType)
}

func TestInClosureStopsAtNearestBoundary(t *testing.T) {
	root := NewTypeEnv()
	assert.False(t, root.inClosure())
	body := root.ChildClosure()
	assert.True(t, body.inClosure())
	nested := body.Child()
	assert.True(t, nested.inClosure())
}

func TestInLoopScopeDoesNotCrossClosureBoundary(t *testing.T) {
	root := NewTypeEnv()
	loop := root.Child()
	loop.loopBoundary = true
	assert.True(t, loop.inLoopScope())

	lambdaInsideLoop := loop.ChildClosure()
	assert.False(t, lambdaInsideLoop.inLoopScope())
}

func TestSelfIsMutTracksReceiverBinding(t *testing.T) {
	mutEnv := NewTypeEnv()
	mutEnv.defineSelf(ClassRef("pkg.Counter"), true)
	assert.True(t, mutEnv.selfIsMut())

	readOnlyEnv := NewTypeEnv()
	readOnlyEnv.defineSelf(ClassRef("pkg.Counter"), false)
	assert.False(t, readOnlyEnv.selfIsMut())
}
