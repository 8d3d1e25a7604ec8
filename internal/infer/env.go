package infer

// binding is one name bound in a TypeEnv: its type, and whether it
// traces back to a `mut self` receiver (needed for the l-value rule,
// spec §4.4.2: "a field reachable from mut self or from a mutable
// local").
type binding struct {
	typ     *Type
	selfMut bool // true only for the `self` binding of a `mut self` method
}

// TypeEnv is a lexically scoped block environment (spec §4.4.2: "let
// x = e ... introduces x in the current block scope; inner-scope
// redeclaration shadows"). Each nested block gets a child scope; a
// closure body gets a child scope of the environment captured at
// lambda-creation time.
type TypeEnv struct {
	parent *TypeEnv
	vars   map[string]*binding
	// closureBoundary is true for the root scope of a lambda body,
	// used by break/continue validity (inLoopScope) so a loop does not
	// leak across a closure, and by the `!`/`raise`-in-closure check
	// (inClosure) (spec §4.4.2, §4.7). selfIsMut does not stop at it.
	closureBoundary bool
	// loopBoundary is true for the body scope of a while/for, used by
	// break/continue validity (spec §4.4.2: "never across a closure
	// boundary" -- inLoopScope stops the walk at closureBoundary).
	loopBoundary bool
}

// NewTypeEnv creates a root environment (a function or method body).
func NewTypeEnv() *TypeEnv {
	return &TypeEnv{vars: make(map[string]*binding)}
}

// Child opens a nested block scope.
func (e *TypeEnv) Child() *TypeEnv {
	return &TypeEnv{parent: e, vars: make(map[string]*binding)}
}

// ChildClosure opens the root scope of a lambda body.
func (e *TypeEnv) ChildClosure() *TypeEnv {
	child := e.Child()
	child.closureBoundary = true
	return child
}

// DefineLocal introduces name in the current (innermost) scope only,
// reporting whether it was already bound in this same scope (spec
// §4.4.2 "Redeclaration in the same scope -> Redeclaration").
func (e *TypeEnv) DefineLocal(name string, typ *Type) bool {
	if _, exists := e.vars[name]; exists {
		return false
	}
	e.vars[name] = &binding{typ: typ}
	return true
}

// defineSelf introduces the `self` binding for a method body, tagged
// with whether the receiver is `mut self`.
func (e *TypeEnv) defineSelf(typ *Type, selfMut bool) {
	e.vars["self"] = &binding{typ: typ, selfMut: selfMut}
}

// Lookup resolves name through enclosing scopes.
func (e *TypeEnv) Lookup(name string) (*Type, bool) {
	for scope := e; scope != nil; scope = scope.parent {
		if b, ok := scope.vars[name]; ok {
			return b.typ, true
		}
	}
	return nil, false
}

// lookupBinding resolves name to its binding, for l-value analysis
// that needs the selfMut flag.
func (e *TypeEnv) lookupBinding(name string) (*binding, bool) {
	for scope := e; scope != nil; scope = scope.parent {
		if b, ok := scope.vars[name]; ok {
			return b, true
		}
	}
	return nil, false
}

// selfIsMut reports whether the nearest enclosing `self` binding
// belongs to a `mut self` method (spec §4.4.2 l-value rule).
func (e *TypeEnv) selfIsMut() bool {
	b, ok := e.lookupBinding("self")
	return ok && b.selfMut
}

// inClosure reports whether this scope or any ancestor up to (and
// including) the nearest closure boundary is inside a lambda body.
func (e *TypeEnv) inClosure() bool {
	for scope := e; scope != nil; scope = scope.parent {
		if scope.closureBoundary {
			return true
		}
	}
	return false
}

// inLoopScope reports whether a break/continue here lands inside the
// innermost enclosing while/for, stopping the walk at a closure
// boundary so a lambda nested in a loop body cannot break the outer
// loop (spec §4.4.2, §4.7).
func (e *TypeEnv) inLoopScope() bool {
	for scope := e; scope != nil; scope = scope.parent {
		if scope.closureBoundary {
			return false
		}
		if scope.loopBoundary {
			return true
		}
	}
	return false
}
