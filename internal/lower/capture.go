// Package lower implements P7 (spec §4.7): closure lifting's
// capture-set computation, match exhaustiveness, and return-path
// analysis. Capture computation runs before P4 (spec §9 design note:
// "compute capture-sets eagerly, before the error-set fixed point,"
// the fix for the source's closures-containing-`!` bug); exhaustiveness
// and return-path analysis consume P4's completed Context afterward.
package lower

import (
	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/register"
)

// PrecomputeCaptures fills every lambda's Captures field with its free
// variables (spec §4.7: "Captures are computed by free-variable
// scan"). It walks raw syntax only — no types are needed, so this can
// and must run before P4 touches anything.
func PrecomputeCaptures(reg *register.Table) {
	for _, mt := range reg.Modules {
		for _, sym := range mt.Ordered() {
			walkDeclForCaptures(sym.Decl)
		}
	}
}

func walkDeclForCaptures(decl ast.Decl) {
	switch d := decl.(type) {
	case *ast.FuncDecl:
		scanMethodBody(d.Params, false, d.Body)
	case *ast.ClassDecl:
		for _, m := range d.Methods {
			scanMethodBody(m.Params, true, m.Body)
		}
	case *ast.TraitDecl:
		for _, m := range d.Methods {
			scanMethodBody(m.Params, true, m.Body)
		}
	case *ast.AppDecl:
		for _, m := range d.Methods {
			scanMethodBody(m.Params, true, m.Body)
		}
	case *ast.StageDecl:
		for _, m := range d.Methods {
			scanMethodBody(m.Params, true, m.Body)
		}
	}
}

func scanMethodBody(params []*ast.Param, hasSelf bool, body *ast.BlockExpr) {
	if body == nil {
		return
	}
	scope := newScope(nil)
	if hasSelf {
		scope.define("self")
	}
	for _, p := range params {
		scope.define(p.Name)
	}
	freeVarsOfBlock(body, scope)
}

// captureScope is a chain of bound-name sets, one per lexical scope —
// the same shape as infer's TypeEnv chain, but tracking only names
// since free-variable scanning needs no type information.
type captureScope struct {
	parent *captureScope
	names  map[string]bool
}

func newScope(parent *captureScope) *captureScope {
	return &captureScope{parent: parent, names: make(map[string]bool)}
}

func (s *captureScope) define(name string) { s.names[name] = true }

func (s *captureScope) has(name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.names[name] {
			return true
		}
	}
	return false
}

// collector accumulates free-variable names in first-reference order,
// deduplicated, across however many sub-expressions contribute to it.
type collector struct {
	seen  map[string]bool
	names []string
}

func newCollector() *collector { return &collector{seen: make(map[string]bool)} }

func (c *collector) add(name string) {
	if !c.seen[name] {
		c.seen[name] = true
		c.names = append(c.names, name)
	}
}

func (c *collector) merge(names []string) {
	for _, n := range names {
		c.add(n)
	}
}

// freeVarsOfBlock scans a block's statements in order, threading a
// single child scope through them (so a `let` on statement 2 is bound
// for statement 3, per normal block scoping), and returns every name
// referenced that no scope in the chain binds.
func freeVarsOfBlock(b *ast.BlockExpr, scope *captureScope) []string {
	c := newCollector()
	child := newScope(scope)
	for _, stmt := range b.Stmts {
		c.merge(freeVarsOfStmt(stmt, child))
	}
	return c.names
}

func freeVarsOfStmt(stmt ast.Stmt, scope *captureScope) []string {
	c := newCollector()
	switch s := stmt.(type) {
	case *ast.LetStmt:
		c.merge(freeVarsOfExpr(s.Value, scope))
		scope.define(s.Name)
	case *ast.AssignStmt:
		c.merge(freeVarsOfExpr(s.Target, scope))
		c.merge(freeVarsOfExpr(s.Value, scope))
	case *ast.IfStmt:
		c.merge(freeVarsOfExpr(s.Cond, scope))
		c.merge(freeVarsOfBlock(s.Then, scope))
		if s.Else != nil {
			c.merge(freeVarsOfStmt(s.Else, scope))
		}
	case *ast.WhileStmt:
		c.merge(freeVarsOfExpr(s.Cond, scope))
		c.merge(freeVarsOfBlock(s.Body, scope))
	case *ast.ForStmt:
		c.merge(freeVarsOfExpr(s.Iterand, scope))
		child := newScope(scope)
		child.define(s.Var)
		c.merge(freeVarsOfBlock(s.Body, child))
	case *ast.ReturnStmt:
		if s.Value != nil {
			c.merge(freeVarsOfExpr(s.Value, scope))
		}
	case *ast.RaiseStmt:
		for _, v := range s.Fields {
			c.merge(freeVarsOfExpr(v, scope))
		}
	case *ast.MatchStmt:
		c.merge(freeVarsOfMatch(s, scope))
	case *ast.ScopeStmt:
		c.merge(freeVarsOfExpr(s.Seed, scope))
		c.merge(freeVarsOfBlock(s.Body, scope))
	case *ast.ExprStmt:
		c.merge(freeVarsOfExpr(s.X, scope))
	case *ast.YieldStmt:
		c.merge(freeVarsOfExpr(s.Value, scope))
	}
	return c.names
}

func freeVarsOfMatch(m *ast.MatchStmt, scope *captureScope) []string {
	c := newCollector()
	c.merge(freeVarsOfExpr(m.Scrutinee, scope))
	for _, arm := range m.Arms {
		armScope := newScope(scope)
		switch p := arm.Pattern.(type) {
		case *ast.Identifier:
			armScope.define(p.Name)
		case *ast.VariantPattern:
			for _, b := range p.Binds {
				armScope.define(b)
			}
		}
		c.merge(freeVarsOfExpr(arm.Body, armScope))
	}
	return c.names
}

// freeVarsOfExpr walks expr looking for identifiers not bound in
// scope. A LambdaExpr found along the way has its own Captures field
// populated as a side effect, and contributes to the outer result
// whatever names its own body left free after binding its parameters —
// a closure capturing a closure must itself capture what its nested
// closure didn't bind.
func freeVarsOfExpr(expr ast.Expr, scope *captureScope) []string {
	c := newCollector()
	switch e := expr.(type) {
	case *ast.Literal:

	case *ast.Identifier:
		if !scope.has(e.Name) {
			c.add(e.Name)
		}

	case *ast.ArrayLit:
		for _, el := range e.Elems {
			c.merge(freeVarsOfExpr(el, scope))
		}

	case *ast.MapLit:
		for _, ent := range e.Entries {
			c.merge(freeVarsOfExpr(ent.Key, scope))
			c.merge(freeVarsOfExpr(ent.Value, scope))
		}

	case *ast.SetLit:
		for _, el := range e.Elems {
			c.merge(freeVarsOfExpr(el, scope))
		}

	case *ast.StructLit:
		for _, f := range e.Fields {
			c.merge(freeVarsOfExpr(f.Value, scope))
		}

	case *ast.FieldAccess:
		c.merge(freeVarsOfExpr(e.Target, scope))

	case *ast.MethodCall:
		c.merge(freeVarsOfExpr(e.Target, scope))
		for _, a := range e.Args {
			c.merge(freeVarsOfExpr(a, scope))
		}

	case *ast.FreeCall:
		if !scope.has(e.Callee) {
			c.add(e.Callee)
		}
		for _, a := range e.Args {
			c.merge(freeVarsOfExpr(a, scope))
		}

	case *ast.IndexExpr:
		c.merge(freeVarsOfExpr(e.Target, scope))
		c.merge(freeVarsOfExpr(e.Key, scope))

	case *ast.UnaryOp:
		c.merge(freeVarsOfExpr(e.X, scope))

	case *ast.BinaryOp:
		c.merge(freeVarsOfExpr(e.Left, scope))
		c.merge(freeVarsOfExpr(e.Right, scope))

	case *ast.CastExpr:
		c.merge(freeVarsOfExpr(e.X, scope))

	case *ast.LambdaExpr:
		inner := newScope(nil)
		for _, p := range e.Params {
			inner.define(p.Name)
		}
		innerFree := freeVarsOfExpr(e.Body, inner)
		e.Captures = innerFree
		for _, n := range innerFree {
			if !scope.has(n) {
				c.add(n)
			}
		}

	case *ast.NullPropagate:
		c.merge(freeVarsOfExpr(e.X, scope))

	case *ast.ErrorPropagate:
		c.merge(freeVarsOfExpr(e.X, scope))

	case *ast.CatchExpr:
		c.merge(freeVarsOfExpr(e.X, scope))
		if e.Handler != nil {
			handlerScope := newScope(scope)
			if e.Ident != "" {
				handlerScope.define(e.Ident)
			}
			c.merge(freeVarsOfBlock(e.Handler, handlerScope))
		}
		if e.Default != nil {
			c.merge(freeVarsOfExpr(e.Default, scope))
		}

	case *ast.SpawnExpr:
		if !scope.has(e.Callee) {
			c.add(e.Callee)
		}
		for _, a := range e.Args {
			c.merge(freeVarsOfExpr(a, scope))
		}

	case *ast.InterpString:
		for _, part := range e.Parts {
			if part.Expr == nil {
				continue
			}
			c.merge(freeVarsOfExpr(part.Expr, scope))
		}

	case *ast.RangeExpr:
		c.merge(freeVarsOfExpr(e.Lo, scope))
		c.merge(freeVarsOfExpr(e.Hi, scope))

	case *ast.BlockExpr:
		c.merge(freeVarsOfBlock(e, scope))

	case *ast.MatchStmt:
		c.merge(freeVarsOfMatch(e, scope))
	}
	return c.names
}
