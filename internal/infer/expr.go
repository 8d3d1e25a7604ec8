package infer

import (
	"fmt"

	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/diag"
	"github.com/plutolang/pluto/internal/register"
)

// Infer synthesizes a type for expr with no contextual expectation
// (spec §4.4 "bidirectional inference").
func (c *Context) Infer(fn *FuncSig, env *TypeEnv, expr ast.Expr) (*Type, error) {
	return c.check(fn, env, expr, nil)
}

// Check verifies expr against an expected type, the checking half of
// bidirectional inference — used wherever spec §4.4.1 says a literal
// needs "an outer context": `none`, `[]`, and any T -> T? wrap site.
func (c *Context) Check(fn *FuncSig, env *TypeEnv, expr ast.Expr, expected *Type) (*Type, error) {
	return c.check(fn, env, expr, expected)
}

func (c *Context) check(fn *FuncSig, env *TypeEnv, expr ast.Expr, expected *Type) (*Type, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return c.checkLiteral(e, expected)
	case *ast.Identifier:
		return c.inferIdentifier(fn, env, e)
	case *ast.ArrayLit:
		return c.checkArrayLit(fn, env, e, expected)
	case *ast.MapLit:
		return c.inferMapLit(fn, env, e)
	case *ast.SetLit:
		return c.inferSetLit(fn, env, e)
	case *ast.StructLit:
		return c.inferStructLit(fn, env, e)
	case *ast.FieldAccess:
		return c.inferFieldAccess(fn, env, e)
	case *ast.MethodCall:
		return c.inferMethodCall(fn, env, e)
	case *ast.FreeCall:
		return c.inferFreeCall(fn, env, e)
	case *ast.IndexExpr:
		return c.inferIndex(fn, env, e)
	case *ast.UnaryOp:
		return c.inferUnary(fn, env, e)
	case *ast.BinaryOp:
		return c.inferBinary(fn, env, e)
	case *ast.CastExpr:
		return c.inferCast(fn, env, e)
	case *ast.LambdaExpr:
		return c.inferLambda(fn, env, e)
	case *ast.NullPropagate:
		return c.inferNullPropagate(fn, env, e)
	case *ast.ErrorPropagate:
		return c.inferErrorPropagate(fn, env, e)
	case *ast.CatchExpr:
		return c.inferCatch(fn, env, e)
	case *ast.SpawnExpr:
		return c.inferSpawn(fn, env, e)
	case *ast.InterpString:
		return c.inferInterpString(fn, env, e)
	case *ast.RangeExpr:
		return c.inferRange(fn, env, e)
	case *ast.BlockExpr:
		return c.inferBlockValue(fn, env, e)
	case *ast.MatchStmt:
		return c.inferMatchValue(fn, env, e)
	default:
		return nil, diag.Wrap(diag.New(diag.TypeMismatch, "infer", fmt.Sprintf("unhandled expression kind %T", expr)).
			WithSpan(spanAt(expr.Position())))
	}
}

func spanAt(p ast.Pos) ast.Span { return ast.Span{Start: p, End: p} }

func typeMismatch(at ast.Pos, format string, args ...interface{}) error {
	return diag.Wrap(diag.New(diag.TypeMismatch, "infer", fmt.Sprintf(format, args...)).WithSpan(spanAt(at)))
}

func undefined(at ast.Pos, format string, args ...interface{}) error {
	return diag.Wrap(diag.New(diag.Undefined, "infer", fmt.Sprintf(format, args...)).WithSpan(spanAt(at)))
}

func (c *Context) checkLiteral(l *ast.Literal, expected *Type) (*Type, error) {
	switch l.Kind {
	case ast.IntLit:
		return Int, nil
	case ast.FloatLit:
		return Float, nil
	case ast.StringLit:
		return String, nil
	case ast.BoolLit:
		return Bool, nil
	case ast.ByteLit:
		return Byte, nil
	case ast.NoneLit:
		// spec §4.4.1: "none is typed T? only where a nullable context
		// is available; otherwise AmbiguousNone."
		if expected != nil && expected.IsNullable() {
			return expected, nil
		}
		if expected != nil {
			return Nullable(expected), nil
		}
		return nil, diag.Wrap(diag.New(diag.AmbiguousNone, "infer", "`none` has no nullable context to infer from").
			WithSpan(spanAt(l.Pos)))
	default:
		return nil, typeMismatch(l.Pos, "unknown literal kind %v", l.Kind)
	}
}

func (c *Context) inferIdentifier(fn *FuncSig, env *TypeEnv, id *ast.Identifier) (*Type, error) {
	if t, ok := env.Lookup(id.Name); ok {
		return t, nil
	}
	if t, ok := builtinType(id.Name); ok {
		return t, nil
	}
	if sym, ok := resolveName(fn.MT, c.Reg.Global, id.Name); ok {
		return c.typeOfSymbol(sym, id.Pos)
	}
	return nil, undefined(id.Pos, "%q is not defined", id.Name)
}

// typeOfSymbol gives the Type a bare reference to sym carries in
// expression position: a function reference is its fn(...) type, a
// class/enum name is its own reference type (used by StructLit's
// ClassName and qualified-path field-access resolution).
func (c *Context) typeOfSymbol(sym *register.Symbol, at ast.Pos) (*Type, error) {
	switch sym.Kind {
	case register.KindFunction:
		callee, ok := c.funcSig(sym.QualifiedName)
		if !ok {
			return nil, undefined(at, "function %q has no resolved signature", sym.Name)
		}
		return Func(callee.Params, callee.Return), nil
	case register.KindEnum:
		return EnumRef(sym.QualifiedName), nil
	case register.KindClass:
		return ClassRef(sym.QualifiedName), nil
	case register.KindTrait:
		return TraitRef(sym.QualifiedName), nil
	case register.KindError:
		return ErrorRef(sym.QualifiedName), nil
	default:
		return nil, undefined(at, "%q does not name a value", sym.Name)
	}
}

func (c *Context) checkArrayLit(fn *FuncSig, env *TypeEnv, a *ast.ArrayLit, expected *Type) (*Type, error) {
	var elemExpected *Type
	if expected != nil && expected.Kind == KArray {
		elemExpected = expected.Elem
	}
	if len(a.Elems) == 0 {
		if elemExpected != nil {
			return Array(elemExpected), nil
		}
		return nil, diag.Wrap(diag.New(diag.EmptyArrayUntyped, "infer", "`[]` has no outer [T] context to infer from").
			WithSpan(spanAt(a.Pos)))
	}
	var elemType *Type
	for i, el := range a.Elems {
		t, err := c.check(fn, env, el, elemExpected)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			elemType = t
			continue
		}
		if !t.Equals(elemType) {
			return nil, typeMismatch(el.Position(), "array element %d has type %s, expected %s", i, t, elemType)
		}
	}
	return Array(elemType), nil
}

func (c *Context) inferMapLit(fn *FuncSig, env *TypeEnv, m *ast.MapLit) (*Type, error) {
	if len(m.Entries) == 0 {
		return nil, diag.Wrap(diag.New(diag.EmptyArrayUntyped, "infer", "empty map literal has no context to infer from").
			WithSpan(spanAt(m.Pos)))
	}
	var keyType, valType *Type
	for i, ent := range m.Entries {
		k, err := c.Infer(fn, env, ent.Key)
		if err != nil {
			return nil, err
		}
		v, err := c.Infer(fn, env, ent.Value)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			keyType, valType = k, v
			continue
		}
		if !k.Equals(keyType) {
			return nil, typeMismatch(m.Pos, "map key %d has type %s, expected %s", i, k, keyType)
		}
		if !v.Equals(valType) {
			return nil, typeMismatch(m.Pos, "map value %d has type %s, expected %s", i, v, valType)
		}
	}
	return MapOf(keyType, valType), nil
}

func (c *Context) inferSetLit(fn *FuncSig, env *TypeEnv, s *ast.SetLit) (*Type, error) {
	if len(s.Elems) == 0 {
		return nil, diag.Wrap(diag.New(diag.EmptyArrayUntyped, "infer", "empty set literal has no context to infer from").
			WithSpan(spanAt(s.Pos)))
	}
	var elemType *Type
	for i, el := range s.Elems {
		t, err := c.Infer(fn, env, el)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			elemType = t
			continue
		}
		if !t.Equals(elemType) {
			return nil, typeMismatch(el.Position(), "set element %d has type %s, expected %s", i, t, elemType)
		}
	}
	return SetOf(elemType), nil
}

func (c *Context) inferUnary(fn *FuncSig, env *TypeEnv, u *ast.UnaryOp) (*Type, error) {
	t, err := c.Infer(fn, env, u.X)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case "-":
		if !t.IsNumeric() {
			return nil, typeMismatch(u.Pos, "unary - requires int or float, got %s", t)
		}
		return t, nil
	case "!":
		if !t.Equals(Bool) {
			return nil, typeMismatch(u.Pos, "unary ! requires bool, got %s", t)
		}
		return Bool, nil
	case "~":
		if !t.Equals(Int) {
			return nil, typeMismatch(u.Pos, "unary ~ requires int, got %s", t)
		}
		return Int, nil
	default:
		return nil, typeMismatch(u.Pos, "unknown unary operator %q", u.Op)
	}
}

var bitwiseOps = map[string]bool{"&": true, "|": true, "^": true, "<<": true, ">>": true}
var compareOps = map[string]bool{"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true}
var logicalOps = map[string]bool{"&&": true, "||": true}

func (c *Context) inferBinary(fn *FuncSig, env *TypeEnv, b *ast.BinaryOp) (*Type, error) {
	left, err := c.Infer(fn, env, b.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.Infer(fn, env, b.Right)
	if err != nil {
		return nil, err
	}

	switch {
	case logicalOps[b.Op]:
		if !left.Equals(Bool) || !right.Equals(Bool) {
			return nil, typeMismatch(b.Pos, "%s requires bool operands, got %s and %s", b.Op, left, right)
		}
		return Bool, nil

	case compareOps[b.Op]:
		if !left.Equals(right) {
			return nil, typeMismatch(b.Pos, "comparison %s requires matching operand types, got %s and %s", b.Op, left, right)
		}
		return Bool, nil

	case bitwiseOps[b.Op]:
		if !left.Equals(Int) || !right.Equals(Int) {
			return nil, typeMismatch(b.Pos, "%s requires int operands, got %s and %s", b.Op, left, right)
		}
		return Int, nil

	case b.Op == "+":
		if left.Equals(String) && right.Equals(String) {
			return String, nil
		}
		if left.IsNumeric() && left.Equals(right) {
			return left, nil
		}
		return nil, typeMismatch(b.Pos, "+ requires matching int/float operands or string+string, got %s and %s", left, right)

	case b.Op == "-" || b.Op == "*" || b.Op == "/" || b.Op == "%":
		if !left.IsNumeric() || !left.Equals(right) {
			return nil, typeMismatch(b.Pos, "%s requires matching int or float operands, got %s and %s", b.Op, left, right)
		}
		return left, nil

	default:
		return nil, typeMismatch(b.Pos, "unknown binary operator %q", b.Op)
	}
}

// castPairs enumerates spec §4.4.1's permitted cast pairs.
var castPairs = map[string]map[string]bool{
	"int":    {"float": true, "bool": true, "byte": true},
	"float":  {"int": true},
	"byte":   {"int": true},
	"bool":   {"int": true},
}

func (c *Context) inferCast(fn *FuncSig, env *TypeEnv, ce *ast.CastExpr) (*Type, error) {
	from, err := c.Infer(fn, env, ce.X)
	if err != nil {
		return nil, err
	}
	to, err := c.resolveTypeExpr(fn.MT, fn.Generics, ce.Type)
	if err != nil {
		return nil, err
	}
	if !from.IsPrimitive() || !to.IsPrimitive() {
		return nil, diag.Wrap(diag.New(diag.InvalidCast, "infer", fmt.Sprintf("cannot cast %s as %s", from, to)).
			WithSpan(spanAt(ce.Pos)))
	}
	if !castPairs[from.Name][to.Name] {
		return nil, diag.Wrap(diag.New(diag.InvalidCast, "infer", fmt.Sprintf("cast %s as %s is not permitted", from, to)).
			WithSpan(spanAt(ce.Pos)))
	}
	return to, nil
}

func (c *Context) inferRange(fn *FuncSig, env *TypeEnv, r *ast.RangeExpr) (*Type, error) {
	lo, err := c.Infer(fn, env, r.Lo)
	if err != nil {
		return nil, err
	}
	hi, err := c.Infer(fn, env, r.Hi)
	if err != nil {
		return nil, err
	}
	if !lo.Equals(Int) || !hi.Equals(Int) {
		return nil, typeMismatch(r.Pos, "range bounds must be int, got %s and %s", lo, hi)
	}
	return Array(Int), nil
}

func (c *Context) inferInterpString(fn *FuncSig, env *TypeEnv, s *ast.InterpString) (*Type, error) {
	for _, part := range s.Parts {
		if part.Expr == nil {
			continue
		}
		t, err := c.Infer(fn, env, part.Expr)
		if err != nil {
			return nil, err
		}
		if !t.Printable() {
			return nil, typeMismatch(s.Pos, "interpolated expression has type %s, which is not a printable primitive", t)
		}
	}
	return String, nil
}

func (c *Context) inferSpawn(fn *FuncSig, env *TypeEnv, s *ast.SpawnExpr) (*Type, error) {
	callee, ok := resolveName(fn.MT, c.Reg.Global, s.Callee)
	if !ok {
		return nil, undefined(s.Pos, "spawn target %q is not defined", s.Callee)
	}
	target, ok := c.funcSig(callee.QualifiedName)
	if !ok {
		return nil, undefined(s.Pos, "spawn target %q has no resolved signature", s.Callee)
	}
	if len(s.Args) != len(target.Params) {
		return nil, typeMismatch(s.Pos, "spawn %s expects %d arguments, got %d", s.Callee, len(target.Params), len(s.Args))
	}
	for i, a := range s.Args {
		if err := c.checkArg(fn, env, a, target.Params[i]); err != nil {
			return nil, err
		}
	}
	ret := target.Return
	if ret.Kind == KVoid {
		return ClassRef("Task", Void), nil
	}
	return ClassRef("Task", ret), nil
}

func (c *Context) checkArg(fn *FuncSig, env *TypeEnv, arg ast.Expr, expected *Type) error {
	t, err := c.check(fn, env, arg, expected)
	if err != nil {
		return err
	}
	if !t.AssignableTo(expected) {
		return typeMismatch(arg.Position(), "argument has type %s, expected %s", t, expected)
	}
	return nil
}
