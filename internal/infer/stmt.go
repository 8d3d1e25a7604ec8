package infer

import (
	"fmt"

	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/diag"
	"github.com/plutolang/pluto/internal/register"
)

func (c *Context) inferStmt(fn *FuncSig, env *TypeEnv, stmt ast.Stmt) (*Type, error) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		return c.inferLet(fn, env, s)
	case *ast.AssignStmt:
		return c.inferAssign(fn, env, s)
	case *ast.IfStmt:
		return c.inferIf(fn, env, s)
	case *ast.WhileStmt:
		return c.inferWhile(fn, env, s)
	case *ast.ForStmt:
		return c.inferFor(fn, env, s)
	case *ast.BreakStmt:
		return c.inferBreakContinue(env, s.Pos)
	case *ast.ContinueStmt:
		return c.inferBreakContinue(env, s.Pos)
	case *ast.ReturnStmt:
		return c.inferReturn(fn, env, s)
	case *ast.RaiseStmt:
		return c.inferRaise(fn, env, s)
	case *ast.MatchStmt:
		return c.checkMatch(fn, env, s)
	case *ast.ScopeStmt:
		return c.inferScope(fn, env, s)
	case *ast.ExprStmt:
		return c.Infer(fn, env, s.X)
	case *ast.YieldStmt:
		return c.inferYield(fn, env, s)
	default:
		return nil, typeMismatch(stmt.Position(), "unhandled statement kind %T", stmt)
	}
}

func (c *Context) isLValue(env *TypeEnv, expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Identifier:
		_, ok := env.lookupBinding(e.Name)
		return ok
	case *ast.IndexExpr:
		return true
	case *ast.FieldAccess:
		return c.lvalueFieldAccessRoot(env, e.Target)
	default:
		return false
	}
}

// lvalueFieldAccessRoot walks down a field-access chain to its root
// identifier, requiring `self` to be mut-self (spec §4.4.2: "a field
// reachable from mut self or from a mutable local").
func (c *Context) lvalueFieldAccessRoot(env *TypeEnv, target ast.Expr) bool {
	switch t := target.(type) {
	case *ast.Identifier:
		if t.Name == "self" {
			return env.selfIsMut()
		}
		_, ok := env.lookupBinding(t.Name)
		return ok
	case *ast.FieldAccess:
		return c.lvalueFieldAccessRoot(env, t.Target)
	case *ast.IndexExpr:
		return c.isLValue(env, t)
	default:
		return false
	}
}

func (c *Context) inferLet(fn *FuncSig, env *TypeEnv, s *ast.LetStmt) (*Type, error) {
	var expected *Type
	if s.Type != nil {
		t, err := c.resolveTypeExpr(fn.MT, fn.Generics, s.Type)
		if err != nil {
			return nil, err
		}
		expected = t
	}
	valType, err := c.check(fn, env, s.Value, expected)
	if err != nil {
		return nil, err
	}
	declared := valType
	if expected != nil {
		if !valType.AssignableTo(expected) {
			return nil, typeMismatch(s.Pos, "cannot assign %s to declared type %s", valType, expected)
		}
		declared = expected
	}
	if !env.DefineLocal(s.Name, declared) {
		return nil, diag.Wrap(diag.New(diag.Redeclaration, "infer",
			fmt.Sprintf("%q is already declared in this scope", s.Name)).WithSpan(spanAt(s.Pos)))
	}
	return Void, nil
}

func (c *Context) inferAssign(fn *FuncSig, env *TypeEnv, s *ast.AssignStmt) (*Type, error) {
	if !c.isLValue(env, s.Target) {
		return nil, diag.Wrap(diag.New(diag.ImmutableAssignment, "infer",
			"assignment target is not a valid l-value").WithSpan(spanAt(s.Pos)))
	}
	targetType, err := c.Infer(fn, env, s.Target)
	if err != nil {
		return nil, err
	}
	valType, err := c.check(fn, env, s.Value, targetType)
	if err != nil {
		return nil, err
	}
	if !valType.AssignableTo(targetType) {
		return nil, typeMismatch(s.Pos, "cannot assign %s to %s", valType, targetType)
	}
	return Void, nil
}

func (c *Context) inferIf(fn *FuncSig, env *TypeEnv, s *ast.IfStmt) (*Type, error) {
	condType, err := c.Infer(fn, env, s.Cond)
	if err != nil {
		return nil, err
	}
	if !condType.Equals(Bool) {
		return nil, typeMismatch(s.Pos, "if condition must be bool, got %s", condType)
	}
	if _, err := c.inferBlockIn(fn, env.Child(), s.Then); err != nil {
		return nil, err
	}
	if s.Else != nil {
		if _, err := c.inferStmt(fn, env, s.Else); err != nil {
			return nil, err
		}
	}
	return Void, nil
}

func (c *Context) inferWhile(fn *FuncSig, env *TypeEnv, s *ast.WhileStmt) (*Type, error) {
	condType, err := c.Infer(fn, env, s.Cond)
	if err != nil {
		return nil, err
	}
	if !condType.Equals(Bool) {
		return nil, typeMismatch(s.Pos, "while condition must be bool, got %s", condType)
	}
	body := env.Child()
	body.loopBoundary = true
	if _, err := c.inferBlockIn(fn, body, s.Body); err != nil {
		return nil, err
	}
	return Void, nil
}

func (c *Context) inferFor(fn *FuncSig, env *TypeEnv, s *ast.ForStmt) (*Type, error) {
	iterandType, err := c.Infer(fn, env, s.Iterand)
	if err != nil {
		return nil, err
	}
	var elemType *Type
	switch {
	case iterandType.Kind == KArray:
		elemType = iterandType.Elem
	case iterandType.Kind == KStream:
		elemType = iterandType.Elem
	case iterandType.Kind == KMap:
		elemType = iterandType.Key
	case iterandType.Equals(String):
		elemType = String
	default:
		return nil, diag.Wrap(diag.New(diag.ForLoopBadIterand, "infer",
			fmt.Sprintf("for-loop iterand has type %s; must be array, range, string, stream, or map", iterandType)).
			WithSpan(spanAt(s.Pos)))
	}
	body := env.Child()
	body.loopBoundary = true
	body.DefineLocal(s.Var, elemType)
	if _, err := c.inferBlockIn(fn, body, s.Body); err != nil {
		return nil, err
	}
	return Void, nil
}

func (c *Context) inferBreakContinue(env *TypeEnv, pos ast.Pos) (*Type, error) {
	if !env.inLoopScope() {
		return nil, diag.Wrap(diag.New(diag.BreakOutsideLoop, "infer",
			"break/continue outside any enclosing loop").WithSpan(spanAt(pos)))
	}
	return Void, nil
}

func (c *Context) inferReturn(fn *FuncSig, env *TypeEnv, s *ast.ReturnStmt) (*Type, error) {
	if s.Value == nil {
		if fn.Return.Kind != KVoid {
			return nil, typeMismatch(s.Pos, "bare return is only legal in a void function; %s returns %s", fn.Name, fn.Return)
		}
		return Void, nil
	}
	valType, err := c.check(fn, env, s.Value, fn.Return)
	if err != nil {
		return nil, err
	}
	if !valType.AssignableTo(fn.Return) {
		return nil, typeMismatch(s.Pos, "return value has type %s, expected %s", valType, fn.Return)
	}
	return Void, nil
}

func (c *Context) inferRaise(fn *FuncSig, env *TypeEnv, s *ast.RaiseStmt) (*Type, error) {
	if env.inClosure() {
		return nil, inClosureErr(s.Pos, "raise")
	}
	sym, ok := resolveName(fn.MT, c.Reg.Global, s.ErrorType)
	if !ok || sym.Kind != register.KindError {
		return nil, undefined(s.Pos, "%q is not a known error kind", s.ErrorType)
	}
	decl := sym.Decl.(*ast.ErrorDecl)
	mt := c.Reg.Modules[sym.ModulePath]
	c.recordRaise(fn.SID, sym.QualifiedName)

	seen := make(map[string]bool, len(s.Fields))
	for name, val := range s.Fields {
		var fieldType *Type
		for _, f := range decl.Fields {
			if f.Name == name {
				t, err := c.resolveTypeExpr(mt, nil, f.Type)
				if err != nil {
					return nil, err
				}
				fieldType = t
				break
			}
		}
		if fieldType == nil {
			return nil, undefined(s.Pos, "error %s has no field %q", decl.Name, name)
		}
		seen[name] = true
		if err := c.checkArg(fn, env, val, fieldType); err != nil {
			return nil, err
		}
	}
	for _, f := range decl.Fields {
		if !seen[f.Name] {
			return nil, typeMismatch(s.Pos, "raise %s{...} is missing field %q", decl.Name, f.Name)
		}
	}
	return Void, nil
}

func (c *Context) inferScope(fn *FuncSig, env *TypeEnv, s *ast.ScopeStmt) (*Type, error) {
	if _, err := c.Infer(fn, env, s.Seed); err != nil {
		return nil, err
	}
	if _, err := c.inferBlockIn(fn, env.Child(), s.Body); err != nil {
		return nil, err
	}
	return Void, nil
}

func (c *Context) inferYield(fn *FuncSig, env *TypeEnv, s *ast.YieldStmt) (*Type, error) {
	valType, err := c.Infer(fn, env, s.Value)
	if err != nil {
		return nil, err
	}
	if fn.Return.Kind == KStream && !valType.AssignableTo(fn.Return.Elem) {
		return nil, typeMismatch(s.Pos, "yield value has type %s, expected %s", valType, fn.Return.Elem)
	}
	return Void, nil
}

func findVariant(decl *ast.EnumDecl, name string) *ast.EnumVariant {
	for _, v := range decl.Variants {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// checkMatch implements the type-checking half of spec §4.7's match
// handling: variants must exist and not repeat, and bound fields get
// their declared types. Full exhaustiveness (every variant covered)
// is P7's job once the enum's full variant set is cross-checked
// against control-flow; this phase rejects only what it can detect
// locally (unknown variant, duplicate arm, non-enum scrutinee used
// with a variant pattern).
func (c *Context) checkMatch(fn *FuncSig, env *TypeEnv, m *ast.MatchStmt) (*Type, error) {
	scrutType, err := c.Infer(fn, env, m.Scrutinee)
	if err != nil {
		return nil, err
	}

	var enumDecl *ast.EnumDecl
	var enumMT *register.ModuleTable
	if scrutType.Kind == KEnum {
		d, ok := c.enumDecl(scrutType.Name)
		if !ok {
			return nil, undefined(m.Pos, "enum %s has no resolved declaration", scrutType.Name)
		}
		enumDecl = d
		if sym, ok := c.symbolsByQualName[scrutType.Name]; ok {
			enumMT = c.Reg.Modules[sym.ModulePath]
		}
	}

	seenVariants := make(map[string]bool)
	wildcard := false
	var resultType *Type
	for i, arm := range m.Arms {
		armEnv := env.Child()
		switch p := arm.Pattern.(type) {
		case *ast.WildcardPattern:
			wildcard = true
		case *ast.Identifier:
			wildcard = true
			armEnv.DefineLocal(p.Name, scrutType)
		case *ast.VariantPattern:
			if enumDecl == nil {
				return nil, diag.Wrap(diag.New(diag.MatchOnNonEnum, "infer",
					fmt.Sprintf("match scrutinee has type %s, which is not an enum", scrutType)).
					WithSpan(spanAt(m.Pos)))
			}
			variant := findVariant(enumDecl, p.VariantName)
			if variant == nil {
				return nil, undefined(arm.Pos, "enum %s has no variant %q", enumDecl.Name, p.VariantName)
			}
			if seenVariants[variant.Name] {
				return nil, diag.Wrap(diag.New(diag.DuplicateMatchArm, "infer",
					fmt.Sprintf("variant %q matched by more than one arm", variant.Name)).
					WithSpan(spanAt(arm.Pos)))
			}
			seenVariants[variant.Name] = true
			for i, bindName := range p.Binds {
				if i >= len(variant.Fields) {
					break
				}
				ft, err := c.resolveTypeExpr(enumMT, nil, variant.Fields[i].Type)
				if err != nil {
					return nil, err
				}
				armEnv.DefineLocal(bindName, ft)
			}
		case *ast.LiteralPattern:
			litType, err := c.Infer(fn, env, p.Value)
			if err != nil {
				return nil, err
			}
			if !litType.Equals(scrutType) {
				return nil, typeMismatch(arm.Pos, "pattern literal has type %s, expected %s", litType, scrutType)
			}
		}

		bodyType, err := c.Infer(fn, armEnv, arm.Body)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			resultType = bodyType
		} else if !bodyType.Equals(resultType) {
			resultType = Void
		}
	}
	if resultType == nil {
		resultType = Void
	}
	if enumDecl != nil {
		c.recordMatch(MatchSite{
			Pos:      m.Pos,
			Enum:     scrutType.Name,
			Matched:  seenVariants,
			Wildcard: wildcard,
		})
	}
	return resultType, nil
}
