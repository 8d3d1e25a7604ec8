package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/conform"
	"github.com/plutolang/pluto/internal/diag"
	"github.com/plutolang/pluto/internal/register"
	"github.com/plutolang/pluto/internal/sid"
)

func intType() ast.TypeExpr { return &ast.NamedType{Name: "int"} }

func funcSymbol(name string, decl *ast.FuncDecl) *register.Symbol {
	return &register.Symbol{
		Name: name, QualifiedName: name, Kind: register.KindFunction,
		Decl: decl, SID: sid.SID(name), Pos: decl.Pos,
	}
}

func errorSymbol(name string, decl *ast.ErrorDecl) *register.Symbol {
	return &register.Symbol{
		Name: name, QualifiedName: name, Kind: register.KindError,
		Decl: decl, SID: sid.SID(name), Pos: decl.Pos,
	}
}

func programWith(syms ...*register.Symbol) *register.Table {
	mt := register.NewModuleTable("")
	for _, s := range syms {
		mt.Add(s)
	}
	return &register.Table{
		Modules: map[string]*register.ModuleTable{"": mt},
		Global:  map[string]*register.Symbol{},
	}
}

func emptyConformTable() *conform.Table {
	return &conform.Table{ByClass: map[string][]*conform.Impl{}}
}

func findFunc(r *Result, name string) *FuncSig {
	for _, f := range r.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func reportCodes(errs []error) []string {
	codes := make([]string, 0, len(errs))
	for _, err := range errs {
		if rep, ok := diag.AsReport(err); ok {
			codes = append(codes, rep.Code)
		}
	}
	return codes
}

func TestRunInfersSimpleFunction(t *testing.T) {
	add := &ast.FuncDecl{
		Name: "add",
		Params: []*ast.Param{
			{Name: "a", Type: intType()},
			{Name: "b", Type: intType()},
		},
		Return: intType(),
		Body: &ast.BlockExpr{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.BinaryOp{
				Op:    "+",
				Left:  &ast.Identifier{Name: "a"},
				Right: &ast.Identifier{Name: "b"},
			}},
		}},
	}

	reg := programWith(funcSymbol("add", add))
	result := Run(reg, emptyConformTable())
	require.Empty(t, result.Errors)
	require.Len(t, result.Funcs, 1)
	assert.Equal(t, Int, result.Funcs[0].Return)
	assert.Empty(t, result.Funcs[0].ErrorSet)
}

func TestRunRejectsMismatchedReturnType(t *testing.T) {
	bad := &ast.FuncDecl{
		Name:   "bad",
		Return: intType(),
		Body: &ast.BlockExpr{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.Literal{Kind: ast.StringLit, Value: "oops"}},
		}},
	}

	reg := programWith(funcSymbol("bad", bad))
	result := Run(reg, emptyConformTable())
	require.Len(t, result.Errors, 1)
	assert.Equal(t, diag.TypeMismatch, reportCodes(result.Errors)[0])
}

func errorDecl() *ast.ErrorDecl { return &ast.ErrorDecl{Name: "IOError"} }

func riskyFunc() *ast.FuncDecl {
	return &ast.FuncDecl{
		Name: "risky",
		Body: &ast.BlockExpr{Stmts: []ast.Stmt{
			&ast.RaiseStmt{ErrorType: "IOError", Fields: map[string]ast.Expr{}},
		}},
	}
}

func TestRunPropagatesErrorSetThroughBang(t *testing.T) {
	caller := &ast.FuncDecl{
		Name: "caller",
		Body: &ast.BlockExpr{Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.ErrorPropagate{X: &ast.FreeCall{Callee: "risky"}}},
		}},
	}

	reg := programWith(errorSymbol("IOError", errorDecl()), funcSymbol("risky", riskyFunc()), funcSymbol("caller", caller))
	result := Run(reg, emptyConformTable())
	require.Empty(t, result.Errors)

	risky := findFunc(result, "risky")
	require.NotNil(t, risky)
	assert.True(t, risky.ErrorSet["IOError"])

	callerSig := findFunc(result, "caller")
	require.NotNil(t, callerSig)
	assert.True(t, callerSig.ErrorSet["IOError"])
}

func TestRunReportsUnhandledErrorOnBareCall(t *testing.T) {
	caller := &ast.FuncDecl{
		Name: "caller",
		Body: &ast.BlockExpr{Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.FreeCall{Callee: "risky"}},
		}},
	}

	reg := programWith(errorSymbol("IOError", errorDecl()), funcSymbol("risky", riskyFunc()), funcSymbol("caller", caller))
	result := Run(reg, emptyConformTable())
	assert.Contains(t, reportCodes(result.Errors), diag.UnhandledError)
}

func TestRunReportsPropagateOnInfallible(t *testing.T) {
	safe := &ast.FuncDecl{Name: "safe", Body: &ast.BlockExpr{}}
	caller := &ast.FuncDecl{
		Name: "caller",
		Body: &ast.BlockExpr{Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.ErrorPropagate{X: &ast.FreeCall{Callee: "safe"}}},
		}},
	}

	reg := programWith(funcSymbol("safe", safe), funcSymbol("caller", caller))
	result := Run(reg, emptyConformTable())
	assert.Contains(t, reportCodes(result.Errors), diag.PropagateOnInfallible)
}

func TestRunReportsUselessCatchOnInfallible(t *testing.T) {
	safe := &ast.FuncDecl{Name: "safe", Body: &ast.BlockExpr{}}
	caller := &ast.FuncDecl{
		Name: "caller",
		Body: &ast.BlockExpr{Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.CatchExpr{
				X:       &ast.FreeCall{Callee: "safe"},
				Ident:   "err",
				Handler: &ast.BlockExpr{},
			}},
		}},
	}

	reg := programWith(funcSymbol("safe", safe), funcSymbol("caller", caller))
	result := Run(reg, emptyConformTable())
	assert.Contains(t, reportCodes(result.Errors), diag.UselessCatch)
}
