package conform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/diag"
	"github.com/plutolang/pluto/internal/register"
)

func classSymbol(name string, class *ast.ClassDecl) *register.Symbol {
	return &register.Symbol{Name: name, QualifiedName: name, Kind: register.KindClass, Decl: class, Pos: class.Pos}
}

func traitSymbol(name string, trait *ast.TraitDecl) *register.Symbol {
	return &register.Symbol{Name: name, QualifiedName: name, Kind: register.KindTrait, Decl: trait, Pos: trait.Pos}
}

func intType() ast.TypeExpr  { return &ast.NamedType{Name: "int"} }
func strType() ast.TypeExpr  { return &ast.NamedType{Name: "string"} }
func boolType() ast.TypeExpr { return &ast.NamedType{Name: "bool"} }

func tableWith(syms ...*register.Symbol) *register.Table {
	mt := register.NewModuleTable("")
	for _, s := range syms {
		mt.Add(s)
	}
	return &register.Table{
		Modules: map[string]*register.ModuleTable{"": mt},
		Global:  map[string]*register.Symbol{},
	}
}

func TestCheckSatisfiedImplRecordsMethod(t *testing.T) {
	trait := &ast.TraitDecl{
		Name: "Greeter",
		Methods: []*ast.MethodDecl{
			{Name: "greet", Params: []*ast.Param{{Name: "name", Type: strType()}}, Return: strType()},
		},
	}
	class := &ast.ClassDecl{
		Name:       "Robot",
		Implements: []string{"Greeter"},
		Methods: []*ast.MethodDecl{
			{Name: "greet", Params: []*ast.Param{{Name: "n", Type: strType()}}, Return: strType()},
		},
	}

	reg := tableWith(classSymbol("Robot", class), traitSymbol("Greeter", trait))
	table, errs := Check(reg)
	require.Empty(t, errs)
	require.Len(t, table.Impls, 1)
	assert.Equal(t, class, table.Impls[0].Class)
	assert.Contains(t, table.Impls[0].Methods, "greet")
}

func TestCheckMissingMethodReports(t *testing.T) {
	trait := &ast.TraitDecl{
		Name: "Greeter",
		Methods: []*ast.MethodDecl{
			{Name: "greet", Params: nil, Return: strType()},
		},
	}
	class := &ast.ClassDecl{Name: "Robot", Implements: []string{"Greeter"}}

	reg := tableWith(classSymbol("Robot", class), traitSymbol("Greeter", trait))
	_, errs := Check(reg)
	require.Len(t, errs, 1)
	rep, ok := diag.AsReport(errs[0])
	require.True(t, ok)
	assert.Equal(t, diag.MissingMethod, rep.Code)
}

func TestCheckDefaultBodyFillsInMissingMethod(t *testing.T) {
	body := &ast.BlockExpr{}
	trait := &ast.TraitDecl{
		Name: "Greeter",
		Methods: []*ast.MethodDecl{
			{Name: "greet", Return: strType(), Body: body},
		},
	}
	class := &ast.ClassDecl{Name: "Robot", Implements: []string{"Greeter"}}

	reg := tableWith(classSymbol("Robot", class), traitSymbol("Greeter", trait))
	table, errs := Check(reg)
	require.Empty(t, errs)
	require.Len(t, table.Impls, 1)
	assert.Same(t, trait.Methods[0], table.Impls[0].Methods["greet"])
}

func TestCheckSignatureMismatchParamType(t *testing.T) {
	trait := &ast.TraitDecl{
		Name: "Adder",
		Methods: []*ast.MethodDecl{
			{Name: "add", Params: []*ast.Param{{Type: intType()}}, Return: intType()},
		},
	}
	class := &ast.ClassDecl{
		Name:       "Calc",
		Implements: []string{"Adder"},
		Methods: []*ast.MethodDecl{
			{Name: "add", Params: []*ast.Param{{Type: strType()}}, Return: intType()},
		},
	}

	reg := tableWith(classSymbol("Calc", class), traitSymbol("Adder", trait))
	_, errs := Check(reg)
	require.Len(t, errs, 1)
	rep, _ := diag.AsReport(errs[0])
	assert.Equal(t, diag.MissingMethod, rep.Code)
}

func TestCheckSelfMutMismatch(t *testing.T) {
	trait := &ast.TraitDecl{
		Name:    "Counter",
		Methods: []*ast.MethodDecl{{Name: "bump", SelfMut: true}},
	}
	class := &ast.ClassDecl{
		Name:       "Widget",
		Implements: []string{"Counter"},
		Methods:    []*ast.MethodDecl{{Name: "bump", SelfMut: false}},
	}

	reg := tableWith(classSymbol("Widget", class), traitSymbol("Counter", trait))
	_, errs := Check(reg)
	require.Len(t, errs, 1)
}

func TestCheckDuplicateImplReports(t *testing.T) {
	trait := &ast.TraitDecl{Name: "Greeter"}
	class := &ast.ClassDecl{Name: "Robot", Implements: []string{"Greeter", "Greeter"}}

	reg := tableWith(classSymbol("Robot", class), traitSymbol("Greeter", trait))
	_, errs := Check(reg)
	require.Len(t, errs, 1)
	rep, _ := diag.AsReport(errs[0])
	assert.Equal(t, diag.DuplicateImpl, rep.Code)
}

func TestCheckUnknownTraitReportsUndefined(t *testing.T) {
	class := &ast.ClassDecl{Name: "Robot", Implements: []string{"Nope"}}
	reg := tableWith(classSymbol("Robot", class))
	_, errs := Check(reg)
	require.Len(t, errs, 1)
	rep, _ := diag.AsReport(errs[0])
	assert.Equal(t, diag.Undefined, rep.Code)
}

func TestContractNarrowingAddedRequiresIsRejected(t *testing.T) {
	trait := &ast.TraitDecl{
		Name: "Validator",
		Methods: []*ast.MethodDecl{
			{Name: "check", Return: boolType()},
		},
	}
	class := &ast.ClassDecl{
		Name:       "Strict",
		Implements: []string{"Validator"},
		Methods: []*ast.MethodDecl{
			{
				Name: "check", Return: boolType(),
				Contract: &ast.Contract{Requires: &ast.Identifier{Name: "extra"}},
			},
		},
	}

	reg := tableWith(classSymbol("Strict", class), traitSymbol("Validator", trait))
	_, errs := Check(reg)
	require.Len(t, errs, 1)
	rep, _ := diag.AsReport(errs[0])
	assert.Equal(t, diag.ContractNarrowing, rep.Code)
}

func TestSatisfiesStructurallyTrueWithoutImpl(t *testing.T) {
	trait := &ast.TraitDecl{
		Name:    "Greeter",
		Methods: []*ast.MethodDecl{{Name: "greet", Return: strType()}},
	}
	class := &ast.ClassDecl{
		Name:    "Robot",
		Methods: []*ast.MethodDecl{{Name: "greet", Return: strType()}},
	}
	assert.True(t, SatisfiesStructurally(class, trait))
}

func TestCheckErrorSetsRejectsSupersetRaise(t *testing.T) {
	traitMethod := &ast.MethodDecl{Name: "op"}
	implMethod := &ast.MethodDecl{Name: "op"}
	trait := &ast.TraitDecl{Name: "Op", Methods: []*ast.MethodDecl{traitMethod}}
	class := &ast.ClassDecl{Name: "Impl"}

	table := newTable()
	table.add(&Impl{Class: class, Trait: trait, Methods: map[string]*ast.MethodDecl{"op": implMethod}})

	errs := CheckErrorSets(table, func(m *ast.MethodDecl) []string {
		if m == traitMethod {
			return []string{"IOError"}
		}
		return []string{"IOError", "ParseError"}
	})
	require.Len(t, errs, 1)
	rep, _ := diag.AsReport(errs[0])
	assert.Equal(t, diag.ContractNarrowing, rep.Code)
}

func TestCheckErrorSetsAcceptsSubset(t *testing.T) {
	traitMethod := &ast.MethodDecl{Name: "op"}
	implMethod := &ast.MethodDecl{Name: "op"}
	trait := &ast.TraitDecl{Name: "Op", Methods: []*ast.MethodDecl{traitMethod}}
	class := &ast.ClassDecl{Name: "Impl"}

	table := newTable()
	table.add(&Impl{Class: class, Trait: trait, Methods: map[string]*ast.MethodDecl{"op": implMethod}})

	errs := CheckErrorSets(table, func(m *ast.MethodDecl) []string {
		return []string{"IOError"}
	})
	assert.Empty(t, errs)
}
