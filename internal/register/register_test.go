package register

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/diag"
	"github.com/plutolang/pluto/internal/module"
)

func classDecl(name string, pub bool, line int) *ast.ClassDecl {
	pos := ast.Pos{File: "m.pluto", Line: line, Offset: line * 10}
	return &ast.ClassDecl{Name: name, Pub: pub, Pos: pos, Span: ast.Span{Start: pos, End: pos}}
}

func funcDecl(name string, pub bool, line int) *ast.FuncDecl {
	pos := ast.Pos{File: "m.pluto", Line: line, Offset: line * 10}
	return &ast.FuncDecl{Name: name, Pub: pub, Pos: pos, Span: ast.Span{Start: pos, End: pos}}
}

func TestRegisterRecordsDeclarationsAcrossMergedFiles(t *testing.T) {
	dm := &module.DirModule{
		Dir:        "/pkg",
		ModulePath: "myapp",
		Files: []*ast.File{
			{Path: "a.pluto", Decls: []ast.Decl{classDecl("Widget", true, 1)}},
			{Path: "b.pluto", Decls: []ast.Decl{funcDecl("helper", false, 2)}},
		},
	}
	// OrderedDirs relies on Program's internal order slice, populated
	// only by Assemble; for a directly-constructed Program under test
	// we register the module table directly instead.
	mt, err := registerModule(dm, nil)
	require.NoError(t, err)
	sym, ok := mt.Lookup("Widget")
	require.True(t, ok)
	assert.Equal(t, KindClass, sym.Kind)
	assert.True(t, sym.Pub)

	helper, ok := mt.Lookup("helper")
	require.True(t, ok)
	assert.False(t, helper.Pub)
}

func TestRegisterBuiltinsAreUnshadowable(t *testing.T) {
	dm := &module.DirModule{
		Dir:        "/pkg",
		ModulePath: "myapp",
		Files: []*ast.File{
			{Path: "a.pluto", Decls: []ast.Decl{funcDecl("print", true, 1)}},
		},
	}
	_, err := registerModule(dm, nil)
	require.Error(t, err)
	rep, ok := diag.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, diag.DuplicateDeclaration, rep.Code)
}

func TestRegisterDuplicateNameAcrossKinds(t *testing.T) {
	dm := &module.DirModule{
		Dir:        "/pkg",
		ModulePath: "myapp",
		Files: []*ast.File{
			{Path: "a.pluto", Decls: []ast.Decl{
				classDecl("Thing", true, 1),
				funcDecl("Thing", true, 2),
			}},
		},
	}
	_, err := registerModule(dm, nil)
	require.Error(t, err)
	rep, ok := diag.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, diag.DuplicateDeclaration, rep.Code)
	assert.NotNil(t, rep.SecondarySpan)
}

func TestRegisterQualifiesNamesByModulePath(t *testing.T) {
	dm := &module.DirModule{
		Dir:        "/std/net",
		ModulePath: "std.net",
		Files: []*ast.File{
			{Path: "tcp.pluto", Decls: []ast.Decl{classDecl("TcpListener", true, 1)}},
		},
	}
	mt, err := registerModule(dm, nil)
	require.NoError(t, err)
	sym, ok := mt.Lookup("TcpListener")
	require.True(t, ok)
	assert.Equal(t, "std.net.TcpListener", sym.QualifiedName)
}

func TestIsBuiltin(t *testing.T) {
	assert.True(t, IsBuiltin("sqrt"))
	assert.False(t, IsBuiltin("Widget"))
}

// stubParser fabricates one pub class per file, exercising the full
// P1 -> P2 pipeline without a real lexer/parser.
var stubClassNames = map[string]string{
	"widget.pluto": "Widget",
	"helper.pluto": "Helper",
}

func stubParser(path string) (*ast.File, error) {
	name := stubClassNames[filepath.Base(path)]
	pos := ast.Pos{File: path, Line: 1, Offset: 0}
	return &ast.File{
		Path: path,
		Decls: []ast.Decl{
			&ast.ClassDecl{Name: name, Pub: true, Pos: pos, Span: ast.Span{Start: pos, End: pos}},
		},
	}, nil
}

func TestRegisterEndToEndFromAssembledProgram(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widget.pluto"), []byte("class Widget {}"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "util"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "util", "helper.pluto"), []byte("class Helper {}"), 0o644))

	prog, err := module.Assemble(filepath.Join(dir, "widget.pluto"), "", stubParser)
	require.NoError(t, err)

	table, err := Register(prog)
	require.NoError(t, err)

	_, ok := table.Modules[""].Lookup("Widget")
	assert.True(t, ok)
	_, ok = table.Modules["util"].Lookup("Helper")
	assert.True(t, ok)
	assert.Contains(t, table.Global, "Widget")
	assert.Contains(t, table.Global, "util.Helper")
}
