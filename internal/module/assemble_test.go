package module

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plutolang/pluto/internal/ast"
)

func fakeParser(t *testing.T) FileParser {
	t.Helper()
	return func(path string) (*ast.File, error) {
		return &ast.File{Path: path, Pos: ast.Pos{File: path}}, nil
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestAssembleSinglePackageNoManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.pluto"), "app Main {}")

	prog, err := Assemble(filepath.Join(dir, "main.pluto"), "", fakeParser(t))
	require.NoError(t, err)
	assert.Len(t, prog.OrderedDirs(), 1)
	assert.Len(t, prog.OrderedDirs()[0].Files, 1)
}

func TestAssembleMergesSameDirectoryFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.pluto"), "class A {}")
	writeFile(t, filepath.Join(dir, "b.pluto"), "class B {}")

	prog, err := Assemble(filepath.Join(dir, "a.pluto"), "", fakeParser(t))
	require.NoError(t, err)
	require.Len(t, prog.OrderedDirs(), 1)
	assert.Len(t, prog.OrderedDirs()[0].Files, 2)
}

func TestAssembleDescendsIntoSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.pluto"), "app Main {}")
	writeFile(t, filepath.Join(dir, "util", "helpers.pluto"), "class Helper {}")

	prog, err := Assemble(filepath.Join(dir, "main.pluto"), "", fakeParser(t))
	require.NoError(t, err)
	assert.Len(t, prog.OrderedDirs(), 2)

	var foundUtil bool
	for _, dm := range prog.OrderedDirs() {
		if dm.ModulePath == "util" {
			foundUtil = true
		}
	}
	assert.True(t, foundUtil)
}

func TestResolveImportSameDirectoryFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "helpers.pluto"), "class Helper {}")

	r := NewResolver(dir, "", nil, nil)
	resolved, err := r.ResolveImport("helpers", dir)
	require.NoError(t, err)
	assert.Equal(t, dir, resolved)
}

func TestResolveImportMissingReportsMissingModule(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(dir, "", nil, nil)
	_, err := r.ResolveImport("nope", dir)
	assert.Error(t, err)
}

func TestResolveImportDottedPathDescendsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "net", "tcp", "listener.pluto"), "class TcpListener {}")

	r := NewResolver(dir, "", nil, nil)
	resolved, err := r.ResolveImport("net.tcp", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "net", "tcp"), resolved)
}
