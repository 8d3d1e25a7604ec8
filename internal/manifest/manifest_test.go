package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadValidManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[package]
name = "myapp"
version = "0.1.0"

[dependencies]
httpkit = { path = "../httpkit" }
vecmath = { git = "https://example.com/vecmath.git", tag = "v1.2.0" }
`)

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "myapp", m.Package.Name)
	assert.True(t, m.Dependencies["httpkit"].IsPathForm())
	assert.True(t, m.Dependencies["vecmath"].IsGitForm())

	kind, value, ok := m.Dependencies["vecmath"].GitRef()
	assert.True(t, ok)
	assert.Equal(t, "tag", kind)
	assert.Equal(t, "v1.2.0", value)
}

func TestValidateRejectsReservedDependencyName(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[package]
name = "myapp"

[dependencies]
std = { path = "../std" }
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsBothPathAndGit(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[package]
name = "myapp"

[dependencies]
dual = { path = "../dual", git = "https://example.com/dual.git" }
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestFindManifestWalksUpward(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[package]\nname = \"root\"\n")

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := FindManifest(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, FileName), found)
}

func TestFindManifestAbsentReturnsEmptyNotError(t *testing.T) {
	dir := t.TempDir()
	found, err := FindManifest(dir)
	require.NoError(t, err)
	assert.Empty(t, found)
}
