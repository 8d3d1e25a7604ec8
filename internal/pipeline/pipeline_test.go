package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestRunCompilesAppWithDependencyGraph(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.pluto"), `
class Logger {
    fn info(self) {
    }
}

app Main [log: Logger] {
    fn main(self) {
        self.log.info()
    }
}
`)

	res, err := Run(Config{}, filepath.Join(dir, "main.pluto"))
	require.NoError(t, err)
	require.NotNil(t, res.Program)
	require.NotNil(t, res.Symbols)
	assert.Empty(t, res.Errors)

	graph, ok := res.Graphs["Main"]
	require.True(t, ok, "expected a dependency graph for app Main")
	assert.NotEmpty(t, graph.Order)

	plan, ok := res.Entries["Main"]
	require.True(t, ok)
	assert.Equal(t, "Main", plan.AppName)
}

func TestRunSurfacesSyntaxErrorsWithoutPanicking(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.pluto"), `class {{{`)

	res, err := Run(Config{}, filepath.Join(dir, "main.pluto"))
	require.Error(t, err)
	assert.NotEmpty(t, res.Errors)
}

func TestRunReportsConformanceErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.pluto"), `
trait Greeter {
    fn greet(self);
}

class Silent impl Greeter {
}
`)

	res, err := Run(Config{}, filepath.Join(dir, "main.pluto"))
	require.Error(t, err)
	assert.NotEmpty(t, res.Errors)
}

func TestParseFileReportsCollectedErrors(t *testing.T) {
	_, err := ParseFile("bad.pluto", []byte(`class {{{`))
	require.Error(t, err)
}
