package binast

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plutolang/pluto/internal/pipeline"
	"github.com/plutolang/pluto/internal/register"
)

func lookupSymbol(t *testing.T, res *pipeline.Result, name string) *register.Symbol {
	t.Helper()
	for _, mt := range res.Symbols.Modules {
		if sym, ok := mt.Lookup(name); ok {
			return sym
		}
	}
	t.Fatalf("symbol %q not found in any module", name)
	return nil
}

func registerFixture(t *testing.T) *pipeline.Result {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.pluto")
	require.NoError(t, os.WriteFile(path, []byte(`
class Logger {
    fn info(self) {
    }
}

app Main [log: Logger] {
    fn main(self) {
        self.log.info()
    }
}
`), 0o644))
	res, err := pipeline.Run(pipeline.Config{}, path)
	require.NoError(t, err)
	return res
}

func TestDeclUUIDIsStableAcrossCalls(t *testing.T) {
	res := registerFixture(t)
	sym := lookupSymbol(t, res, "Logger")

	first := DeclUUID(sym.SID)
	second := DeclUUID(sym.SID)
	assert.Equal(t, first, second)
}

func TestDeclUUIDDiffersAcrossDeclarations(t *testing.T) {
	res := registerFixture(t)
	logger := lookupSymbol(t, res, "Logger")
	app := lookupSymbol(t, res, "Main")

	assert.NotEqual(t, DeclUUID(logger.SID), DeclUUID(app.SID))
}

func TestAssignmentsAreSortedByQualifiedName(t *testing.T) {
	res := registerFixture(t)
	entries := Assignments(res.Symbols)
	require.True(t, len(entries) >= 2)
	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, entries[i-1].QualifiedName, entries[i].QualifiedName)
	}
}

func TestDumpYAMLRoundTripsEntries(t *testing.T) {
	res := registerFixture(t)
	out, err := DumpYAML(res.Symbols)
	require.NoError(t, err)
	assert.Contains(t, string(out), "qualified_name: Logger")
}
