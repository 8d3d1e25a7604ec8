// Package binast provides the declaration-UUID contract spec §6 asks
// the core to uphold ("each declaration carries a UUID so serialized
// ASTs can cross-reference stably across builds"). It does not
// implement the binary AST format itself — encoding, decoding, and
// the `emit-ast`/`generate-pt` round-trip are an external
// collaborator's concern per spec §1 — only the stable id a
// serializer on the other side of that boundary would key on, plus a
// human-readable debug dump of the id assignment.
package binast

import (
	"sort"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/plutolang/pluto/internal/register"
	"github.com/plutolang/pluto/internal/sid"
)

// namespace is a fixed, arbitrary UUID used to derive every
// declaration's UUID deterministically from its SID (itself already
// stable across builds per internal/sid's own doc comment). Deriving
// rather than generating at random means two compiler runs over
// unchanged source produce the same UUID without needing a persisted
// id table — the property spec §6 actually asks for.
var namespace = uuid.MustParse("6f5a1b8e-6e7f-4f2a-9a9d-6a6f6f6f6f6f")

// DeclUUID derives the stable UUID for a declaration's SID.
func DeclUUID(id sid.SID) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(id))
}

// Entry is one declaration's id-assignment record.
type Entry struct {
	QualifiedName string `yaml:"qualified_name"`
	Kind          string `yaml:"kind"`
	SID           string `yaml:"sid"`
	UUID          string `yaml:"uuid"`
}

// Assignments walks a completed P2 symbol table and returns one Entry
// per declaration with a non-empty SID (builtins carry none and are
// skipped), sorted by qualified name for deterministic output.
func Assignments(t *register.Table) []Entry {
	var out []Entry
	for _, mt := range t.Modules {
		for _, sym := range mt.Ordered() {
			if sym.SID == "" {
				continue
			}
			out = append(out, Entry{
				QualifiedName: sym.QualifiedName,
				Kind:          sym.Kind.String(),
				SID:           string(sym.SID),
				UUID:          DeclUUID(sym.SID).String(),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QualifiedName < out[j].QualifiedName })
	return out
}

// DumpYAML renders a table's id assignments for debugging (printed by
// `pluto emit-ast`) — a readable stand-in for the real binary
// format, not the format itself.
func DumpYAML(t *register.Table) ([]byte, error) {
	return yaml.Marshal(Assignments(t))
}
