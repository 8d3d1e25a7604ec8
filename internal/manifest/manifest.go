// Package manifest parses and validates pluto.toml, the package
// manifest described in spec §6.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode"

	"github.com/BurntSushi/toml"

	"github.com/plutolang/pluto/internal/diag"
)

// FileName is the manifest's required name.
const FileName = "pluto.toml"

// reservedNames may not be used as a dependency name (spec §4.1 edge
// case "Reserved names").
var reservedNames = map[string]bool{
	"std": true, "class": true, "trait": true, "enum": true, "error": true,
	"fn": true, "app": true, "stage": true, "system": true, "import": true,
	"pub": true, "mut": true, "self": true, "let": true, "if": true, "else": true,
	"while": true, "for": true, "break": true, "continue": true, "return": true,
	"raise": true, "catch": true, "match": true, "scope": true, "ambient": true, "uses": true,
}

// Package describes the [package] table.
type Package struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Dependency describes one entry in [dependencies]. Path-form and
// git-form are mutually exclusive (spec §4.1 step 2).
type Dependency struct {
	Path   string `toml:"path"`
	Git    string `toml:"git"`
	Rev    string `toml:"rev"`
	Tag    string `toml:"tag"`
	Branch string `toml:"branch"`
}

// IsPathForm reports whether this dependency is resolved from a local
// filesystem path rather than a git remote.
func (d Dependency) IsPathForm() bool { return d.Path != "" }

// IsGitForm reports whether this dependency is fetched from git.
func (d Dependency) IsGitForm() bool { return d.Git != "" }

// GitRef returns the selected ref (rev/tag/branch) and its kind. Only
// one of rev/tag/branch may be set; selection order follows spec
// §4.1's "`rev`/`tag`/`branch` select ref."
func (d Dependency) GitRef() (kind, value string, ok bool) {
	switch {
	case d.Rev != "":
		return "rev", d.Rev, true
	case d.Tag != "":
		return "tag", d.Tag, true
	case d.Branch != "":
		return "branch", d.Branch, true
	default:
		return "", "", false
	}
}

// Manifest is the parsed contents of a pluto.toml file.
type Manifest struct {
	Package      Package               `toml:"package"`
	Dependencies map[string]Dependency `toml:"dependencies"`

	// Dir is the directory containing this manifest, recorded after
	// Load so relative path-form dependencies can be resolved.
	Dir string `toml:"-"`
}

// Load parses and validates a pluto.toml file at the given path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.Wrap(diag.New(diag.Manifest, "module",
			fmt.Sprintf("cannot read manifest %s: %v", path, err)))
	}

	var m Manifest
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, diag.Wrap(diag.New(diag.Manifest, "module",
			fmt.Sprintf("malformed manifest %s: %v", path, err)))
	}
	m.Dir = filepath.Dir(path)

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks manifest-level invariants from spec §6: dependency
// names must be identifiers; `std` and language keywords are
// reserved; path-form and git-form are mutually exclusive per
// dependency, and a dependency sets at most one of rev/tag/branch.
func (m *Manifest) Validate() error {
	if m.Package.Name == "" {
		return diag.Wrap(diag.New(diag.Manifest, "module", "[package] name is required"))
	}
	for name, dep := range m.Dependencies {
		for i, r := range name {
			if !(r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r))) {
				return diag.Wrap(diag.New(diag.Manifest, "module",
					fmt.Sprintf("dependency name %q is not an identifier", name)))
			}
		}
		if reservedNames[name] {
			return diag.Wrap(diag.New(diag.ReservedName, "module",
				fmt.Sprintf("dependency name %q is reserved", name)).WithData("name", name))
		}
		if dep.IsPathForm() && dep.IsGitForm() {
			return diag.Wrap(diag.New(diag.Manifest, "module",
				fmt.Sprintf("dependency %q specifies both path and git", name)))
		}
		if !dep.IsPathForm() && !dep.IsGitForm() {
			return diag.Wrap(diag.New(diag.Manifest, "module",
				fmt.Sprintf("dependency %q specifies neither path nor git", name)))
		}
		refs := 0
		for _, ref := range []string{dep.Rev, dep.Tag, dep.Branch} {
			if ref != "" {
				refs++
			}
		}
		if refs > 1 {
			return diag.Wrap(diag.New(diag.Manifest, "module",
				fmt.Sprintf("dependency %q sets more than one of rev/tag/branch", name)))
		}
	}
	return nil
}

// FindManifest walks upward from startDir looking for pluto.toml,
// stopping at a filesystem boundary (spec §4.1 step 1). Returns ""
// with no error if none is found — absence is treated as a
// single-package program, not a failure.
func FindManifest(startDir string) (string, error) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
