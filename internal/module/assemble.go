package module

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/diag"
	"github.com/plutolang/pluto/internal/manifest"
	"github.com/plutolang/pluto/internal/module/gitdep"
)

// FileParser parses one source file into an AST. Parsing itself is an
// external collaborator (spec §1); P1 only orchestrates which files
// get parsed and in what order.
type FileParser func(path string) (*ast.File, error)

// DirModule is every `.pluto` file in one directory, merged into a
// single namespace (spec §4.1 rule 4: "no intra-module imports are
// needed").
type DirModule struct {
	// Dir is the canonical absolute directory path.
	Dir string

	// ModulePath is the dotted path used to qualify declarations,
	// e.g. "std.net" or "myapp" for the entry package root.
	ModulePath string

	Files   []*ast.File
	Imports []string // import paths referenced by files in this directory
}

// Program is the set of directory-modules found under the entry
// file's package root, ready for P2 (declaration registration).
type Program struct {
	EntryDir string
	Dirs     map[string]*DirModule // keyed by canonical dir
	order    []string              // dirs in discovery order, for deterministic iteration
}

// OrderedDirs returns the assembled modules in discovery order.
func (p *Program) OrderedDirs() []*DirModule {
	out := make([]*DirModule, 0, len(p.order))
	for _, dir := range p.order {
		out = append(out, p.Dirs[dir])
	}
	return out
}

// assembler carries the mutable state of one Assemble call.
type assembler struct {
	parse      FileParser
	stdlibPath string
	program    *Program
	depRoots   map[string]string // dependency name -> canonical root, across the whole program
	visiting   map[string]bool   // canonical roots currently being recursively loaded (dep-cycle guard)
}

// Assemble implements P1 for the entry file's own package: it parses
// every `.pluto` file under the package root (the manifest's directory,
// or the entry file's directory when there is no manifest) into
// directory-modules, and resolves the manifest's dependency roots,
// rejecting cycles and conflicting names. It does not parse the
// dependencies' sources, load anything from stdlibPath, or resolve the
// files' import paths, so those modules are absent from the Program.
//
// Fails with ManifestError (diag.Manifest), ReservedName, ModuleResolve,
// AmbiguousName, CyclicImport or MissingModule. Duplicate names are
// reported later by P2 as DuplicateDeclaration; no phase emits
// NameCollision.
func Assemble(entryPath, stdlibPath string, parse FileParser) (*Program, error) {
	entryDir, err := CanonicalRoot(filepath.Dir(entryPath))
	if err != nil {
		return nil, diag.Wrap(diag.New(diag.ModuleResolve, "module", err.Error()))
	}

	a := &assembler{
		parse:      parse,
		stdlibPath: stdlibPath,
		program:    &Program{EntryDir: entryDir, Dirs: make(map[string]*DirModule)},
		depRoots:   make(map[string]string),
		visiting:   make(map[string]bool),
	}

	// Step 1: walk upward from entry_path for a package manifest
	// (absence = single-package program, spec §4.1 step 1).
	manifestPath, err := manifest.FindManifest(entryDir)
	if err != nil {
		return nil, err
	}
	var pkgRoot string
	if manifestPath != "" {
		m, err := manifest.Load(manifestPath)
		if err != nil {
			return nil, err
		}
		pkgRoot = m.Dir
		if err := a.resolveDependencies(m); err != nil {
			return nil, err
		}
	} else {
		pkgRoot = entryDir
	}

	if err := a.loadDirTree(pkgRoot, pkgRoot, ""); err != nil {
		return nil, err
	}

	return a.program, nil
}

// resolveDependencies walks every declared dependency, recursing into
// its own manifest (if any), deduplicating by canonical root, and
// rejecting cycles (spec §4.1 step 2).
func (a *assembler) resolveDependencies(m *manifest.Manifest) error {
	for name, dep := range m.Dependencies {
		var root string
		var err error
		switch {
		case dep.IsPathForm():
			root, err = CanonicalRoot(filepath.Join(m.Dir, dep.Path))
		case dep.IsGitForm():
			// The actual network fetch is an external collaborator
			// (spec §1); here we only need the local cache directory
			// that fetcher would have populated, keyed by URL+revision
			// the way spec §4.1 step 2 / §6 describe.
			root, err = gitdep.CacheDir(dep)
		default:
			continue
		}
		if err != nil {
			return diag.Wrap(diag.New(diag.ModuleResolve, "module", err.Error()))
		}

		if existing, ok := a.depRoots[name]; ok && existing != root {
			return diag.Wrap(diag.New(diag.AmbiguousName, "module",
				fmt.Sprintf("dependency name %q resolves to two different roots", name)))
		}
		a.depRoots[name] = root

		if a.visiting[root] {
			return diag.Wrap(diag.New(diag.CyclicImport, "module",
				fmt.Sprintf("cyclic dependency on %q", name)))
		}
		a.visiting[root] = true

		subManifestPath, err := manifest.FindManifest(root)
		if err != nil {
			return err
		}
		if subManifestPath != "" {
			subM, err := manifest.Load(subManifestPath)
			if err != nil {
				return err
			}
			if err := a.resolveDependencies(subM); err != nil {
				return err
			}
		}
		delete(a.visiting, root)
	}
	return nil
}

// loadDirTree recursively parses every `.pluto` file under dir into
// DirModules, descending into subdirectories as nested modules
// (spec §4.1 rule 3's segment-as-subdirectory convention, applied
// eagerly here rather than lazily per-import since whole-program
// compilation needs the full universe up front).
func (a *assembler) loadDirTree(root, dir, modulePath string) error {
	canon, err := CanonicalRoot(dir)
	if err != nil {
		return diag.Wrap(diag.New(diag.ModuleResolve, "module", err.Error()))
	}
	if _, already := a.program.Dirs[canon]; already {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return diag.Wrap(diag.New(diag.MissingModule, "module", err.Error()))
	}

	dm := &DirModule{Dir: canon, ModulePath: modulePath}
	hasSource := false
	var subdirs []os.DirEntry
	for _, e := range entries {
		if e.IsDir() {
			subdirs = append(subdirs, e)
			continue
		}
		if strings.HasSuffix(e.Name(), ".pluto") {
			hasSource = true
			path := filepath.Join(dir, e.Name())
			file, err := a.parse(path)
			if err != nil {
				return err
			}
			dm.Files = append(dm.Files, file)
			for _, imp := range file.Imports {
				dm.Imports = append(dm.Imports, imp.Path)
			}
		}
	}

	if hasSource {
		a.program.Dirs[canon] = dm
		a.program.order = append(a.program.order, canon)
	}

	for _, sub := range subdirs {
		childPath := modulePath
		if childPath == "" {
			childPath = sub.Name()
		} else {
			childPath = childPath + "." + sub.Name()
		}
		if err := a.loadDirTree(root, filepath.Join(dir, sub.Name()), childPath); err != nil {
			return err
		}
	}

	return nil
}
