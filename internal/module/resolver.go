// Package module implements P1 — module assembly (spec §4.1):
// collecting the source files of an entry file's package into
// directory-modules, resolving its declared dependency roots, and
// resolving import paths to directories (Resolver).
package module

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/plutolang/pluto/internal/diag"
	"github.com/plutolang/pluto/internal/manifest"
)

// Resolver resolves `import` paths to canonical directory paths,
// following the order spec §4.1 step 3 lays out.
type Resolver struct {
	entryDir      string
	stdlibPath    string
	deps          map[string]manifest.Dependency // declared dependency name -> entry
	depRoots      map[string]string              // declared dependency name -> resolved root dir
	caseSensitive bool
}

// NewResolver builds a resolver rooted at the entry file's directory.
func NewResolver(entryDir, stdlibPath string, deps map[string]manifest.Dependency, depRoots map[string]string) *Resolver {
	return &Resolver{
		entryDir:      entryDir,
		stdlibPath:    stdlibPath,
		deps:          deps,
		depRoots:      depRoots,
		caseSensitive: isFileSystemCaseSensitive(),
	}
}

// ResolveImport resolves `import a.b.c` from a file in fromDir. Every
// segment but the last is resolved as a subdirectory; the last
// segment names the module itself: a subdirectory, or a `.pluto` file
// in the directory reached so far (spec §4.1 step 3).
func (r *Resolver) ResolveImport(importPath, fromDir string) (string, error) {
	segments := strings.Split(importPath, ".")
	if len(segments) == 0 || segments[0] == "" {
		return "", diag.Wrap(diag.New(diag.ModuleResolve, "module", "empty import path"))
	}

	first := segments[0]

	// (a) same-directory file `first.pluto`
	if candidate := filepath.Join(fromDir, first+".pluto"); fileExists(candidate) && len(segments) == 1 {
		return fromDir, nil
	}

	// (b) same-directory subdirectory `first/`
	if sub := filepath.Join(fromDir, first); dirExists(sub) {
		return r.descend(sub, segments[1:], importPath)
	}

	// (c) declared dependency named `first`
	if root, ok := r.depRoots[first]; ok {
		return r.descend(root, segments[1:], importPath)
	}

	// (d) stdlib path `std/first`
	if first == "std" && r.stdlibPath != "" {
		return r.descend(r.stdlibPath, segments[1:], importPath)
	}
	if r.stdlibPath != "" {
		if sub := filepath.Join(r.stdlibPath, first); dirExists(sub) {
			return r.descend(sub, segments[1:], importPath)
		}
	}

	return "", diag.Wrap(diag.New(diag.MissingModule, "module",
		fmt.Sprintf("cannot resolve import %q", importPath)).WithData("import", importPath))
}

// descend walks the remaining segments as subdirectories of root; the
// last one may instead name a `.pluto` file, which resolves to the
// directory holding it.
func (r *Resolver) descend(root string, rest []string, importPath string) (string, error) {
	dir := root
	for i, seg := range rest {
		next := filepath.Join(dir, seg)
		if i == len(rest)-1 && !dirExists(next) && fileExists(next+".pluto") {
			return dir, nil
		}
		if !dirExists(next) {
			return "", diag.Wrap(diag.New(diag.MissingModule, "module",
				fmt.Sprintf("cannot resolve import %q: no subdirectory %q under %s", importPath, seg, dir)))
		}
		dir = next
	}
	return dir, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFileSystemCaseSensitive() bool {
	switch runtime.GOOS {
	case "windows", "darwin":
		return false
	default:
		return true
	}
}

// CanonicalRoot returns an absolute, symlink-resolved form of a
// directory path, used to deduplicate dependency roots (spec §4.1
// step 2: "Deduplicate by absolute canonical root; reject cycles").
func CanonicalRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return filepath.Clean(abs), nil
}
