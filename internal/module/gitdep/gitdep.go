// Package gitdep computes the local cache location for a git-form
// package dependency (spec §6: "Single filesystem directory keyed by
// URL hash + revision"). The network clone itself is an external
// collaborator (spec §1 lists "git/path dependency fetcher" as out of
// scope); this package only derives where that fetcher would have put
// the checkout, and checks a checked-out repository against the
// requested ref (rev/tag/branch), using go-git to read the local
// repository rather than hand-rolling git-object parsing.
package gitdep

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/plutolang/pluto/internal/manifest"
)

// CacheRoot is the base directory the fetcher populates. Overridable
// for tests.
var CacheRoot = func() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".pluto", "git-cache")
	}
	return filepath.Join(".", ".pluto-git-cache")
}

// CacheKey derives the deterministic cache directory name for a
// dependency, keyed by URL + selected ref, as spec §6 requires.
func CacheKey(dep manifest.Dependency) (string, error) {
	kind, ref, ok := dep.GitRef()
	if !ok {
		return "", fmt.Errorf("git dependency %q has no rev/tag/branch", dep.Git)
	}
	sum := sha256.Sum256([]byte(dep.Git + "|" + kind + "|" + ref))
	return hex.EncodeToString(sum[:])[:16], nil
}

// CacheDir returns the full path the fetcher is expected to have
// populated for this dependency.
func CacheDir(dep manifest.Dependency) (string, error) {
	key, err := CacheKey(dep)
	if err != nil {
		return "", err
	}
	return filepath.Join(CacheRoot(), key), nil
}

// ResolvedCommit inspects an already-cloned repository (at the path
// CacheDir returns) and reports the commit hash HEAD points at, used
// to verify the fetcher actually checked out the requested ref.
func ResolvedCommit(repoDir string) (string, error) {
	repo, err := git.PlainOpen(repoDir)
	if err != nil {
		return "", fmt.Errorf("opening cached repository %s: %w", repoDir, err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("reading HEAD of %s: %w", repoDir, err)
	}
	return head.Hash().String(), nil
}

// VerifyRef checks the repository at repoDir against the ref the
// dependency requests. A rev must equal HEAD's commit hash or be a
// prefix of it. A tag or branch only has to exist in the repository;
// whether HEAD points at it is not checked.
func VerifyRef(repoDir string, dep manifest.Dependency) error {
	kind, ref, ok := dep.GitRef()
	if !ok {
		return fmt.Errorf("git dependency has no rev/tag/branch")
	}
	repo, err := git.PlainOpen(repoDir)
	if err != nil {
		return fmt.Errorf("opening cached repository %s: %w", repoDir, err)
	}

	switch kind {
	case "rev":
		commit, err := ResolvedCommit(repoDir)
		if err != nil {
			return err
		}
		if !strings.HasPrefix(commit, ref) {
			return fmt.Errorf("cached repository at %s is at %s, want rev %s", repoDir, commit, ref)
		}
	case "tag":
		if _, err := repo.Tag(ref); err != nil {
			return fmt.Errorf("cached repository %s has no tag %s: %w", repoDir, ref, err)
		}
	case "branch":
		refName := plumbing.NewBranchReferenceName(ref)
		if _, err := repo.Reference(refName, true); err != nil {
			return fmt.Errorf("cached repository %s is not on branch %s: %w", repoDir, ref, err)
		}
	}
	return nil
}
