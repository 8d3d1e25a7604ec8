// Package sid computes stable, content-addressed identifiers for
// declarations discovered during P2 (declaration registration).
package sid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// SID is a Stable Identifier for a declaration. It is derived from the
// declaration's canonical source location and kind, not from an
// incrementing counter, so that re-running the compiler on unchanged
// source produces identical ids (required for the binary-AST
// round-trip property in spec §8).
type SID string

// New computes a stable id for a declaration.
// Formula: hash(canonical_path | start_offset | end_offset | kind | qualified_name)
func New(path string, start, end int, kind, qualifiedName string) SID {
	canonPath := canonicalizePath(path)

	parts := []string{
		canonPath,
		fmt.Sprintf("%d", start),
		fmt.Sprintf("%d", end),
		kind,
		qualifiedName,
	}

	input := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(input))
	return SID(hex.EncodeToString(hash[:])[:16])
}

func canonicalizePath(path string) string {
	path = filepath.Clean(path)

	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	if isCaseInsensitive() {
		path = strings.ToLower(path)
	}

	return filepath.ToSlash(path)
}

func isCaseInsensitive() bool {
	return runtime.GOOS == "windows" || runtime.GOOS == "darwin"
}

// Registry tracks every SID minted during P2 and rejects collisions
// (two distinct declarations should never hash to the same SID; a
// collision almost certainly means two declarations share a span,
// which P2's duplicate-name check should already have caught).
type Registry struct {
	byID map[SID]string // SID -> qualified name, for diagnostics
}

// NewRegistry creates an empty SID registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[SID]string)}
}

// Record registers a freshly minted SID, returning false if it
// collides with a previously recorded one.
func (r *Registry) Record(id SID, qualifiedName string) bool {
	if existing, ok := r.byID[id]; ok {
		return existing == qualifiedName
	}
	r.byID[id] = qualifiedName
	return true
}

// Lookup returns the qualified name registered for a SID, if any.
func (r *Registry) Lookup(id SID) (string, bool) {
	name, ok := r.byID[id]
	return name, ok
}
