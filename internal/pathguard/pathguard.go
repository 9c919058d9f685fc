// Package pathguard confines all file access to a single workspace root.
// Every user-supplied relative path is resolved through a Guard; nothing
// else in the program is allowed to build workspace paths on its own.
package pathguard

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Violation is returned for any path that cannot be proven to stay inside
// the workspace root. The message is intentionally generic: it never
// echoes the rejected input back to the caller.
type Violation struct {
	Reason string
}

func (v *Violation) Error() string {
	return "path violation: " + v.Reason
}

// ErrNotExist reports a contained path whose target is missing. It wraps
// fs.ErrNotExist so callers can branch with errors.Is.
var ErrNotExist = fs.ErrNotExist

// Guard resolves relative paths against a canonical workspace root.
type Guard struct {
	root string
}

// New canonicalizes root (resolving symlinks) and returns a Guard for it.
// The root must exist and be a directory.
func New(root string) (*Guard, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	info, err := os.Stat(canonical)
	if err != nil {
		return nil, fmt.Errorf("stat workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root is not a directory: %s", canonical)
	}
	return &Guard{root: canonical}, nil
}

// Root returns the canonical workspace root.
func (g *Guard) Root() string {
	return g.root
}

// Resolve returns the canonical absolute path for rel. The target must
// exist; a missing target yields an error wrapping ErrNotExist (after the
// containment check, so existence is only revealed for in-root paths).
func (g *Guard) Resolve(rel string) (string, error) {
	abs, err := g.ResolveNew(rel)
	if err != nil {
		return "", err
	}
	if _, err := os.Lstat(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", filepath.Clean(rel), ErrNotExist)
		}
		return "", &Violation{Reason: "target is not accessible"}
	}
	return abs, nil
}

// ResolveNew is Resolve for targets that may not exist yet (file
// creation). The deepest existing ancestor is canonicalized, the
// remaining components are re-joined, and the result must still sit
// under the root. If the full target does exist it is canonicalized too,
// so writing through an escaping symlink is rejected as well.
func (g *Guard) ResolveNew(rel string) (string, error) {
	if rel == "" {
		return "", &Violation{Reason: "empty path"}
	}
	// The tool contract is relative paths only; a leading slash is
	// tolerated the way the original server tolerated it, by stripping.
	rel = strings.TrimPrefix(rel, "/")
	if filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return "", &Violation{Reason: "absolute paths are not allowed"}
	}
	clean := filepath.Clean(rel)
	for _, part := range strings.Split(clean, string(filepath.Separator)) {
		if part == ".." {
			return "", &Violation{Reason: "parent traversal is not allowed"}
		}
	}

	joined := filepath.Join(g.root, clean)
	canonical, err := g.canonicalize(joined)
	if err != nil {
		return "", err
	}
	if !g.contains(canonical) {
		return "", &Violation{Reason: "path escapes the workspace root"}
	}

	// If the target itself exists, resolve its final symlink hop too.
	if _, lerr := os.Lstat(canonical); lerr == nil {
		resolved, rerr := filepath.EvalSymlinks(canonical)
		if rerr != nil {
			return "", &Violation{Reason: "target is not resolvable"}
		}
		if !g.contains(resolved) {
			return "", &Violation{Reason: "path escapes the workspace root"}
		}
		return resolved, nil
	}
	return canonical, nil
}

// canonicalize resolves symlinks in the deepest existing ancestor of
// path and re-joins the non-existing remainder.
func (g *Guard) canonicalize(path string) (string, error) {
	dir := path
	var rest []string
	for {
		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			parts := append([]string{resolved}, rest...)
			return filepath.Join(parts...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", &Violation{Reason: "path is not resolvable"}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &Violation{Reason: "path is not resolvable"}
		}
		rest = append([]string{filepath.Base(dir)}, rest...)
		dir = parent
	}
}

func (g *Guard) contains(path string) bool {
	if path == g.root {
		return true
	}
	return strings.HasPrefix(path, g.root+string(filepath.Separator))
}
