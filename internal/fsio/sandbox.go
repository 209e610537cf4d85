package fsio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sandbox confines every resolved path to one allowed root. The data
// this layer manages is written largely as a side effect of autonomous
// agent activity, so each requested path is re-validated here rather
// than trusted from the caller — a misbehaving agent-driven write must
// not be able to escape the project tree.
type Sandbox struct {
	root string
}

// NewSandbox creates a sandbox rooted at root. The root is made
// absolute and, when it already exists, resolved through symlinks so
// later containment checks compare canonical forms.
func NewSandbox(root string) (*Sandbox, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("fsio: resolving sandbox root %q: %w", root, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return &Sandbox{root: abs}, nil
}

// Root returns the canonical sandbox root.
func (s *Sandbox) Root() string {
	return s.root
}

// Resolve validates requested against the root and returns the
// absolute path to operate on. Relative paths are joined onto the
// root; absolute paths are accepted only when they already lie inside
// it. `..` segments are collapsed and symlinks in the existing part of
// the path are followed before the containment check, so neither
// `../../etc/passwd` nor a symlink pointing outside the root gets
// through. A rejected path never reaches an OS call.
func (s *Sandbox) Resolve(requested string) (string, error) {
	target := requested
	if !filepath.IsAbs(target) {
		target = filepath.Join(s.root, target)
	}
	target = filepath.Clean(target)

	// Containment is judged on the canonical form: `..` segments are
	// already collapsed by Clean, and symlinks in the existing part of
	// the path are chased here. The target itself may not exist yet
	// (writes create it), so canonicalize the deepest existing
	// ancestor and re-append the remainder. Checking the canonical
	// form rejects symlink escapes and still accepts paths that reach
	// the root through a non-canonical spelling.
	resolved, err := resolveExisting(target)
	if err != nil {
		return "", fmt.Errorf("fsio: canonicalizing %q: %w", requested, err)
	}
	if !s.contains(resolved) {
		return "", &PathEscapeError{Path: requested, Root: s.root}
	}

	return target, nil
}

// contains reports whether path is the root itself or below it.
func (s *Sandbox) contains(path string) bool {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// resolveExisting canonicalizes the longest existing prefix of path
// via EvalSymlinks and rejoins the non-existing tail onto it.
func resolveExisting(path string) (string, error) {
	prefix := path
	var tail []string
	for {
		resolved, err := filepath.EvalSymlinks(prefix)
		if err == nil {
			for i := len(tail) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, tail[i])
			}
			return resolved, nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(prefix)
		if parent == prefix {
			// Walked off the top without finding anything that exists.
			return path, nil
		}
		tail = append(tail, filepath.Base(prefix))
		prefix = parent
	}
}
