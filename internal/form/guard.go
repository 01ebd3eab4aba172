package form

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathGuard confines caller-supplied file paths to a set of configured
// directories. Roots that do not exist yet are not enforced, so a guard
// built before the directories are created stays usable.
type PathGuard struct {
	roots []string
}

// NewPathGuard builds a guard over the given directories. Empty entries
// are dropped; a guard with no roots allows every path.
func NewPathGuard(roots ...string) *PathGuard {
	g := &PathGuard{}
	for _, root := range roots {
		if root == "" {
			continue
		}
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
		g.roots = append(g.roots, filepath.Clean(root))
	}
	return g
}

// Roots returns the guarded directories.
func (g *PathGuard) Roots() []string {
	out := make([]string, len(g.roots))
	copy(out, g.roots)
	return out
}

// Validate checks that path lies inside one of the guarded roots.
func (g *PathGuard) Validate(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if len(g.roots) == 0 {
		return nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	abs = filepath.Clean(abs)

	enforced := 0
	for _, root := range g.roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		enforced++
		if within(abs, root) {
			return nil
		}
	}
	if enforced == 0 {
		return nil
	}
	return fmt.Errorf("path is outside the configured directories: %s", path)
}

// within reports whether path sits under root, resolving symlinks on both
// sides so a link cannot escape the root.
func within(path, root string) bool {
	realPath := path
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(path); err == nil {
			realPath = resolved
		}
	}
	realRoot := root
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		realRoot = resolved
	}

	return (under(path, root) || under(path, realRoot)) &&
		(under(realPath, root) || under(realPath, realRoot))
}

func under(path, root string) bool {
	if path == root {
		return true
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	return strings.HasPrefix(path, root)
}
