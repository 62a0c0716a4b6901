package safety

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidPath    = errors.New("invalid path")
	ErrProtectedPath  = errors.New("protected path")
	ErrOutsideAllowed = errors.New("outside allowed roots")
	ErrSymlinkEscape  = errors.New("symlink escape detected")
)

// Validator guards delete targets against system-critical locations
type Validator struct {
	AllowedRoots   []string // empty means no restriction
	ProtectedPaths []string
}

// NewValidator creates a validator with optional allowed roots and additional protected paths
func NewValidator(allowed []string, extraProtected []string) *Validator {
	return &Validator{
		AllowedRoots:   normalizeRoots(allowed),
		ProtectedPaths: defaultProtected(normalizeRoots(extraProtected)),
	}
}

// ValidateDeleteTarget is the single-source-of-truth for delete authorization
// Returns a wrapped sentinel on safety violation
func (v *Validator) ValidateDeleteTarget(path string) error {
	// 1. Normalize path to absolute, cleaned form
	p, err := NormalizePath(path)
	if err != nil {
		return err
	}

	// 2. Block protected paths (system-critical)
	if IsProtectedPath(p, v.ProtectedPaths) {
		return fmt.Errorf("%w: %s", ErrProtectedPath, p)
	}

	// 3. Ensure within allowed roots, when any are configured
	if len(v.AllowedRoots) > 0 && !IsWithinAllowedRoots(p, v.AllowedRoots) {
		return fmt.Errorf("%w: %s", ErrOutsideAllowed, p)
	}

	// 4. A symlinked parent directory must not redirect the delete somewhere protected
	resolved, err := ResolveParent(p)
	if err != nil {
		// Missing parents are reported by the delete itself
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if resolved != p {
		if IsProtectedPath(resolved, v.ProtectedPaths) {
			return fmt.Errorf("%w: %s resolves to %s", ErrSymlinkEscape, p, resolved)
		}
		if len(v.AllowedRoots) > 0 && !IsWithinAllowedRoots(resolved, v.AllowedRoots) {
			return fmt.Errorf("%w: %s resolves to %s", ErrSymlinkEscape, p, resolved)
		}
	}

	return nil
}

// NormalizePath converts path to absolute, cleaned form
func NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ErrInvalidPath
	}
	return filepath.Clean(abs), nil
}

// ResolveParent resolves symlinks in the parent of cleanAbs but not in its final element,
// which is removed rather than followed
func ResolveParent(cleanAbs string) (string, error) {
	parent := filepath.Dir(cleanAbs)
	resolved, err := filepath.EvalSymlinks(parent)
	if err != nil {
		return "", err
	}
	if cleanAbs == parent {
		return filepath.Clean(resolved), nil
	}
	return filepath.Join(resolved, filepath.Base(cleanAbs)), nil
}

// IsWithinAllowedRoots checks if path is within any allowed root
func IsWithinAllowedRoots(path string, allowedRoots []string) bool {
	p := filepath.Clean(path)
	for _, r := range allowedRoots {
		if hasPathPrefix(p, r) {
			return true
		}
	}
	return false
}

// IsProtectedPath checks if path is a protected path or lies below one
func IsProtectedPath(path string, protected []string) bool {
	p := filepath.Clean(path)

	// Hard block: "/" exact
	if p == string(os.PathSeparator) {
		return true
	}

	for _, prot := range protected {
		prot = filepath.Clean(prot)
		if p == prot || hasPathPrefix(p, prot) {
			return true
		}
	}
	return false
}

// hasPathPrefix checks if path has the given prefix
func hasPathPrefix(path, prefix string) bool {
	path = filepath.Clean(path)
	prefix = filepath.Clean(prefix)

	if prefix == string(os.PathSeparator) {
		return path == "/"
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+string(os.PathSeparator))
}

// normalizeRoots converts slice of roots to absolute, cleaned paths
func normalizeRoots(roots []string) []string {
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		if strings.TrimSpace(r) == "" {
			continue
		}
		abs, err := filepath.Abs(r)
		if err != nil {
			continue
		}
		out = append(out, filepath.Clean(abs))
	}
	return out
}

// defaultProtected returns the base set of protected paths plus any extras
func defaultProtected(extra []string) []string {
	base := []string{
		"/",
		"/bin",
		"/boot",
		"/dev",
		"/etc",
		"/lib",
		"/lib64",
		"/proc",
		"/sbin",
		"/sys",
		"/usr",
	}
	return append(base, extra...)
}
