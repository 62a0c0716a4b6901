package match

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrBadPattern = errors.New("invalid glob pattern")

// Matcher decides whether a directory entry name is selected
type Matcher interface {
	Match(name string) bool
}

// Glob matches entry names against shell-style patterns.
// A name is selected when it matches any of the patterns.
type Glob struct {
	patterns []string
}

// Compile validates the patterns up front so traversal never hits a bad pattern halfway through.
// Patterns are matched against a single path segment: "*" never crosses a separator.
func Compile(patterns ...string) (*Glob, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: no pattern given", ErrBadPattern)
	}
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("%w: empty pattern", ErrBadPattern)
		}
		if strings.ContainsRune(p, filepath.Separator) {
			return nil, fmt.Errorf("%w: %q must not contain a path separator", ErrBadPattern, p)
		}
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadPattern, p)
		}
	}
	return &Glob{patterns: append([]string(nil), patterns...)}, nil
}

func (g *Glob) Match(name string) bool {
	for _, p := range g.patterns {
		// Patterns were validated in Compile
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// String lists the patterns the way delete summaries show them
func (g *Glob) String() string {
	return strings.Join(g.patterns, ", ")
}

// Selects reports whether m selects name. A nil matcher selects everything.
func Selects(m Matcher, name string) bool {
	if m == nil {
		return true
	}
	return m.Match(name)
}
