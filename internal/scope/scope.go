// Package scope turns a rule's glob list into a path predicate.
package scope

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidGlob is wrapped by every glob compilation failure.
var ErrInvalidGlob = errors.New("invalid glob")

// Error reports the glob that failed to compile.
type Error struct {
	Glob string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v %q: %v", ErrInvalidGlob, e.Glob, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{ErrInvalidGlob, e.Err}
}

// Scope decides whether a root-relative path is in scope for a rule.
// The zero Scope and a nil *Scope accept every path.
type Scope struct {
	globs []string
}

// Resolve validates globs and returns the union of them. A nil or empty list
// accepts everything.
func Resolve(globs []string) (*Scope, error) {
	s := &Scope{}
	for _, g := range globs {
		norm := normalize(g)
		if !doublestar.ValidatePattern(norm) {
			return nil, &Error{Glob: g, Err: doublestar.ErrBadPattern}
		}
		s.globs = append(s.globs, norm)
	}
	return s, nil
}

// All reports whether the scope accepts every path.
func (s *Scope) All() bool {
	return s == nil || len(s.globs) == 0
}

// Match reports whether relPath, a slash-separated path relative to the scan
// root, is in scope.
func (s *Scope) Match(relPath string) bool {
	if s.All() {
		return true
	}
	relPath = strings.TrimPrefix(relPath, "./")
	for _, g := range s.globs {
		if ok, _ := doublestar.Match(g, relPath); ok {
			return true
		}
	}
	return false
}

// Globs returns the normalized patterns.
func (s *Scope) Globs() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.globs...)
}

// normalize strips leading "./" segments. The root itself ("./" or ".")
// becomes "**". A glob without a "/" names files at any depth, so "*.rb"
// becomes "**/*.rb".
func normalize(glob string) string {
	for strings.HasPrefix(glob, "./") {
		glob = glob[2:]
	}
	if glob == "" || glob == "." || glob == "**" {
		return "**"
	}
	if !strings.Contains(glob, "/") {
		return "**/" + glob
	}
	return glob
}
