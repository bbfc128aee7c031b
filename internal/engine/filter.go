package engine

import (
	"goodcheck/internal/scope"
	"goodcheck/internal/source"
)

// FilterFiles keeps the files the scope accepts, preserving order.
func FilterFiles(files []source.File, s *scope.Scope) []source.File {
	if s.All() {
		return files
	}

	var filtered []source.File
	for _, f := range files {
		if s.Match(f.Path) {
			filtered = append(filtered, f)
		}
	}
	return filtered
}
