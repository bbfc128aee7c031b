package output

import (
	"encoding/json"
	"io"

	"goodcheck/internal/rules"
)

// structured holds the json/ndjson behavior shared by the emit and file sinks.
// Callers serialize access.
type structured struct {
	writer  io.Writer
	format  string // "json" | "ndjson"
	matches []rules.Match
}

func (s *structured) write(v any) error {
	switch s.format {
	case "json":
		// Lifecycle events and problems are not part of the JSON aggregate.
		if m, ok := v.(rules.Match); ok {
			s.matches = append(s.matches, m)
		}
		return nil
	case "ndjson":
		e, ok := asEvent(v)
		if !ok {
			return nil
		}
		if err := json.NewEncoder(s.writer).Encode(e); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	}
	return nil
}

func (s *structured) close() error {
	if s.format != "json" {
		return nil
	}
	matches := s.matches
	if matches == nil {
		matches = []rules.Match{}
	}
	encoder := json.NewEncoder(s.writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(matches); err != nil {
		return err
	}
	return flushIfPossible(s.writer)
}
