package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"goodcheck/internal/rules"
	"goodcheck/internal/termstyle"
)

// ConsoleSink is the human-facing sink. Matches go to the output writer;
// in text and json formats problems go to the error writer.
type ConsoleSink struct {
	writer    io.Writer
	errWriter io.Writer
	format    string // "text", "json", "ndjson"
	painter   termstyle.Painter
	mu        sync.Mutex
	matches   []rules.Match // For JSON array output
}

func NewConsoleSink(w, errW io.Writer, format string, painter termstyle.Painter) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if errW == nil {
		errW = os.Stderr
	}
	if format == "" {
		format = "text"
	}
	if painter == nil {
		painter = termstyle.Plain{}
	}

	return &ConsoleSink{
		writer:    w,
		errWriter: errW,
		format:    format,
		painter:   painter,
	}
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(v)
}

func (s *ConsoleSink) writeLocked(v any) error {
	switch s.format {
	case "json":
		switch t := v.(type) {
		case rules.Match:
			s.matches = append(s.matches, t)
			return nil
		case rules.Problem:
			return s.writeProblem(t)
		default:
			// Ignore lifecycle events in JSON console mode.
			return nil
		}
	case "ndjson":
		e, ok := asEvent(v)
		if !ok {
			return nil
		}
		if err := json.NewEncoder(s.writer).Encode(e); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	case "text":
		switch t := v.(type) {
		case rules.Match:
			return s.writeMatch(t)
		case rules.Problem:
			return s.writeProblem(t)
		default:
			// Ignore events in text mode.
			return nil
		}
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

// writeMatch prints "path:line:\tmessage".
func (s *ConsoleSink) writeMatch(m rules.Match) error {
	msg := strings.TrimRight(m.Message, "\n")
	if _, err := fmt.Fprintf(s.writer, "%s:%s:\t%s\n",
		s.painter.Path(m.Path), s.painter.Line(strconv.Itoa(m.Line)), msg); err != nil {
		return err
	}
	return flushIfPossible(s.writer)
}

func (s *ConsoleSink) writeProblem(p rules.Problem) error {
	if _, err := fmt.Fprintf(s.errWriter, "%s: %s\n", s.painter.Fail("error"), p); err != nil {
		return err
	}
	return flushIfPossible(s.errWriter)
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "json" {
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
	if s.format != "text" && s.format != "ndjson" {
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
	return nil
}
