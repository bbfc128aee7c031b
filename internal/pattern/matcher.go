package pattern

import (
	"bytes"
	"regexp"

	"goodcheck/internal/rules"
)

// Hit is one matching line. Columns are 1-based byte offsets into Text;
// EndColumn is exclusive and never runs past the end of Text.
type Hit struct {
	Line      int
	Column    int
	EndColumn int
	Text      string
}

var crlf = []byte("\r\n")

// Matcher is a compiled pattern.
type Matcher struct {
	re        *regexp.Regexp
	kind      rules.Kind
	source    string
	multiline bool
}

// Kind is the pattern field the matcher was compiled from.
func (m *Matcher) Kind() rules.Kind { return m.kind }

// Source is the pattern text as written in the rule.
func (m *Matcher) Source() string { return m.source }

// Expr is the regular expression actually executed.
func (m *Matcher) Expr() string { return m.re.String() }

// Multiline reports whether the matcher searches whole buffers.
func (m *Matcher) Multiline() bool { return m.multiline }

// Find returns the hits in content, in line order, at most one per line.
// In line mode each line is searched on its own, with "\n" as terminator and
// a trailing "\r" removed. In multiline mode the whole buffer is searched,
// with "\r\n" read as "\n", and a hit is reported at the line where the
// match starts.
func (m *Matcher) Find(content []byte) []Hit {
	if m.multiline {
		return m.findBuffer(content)
	}
	return m.findLines(content)
}

// MatchString reports whether text contains a hit.
func (m *Matcher) MatchString(text string) bool {
	return len(m.Find([]byte(text))) > 0
}

func (m *Matcher) findLines(content []byte) []Hit {
	var hits []Hit
	lineNo := 0
	for len(content) > 0 {
		lineNo++
		var line []byte
		if i := bytes.IndexByte(content, '\n'); i >= 0 {
			line, content = content[:i], content[i+1:]
		} else {
			line, content = content, nil
		}
		line = bytes.TrimSuffix(line, []byte{'\r'})

		loc := m.re.FindIndex(line)
		if loc == nil {
			continue
		}
		hits = append(hits, Hit{
			Line:      lineNo,
			Column:    loc[0] + 1,
			EndColumn: loc[1] + 1,
			Text:      string(line),
		})
	}
	return hits
}

func (m *Matcher) findBuffer(content []byte) []Hit {
	// Line numbers survive: each "\r\n" still ends exactly one line.
	if bytes.Contains(content, crlf) {
		content = bytes.ReplaceAll(content, crlf, []byte{'\n'})
	}

	locs := m.re.FindAllIndex(content, -1)
	if len(locs) == 0 {
		return nil
	}

	var hits []Hit
	lineNo, lineStart, scanned, lastLine := 1, 0, 0, 0
	for _, loc := range locs {
		for ; scanned < loc[0]; scanned++ {
			if content[scanned] == '\n' {
				lineNo++
				lineStart = scanned + 1
			}
		}
		if lineNo == lastLine {
			continue
		}
		// An empty match after the final newline is not on a real line.
		if lineStart == len(content) {
			break
		}

		lineEnd := len(content)
		if i := bytes.IndexByte(content[lineStart:], '\n'); i >= 0 {
			lineEnd = lineStart + i
		}
		text := bytes.TrimSuffix(content[lineStart:lineEnd], []byte{'\r'})

		start, end := loc[0], loc[1]
		if limit := lineStart + len(text); end > limit {
			end = limit
			if start > limit {
				start = limit
			}
		}
		hits = append(hits, Hit{
			Line:      lineNo,
			Column:    start - lineStart + 1,
			EndColumn: end - lineStart + 1,
			Text:      string(text),
		})
		lastLine = lineNo
	}
	return hits
}
