// Package pattern compiles rule patterns into matchers and runs them
// over file contents.
package pattern

import (
	"errors"
	"fmt"
	"regexp"

	"goodcheck/internal/rules"
)

// ErrEmptyPattern is returned for a pattern with none of string, regexp,
// literal, token populated.
var ErrEmptyPattern = errors.New("pattern has none of string, regexp, literal, token")

// Error reports a pattern that does not compile.
type Error struct {
	Kind   rules.Kind
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s pattern %q: %v", e.Kind, e.Source, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Compile turns a rule pattern into a Matcher.
//
// string and regexp are regular expressions, literal is matched verbatim and
// token is a whitespace-tolerant token sequence. case_sensitive=false adds
// (?i); multiline=true adds (?ms) and switches to whole-buffer search.
func Compile(p rules.Pattern) (*Matcher, error) {
	kind, text, ok := p.Source()
	if !ok {
		return nil, ErrEmptyPattern
	}

	expr := text
	switch kind {
	case rules.KindLiteral:
		expr = regexp.QuoteMeta(text)
	case rules.KindToken:
		expr = tokenExpr(text)
		if expr == "" {
			return nil, &Error{Kind: kind, Source: text, Err: errors.New("token pattern has no tokens")}
		}
	}

	flags := ""
	if !p.CaseSensitive {
		flags += "i"
	}
	if p.Multiline {
		flags += "ms"
	}
	if flags != "" {
		expr = "(?" + flags + ")" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &Error{Kind: kind, Source: text, Err: err}
	}
	return &Matcher{
		re:        re,
		kind:      kind,
		source:    text,
		multiline: p.Multiline,
	}, nil
}
